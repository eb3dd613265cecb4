package impl

import (
	"context"
	"errors"
	"strings"
	"time"

	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/events"
	"byod/internal/netutil"
	"byod/internal/observability/logging"
	"byod/internal/observability/metrics"
	"byod/internal/service"
	"byod/internal/store"

	"github.com/google/uuid"
)

const minPasswordLength = 8

type AuthServiceImpl struct {
	Store           dataStore
	PasswordService service.PasswordService
	TService        service.TokenService
}

func NewAuthServiceImpl(store *store.Store, passwordService service.PasswordService, tokenService service.TokenService) *AuthServiceImpl {
	return &AuthServiceImpl{
		Store:           gormStoreAdapter{store: store},
		PasswordService: passwordService,
		TService:        tokenService,
	}
}

type dataStore interface {
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
	Users() userStore
	Audit() auditStore
}

type storeTx interface {
	Users() userStore
	Credentials() credentialStore
	Audit() auditStore
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, role domain.Role, offset, limit int) ([]*domain.User, int64, error)
}

type credentialStore interface {
	UpsertPassword(ctx context.Context, c *domain.PasswordCredential) error
	GetPasswordByUserID(ctx context.Context, userID uuid.UUID) (*domain.PasswordCredential, error)
}

type auditStore interface {
	Record(ctx context.Context, entry *domain.AuditLog, meta any) error
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return ErrNilStore
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

func (g gormStoreAdapter) Users() userStore { return g.store.Users() }

func (g gormStoreAdapter) Audit() auditStore { return g.store.Audit() }

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Users() userStore { return g.tx.Users() }

func (g gormTxAdapter) Credentials() credentialStore { return g.tx.Credentials() }

func (g gormTxAdapter) Audit() auditStore { return g.tx.Audit() }

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.TokenResponse, error) {
	username := strings.ToLower(strings.TrimSpace(r.Username))
	if username == "" || r.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	ip, _ = netutil.NormalizeIP(ip)
	ua = netutil.TruncateUserAgent(ua)

	var (
		tokens *dto.TokenResponse
		userID uuid.UUID
	)
	err := a.Store.WithTx(ctx, func(tx storeTx) error {
		user, err := tx.Users().GetByUsername(ctx, username)
		if err != nil {
			// don't leak which part failed
			return domain.ErrInvalidCredentials
		}
		userID = user.ID
		if user.IsDisabled {
			return domain.ErrUserDisabled
		}

		cred, err := tx.Credentials().GetPasswordByUserID(ctx, user.ID)
		if err != nil {
			return domain.ErrInvalidCredentials
		}

		rehashNeeded, ok := a.PasswordService.Verify(r.Password, cred)
		if !ok {
			return domain.ErrInvalidCredentials
		}

		// transparent upgrade to the current hashing policy
		if rehashNeeded {
			newHash, newSalt, newParamsJSON, algo, ver, err := a.PasswordService.Hash(r.Password)
			if err != nil {
				return err
			}
			cred.Algo = algo
			cred.Hash = newHash
			cred.Salt = newSalt
			cred.ParamsJSON = newParamsJSON
			cred.PasswordVer = ver
			cred.UpdatedAt = time.Now().UTC()
			if err := tx.Credentials().UpsertPassword(ctx, cred); err != nil {
				return err
			}
		}

		tr, err := a.TService.Issue(ctx, user)
		if err != nil {
			return err
		}
		tokens = tr
		return tx.Audit().Record(ctx, &domain.AuditLog{
			ActorID:    &user.ID,
			Action:     domain.ActionUserLogin,
			EntityType: "user",
			EntityID:   &user.ID,
			Outcome:    domain.AuditSuccess,
			IP:         ip,
			UserAgent:  ua,
		}, nil)
	})
	metrics.LoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		logging.FromContext(ctx).Warn("login failed", "username", username, "error", err)
		entry := &domain.AuditLog{
			Action:     domain.ActionUserLogin,
			EntityType: "user",
			Outcome:    domain.OutcomeFor(err),
			IP:         ip,
			UserAgent:  ua,
		}
		if userID != uuid.Nil {
			entry.EntityID = &userID
		}
		meta := events.LoginFailed{Username: username, Error: err.Error(), At: nowFunc()}
		if aerr := a.Store.Audit().Record(ctx, entry, meta); aerr != nil {
			logging.FromContext(ctx).Error("audit write failed", "error", aerr)
		}
		return nil, err
	}
	return tokens, nil
}

// CreateUser creates a user with a password credential. A nil actor is the
// operator CLI; otherwise only admins may create users.
func (a *AuthServiceImpl) CreateUser(ctx context.Context, actor *domain.Actor, r dto.CreateUserRequest) (*domain.User, error) {
	if actor != nil && !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}
	username := strings.ToLower(strings.TrimSpace(r.Username))
	if username == "" {
		return nil, domain.ErrEmptyUsername
	}
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return nil, err
	}
	if len(r.Password) < minPasswordLength {
		return nil, domain.ErrPasswordLength
	}

	var out *domain.User
	err = a.Store.WithTx(ctx, func(tx storeTx) error {
		now := nowFunc()
		u := &domain.User{
			ID:        uuid.New(),
			Username:  username,
			FullName:  strings.TrimSpace(r.FullName),
			Email:     strings.TrimSpace(r.Email),
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return domain.ErrDuplicateUsername
			}
			return err
		}

		hash, salt, paramsJSON, algo, ver, err := a.PasswordService.Hash(r.Password)
		if err != nil {
			return err
		}
		if err := tx.Credentials().UpsertPassword(ctx, &domain.PasswordCredential{
			ID:          uuid.New(),
			UserID:      u.ID,
			Algo:        algo,
			Hash:        hash,
			Salt:        salt,
			ParamsJSON:  paramsJSON,
			PasswordVer: ver,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return err
		}

		entry := &domain.AuditLog{
			Action:     domain.ActionUserCreate,
			EntityType: "user",
			EntityID:   &u.ID,
			Outcome:    domain.AuditSuccess,
		}
		if actor != nil {
			entry.ActorID = &actor.ID
			entry.IP = actor.IP
			entry.UserAgent = actor.UserAgent
		}
		out = u
		return tx.Audit().Record(ctx, entry, events.UserCreated{
			UserID:   u.ID.String(),
			Username: u.Username,
			Role:     string(u.Role),
			At:       now,
		})
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("user created", "user_id", out.ID.String(), "role", string(out.Role))
	return out, nil
}

func (a *AuthServiceImpl) ListUsers(ctx context.Context, actor domain.Actor, role string, page dto.PageRequest) (*dto.UserListResponse, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}
	var r domain.Role
	if role != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			return nil, err
		}
		r = parsed
	}
	page = page.Normalize(20)
	users, total, err := a.Store.Users().List(ctx, r, page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, dto.FromUser(u))
	}
	return &dto.UserListResponse{Items: items, PageInfo: dto.NewPageInfo(page, total)}, nil
}

func (a *AuthServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := a.TService.Verify(ctx, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := a.Store.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if user.IsDisabled {
		return nil, domain.ErrUserDisabled
	}
	return user, nil
}
