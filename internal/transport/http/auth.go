package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/httpx"
	"byod/internal/netutil"
	"byod/internal/observability/logging"
	"byod/internal/service/impl"
)

type ctxKey int

const (
	ctxKeyActor ctxKey = iota
	ctxKeyUser
)

func clientIP(r *http.Request) string {
	// RealIP has already folded X-Forwarded-For / X-Real-IP into RemoteAddr.
	if normalized, ok := netutil.NormalizeIP(r.RemoteAddr); ok {
		return normalized
	}
	return r.RemoteAddr
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// requireActor resolves the bearer token to an enabled user and stores the
// resulting actor in the request context.
func (h *handler) requireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.Auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			switch {
			case errors.Is(err, impl.ErrUnauthenticated):
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
			case errors.Is(err, domain.ErrUserDisabled):
				httpx.WriteError(w, http.StatusUnauthorized, "account disabled")
			default:
				writeServiceError(w, r, err)
			}
			return
		}

		actor := domain.ActorFromUser(user)
		actor.IP = clientIP(r)
		actor.UserAgent = netutil.TruncateUserAgent(r.UserAgent())

		ctx := context.WithValue(r.Context(), ctxKeyActor, actor)
		ctx = context.WithValue(ctx, ctxKeyUser, user)
		ctx = logging.WithContext(ctx, logging.FromContext(ctx).With("actor_id", actor.ID.String()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFrom(ctx context.Context) domain.Actor {
	a, _ := ctx.Value(ctxKeyActor).(domain.Actor)
	return a
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.Auth.Login(r.Context(), req, clientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	user, _ := r.Context().Value(ctxKeyUser).(*domain.User)
	if user == nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dto.FromUser(user))
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	actor := actorFrom(r.Context())
	u, err := h.Auth.CreateUser(r.Context(), &actor, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dto.FromUser(u))
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := h.Auth.ListUsers(r.Context(), actorFrom(r.Context()), r.URL.Query().Get("role"), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
