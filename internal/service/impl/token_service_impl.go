package impl

import (
	"context"
	"fmt"
	"time"

	"byod/internal/domain"
	"byod/internal/dto"
	"byod/internal/jwtsigner"
	"byod/internal/service"

	"github.com/google/uuid"
)

type TokenConfig struct {
	AccessTTL time.Duration
}

// TokenServiceImpl issues stateless EdDSA access tokens. The role travels in
// the token but authorization always re-reads the user.
type TokenServiceImpl struct {
	cfg    TokenConfig
	signer *jwtsigner.Signer
}

func NewTokenServiceEdDSA(cfg TokenConfig, signer *jwtsigner.Signer) *TokenServiceImpl {
	return &TokenServiceImpl{cfg: cfg, signer: signer}
}

func (t *TokenServiceImpl) Issue(ctx context.Context, user *domain.User) (*dto.TokenResponse, error) {
	tok, err := t.signer.Sign(user.ID.String(), t.cfg.AccessTTL, map[string]any{
		"role":     string(user.Role),
		"username": user.Username,
	})
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresIn:   int64(t.cfg.AccessTTL.Seconds()),
	}, nil
}

func (t *TokenServiceImpl) Verify(ctx context.Context, token string) (*service.AccessClaims, error) {
	claims, err := t.signer.Verify(token)
	if err != nil {
		return nil, err
	}
	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", jwtsigner.ErrInvalidToken)
	}
	role, _ := claims["role"].(string)
	username, _ := claims["username"].(string)
	return &service.AccessClaims{UserID: id, Username: username, Role: domain.Role(role)}, nil
}

func (t *TokenServiceImpl) JWKS() map[string]any {
	return map[string]any{"keys": []any{t.signer.PublicJWK()}}
}
