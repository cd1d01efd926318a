package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/pagehub-backend/internal/config"
	"github.com/yungbote/pagehub-backend/internal/platform/apierr"
	"github.com/yungbote/pagehub-backend/internal/platform/ctxutil"
	"github.com/yungbote/pagehub-backend/internal/platform/kv"
	"github.com/yungbote/pagehub-backend/internal/platform/logger"
)

// JWTClaims are the claims the identity provider puts in access tokens.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type AuthService interface {
	// Verify checks an access token and returns the identity it carries.
	Verify(ctx context.Context, token string) (*ctxutil.RequestData, error)
	// Revoke rejects the token's id until the token would have expired anyway.
	Revoke(ctx context.Context, rd *ctxutil.RequestData) error
}

type authService struct {
	log    *logger.Logger
	secret []byte
	parser *jwt.Parser
	store  kv.Store
	now    func() time.Time
}

func NewAuthService(log *logger.Logger, cfg config.AuthConfig, store kv.Store) (AuthService, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, errors.New("auth: jwt secret required")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &authService{
		log:    log.With("service", "AuthService"),
		secret: []byte(cfg.JWTSecret),
		parser: jwt.NewParser(opts...),
		store:  store,
		now:    time.Now,
	}, nil
}

func revokedKey(jti string) string { return "auth:revoked:" + jti }

func (as *authService) Verify(ctx context.Context, token string) (*ctxutil.RequestData, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apierr.Unauthorized(errors.New("missing token"))
	}
	claims := &JWTClaims{}
	parsed, err := as.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return as.secret, nil
	})
	if err != nil || parsed == nil || !parsed.Valid {
		as.log.Debug("token rejected", "error", fmt.Sprint(err))
		return nil, apierr.Unauthorized(errors.New("invalid or expired token"))
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, apierr.Unauthorized(errors.New("token has no subject"))
	}

	if claims.ID != "" {
		if _, err := as.store.Get(ctx, revokedKey(claims.ID)); err == nil {
			return nil, apierr.Unauthorized(errors.New("token revoked"))
		} else if !errors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("check token revocation: %w", err)
		}
	}

	rd := &ctxutil.RequestData{UserID: claims.Subject, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		rd.ExpiresAt = claims.ExpiresAt.Time
	}
	return rd, nil
}

func (as *authService) Revoke(ctx context.Context, rd *ctxutil.RequestData) error {
	if rd == nil || rd.TokenID == "" {
		// tokens without an id cannot be listed; they simply run out
		return nil
	}
	ttl := rd.ExpiresAt.Sub(as.now())
	if ttl <= 0 {
		return nil
	}
	if err := as.store.Set(ctx, revokedKey(rd.TokenID), []byte(rd.UserID), ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	as.log.Info("token revoked", "user_id", rd.UserID)
	return nil
}
