package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/productivitybrain/core/internal/infrastructure/config"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/ports"
)

var ErrAuthDisabled = errors.New("dispatch authentication is disabled")

// dispatchClaims is the JWT payload carried by dispatch host tokens
type dispatchClaims struct {
	jwt.RegisteredClaims
}

// AuthService issues and checks the bearer tokens the dispatch host presents.
// Tokens are signed HS256 with the shared DISPATCH_API_KEY.
type AuthService struct {
	cfg    config.DispatchConfig
	now    func() time.Time
	logger *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(cfg config.DispatchConfig, logger *logger.Logger) *AuthService {
	return &AuthService{
		cfg:    cfg,
		now:    time.Now,
		logger: logger.WithComponent("auth"),
	}
}

// Enabled reports whether a shared key is configured
func (s *AuthService) Enabled() bool {
	return s.cfg.AuthEnabled()
}

// IssueToken mints a token for subject valid for the configured TTL
func (s *AuthService) IssueToken(subject string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrAuthDisabled
	}
	if subject == "" {
		subject = "dispatch-host"
	}

	now := s.now()
	expires := now.Add(s.cfg.TokenTTL)
	claims := &dispatchClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.APIKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("Dispatch token issued", "subject", subject, "expires_at", expires)
	return tokenString, expires, nil
}

// ValidateToken checks signature, issuer, audience and expiry
func (s *AuthService) ValidateToken(tokenString string) (*ports.DispatchClaims, error) {
	if !s.Enabled() {
		return nil, ErrAuthDisabled
	}

	token, err := jwt.ParseWithClaims(tokenString, &dispatchClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.APIKey), nil
	},
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*dispatchClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	out := &ports.DispatchClaims{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
