package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/productivitybrain/core/internal/ports"
)

// Context keys set by authMiddleware
const (
	ctxSubject = "dispatch_subject"
)

// authMiddleware validates dispatch host bearer tokens. With no shared key
// configured every request passes.
func (s *Server) authMiddleware(authService ports.DispatchAuthService) echo.MiddlewareFunc {
	if !authService.Enabled() {
		s.logger.Warnw("DISPATCH_API_KEY is not set, API authentication is disabled")
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				s.logger.LogSecurityEvent("invalid_token", c.RealIP(), map[string]interface{}{
					"error":    err.Error(),
					"endpoint": c.Request().URL.Path,
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ctxSubject, claims.Subject)

			return next(c)
		}
	}
}

// subjectFromContext returns the authenticated dispatch host, if any
func subjectFromContext(c echo.Context) string {
	subject, ok := c.Get(ctxSubject).(string)
	if !ok {
		return ""
	}
	return subject
}
