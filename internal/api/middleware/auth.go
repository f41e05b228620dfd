package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/library-system/internal/api/metrics"
	"github.com/bookhaven/library-system/internal/core/domain"
	"github.com/bookhaven/library-system/internal/core/ports"
)

const principalContextKey = "principal"

// Authenticate verifies the bearer token on every request and injects the
// resulting principal into the request context. It never touches the user
// store: identity comes from the token, the stored role is read later by the
// gate. Requests that fail here are finished, nothing downstream runs.
func Authenticate(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.AuthOutcomesTotal.WithLabelValues("missing_credential").Inc()
				return domain.ErrUnauthenticated
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				metrics.AuthOutcomesTotal.WithLabelValues("missing_credential").Inc()
				return domain.ErrUnauthenticated
			}

			principal, err := verifier.Verify(c.Request().Context(), parts[1])
			if err != nil {
				metrics.AuthOutcomesTotal.WithLabelValues("invalid_credential").Inc()
				return err
			}

			metrics.AuthOutcomesTotal.WithLabelValues("verified").Inc()
			c.Set(principalContextKey, principal)
			return next(c)
		}
	}
}

// PrincipalFrom returns the verified principal injected by Authenticate.
func PrincipalFrom(c echo.Context) (*domain.Principal, bool) {
	principal, ok := c.Get(principalContextKey).(*domain.Principal)
	return principal, ok
}
