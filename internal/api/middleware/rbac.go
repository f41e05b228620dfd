package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/library-system/internal/api/metrics"
	"github.com/bookhaven/library-system/internal/core/domain"
)

const userContextKey = "user"

// PrincipalStore is the user-store read the gate depends on.
type PrincipalStore interface {
	// FindByEmail returns domain.ErrUserNotFound when no record exists.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// RequireRole gates a route on the caller's stored role. It re-reads the
// user record on every request: role claims a token may carry are ignored, so
// a demotion takes effect on the next request without waiting for token
// expiry.
//
// Every non-allow outcome fails closed. A caller with no user record is
// forbidden rather than defaulted to any role, and a store failure yields
// domain.ErrStoreUnavailable rather than a pass.
//
// Must run after Authenticate; a missing principal means the route was wired
// without it and the request is treated as unauthenticated.
func RequireRole(store PrincipalStore, predicate domain.RolePredicate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := PrincipalFrom(c)
			if !ok {
				return domain.ErrUnauthenticated
			}

			start := time.Now()
			record, err := store.FindByEmail(c.Request().Context(), principal.Email)
			metrics.RoleLookupDuration.Observe(time.Since(start).Seconds())

			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.GateDecisionsTotal.WithLabelValues(predicate.Name(), "denied_no_record").Inc()
					return domain.ErrForbidden
				}
				metrics.GateDecisionsTotal.WithLabelValues(predicate.Name(), "store_error").Inc()
				return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
			}

			if !predicate.Allows(record.Role) {
				metrics.GateDecisionsTotal.WithLabelValues(predicate.Name(), "denied_role").Inc()
				return domain.ErrForbidden
			}

			metrics.GateDecisionsTotal.WithLabelValues(predicate.Name(), "allowed").Inc()
			c.Set(userContextKey, record)
			return next(c)
		}
	}
}

// UserFrom returns the user record loaded by RequireRole.
func UserFrom(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(userContextKey).(*domain.User)
	return user, ok
}
