package handler

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/library-system/internal/api/middleware"
	"github.com/bookhaven/library-system/internal/core/domain"
)

// principalEmail extracts the verified principal's email injected by the
// Authenticate middleware. Its absence means the route was wired without
// token verification; fail as unauthenticated before any service call.
func principalEmail(c echo.Context) (string, error) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok || principal.Email == "" {
		return "", domain.ErrUnauthenticated
	}
	return principal.Email, nil
}

// requireSelfOrStaff enforces the owner check on order and payment reads:
// the target email must match the verified principal, or the caller's STORED
// role must be librarian or admin. The role comes from one store read, never
// from token claims, and every failure mode denies.
func requireSelfOrStaff(c echo.Context, store middleware.PrincipalStore, email string) error {
	own, err := principalEmail(c)
	if err != nil {
		return err
	}
	if email == own {
		return nil
	}

	record, err := store.FindByEmail(c.Request().Context(), own)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrForbidden
		}
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if record.Role != domain.RoleLibrarian && record.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}
