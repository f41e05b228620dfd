package ports

import (
	"context"

	"github.com/bookhaven/library-system/internal/core/domain"
)

// TokenVerifier exchanges an opaque bearer token for a verified principal.
// Implementations call out to the external identity provider's published keys;
// they hold no state for the request and must not retry a failed verification.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*domain.Principal, error)
}
