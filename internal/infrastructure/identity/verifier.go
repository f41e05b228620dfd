// Package identity verifies bearer tokens issued by the external identity
// provider. Tokens are only ever verified here, never minted: credential
// handling, token issuance and refresh all live with the provider.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/bookhaven/library-system/internal/core/domain"
)

const (
	jwksRefreshInterval  = time.Hour
	jwksRefreshRateLimit = 5 * time.Minute
	jwksRefreshTimeout   = 10 * time.Second
	defaultHTTPTimeout   = 10 * time.Second
)

// Config points the verifier at the identity provider.
type Config struct {
	// Issuer is the expected iss claim.
	Issuer string
	// Audience is the expected aud claim for this API.
	Audience string
	// JWKSURL overrides the signing-key endpoint. Empty derives
	// <issuer>/.well-known/jwks.json.
	JWKSURL string
	// HTTPTimeout bounds JWKS fetches. Defaults to 10s.
	HTTPTimeout time.Duration
}

// Verifier checks RS256 signatures against the provider's published JWKS and
// enforces issuer, audience and lifetime claims. Signing keys are cached and
// refreshed in the background; an unknown kid triggers a rate-limited
// refresh, so provider key rotation needs no restart.
type Verifier struct {
	issuer   string
	audience string
	jwks     *keyfunc.JWKS
}

type identityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewVerifier fetches the provider's JWKS once up front and starts the
// background refresh. Startup fails when the provider is unreachable rather
// than accepting requests it could never verify.
func NewVerifier(cfg Config, log zerolog.Logger) (*Verifier, error) {
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("identity: issuer is required")
	}
	if cfg.Audience == "" {
		return nil, fmt.Errorf("identity: audience is required")
	}

	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = strings.TrimSuffix(cfg.Issuer, "/") + "/.well-known/jwks.json"
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Client: &http.Client{Timeout: timeout},
		RefreshErrorHandler: func(err error) {
			log.Warn().Err(err).Msg("jwks background refresh failed")
		},
		RefreshInterval:   jwksRefreshInterval,
		RefreshRateLimit:  jwksRefreshRateLimit,
		RefreshTimeout:    jwksRefreshTimeout,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("identity: fetch jwks: %w", err)
	}

	return &Verifier{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		jwks:     jwks,
	}, nil
}

// Verify parses and validates a raw bearer token. Every failure mode comes
// back as domain.ErrInvalidCredential: callers treat the request as
// unauthenticated and nothing downstream runs.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*domain.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}
	if !token.Valid {
		return nil, domain.ErrInvalidCredential
	}

	email := strings.TrimSpace(strings.ToLower(claims.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: token has no email claim", domain.ErrInvalidCredential)
	}

	return &domain.Principal{
		Subject: claims.Subject,
		Email:   email,
		Name:    claims.Name,
	}, nil
}

// Close stops the background JWKS refresh.
func (v *Verifier) Close() {
	v.jwks.EndBackground()
}
