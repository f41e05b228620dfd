package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/bookhaven/library-system/internal/core/domain"
)

const testKID = "test-key-1"

// newJWKSServer serves a one-key JWKS for the given RSA public key.
func newJWKSServer(t *testing.T, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()

	jwks := map[string]any{
		"keys": []map[string]string{
			{
				"kid": testKID,
				"kty": "RSA",
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type tokenOverrides struct {
	issuer   string
	audience string
	email    string
	kid      string
	expires  time.Time
	method   jwt.SigningMethod
	key      any
}

func signToken(t *testing.T, priv *rsa.PrivateKey, o tokenOverrides) string {
	t.Helper()

	if o.issuer == "" {
		o.issuer = "https://id.example.com"
	}
	if o.audience == "" {
		o.audience = "library-api"
	}
	if o.kid == "" {
		o.kid = testKID
	}
	if o.expires.IsZero() {
		o.expires = time.Now().Add(time.Hour)
	}
	if o.method == nil {
		o.method = jwt.SigningMethodRS256
		o.key = priv
	}

	claims := jwt.MapClaims{
		"iss": o.issuer,
		"aud": o.audience,
		"sub": "subj-123",
		"exp": jwt.NewNumericDate(o.expires),
		"iat": jwt.NewNumericDate(time.Now()),
	}
	if o.email != "-" {
		if o.email == "" {
			o.email = "alice@example.com"
		}
		claims["email"] = o.email
		claims["name"] = "Alice"
	}

	token := jwt.NewWithClaims(o.method, claims)
	token.Header["kid"] = o.kid

	signed, err := token.SignedString(o.key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestVerifier(t *testing.T, jwksURL string) *Verifier {
	t.Helper()

	v, err := NewVerifier(Config{
		Issuer:   "https://id.example.com",
		Audience: "library-api",
		JWKSURL:  jwksURL,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}
	t.Cleanup(v.Close)
	return v
}

func TestVerifier_ValidToken(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	srv := newJWKSServer(t, &priv.PublicKey)
	v := newTestVerifier(t, srv.URL)

	principal, err := v.Verify(context.Background(), signToken(t, priv, tokenOverrides{email: "Alice@Example.COM"}))
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if principal.Email != "alice@example.com" {
		t.Errorf("expected lowercased email, got %q", principal.Email)
	}
	if principal.Subject != "subj-123" {
		t.Errorf("unexpected subject: %q", principal.Subject)
	}
	if principal.Name != "Alice" {
		t.Errorf("unexpected name: %q", principal.Name)
	}
}

func TestVerifier_RejectsBadTokens(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	srv := newJWKSServer(t, &priv.PublicKey)
	v := newTestVerifier(t, srv.URL)

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"expired", signToken(t, priv, tokenOverrides{expires: time.Now().Add(-time.Minute)})},
		{"wrong issuer", signToken(t, priv, tokenOverrides{issuer: "https://evil.example.com"})},
		{"wrong audience", signToken(t, priv, tokenOverrides{audience: "other-api"})},
		{"missing email claim", signToken(t, priv, tokenOverrides{email: "-"})},
		{"signed by foreign key", signToken(t, otherKey, tokenOverrides{method: jwt.SigningMethodRS256, key: otherKey})},
		{"hmac signature", signToken(t, priv, tokenOverrides{method: jwt.SigningMethodHS256, key: []byte("shared-secret")})},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Verify(context.Background(), tc.token); !errors.Is(err, domain.ErrInvalidCredential) {
				t.Fatalf("expected ErrInvalidCredential, got %v", err)
			}
		})
	}
}

func TestVerifier_TamperedPayload(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	srv := newJWKSServer(t, &priv.PublicKey)
	v := newTestVerifier(t, srv.URL)

	token := signToken(t, priv, tokenOverrides{})

	// Swap the payload for one claiming another email; the signature no
	// longer matches.
	parts := strings.Split(token, ".")
	forged := parts[0] + "." +
		base64.RawURLEncoding.EncodeToString([]byte(`{"iss":"https://id.example.com","aud":"library-api","sub":"x","email":"admin@example.com","exp":99999999999}`)) +
		"." + parts[2]

	if _, err := v.Verify(context.Background(), forged); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for forged payload, got %v", err)
	}
}

func TestNewVerifier_RequiresIssuerAndAudience(t *testing.T) {
	if _, err := NewVerifier(Config{Audience: "x"}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for missing issuer")
	}
	if _, err := NewVerifier(Config{Issuer: "https://id.example.com"}, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for missing audience")
	}
}

func TestNewVerifier_UnreachableJWKS(t *testing.T) {
	_, err := NewVerifier(Config{
		Issuer:      "https://id.example.com",
		Audience:    "library-api",
		JWKSURL:     "http://127.0.0.1:1/jwks.json",
		HTTPTimeout: time.Second,
	}, zerolog.Nop())
	if err == nil {
		t.Fatalf("expected startup failure when jwks endpoint is unreachable")
	}
}
