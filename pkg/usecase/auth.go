package usecase

import (
	"context"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/litmap/litmap/pkg/domain/interfaces"
	"github.com/litmap/litmap/pkg/domain/model/auth"
	"github.com/m-mizutani/goerr/v2"
)

// AuthUseCase validates externally provisioned credentials: opaque session
// tokens from the store and signed JWT bearer tokens. Login and
// registration flows live outside this service.
type AuthUseCase struct {
	repo      interfaces.Repository
	jwtSecret []byte
	noAuthn   bool
}

func newAuthUseCase(repo interfaces.Repository) *AuthUseCase {
	return &AuthUseCase{repo: repo}
}

// SetNoAuthn switches the service to anonymous mode: every request shares
// one identity and tokens are never checked. For local development only.
func (uc *AuthUseCase) SetNoAuthn(enabled bool) {
	uc.noAuthn = enabled
}

// IsNoAuthn reports whether authentication is disabled
func (uc *AuthUseCase) IsNoAuthn() bool {
	return uc.noAuthn
}

// SetJWTSecret sets the shared key used to verify bearer tokens
func (uc *AuthUseCase) SetJWTSecret(secret []byte) {
	uc.jwtSecret = secret
}

// ValidateJWT verifies an externally issued HS256 bearer token and maps
// its claims onto a request identity. The issuing service signs tokens
// with the same shared secret.
func (uc *AuthUseCase) ValidateJWT(ctx context.Context, raw string) (*auth.Token, error) {
	if len(uc.jwtSecret) == 0 {
		return nil, goerr.New("JWT secret is not configured")
	}

	// Allow 10 seconds of clock skew to handle time synchronization differences
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, uc.jwtSecret),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(10*time.Second),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse or verify JWT token")
	}

	sub := token.Subject()
	if sub == "" {
		return nil, goerr.New("sub claim not found in token")
	}

	identity := &auth.Token{
		Sub:       sub,
		ExpiresAt: token.Expiration(),
		CreatedAt: token.IssuedAt(),
	}
	if email, ok := token.Get("email"); ok {
		if s, ok := email.(string); ok {
			identity.Email = s
		}
	}
	if name, ok := token.Get("name"); ok {
		if s, ok := name.(string); ok {
			identity.Name = s
		}
	}

	return identity, nil
}

// ValidateToken checks the token ID and secret against the store
func (uc *AuthUseCase) ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error) {
	token, err := uc.repo.GetToken(ctx, tokenID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up token")
	}

	if token.Secret != tokenSecret {
		return nil, goerr.New("token secret mismatch")
	}
	if token.IsExpired(time.Now()) {
		return nil, goerr.New("token expired")
	}

	return token, nil
}

// Logout deletes the token
func (uc *AuthUseCase) Logout(ctx context.Context, tokenID auth.TokenID) error {
	return uc.repo.DeleteToken(ctx, tokenID)
}
