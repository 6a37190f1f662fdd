package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// TokenID is a UUID-based identifier for a session token
type TokenID string

// NewTokenID generates a new UUID v4 TokenID
func NewTokenID() TokenID {
	return TokenID(uuid.New().String())
}

func (x TokenID) String() string {
	return string(x)
}

// Validate checks if the TokenID is a well-formed UUID
func (x TokenID) Validate() error {
	if _, err := uuid.Parse(string(x)); err != nil {
		return goerr.Wrap(err, "invalid token ID")
	}
	return nil
}

// TokenSecret is the secret part of a session token
type TokenSecret string

// NewTokenSecret generates a new random TokenSecret
func NewTokenSecret() TokenSecret {
	return TokenSecret(uuid.New().String())
}

func (x TokenSecret) String() string {
	return string(x)
}

// TokenTTL is the lifetime of a session token
const TokenTTL = 7 * 24 * time.Hour

// Token represents an authenticated user session
type Token struct {
	ID        TokenID     `firestore:"ID"`
	Secret    TokenSecret `firestore:"Secret" masq:"secret"`
	Sub       string      `firestore:"Sub"` // Subject from the ID provider, used as the user ID
	Email     string      `firestore:"Email"`
	Name      string      `firestore:"Name"`
	ExpiresAt time.Time   `firestore:"ExpiresAt"`
	CreatedAt time.Time   `firestore:"CreatedAt"`
}

// NewToken creates a Token for a validated identity
func NewToken(sub, email, name string) *Token {
	now := time.Now().UTC()
	return &Token{
		ID:        NewTokenID(),
		Secret:    NewTokenSecret(),
		Sub:       sub,
		Email:     email,
		Name:      name,
		ExpiresAt: now.Add(TokenTTL),
		CreatedAt: now,
	}
}

// AnonymousUserSub is the subject assigned when authentication is disabled
const AnonymousUserSub = "anonymous"

// NewAnonymousUser creates a token for no-authentication mode. All requests
// share the same user identity.
func NewAnonymousUser() *Token {
	now := time.Now().UTC()
	return &Token{
		ID:        NewTokenID(),
		Secret:    NewTokenSecret(),
		Sub:       AnonymousUserSub,
		Name:      "Anonymous",
		ExpiresAt: now.Add(TokenTTL),
		CreatedAt: now,
	}
}

// Validate checks structural validity of the token
func (x *Token) Validate() error {
	if err := x.ID.Validate(); err != nil {
		return err
	}
	if x.Secret == "" {
		return goerr.New("token secret is empty")
	}
	if x.Sub == "" {
		return goerr.New("token subject is empty")
	}
	return nil
}

// IsExpired reports whether the token has passed its expiry
func (x *Token) IsExpired(now time.Time) bool {
	return now.After(x.ExpiresAt)
}

// UserID returns the session owner identity carried by the token
func (x *Token) UserID() types.UserID {
	return types.UserID(x.Sub)
}

type ctxTokenKey struct{}

// ContextWithToken attaches the token to the context
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext retrieves the token from the context, if any
func TokenFromContext(ctx context.Context) (*Token, bool) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	return token, ok
}
