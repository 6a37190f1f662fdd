package types

import (
	"github.com/google/uuid"
)

// SessionID is a UUID-based identifier for a graph exploration session
type SessionID string

// NewSessionID generates a new UUID v4 SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

func (x SessionID) String() string {
	return string(x)
}

// Validate checks if the SessionID is a well-formed UUID
func (x SessionID) Validate() error {
	if _, err := uuid.Parse(string(x)); err != nil {
		return ErrInvalidSessionID
	}
	return nil
}

// UserID identifies the owner of sessions. It is issued by the external
// authentication layer and treated as opaque here.
type UserID string

func (x UserID) String() string {
	return string(x)
}

// Validate checks if the UserID is usable
func (x UserID) Validate() error {
	if x == "" {
		return ErrInvalidUserID
	}
	return nil
}
