package interfaces

import (
	"context"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
)

// SessionRepository defines the interface for Session data persistence.
// All lookups that take a userID enforce ownership: a session owned by a
// different user behaves exactly like a missing one.
type SessionRepository interface {
	// Create persists a session together with its paper membership rows.
	// The write is all-or-nothing.
	Create(ctx context.Context, session *model.Session, papers []*model.SessionPaper) error

	// ListByUser retrieves the user's sessions ordered by last access,
	// most recent first.
	ListByUser(ctx context.Context, userID types.UserID) ([]*model.Session, error)

	// GetAndTouch retrieves a session and bumps its last-accessed
	// timestamp in the same operation. Returns ErrSessionNotFound when the
	// session does not exist or is owned by another user.
	GetAndTouch(ctx context.Context, id types.SessionID, userID types.UserID) (*model.Session, error)

	// ListPapers retrieves the session's membership rows in stored
	// position order.
	ListPapers(ctx context.Context, id types.SessionID) ([]*model.SessionPaper, error)

	// UpdateTitle renames a session owned by the user
	UpdateTitle(ctx context.Context, id types.SessionID, userID types.UserID, title string) error

	// Delete removes a session and its membership rows. The referenced
	// papers stay in the global store.
	Delete(ctx context.Context, id types.SessionID, userID types.UserID) error
}
