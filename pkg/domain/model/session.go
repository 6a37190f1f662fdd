package model

import (
	"time"

	"github.com/litmap/litmap/pkg/domain/types"
)

// Session represents a saved graph exploration owned by a single user
type Session struct {
	ID             types.SessionID
	UserID         types.UserID
	Title          string
	SeedID         types.PaperID
	Mode           types.DiscoveryMode
	PartialData    bool   // True when discovery failed and only the seed was persisted
	DiscoveryError string // Human-readable provider failure, empty on success
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// NewSession builds a Session for a freshly constructed graph. Title
// defaults to the seed paper's title.
func NewSession(userID types.UserID, title string, graph *Graph, mode types.DiscoveryMode) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:             types.NewSessionID(),
		UserID:         userID,
		Title:          title,
		SeedID:         graph.SeedID,
		Mode:           mode,
		PartialData:    graph.PartialData,
		DiscoveryError: graph.DiscoveryError,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

// SessionPaper is a junction row linking a session to one of its papers.
// Position preserves the node order of the graph at build time so a
// reloaded session renders identically.
type SessionPaper struct {
	SessionID types.SessionID
	PaperID   types.PaperID
	Position  int
	IsSeed    bool
	AddedAt   time.Time
}
