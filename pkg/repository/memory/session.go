package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[types.SessionID]*model.Session
	papers   map[types.SessionID][]*model.SessionPaper
}

func newSessionRepository() *sessionRepository {
	return &sessionRepository{
		sessions: make(map[types.SessionID]*model.Session),
		papers:   make(map[types.SessionID][]*model.SessionPaper),
	}
}

func copySession(s *model.Session) *model.Session {
	copied := *s
	return &copied
}

func copySessionPaper(p *model.SessionPaper) *model.SessionPaper {
	copied := *p
	return &copied
}

func notFoundErr(id types.SessionID) error {
	return goerr.Wrap(types.ErrSessionNotFound, "session not stored", goerr.V(types.SessionIDKey, id))
}

// getOwned returns the stored session only when it exists and belongs to
// the user. Callers must hold the lock.
func (r *sessionRepository) getOwned(id types.SessionID, userID types.UserID) (*model.Session, error) {
	session, exists := r.sessions[id]
	if !exists || session.UserID != userID {
		return nil, notFoundErr(id)
	}
	return session, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session, papers []*model.SessionPaper) error {
	if err := session.ID.Validate(); err != nil {
		return err
	}
	if err := session.UserID.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = copySession(session)

	rows := make([]*model.SessionPaper, 0, len(papers))
	for _, p := range papers {
		rows = append(rows, copySessionPaper(p))
	}
	r.papers[session.ID] = rows

	return nil
}

func (r *sessionRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Session, 0)
	for _, s := range r.sessions {
		if s.UserID == userID {
			result = append(result, copySession(s))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].LastAccessedAt.After(result[j].LastAccessedAt)
	})

	return result, nil
}

func (r *sessionRepository) GetAndTouch(ctx context.Context, id types.SessionID, userID types.UserID) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.getOwned(id, userID)
	if err != nil {
		return nil, err
	}

	session.LastAccessedAt = time.Now().UTC()
	return copySession(session), nil
}

func (r *sessionRepository) ListPapers(ctx context.Context, id types.SessionID) ([]*model.SessionPaper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, exists := r.papers[id]
	if !exists {
		return nil, notFoundErr(id)
	}

	result := make([]*model.SessionPaper, 0, len(rows))
	for _, p := range rows {
		result = append(result, copySessionPaper(p))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})

	return result, nil
}

func (r *sessionRepository) UpdateTitle(ctx context.Context, id types.SessionID, userID types.UserID, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.getOwned(id, userID)
	if err != nil {
		return err
	}

	session.Title = title
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id types.SessionID, userID types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.getOwned(id, userID); err != nil {
		return err
	}

	delete(r.sessions, id)
	delete(r.papers, id)
	return nil
}
