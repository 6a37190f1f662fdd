package memory

import (
	"github.com/litmap/litmap/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = goerr.New("record not found")

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-memory Repository implementation for local development
// and tests. All data is lost on process exit.
type Memory struct {
	paper   *paperRepository
	session *sessionRepository
	tokens  *tokenStore
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		paper:   newPaperRepository(),
		session: newSessionRepository(),
		tokens:  newTokenStore(),
	}
}

func (m *Memory) Paper() interfaces.PaperRepository {
	return m.paper
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Memory) Close() error {
	return nil
}
