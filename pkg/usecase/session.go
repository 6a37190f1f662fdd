package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/litmap/litmap/pkg/service/graph"
	"github.com/m-mizutani/goerr/v2"
)

// SessionUseCase manages saved graph explorations
type SessionUseCase struct {
	uc *UseCases
}

func newSessionUseCase(uc *UseCases) *SessionUseCase {
	return &SessionUseCase{uc: uc}
}

// Create builds a graph for the link and persists it as a session. The
// session title defaults to the seed paper's title.
func (s *SessionUseCase) Create(ctx context.Context, userID types.UserID, rawLink string, mode types.DiscoveryMode, title string) (*model.Session, *model.Graph, error) {
	if err := userID.Validate(); err != nil {
		return nil, nil, err
	}

	built, err := s.uc.Graph.Build(ctx, rawLink, mode)
	if err != nil {
		return nil, nil, err
	}

	if strings.TrimSpace(title) == "" {
		if seed := built.Seed(); seed != nil {
			title = seed.Title
		}
	}

	session := model.NewSession(userID, title, built, mode)

	now := time.Now().UTC()
	rows := make([]*model.SessionPaper, 0, len(built.Nodes))
	for i, node := range built.Nodes {
		rows = append(rows, &model.SessionPaper{
			SessionID: session.ID,
			PaperID:   node.ID,
			Position:  i,
			IsSeed:    node.IsRoot,
			AddedAt:   now,
		})
	}

	if err := s.uc.repo.Session().Create(ctx, session, rows); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to persist session",
			goerr.V(types.SessionIDKey, session.ID))
	}

	return session, built, nil
}

// List returns the user's sessions, most recently accessed first
func (s *SessionUseCase) List(ctx context.Context, userID types.UserID) ([]*model.Session, error) {
	if err := userID.Validate(); err != nil {
		return nil, err
	}
	return s.uc.repo.Session().ListByUser(ctx, userID)
}

// Get loads a session and rebuilds its graph from stored data. No
// discovery or embedding calls happen here; links are recomputed from the
// stored vectors. Accessing a session bumps its last-accessed timestamp.
func (s *SessionUseCase) Get(ctx context.Context, id types.SessionID, userID types.UserID) (*model.Session, *model.Graph, error) {
	if err := id.Validate(); err != nil {
		return nil, nil, err
	}
	if err := userID.Validate(); err != nil {
		return nil, nil, err
	}

	session, err := s.uc.repo.Session().GetAndTouch(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.uc.repo.Session().ListPapers(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]types.PaperID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PaperID)
	}

	stored, err := s.uc.repo.Paper().BatchGet(ctx, ids)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load session papers",
			goerr.V(types.SessionIDKey, id))
	}

	// Rows are already in build-time position order. Papers missing from
	// the store are skipped rather than failing the whole session.
	nodes := make([]*model.Paper, 0, len(rows))
	embeddings := make(map[types.PaperID][]float32, len(rows))
	for _, row := range rows {
		paper, ok := stored[row.PaperID]
		if !ok {
			continue
		}

		node := paper.Paper
		node.IsRoot = row.IsSeed
		nodes = append(nodes, &node)

		if paper.HasEmbedding() {
			embeddings[node.ID] = paper.Embedding
		}
	}

	result := &model.Graph{
		SeedID:         session.SeedID,
		Nodes:          nodes,
		Links:          graph.BuildLinks(nodes, embeddings),
		PartialData:    session.PartialData,
		DiscoveryError: session.DiscoveryError,
	}

	return session, result, nil
}

// Rename updates the session title
func (s *SessionUseCase) Rename(ctx context.Context, id types.SessionID, userID types.UserID, title string) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if err := userID.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" {
		return goerr.New("session title is required", goerr.V(types.SessionIDKey, id))
	}

	return s.uc.repo.Session().UpdateTitle(ctx, id, userID, strings.TrimSpace(title))
}

// Delete removes a session. Papers referenced by the session stay in the
// shared store.
func (s *SessionUseCase) Delete(ctx context.Context, id types.SessionID, userID types.UserID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if err := userID.Validate(); err != nil {
		return err
	}

	return s.uc.repo.Session().Delete(ctx, id, userID)
}
