package usecase

import (
	"context"
	"strings"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// maxSearchResults caps keyword search result counts
const maxSearchResults = 50

// PaperUseCase serves direct catalog lookups that do not build a graph
type PaperUseCase struct {
	uc *UseCases
}

func newPaperUseCase(uc *UseCases) *PaperUseCase {
	return &PaperUseCase{uc: uc}
}

// Search runs a keyword query against the catalog
func (p *PaperUseCase) Search(ctx context.Context, query string, maxResults int) ([]*model.Paper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.New("search query is required")
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	if maxResults > maxSearchResults {
		maxResults = maxSearchResults
	}

	return p.uc.source.Search(ctx, strings.TrimSpace(query), maxResults)
}

// SemanticSearch embeds the query and returns the nearest stored papers
// by cosine distance, best first.
func (p *PaperUseCase) SemanticSearch(ctx context.Context, query string, limit int) ([]*model.StoredPaper, error) {
	if strings.TrimSpace(query) == "" {
		return nil, goerr.New("search query is required")
	}
	if p.uc.embedder == nil {
		return nil, goerr.New("embedding provider is not configured")
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > maxSearchResults {
		limit = maxSearchResults
	}

	embeddings, err := p.uc.embedder.EmbedBatch(ctx, []string{strings.TrimSpace(query)})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed search query")
	}
	if len(embeddings) != 1 || len(embeddings[0]) == 0 {
		return nil, goerr.New("embedding provider returned no vector for the query")
	}

	papers, err := p.uc.repo.Paper().FindByEmbedding(ctx, embeddings[0], limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search stored papers")
	}

	return papers, nil
}
