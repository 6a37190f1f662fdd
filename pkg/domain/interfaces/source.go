package interfaces

import (
	"context"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
)

// PaperSource fetches paper metadata from the upstream catalog
type PaperSource interface {
	// Fetch retrieves metadata for a single paper. Returns
	// ErrPaperNotFound when the catalog has no entry for the ID.
	Fetch(ctx context.Context, id types.PaperID) (*model.Paper, error)

	// FetchBatch retrieves metadata for multiple papers in one request.
	// IDs the catalog does not know are absent from the result.
	FetchBatch(ctx context.Context, ids []types.PaperID) (map[types.PaperID]*model.Paper, error)

	// Search runs a free-text query against the catalog
	Search(ctx context.Context, query string, maxResults int) ([]*model.Paper, error)
}

// Embedder converts texts into fixed-dimension vectors
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
