package interfaces

import (
	"context"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
)

// PaperRepository defines the interface for Paper data persistence.
// Papers are stored globally, keyed by canonical ID, and shared across
// sessions of all users.
type PaperRepository interface {
	// Upsert inserts the paper or updates an existing record. The original
	// creation timestamp is preserved on update.
	Upsert(ctx context.Context, paper *model.StoredPaper) error

	// Get retrieves a single paper by ID. Returns ErrPaperNotFound when
	// no record exists.
	Get(ctx context.Context, id types.PaperID) (*model.StoredPaper, error)

	// BatchGet retrieves the papers that exist among the given IDs.
	// Missing IDs are simply absent from the result, not an error.
	BatchGet(ctx context.Context, ids []types.PaperID) (map[types.PaperID]*model.StoredPaper, error)

	// FindByEmbedding returns the stored papers nearest to the given
	// embedding by cosine distance, best first. Papers without an
	// embedding never match.
	FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.StoredPaper, error)
}
