package discovery

import (
	"context"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
)

// Candidate is one related paper proposed by a strategy. Metadata beyond
// the ID and a provisional title is filled in later from the catalog.
type Candidate struct {
	ID    types.PaperID
	Title string
}

// Strategy finds papers related to a seed paper. An error means the
// provider failed entirely; the returned message is surfaced to the user
// alongside a seed-only graph.
type Strategy interface {
	Mode() types.DiscoveryMode
	Discover(ctx context.Context, seed *model.Paper) ([]Candidate, error)
}
