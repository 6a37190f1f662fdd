package discovery

import (
	"context"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/litmap/litmap/pkg/service/scholar"
	"github.com/litmap/litmap/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// maxReferences caps how many references become graph candidates
const maxReferences = 15

// ReferenceClient is the citation-graph lookup used by the references
// strategy
type ReferenceClient interface {
	References(ctx context.Context, id types.PaperID) ([]scholar.Reference, error)
}

// References discovers related papers through the seed's reference list
type References struct {
	client ReferenceClient
}

var _ Strategy = &References{}

// NewReferences creates a citation-based discovery strategy
func NewReferences(client ReferenceClient) (*References, error) {
	if client == nil {
		return nil, goerr.New("reference client is required")
	}
	return &References{client: client}, nil
}

func (r *References) Mode() types.DiscoveryMode {
	return types.ModeReferences
}

func (r *References) Discover(ctx context.Context, seed *model.Paper) ([]Candidate, error) {
	refs, err := r.client.References(ctx, seed.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch references",
			goerr.V(types.PaperIDKey, seed.ID))
	}

	seen := map[types.PaperID]bool{seed.ID: true}
	candidates := make([]Candidate, 0, len(refs))
	for _, ref := range refs {
		if ref.ArxivID == "" || seen[ref.ArxivID] {
			continue
		}
		seen[ref.ArxivID] = true
		candidates = append(candidates, Candidate{ID: ref.ArxivID, Title: ref.Title})

		if len(candidates) >= maxReferences {
			break
		}
	}

	logging.From(ctx).Debug("reference discovery finished",
		"seed", seed.ID,
		"references", len(refs),
		"candidates", len(candidates))

	return candidates, nil
}
