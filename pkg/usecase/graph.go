package usecase

import (
	"context"
	"errors"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/litmap/litmap/pkg/service/discovery"
	"github.com/litmap/litmap/pkg/service/graph"
	"github.com/litmap/litmap/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// GraphUseCase builds related-paper graphs from a seed paper
type GraphUseCase struct {
	uc *UseCases
}

func newGraphUseCase(uc *UseCases) *GraphUseCase {
	return &GraphUseCase{uc: uc}
}

// Build constructs a related-paper graph for the given raw link. A
// discovery provider failure degrades to a seed-only graph with the
// failure recorded; an embedding failure degrades to isolated nodes. A
// store write failure aborts the build.
func (g *GraphUseCase) Build(ctx context.Context, rawLink string, mode types.DiscoveryMode) (*model.Graph, error) {
	seedID := types.CanonicalPaperID(rawLink)
	if err := seedID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "cannot derive paper ID from link", goerr.V("link", rawLink))
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	strategy, ok := g.uc.strategies[mode.String()]
	if !ok {
		return nil, goerr.New("no strategy registered for mode", goerr.V(types.ModeKey, mode))
	}

	seed, err := g.fetchSeed(ctx, seedID)
	if err != nil {
		return nil, err
	}

	result := &model.Graph{SeedID: seedID}

	candidates, err := strategy.Discover(ctx, seed)
	if err != nil {
		result.PartialData = true
		result.DiscoveryError = discovery.Classify(err)
		logging.From(ctx).Warn("discovery failed, building partial graph",
			"seed", seedID,
			"mode", mode,
			"error", err)
	}

	result.Nodes = g.assembleNodes(ctx, seed, candidates)

	embeddings := g.embedNodes(ctx, result.Nodes)

	if err := g.storeNodes(ctx, result.Nodes, embeddings); err != nil {
		return nil, err
	}

	result.Links = graph.BuildLinks(result.Nodes, embeddings)

	return result, nil
}

// fetchSeed loads the seed's metadata from the catalog. Unknown IDs keep
// their not-found identity; any other failure is a provider error.
func (g *GraphUseCase) fetchSeed(ctx context.Context, id types.PaperID) (*model.Paper, error) {
	seed, err := g.uc.source.Fetch(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrPaperNotFound) {
			return nil, err
		}
		return nil, goerr.Wrap(types.ErrSeedFetchFailed, "catalog lookup failed",
			goerr.V(types.PaperIDKey, id), goerr.V("cause", err.Error()))
	}

	seed.IsRoot = true
	return seed, nil
}

// assembleNodes builds the node list: seed first, then candidates in
// discovery order enriched with catalog metadata. Candidates the catalog
// cannot enrich keep their provisional title.
func (g *GraphUseCase) assembleNodes(ctx context.Context, seed *model.Paper, candidates []discovery.Candidate) []*model.Paper {
	nodes := []*model.Paper{seed}
	if len(candidates) == 0 {
		return nodes
	}

	ids := make([]types.PaperID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}

	metadata, err := g.uc.source.FetchBatch(ctx, ids)
	if err != nil {
		logging.From(ctx).Warn("metadata enrichment failed, keeping provisional titles",
			"candidates", len(candidates),
			"error", err)
		metadata = nil
	}

	seen := map[types.PaperID]bool{seed.ID: true}
	for _, c := range candidates {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true

		if paper, ok := metadata[c.ID]; ok {
			nodes = append(nodes, paper)
			continue
		}
		nodes = append(nodes, model.NewPaper(c.ID, c.Title, "", "", "", nil))
	}

	return nodes
}

// embedNodes generates embeddings for all nodes. Failure leaves every
// node unembedded so the graph degrades to isolated nodes.
func (g *GraphUseCase) embedNodes(ctx context.Context, nodes []*model.Paper) map[types.PaperID][]float32 {
	if g.uc.embedder == nil {
		return nil
	}

	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		texts = append(texts, n.EmbeddingText())
	}

	vectors, err := g.uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logging.From(ctx).Warn("embedding failed, returning isolated nodes",
			"nodes", len(nodes),
			"error", err)
		return nil
	}

	embeddings := make(map[types.PaperID][]float32, len(nodes))
	for i, n := range nodes {
		if i < len(vectors) && len(vectors[i]) > 0 {
			embeddings[n.ID] = vectors[i]
		}
	}

	return embeddings
}

// storeNodes upserts every node into the shared paper store
func (g *GraphUseCase) storeNodes(ctx context.Context, nodes []*model.Paper, embeddings map[types.PaperID][]float32) error {
	for _, n := range nodes {
		stored := &model.StoredPaper{
			Paper:     *n,
			Embedding: embeddings[n.ID],
		}
		if err := g.uc.repo.Paper().Upsert(ctx, stored); err != nil {
			return goerr.Wrap(err, "failed to store paper", goerr.V(types.PaperIDKey, n.ID))
		}
	}
	return nil
}
