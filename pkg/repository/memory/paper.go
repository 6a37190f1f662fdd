package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type paperRepository struct {
	mu     sync.RWMutex
	papers map[types.PaperID]*model.StoredPaper
}

func newPaperRepository() *paperRepository {
	return &paperRepository{
		papers: make(map[types.PaperID]*model.StoredPaper),
	}
}

// copyPaper creates a deep copy of a stored paper
func copyPaper(p *model.StoredPaper) *model.StoredPaper {
	copied := &model.StoredPaper{
		Paper:     p.Paper,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	if p.Authors != nil {
		copied.Authors = make([]string, len(p.Authors))
		copy(copied.Authors, p.Authors)
	}
	if p.Embedding != nil {
		copied.Embedding = make([]float32, len(p.Embedding))
		copy(copied.Embedding, p.Embedding)
	}

	return copied
}

func (r *paperRepository) Upsert(ctx context.Context, paper *model.StoredPaper) error {
	if err := paper.ID.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := copyPaper(paper)
	stored.UpdatedAt = now
	if existing, ok := r.papers[paper.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}

	r.papers[paper.ID] = stored
	return nil
}

func (r *paperRepository) Get(ctx context.Context, id types.PaperID) (*model.StoredPaper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	paper, exists := r.papers[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrPaperNotFound, "paper not stored", goerr.V(types.PaperIDKey, id))
	}

	return copyPaper(paper), nil
}

func (r *paperRepository) BatchGet(ctx context.Context, ids []types.PaperID) (map[types.PaperID]*model.StoredPaper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[types.PaperID]*model.StoredPaper, len(ids))
	for _, id := range ids {
		if paper, exists := r.papers[id]; exists {
			result[id] = copyPaper(paper)
		}
	}

	return result, nil
}

func (r *paperRepository) FindByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*model.StoredPaper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		paper *model.StoredPaper
		score float64
	}

	var candidates []scored
	for _, p := range r.papers {
		if !p.HasEmbedding() {
			continue
		}
		s := paperCosineSimilarity(embedding, p.Embedding)
		candidates = append(candidates, scored{paper: copyPaper(p), score: s})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}

	result := make([]*model.StoredPaper, limit)
	for i := 0; i < limit; i++ {
		result[i] = candidates[i].paper
	}

	return result, nil
}

func paperCosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
