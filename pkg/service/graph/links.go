package graph

import (
	"math"
	"sort"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
)

// NeighborCount is how many nearest neighbors each node links to
const NeighborCount = 3

// CosineSimilarity computes the cosine similarity of two vectors. Returns
// 0 when the vectors differ in length or either has zero norm.
func CosineSimilarity(a, b []float32) float64 {
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

type neighbor struct {
	index      int
	similarity float64
}

// BuildLinks connects each embedded node to its nearest neighbors by
// cosine similarity. Sorting is stable so equal similarities keep input
// order, and each undirected pair appears at most once. Nodes without an
// embedding stay isolated.
func BuildLinks(nodes []*model.Paper, embeddings map[types.PaperID][]float32) []model.Link {
	type pairKey struct {
		a, b types.PaperID
	}

	links := make([]model.Link, 0)
	seen := make(map[pairKey]bool)

	for i, source := range nodes {
		sourceVec, ok := embeddings[source.ID]
		if !ok {
			continue
		}

		neighbors := make([]neighbor, 0, len(nodes))
		for j, target := range nodes {
			if i == j {
				continue
			}
			targetVec, ok := embeddings[target.ID]
			if !ok {
				continue
			}
			neighbors = append(neighbors, neighbor{
				index:      j,
				similarity: CosineSimilarity(sourceVec, targetVec),
			})
		}

		sort.SliceStable(neighbors, func(a, b int) bool {
			return neighbors[a].similarity > neighbors[b].similarity
		})

		for k := 0; k < len(neighbors) && k < NeighborCount; k++ {
			n := neighbors[k]
			target := nodes[n.index]

			key := pairKey{a: source.ID, b: target.ID}
			if key.a > key.b {
				key.a, key.b = key.b, key.a
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			links = append(links, model.Link{
				Source:     source.ID,
				Target:     target.ID,
				Similarity: math.Round(n.similarity*10000) / 10000,
			})
		}
	}

	return links
}
