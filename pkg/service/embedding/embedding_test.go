package embedding_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/litmap/litmap/pkg/service/embedding"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
)

type mockLLMClient struct {
	generateEmbeddingFn func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (m *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return nil, nil
}

func (m *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if m.generateEmbeddingFn != nil {
		return m.generateEmbeddingFn(ctx, dimension, input)
	}
	result := make([][]float64, len(input))
	for i := range input {
		result[i] = []float64{0.1, 0.2, 0.3}
	}
	return result, nil
}

func TestEmbedBatch(t *testing.T) {
	t.Run("converts to float32 preserving order", func(t *testing.T) {
		client := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				result := make([][]float64, len(input))
				for i := range input {
					result[i] = []float64{float64(i)}
				}
				return result, nil
			},
		}
		embedder, err := embedding.New(client)
		gt.NoError(t, err).Required()

		vecs, err := embedder.EmbedBatch(t.Context(), []string{"a", "b", "c"})
		gt.NoError(t, err).Required()
		gt.Array(t, vecs).Length(3)
		gt.Value(t, vecs[1][0]).Equal(float32(1))
	})

	t.Run("chunks large batches", func(t *testing.T) {
		var calls int
		client := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				calls++
				result := make([][]float64, len(input))
				for i := range input {
					result[i] = []float64{0.5}
				}
				return result, nil
			},
		}
		embedder, err := embedding.New(client)
		gt.NoError(t, err).Required()

		texts := make([]string, 70)
		for i := range texts {
			texts[i] = fmt.Sprintf("text %d", i)
		}

		vecs, err := embedder.EmbedBatch(t.Context(), texts)
		gt.NoError(t, err).Required()
		gt.Array(t, vecs).Length(70)
		gt.Value(t, calls).Equal(3)
	})

	t.Run("provider failure is propagated", func(t *testing.T) {
		client := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return nil, goerr.New("provider unavailable")
			},
		}
		embedder, err := embedding.New(client)
		gt.NoError(t, err).Required()

		_, err = embedder.EmbedBatch(t.Context(), []string{"a"})
		gt.Error(t, err)
	})

	t.Run("count mismatch is an error", func(t *testing.T) {
		client := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				return [][]float64{{0.1}}, nil
			},
		}
		embedder, err := embedding.New(client)
		gt.NoError(t, err).Required()

		_, err = embedder.EmbedBatch(t.Context(), []string{"a", "b"})
		gt.Error(t, err)
	})

	t.Run("no texts makes no call", func(t *testing.T) {
		client := &mockLLMClient{
			generateEmbeddingFn: func(ctx context.Context, dimension int, input []string) ([][]float64, error) {
				t.Error("unexpected call")
				return nil, nil
			},
		}
		embedder, err := embedding.New(client)
		gt.NoError(t, err).Required()

		vecs, err := embedder.EmbedBatch(t.Context(), nil)
		gt.NoError(t, err)
		gt.Array(t, vecs).Length(0)
	})
}
