package embedding

import (
	"context"

	"github.com/litmap/litmap/pkg/domain/interfaces"
	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"golang.org/x/sync/errgroup"
)

// maxBatchSize limits texts per embedding request to stay under provider
// payload limits
const maxBatchSize = 32

// maxConcurrentBatches limits parallel embedding requests
const maxConcurrentBatches = 4

// Client generates paper embeddings through an LLM provider
type Client struct {
	llmClient gollem.LLMClient
	dimension int
}

var _ interfaces.Embedder = &Client{}

// Option configures a Client
type Option func(*Client)

// WithDimension overrides the embedding dimension
func WithDimension(d int) Option {
	return func(c *Client) {
		c.dimension = d
	}
}

// New creates a new embedding client
func New(llmClient gollem.LLMClient, opts ...Option) (*Client, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	c := &Client{
		llmClient: llmClient,
		dimension: model.EmbeddingDimension,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// EmbedBatch converts texts into vectors, preserving input order. Large
// inputs are chunked into parallel provider calls; each chunk writes into
// its own slice range so no further ordering work is needed.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	result := make([][]float32, len(texts))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentBatches)

	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		eg.Go(func() error {
			embeddings, err := c.llmClient.GenerateEmbedding(ctx, c.dimension, texts[start:end])
			if err != nil {
				return goerr.Wrap(err, "failed to generate embeddings",
					goerr.V("count", end-start))
			}
			if len(embeddings) != end-start {
				return goerr.New("embedding count mismatch",
					goerr.V("expected", end-start),
					goerr.V("actual", len(embeddings)))
			}

			for i, emb := range embeddings {
				vec := make([]float32, len(emb))
				for j, v := range emb {
					vec[j] = float32(v)
				}
				result[start+i] = vec
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}
