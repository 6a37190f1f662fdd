package model

import (
	"strings"
	"time"

	"github.com/litmap/litmap/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector
// Gemini text-embedding-004 uses 768 dimensions
const EmbeddingDimension = 768

// Paper is a graph node holding the display metadata of an arXiv paper
type Paper struct {
	ID        types.PaperID
	Title     string
	Summary   string
	URL       string
	Published string // Publication date as reported by the source, may be empty
	Authors   []string
	IsRoot    bool // True only for the seed paper of a graph
}

// NewPaper builds a Paper from raw source metadata, normalizing whitespace
// and filling fallbacks for missing fields
func NewPaper(id types.PaperID, title, summary, url, published string, authors []string) *Paper {
	title = normalizeText(title)
	if title == "" {
		title = "(no title)"
	}
	if url == "" {
		url = id.URL()
	}

	return &Paper{
		ID:        id,
		Title:     title,
		Summary:   normalizeText(summary),
		URL:       url,
		Published: published,
		Authors:   authors,
	}
}

// EmbeddingText returns the text used to embed the paper. Falls back to the
// title when no summary is available so every paper has a nonzero input.
func (x *Paper) EmbeddingText() string {
	if x.Summary != "" {
		return x.Summary
	}
	return x.Title
}

// StoredPaper is the persisted form of a Paper with its embedding vector
type StoredPaper struct {
	Paper
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasEmbedding reports whether the stored paper carries a usable vector
func (x *StoredPaper) HasEmbedding() bool {
	return len(x.Embedding) > 0
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
