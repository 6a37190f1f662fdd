package usecase

import (
	"github.com/litmap/litmap/pkg/domain/interfaces"
	"github.com/litmap/litmap/pkg/service/discovery"
)

type UseCases struct {
	repo       interfaces.Repository
	source     interfaces.PaperSource
	embedder   interfaces.Embedder
	strategies map[string]discovery.Strategy

	Graph   *GraphUseCase
	Session *SessionUseCase
	Paper   *PaperUseCase
	Auth    *AuthUseCase
}

type Option func(*UseCases)

// WithEmbedder sets the embedding provider. Without one, graphs are built
// with isolated nodes only.
func WithEmbedder(embedder interfaces.Embedder) Option {
	return func(uc *UseCases) {
		uc.embedder = embedder
	}
}

// WithStrategy registers a discovery strategy
func WithStrategy(s discovery.Strategy) Option {
	return func(uc *UseCases) {
		uc.strategies[s.Mode().String()] = s
	}
}

func New(repo interfaces.Repository, source interfaces.PaperSource, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		source:     source,
		strategies: make(map[string]discovery.Strategy),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Graph = newGraphUseCase(uc)
	uc.Session = newSessionUseCase(uc)
	uc.Paper = newPaperUseCase(uc)
	uc.Auth = newAuthUseCase(repo)

	return uc
}
