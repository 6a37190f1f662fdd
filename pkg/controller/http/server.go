package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/litmap/litmap/pkg/domain/model/auth"
	"github.com/litmap/litmap/pkg/usecase"
	"github.com/litmap/litmap/pkg/utils/logging"
	"github.com/litmap/litmap/pkg/utils/safe"
)

// AuthUseCase is the authentication surface the server needs
type AuthUseCase interface {
	IsNoAuthn() bool
	ValidateToken(ctx context.Context, tokenID auth.TokenID, tokenSecret auth.TokenSecret) (*auth.Token, error)
	ValidateJWT(ctx context.Context, raw string) (*auth.Token, error)
}

type Server struct {
	router  *chi.Mux
	authUC  AuthUseCase
	origins []string
}

type Options func(*Server)

// WithAuth enables token validation on /api routes
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithAllowedOrigins sets the origins permitted for cross-origin requests
func WithAllowedOrigins(origins []string) Options {
	return func(s *Server) {
		s.origins = origins
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.origins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", healthzHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))

		r.Get("/graph", graphHandler(uc))
		r.Get("/graph/search", graphSearchHandler(uc))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionCreateHandler(uc))
			r.Get("/", sessionListHandler(uc))
			r.Get("/{id}", sessionGetHandler(uc))
			r.Patch("/{id}", sessionRenameHandler(uc))
			r.Delete("/{id}", sessionDeleteHandler(uc))
		})

		r.Get("/papers/search", paperSearchHandler(uc))
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, []byte(`{"status":"ok"}`))
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
