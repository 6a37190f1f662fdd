package http

import (
	"net/http"
	"strconv"

	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/litmap/litmap/pkg/usecase"
	"github.com/litmap/litmap/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

// graphHandler builds a related-paper graph without persisting a session
func graphHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		link := r.URL.Query().Get("link")
		mode := types.DiscoveryMode(r.URL.Query().Get("mode"))
		if mode == "" {
			mode = types.ModeGrounding
		}

		g, err := uc.Graph.Build(r.Context(), link, mode)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, toGraphResponse(g))
	}
}

// graphSearchHandler runs a semantic search over all stored papers
func graphSearchHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			errutil.HandleHTTP(r.Context(), w, goerr.New("query parameter 'q' is required"), http.StatusUnprocessableEntity)
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "limit must be an integer"), http.StatusUnprocessableEntity)
				return
			}
			limit = n
		}

		papers, err := uc.Paper.SemanticSearch(r.Context(), query, limit)
		if err != nil {
			handleError(w, r, err)
			return
		}

		results := make([]paperNode, 0, len(papers))
		for _, p := range papers {
			results = append(results, paperNode{
				ID:        p.ID.String(),
				Title:     p.Title,
				Summary:   p.Summary,
				URL:       p.URL,
				Published: p.Published,
				Authors:   p.Authors,
			})
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"papers": results})
	}
}

// paperSearchHandler runs a keyword search against the catalog
func paperSearchHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")
		if query == "" {
			errutil.HandleHTTP(r.Context(), w, goerr.New("query parameter 'q' is required"), http.StatusUnprocessableEntity)
			return
		}

		maxResults := 0
		if raw := r.URL.Query().Get("max_results"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "max_results must be an integer"), http.StatusUnprocessableEntity)
				return
			}
			maxResults = n
		}

		papers, err := uc.Paper.Search(r.Context(), query, maxResults)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusBadGateway)
			return
		}

		results := make([]paperNode, 0, len(papers))
		for _, p := range papers {
			results = append(results, paperNode{
				ID:        p.ID.String(),
				Title:     p.Title,
				Summary:   p.Summary,
				URL:       p.URL,
				Published: p.Published,
				Authors:   p.Authors,
			})
		}

		writeJSON(w, r, http.StatusOK, map[string]any{"papers": results})
	}
}
