package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/litmap/litmap/pkg/utils/errutil"
	"github.com/litmap/litmap/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

type paperNode struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	URL       string   `json:"url"`
	Published string   `json:"published,omitempty"`
	Authors   []string `json:"authors,omitempty"`
	IsRoot    bool     `json:"is_root"`
}

type linkEdge struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Similarity float64 `json:"similarity"`
}

type graphResponse struct {
	RootID      string      `json:"root_id"`
	Nodes       []paperNode `json:"nodes"`
	Links       []linkEdge  `json:"links"`
	PartialData bool        `json:"partial_data"`
	Error       string      `json:"error,omitempty"`
}

type sessionResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	SeedID         string    `json:"seed_id"`
	Mode           string    `json:"mode"`
	PartialData    bool      `json:"partial_data"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

type sessionDetailResponse struct {
	sessionResponse
	Graph graphResponse `json:"graph"`
}

func toGraphResponse(g *model.Graph) graphResponse {
	resp := graphResponse{
		RootID:      g.SeedID.String(),
		Nodes:       make([]paperNode, 0, len(g.Nodes)),
		Links:       make([]linkEdge, 0, len(g.Links)),
		PartialData: g.PartialData,
		Error:       g.DiscoveryError,
	}

	for _, n := range g.Nodes {
		resp.Nodes = append(resp.Nodes, paperNode{
			ID:        n.ID.String(),
			Title:     n.Title,
			Summary:   n.Summary,
			URL:       n.URL,
			Published: n.Published,
			Authors:   n.Authors,
			IsRoot:    n.IsRoot,
		})
	}
	for _, l := range g.Links {
		resp.Links = append(resp.Links, linkEdge{
			Source:     l.Source.String(),
			Target:     l.Target.String(),
			Similarity: l.Similarity,
		})
	}

	return resp
}

func toSessionResponse(s *model.Session) sessionResponse {
	return sessionResponse{
		ID:             s.ID.String(),
		Title:          s.Title,
		SeedID:         s.SeedID.String(),
		Mode:           s.Mode.String(),
		PartialData:    s.PartialData,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(r.Context(), w, data)
}

// handleError maps domain errors to response status codes. Sessions of
// other users are reported as missing rather than forbidden.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusFromError(err))
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidPaperLink),
		errors.Is(err, types.ErrInvalidMode),
		errors.Is(err, types.ErrInvalidSessionID),
		errors.Is(err, types.ErrInvalidUserID):
		return http.StatusUnprocessableEntity

	case errors.Is(err, types.ErrPaperNotFound),
		errors.Is(err, types.ErrSessionNotFound):
		return http.StatusNotFound

	case errors.Is(err, types.ErrSeedFetchFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
