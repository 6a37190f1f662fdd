package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	server "github.com/litmap/litmap/pkg/controller/http"
	"github.com/litmap/litmap/pkg/domain/model"
	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/litmap/litmap/pkg/repository/memory"
	"github.com/litmap/litmap/pkg/service/discovery"
	"github.com/litmap/litmap/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

type mockSource struct{}

func (m *mockSource) Fetch(ctx context.Context, id types.PaperID) (*model.Paper, error) {
	if id == "9999.99999" {
		return nil, goerr.Wrap(types.ErrPaperNotFound, "no entry", goerr.V(types.PaperIDKey, id))
	}
	return model.NewPaper(id, "Paper "+id.String(), "Summary of "+id.String(), "", "2020-01-01", nil), nil
}

func (m *mockSource) FetchBatch(ctx context.Context, ids []types.PaperID) (map[types.PaperID]*model.Paper, error) {
	result := make(map[types.PaperID]*model.Paper, len(ids))
	for _, id := range ids {
		result[id] = model.NewPaper(id, "Paper "+id.String(), "Summary of "+id.String(), "", "2020-01-01", nil)
	}
	return result, nil
}

func (m *mockSource) Search(ctx context.Context, query string, maxResults int) ([]*model.Paper, error) {
	return []*model.Paper{
		model.NewPaper("1706.03762", "Attention Is All You Need", "", "", "2017-06-12", nil),
	}, nil
}

type mockStrategy struct{}

func (m *mockStrategy) Mode() types.DiscoveryMode {
	return types.ModeGrounding
}

func (m *mockStrategy) Discover(ctx context.Context, seed *model.Paper) ([]discovery.Candidate, error) {
	return []discovery.Candidate{
		{ID: "1409.0473", Title: "NMT"},
		{ID: "1810.04805", Title: "BERT"},
	}, nil
}

type mockEmbedder struct{}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1, float32(i) * 0.1}
	}
	return result, nil
}

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	uc := usecase.New(memory.New(), &mockSource{},
		usecase.WithEmbedder(&mockEmbedder{}),
		usecase.WithStrategy(&mockStrategy{}),
	)
	// No auth configured: all requests run as the anonymous user
	return server.New(uc)
}

func TestBearerAuth(t *testing.T) {
	secret := []byte("test-signing-secret")

	newAuthedServer := func(t *testing.T) *server.Server {
		t.Helper()
		uc := usecase.New(memory.New(), &mockSource{},
			usecase.WithEmbedder(&mockEmbedder{}),
			usecase.WithStrategy(&mockStrategy{}),
		)
		uc.Auth.SetJWTSecret(secret)
		return server.New(uc, server.WithAuth(uc.Auth))
	}

	signedToken := func(t *testing.T, key []byte) string {
		t.Helper()
		token, err := jwt.NewBuilder().
			Subject("user-1").
			IssuedAt(time.Now()).
			Expiration(time.Now().Add(time.Hour)).
			Build()
		gt.NoError(t, err).Required()
		signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, key))
		gt.NoError(t, err).Required()
		return string(signed)
	}

	t.Run("valid bearer token is accepted", func(t *testing.T) {
		srv := newAuthedServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/sessions/", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, secret))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("missing credentials are rejected", func(t *testing.T) {
		srv := newAuthedServer(t)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/", nil))

		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		srv := newAuthedServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/sessions/", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, []byte("other-secret")))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("non-bearer scheme is rejected", func(t *testing.T) {
		srv := newAuthedServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/sessions/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	gt.Value(t, rec.Code).Equal(http.StatusOK)
}

func TestGraphEndpoint(t *testing.T) {
	t.Run("builds a graph", func(t *testing.T) {
		srv := newTestServer(t)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graph?link=1706.03762&mode=grounding", nil))

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var body struct {
			RootID      string `json:"root_id"`
			Nodes       []any  `json:"nodes"`
			Links       []any  `json:"links"`
			PartialData bool   `json:"partial_data"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Value(t, body.RootID).Equal("1706.03762")
		gt.Array(t, body.Nodes).Length(3)
	})

	t.Run("missing link is unprocessable", func(t *testing.T) {
		srv := newTestServer(t)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graph", nil))

		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	})

	t.Run("invalid mode is unprocessable", func(t *testing.T) {
		srv := newTestServer(t)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graph?link=1706.03762&mode=citations", nil))

		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	})

	t.Run("unknown seed is not found", func(t *testing.T) {
		srv := newTestServer(t)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graph?link=9999.99999", nil))

		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestGraphSearchEndpoint(t *testing.T) {
	t.Run("returns stored papers for a query", func(t *testing.T) {
		srv := newTestServer(t)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graph?link=1706.03762", nil))
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graph/search?q=attention&limit=2", nil))
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var body struct {
			Papers []struct {
				ID string `json:"id"`
			} `json:"papers"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Array(t, body.Papers).Length(2)
		gt.Value(t, body.Papers[0].ID).Equal("1706.03762")
	})

	t.Run("missing query is unprocessable", func(t *testing.T) {
		srv := newTestServer(t)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graph/search", nil))

		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	})

	t.Run("non-integer limit is unprocessable", func(t *testing.T) {
		srv := newTestServer(t)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graph/search?q=attention&limit=lots", nil))

		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	})
}

func TestSessionEndpoints(t *testing.T) {
	createSession := func(t *testing.T, srv *server.Server) string {
		t.Helper()
		payload := bytes.NewBufferString(`{"link": "1706.03762", "mode": "grounding"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/", payload)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusCreated)

		var body struct {
			ID string `json:"id"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Value(t, body.ID).NotEqual("")
		return body.ID
	}

	t.Run("create and get", func(t *testing.T) {
		srv := newTestServer(t)
		id := createSession(t, srv)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var body struct {
			ID    string `json:"id"`
			Title string `json:"title"`
			Graph struct {
				Nodes []any `json:"nodes"`
			} `json:"graph"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Value(t, body.ID).Equal(id)
		gt.Value(t, body.Title).Equal("Paper 1706.03762")
		gt.Array(t, body.Graph.Nodes).Length(3)
	})

	t.Run("list", func(t *testing.T) {
		srv := newTestServer(t)
		createSession(t, srv)
		createSession(t, srv)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/", nil))

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var body struct {
			Sessions []any `json:"sessions"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Array(t, body.Sessions).Length(2)
	})

	t.Run("rename", func(t *testing.T) {
		srv := newTestServer(t)
		id := createSession(t, srv)

		payload := bytes.NewBufferString(`{"title": "Renamed"}`)
		req := httptest.NewRequest(http.MethodPatch, "/api/sessions/"+id, payload)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusNoContent)
	})

	t.Run("rename without title is unprocessable", func(t *testing.T) {
		srv := newTestServer(t)
		id := createSession(t, srv)

		payload := bytes.NewBufferString(`{}`)
		req := httptest.NewRequest(http.MethodPatch, "/api/sessions/"+id, payload)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	})

	t.Run("delete", func(t *testing.T) {
		srv := newTestServer(t)
		id := createSession(t, srv)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+id, nil))
		gt.Value(t, rec.Code).Equal(http.StatusNoContent)

		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id, nil))
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("malformed session ID is unprocessable", func(t *testing.T) {
		srv := newTestServer(t)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/not-a-uuid", nil))
		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	})

	t.Run("unknown session is not found", func(t *testing.T) {
		srv := newTestServer(t)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+types.NewSessionID().String(), nil))
		gt.Value(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestPaperSearchEndpoint(t *testing.T) {
	t.Run("returns catalog matches", func(t *testing.T) {
		srv := newTestServer(t)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/papers/search?q=attention", nil))

		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var body struct {
			Papers []struct {
				ID string `json:"id"`
			} `json:"papers"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Array(t, body.Papers).Length(1)
		gt.Value(t, body.Papers[0].ID).Equal("1706.03762")
	})

	t.Run("missing query is unprocessable", func(t *testing.T) {
		srv := newTestServer(t)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/papers/search", nil))

		gt.Value(t, rec.Code).Equal(http.StatusUnprocessableEntity)
	})
}
