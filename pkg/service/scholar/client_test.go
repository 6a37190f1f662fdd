package scholar_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/litmap/litmap/pkg/domain/types"
	"github.com/litmap/litmap/pkg/service/scholar"
	"github.com/m-mizutani/gt"
)

const referencesBody = `{
  "paperId": "204e3073870fae3d05bcbc2f6a8e263d9b72e776",
  "references": [
    {
      "title": "Neural Machine Translation by Jointly Learning to Align and Translate",
      "url": "https://www.semanticscholar.org/paper/abc",
      "externalIds": {"ArXiv": "1409.0473", "CorpusId": 11212020}
    },
    {
      "title": "A paper without an arXiv ID",
      "url": "https://www.semanticscholar.org/paper/def",
      "externalIds": {"DOI": "10.1000/x", "CorpusId": 42}
    },
    {
      "title": "Versioned reference",
      "url": null,
      "externalIds": {"ArXiv": "1810.04805v2"}
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *scholar.Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return scholar.New(
		scholar.WithBaseURL(srv.URL),
		scholar.WithRateLimit(1000),
	)
}

func TestReferences(t *testing.T) {
	t.Run("keeps only arXiv references", func(t *testing.T) {
		var gotPath string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(referencesBody))
		})

		refs, err := client.References(t.Context(), "1706.03762")
		gt.NoError(t, err).Required()
		gt.Value(t, gotPath).Equal("/paper/ArXiv:1706.03762")
		gt.Array(t, refs).Length(2)
		gt.Value(t, refs[0].ArxivID).Equal(types.PaperID("1409.0473"))
		gt.Value(t, refs[1].ArxivID).Equal(types.PaperID("1810.04805"))
	})

	t.Run("not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.References(t.Context(), "1706.03762")
		gt.Error(t, err).Is(scholar.ErrNotFound)
	})

	t.Run("rate limited with Retry-After", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.References(t.Context(), "1706.03762")
		gt.Error(t, err).Is(scholar.ErrRateLimited)
		gt.Bool(t, scholar.IsRateLimited(err)).True()
		gt.Value(t, scholar.RetryAfter(err)).Equal("30")
	})

	t.Run("server error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.References(t.Context(), "1706.03762")
		gt.Error(t, err).Is(scholar.ErrAPIError)
	})

	t.Run("empty ID is rejected without a request", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		})

		_, err := client.References(t.Context(), "")
		gt.Error(t, err).Is(types.ErrInvalidPaperLink)
	})
}
