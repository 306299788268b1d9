package scholars

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authorJSON = `{
	"id": "https://openalex.org/A5023888391",
	"display_name": "Geoffrey Hinton",
	"orcid": "https://orcid.org/0000-0001-2345-6789",
	"works_count": 400,
	"cited_by_count": 500000,
	"summary_stats": {"2yr_mean_citedness": 12.5, "h_index": 150, "i10_index": 300},
	"last_known_institutions": [{"display_name": "University of Toronto"}],
	"counts_by_year": [{"year": 2024, "works_count": 5, "cited_by_count": 40000}]
}`

const worksJSON = `{"results": [
	{"id": "https://openalex.org/W1", "title": "Deep learning", "publication_year": 2015, "publication_date": "2015-05-28", "cited_by_count": 70000, "doi": "https://doi.org/10.1038/nature14539"},
	{"id": "https://openalex.org/W2", "display_name": "Untitled fallback", "publication_year": 2012}
]}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), srv.URL, 5*time.Second)
}

func TestClient_Search(t *testing.T) {
	var gotFilter, gotPerPage string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authors", r.URL.Path)
		gotFilter = r.URL.Query().Get("filter")
		gotPerPage = r.URL.Query().Get("per_page")
		_, _ = io.WriteString(w, `{"results": [`+authorJSON+`, {"id": "https://openalex.org/A2", "display_name": "Other", "last_known_institution": {"display_name": "MIT"}}]}`)
	}))

	result, err := client.Search(context.Background(), "neural networks")
	require.NoError(t, err)

	assert.Equal(t, "display_name.search:neural networks", gotFilter)
	assert.Equal(t, "10", gotPerPage)

	require.Len(t, result, 2)
	assert.Equal(t, "A5023888391", result[0].ID)
	assert.Equal(t, "Geoffrey Hinton", result[0].DisplayName)
	assert.Equal(t, "University of Toronto", result[0].Institution)
	assert.Equal(t, 500000, result[0].CitedByCount)
	assert.Equal(t, "MIT", result[1].Institution)
}

func TestClient_Search_Empty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results": []}`)
	}))

	result, err := client.Search(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestClient_Profile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /authors/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "A5023888391", r.PathValue("id"))
		_, _ = io.WriteString(w, authorJSON)
	})
	mux.HandleFunc("GET /works", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "author.id:A5023888391", q.Get("filter"))
		assert.Equal(t, "5", q.Get("per_page"))
		assert.Equal(t, "publication_date:desc", q.Get("sort"))
		_, _ = io.WriteString(w, worksJSON)
	})
	client := newTestClient(t, mux)

	profile, err := client.Profile(context.Background(), "https://openalex.org/A5023888391")
	require.NoError(t, err)

	assert.Equal(t, "A5023888391", profile.ID)
	assert.Equal(t, 150, profile.SummaryStats.HIndex)
	assert.InDelta(t, 12.5, profile.SummaryStats.TwoYearMeanCitedness, 0.001)
	require.Len(t, profile.CountsByYear, 1)
	assert.Equal(t, 2024, profile.CountsByYear[0].Year)

	require.Len(t, profile.Works, 2)
	assert.Equal(t, "W1", profile.Works[0].ID)
	assert.Equal(t, "Deep learning", profile.Works[0].Title)
	assert.Equal(t, "Untitled fallback", profile.Works[1].Title)
}

func TestClient_Profile_PartialFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /authors/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, authorJSON)
	})
	mux.HandleFunc("GET /works", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	})
	client := newTestClient(t, mux)

	_, err := client.Profile(context.Background(), "A5023888391")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestClient_UpstreamErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		_, err := client.Search(context.Background(), "x")
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	})

	t.Run("bad json", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "<html>")
		}))
		_, err := client.Search(context.Background(), "x")
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), srv.URL, time.Second)

		_, err := client.Search(context.Background(), "x")
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	})
}

func TestClient_CancelledContext(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, `{"results": []}`)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Search(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestClient_CancelledMidRequest(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(started) })
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Profile(ctx, "A1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
