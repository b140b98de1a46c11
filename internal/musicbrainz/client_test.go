package musicbrainz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tferrand/sleeve/internal/catalog"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New()
	c.baseURL = srv.URL
	c.coverArtURL = "https://coverart.test"
	return c, srv
}

func TestSearch_BuildsCoverArtCandidates(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/release", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"releases": [
				{"id": "mbid-1", "title": "Divide",
				 "artist-credit": [{"name": "Ed Sheeran"}]},
				{"id": "mbid-2", "title": "Something Else",
				 "artist-credit": [{"artist": {"name": "Nobody"}}]}
			]
		}`))
	})
	defer srv.Close()

	candidates, err := c.Search(context.Background(), catalog.Query{Artist: "Ed Sheeran", Album: "Divide"})
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "https://coverart.test/release/mbid-1/front-500", candidates[0].URL)
	assert.Equal(t, "https://coverart.test/release/mbid-1/front-250", candidates[0].ThumbURL)
	assert.Equal(t, 1.0, candidates[0].Confidence)
	assert.Equal(t, SourceLabel, candidates[0].Source)

	// Sorted descending
	assert.GreaterOrEqual(t, candidates[0].Confidence, candidates[1].Confidence)
}

func TestSearch_EmptyReleaseListIsNotAnError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"releases": []}`))
	})
	defer srv.Close()

	candidates, err := c.Search(context.Background(), catalog.Query{Artist: "a", Album: "b"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSearch_RetriesServerErrors(t *testing.T) {
	attempts := 0
	c, srv := newTestClient(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"releases": []}`))
	})
	defer srv.Close()

	candidates, err := c.Search(context.Background(), catalog.Query{Artist: "a", Album: "b"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Equal(t, 2, attempts)
}

func TestExtractArtist(t *testing.T) {
	credits := []artistCredit{
		{Name: "A", JoinPhrase: " & "},
		{Name: "B"},
	}
	assert.Equal(t, "A & B", extractArtist(credits))
	assert.Equal(t, "", extractArtist(nil))
}

func TestWaitForRateLimit_EnforcesRateLimit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := &Client{}

		c.waitForRateLimit()

		start := time.Now()
		c.waitForRateLimit()
		elapsed := time.Since(start)

		if elapsed < 900*time.Millisecond {
			t.Errorf("second request only waited %v, expected ~1s", elapsed)
		}
	})
}
