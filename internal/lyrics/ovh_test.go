package lyrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tferrand/sleeve/internal/catalog"
)

func TestOvhSearch_SingleKeyedHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Ed Sheeran/Shape of You", r.URL.Path)
		_, _ = w.Write([]byte(`{"lyrics": "The club isn't the best place"}`))
	}))
	defer srv.Close()

	c := NewOvh()
	c.baseURL = srv.URL

	candidates, err := c.Search(context.Background(), catalog.Query{
		Title:  "Shape of You",
		Artist: "Ed Sheeran",
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "The club isn't the best place", candidates[0].Text)
	assert.False(t, candidates[0].Synced)
	assert.Equal(t, OvhSourceLabel, candidates[0].Source)
	assert.Equal(t, 1.0, candidates[0].Confidence)
}

func TestOvhSearch_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOvh()
	c.baseURL = srv.URL

	candidates, err := c.Search(context.Background(), catalog.Query{Title: "x", Artist: "y"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestOvhSearch_RequiresTitleAndArtist(t *testing.T) {
	c := NewOvh()

	for _, q := range []catalog.Query{{}, {Title: "x"}, {Artist: "y"}} {
		candidates, err := c.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	}
}
