package artwork

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tferrand/sleeve/internal/catalog"
	"github.com/tferrand/sleeve/internal/lastfm"
	"github.com/tferrand/sleeve/internal/placeholder"
)

// fakeSource is a scripted tier that counts how often it is queried.
type fakeSource struct {
	candidates []catalog.Candidate
	err        error
	calls      int
}

func (f *fakeSource) Search(_ context.Context, _ catalog.Query) ([]catalog.Candidate, error) {
	f.calls++
	return f.candidates, f.err
}

func TestResolve_FirstNonEmptyTierWins(t *testing.T) {
	tier1 := &fakeSource{candidates: []catalog.Candidate{
		{URL: "t1-best", Confidence: 0.95},
		{URL: "t1-second", Confidence: 0.7},
	}}
	tier2 := &fakeSource{candidates: []catalog.Candidate{{URL: "t2", Confidence: 1.0}}}

	r := NewResolver(tier1, tier2)

	got, err := r.Resolve(context.Background(), catalog.Query{Artist: "Ed Sheeran", Album: "Divide"})
	require.NoError(t, err)
	assert.Equal(t, "t1-best", got.URL)

	// Short-circuit: lower tiers never invoked
	assert.Equal(t, 1, tier1.calls)
	assert.Equal(t, 0, tier2.calls)
}

func TestResolve_EmptyTierFallsThrough(t *testing.T) {
	tier1 := &fakeSource{}
	tier2 := &fakeSource{}
	tier3 := &fakeSource{candidates: []catalog.Candidate{{URL: "t3", Confidence: 1.0}}}

	r := NewResolver(tier1, tier2, tier3)

	got, err := r.Resolve(context.Background(), catalog.Query{Artist: "Taylor Swift", Album: "Unknown Album XYZ"})
	require.NoError(t, err)
	assert.Equal(t, "t3", got.URL)
	assert.Equal(t, 1, tier1.calls)
	assert.Equal(t, 1, tier2.calls)
}

func TestResolve_TierErrorTreatedAsEmpty(t *testing.T) {
	tier1 := &fakeSource{err: errors.New("connection refused")}
	tier2 := &fakeSource{candidates: []catalog.Candidate{{URL: "t2", Confidence: 0.8}}}

	r := NewResolver(tier1, tier2)

	got, err := r.Resolve(context.Background(), catalog.Query{Artist: "a"})
	require.NoError(t, err)
	assert.Equal(t, "t2", got.URL)
}

func TestResolve_AllTiersEmptyReturnsNotFound(t *testing.T) {
	r := NewResolver(&fakeSource{}, &fakeSource{err: errors.New("boom")})

	_, err := r.Resolve(context.Background(), catalog.Query{Artist: "NONEXISTENT_ARTIST_999"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_PlaceholderTierGuaranteesSuccess(t *testing.T) {
	// Every network tier empty or failing: the terminal tier still resolves.
	r := NewResolver(
		&fakeSource{},
		&fakeSource{err: errors.New("timeout")},
		&fakeSource{},
		&fakeSource{},
		placeholder.New(),
	)

	got, err := r.Resolve(context.Background(), catalog.Query{
		Artist: "NONEXISTENT_ARTIST_999",
		Album:  "FAKE_ALBUM_XYZ",
	})
	require.NoError(t, err)
	assert.Equal(t, placeholder.SourceLabel, got.Source)
	assert.Equal(t, placeholder.Confidence, got.Confidence)
}

func TestResolve_TieBrokenByFirstSeen(t *testing.T) {
	tier := &fakeSource{candidates: []catalog.Candidate{
		{URL: "first", Confidence: 0.9},
		{URL: "second", Confidence: 0.9},
	}}

	r := NewResolver(tier)

	got, err := r.Resolve(context.Background(), catalog.Query{Artist: "a"})
	require.NoError(t, err)
	assert.Equal(t, "first", got.URL)
}

func TestNewResolver_SkipsNilTiers(t *testing.T) {
	tier := &fakeSource{candidates: []catalog.Candidate{{URL: "only", Confidence: 0.5}}}

	r := NewResolver(nil, tier, nil)

	got, err := r.Resolve(context.Background(), catalog.Query{Artist: "a"})
	require.NoError(t, err)
	assert.Equal(t, "only", got.URL)
}

func TestResolve_TypedNilClientFallsThrough(t *testing.T) {
	// A typed nil boxed in the Source interface is not caught by
	// NewResolver's nil skip; its Search must answer empty instead.
	var unconfigured *lastfm.Client
	tier := &fakeSource{candidates: []catalog.Candidate{{URL: "next", Confidence: 0.5}}}

	r := NewResolver(unconfigured, tier)

	got, err := r.Resolve(context.Background(), catalog.Query{Artist: "a"})
	require.NoError(t, err)
	assert.Equal(t, "next", got.URL)
}

func TestResolve_CancelledContext(t *testing.T) {
	tier := &fakeSource{candidates: []catalog.Candidate{{URL: "x", Confidence: 1}}}
	r := NewResolver(tier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, catalog.Query{Artist: "a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, tier.calls)
}
