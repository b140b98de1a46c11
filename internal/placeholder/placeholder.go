// Package placeholder is the terminal artwork fallback. It never touches the
// network and never returns empty, which is what guarantees the artwork
// cascade always resolves even when every real source fails.
package placeholder

import (
	"context"
	"math/rand"

	"github.com/tferrand/sleeve/internal/catalog"
)

const (
	// SourceLabel identifies candidates produced by this tier.
	SourceLabel = "placeholder"

	// Confidence is deliberately low: a placeholder tile is never a real match.
	Confidence = 0.1
)

// tiles are pre-built colored placeholder covers with a music glyph.
var tiles = []string{
	"https://placehold.co/600x600/1abc9c/ffffff.png?text=%E2%99%AA",
	"https://placehold.co/600x600/3498db/ffffff.png?text=%E2%99%AA",
	"https://placehold.co/600x600/9b59b6/ffffff.png?text=%E2%99%AA",
	"https://placehold.co/600x600/e67e22/ffffff.png?text=%E2%99%AA",
	"https://placehold.co/600x600/e74c3c/ffffff.png?text=%E2%99%AA",
	"https://placehold.co/600x600/34495e/ffffff.png?text=%E2%99%AA",
}

// Source produces exactly one placeholder candidate per search.
type Source struct {
	pick func(n int) int
}

// New creates a placeholder source that picks a tile uniformly at random.
func New() *Source {
	return &Source{pick: rand.Intn}
}

// Search returns exactly one candidate from the fixed tile set. It never
// returns an empty list and never fails.
func (s *Source) Search(_ context.Context, _ catalog.Query) ([]catalog.Candidate, error) {
	url := tiles[s.pick(len(tiles))]
	return []catalog.Candidate{{
		URL:        url,
		ThumbURL:   url,
		Width:      600,
		Height:     600,
		Source:     SourceLabel,
		Confidence: Confidence,
	}}, nil
}
