// Package lyrics resolves song lyrics from independent lyric databases.
// Unlike artwork there is no terminal fallback: sources are queried
// concurrently for recall, and "not found" is a legitimate outcome.
package lyrics

import (
	"errors"
	"sort"
)

// ErrNotFound is returned when no source produced any lyrics.
var ErrNotFound = errors.New("lyrics not found")

// Candidate is one scored lyrics result from a source.
type Candidate struct {
	// Text is the lyrics body, plain or LRC-synced.
	Text string
	// Synced is true when Text carries LRC timestamps.
	Synced bool
	// Source labels which adapter produced the candidate, e.g. "lrclib".
	Source string
	// Confidence estimates how well the candidate matches the query, in [0,1].
	Confidence float64
}

// Weights controls the similarity blend used for confidence scoring.
// Lyrics weigh the title over the artist, the reverse of artwork.
type Weights struct {
	Title  float64
	Artist float64
}

// DefaultWeights favors the track title.
var DefaultWeights = Weights{Title: 0.6, Artist: 0.4}

// sortByConfidence orders candidates by confidence descending, stable so
// equally scored candidates keep their merge order.
func sortByConfidence(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
}
