// Package catalog defines the types shared by all search sources: the
// query built from a track's metadata and the scored candidates a source
// returns for it.
package catalog

import "sort"

// Query carries the metadata used to drive artwork and lyrics searches.
// It is built per request and never persisted.
type Query struct {
	Title  string
	Artist string
	Album  string
}

// Candidate is one scored search result from a source.
type Candidate struct {
	// URL points at the full-resolution asset.
	URL string
	// ThumbURL optionally points at a smaller rendition.
	ThumbURL string
	// Width and Height are the dimensions reported by the source, 0 when unknown.
	Width  int
	Height int
	// Source labels which tier produced the candidate, e.g. "itunes".
	Source string
	// Confidence estimates how well the candidate matches the query, in [0,1].
	Confidence float64
}

// SortByConfidence orders candidates by confidence descending, in place.
// The sort is stable so equally scored candidates keep their first-seen order.
func SortByConfidence(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
}

// Best returns the highest-confidence candidate, assuming the slice is
// non-empty and sorted. Ties go to the first seen.
func Best(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > best.Confidence {
			best = c
		}
	}
	return best
}

// Clamp bounds a confidence value to [0,1].
func Clamp(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
