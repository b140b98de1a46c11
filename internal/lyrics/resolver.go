package lyrics

import (
	"context"
	"log"
	"sync"

	"github.com/arunsworld/nursery"

	"github.com/tferrand/sleeve/internal/catalog"
)

// Source is one lyric database adapter. Implementations return an empty
// slice for "no match" and reserve errors for transport and parse failures.
type Source interface {
	Search(ctx context.Context, query catalog.Query) ([]Candidate, error)
}

// Resolver fans out to all lyric sources concurrently and merges their
// results. There is no priority order between sources: recall matters more
// than call count because no source is guaranteed to have anything.
type Resolver struct {
	sources []Source
}

// NewResolver creates a resolver over the given sources. Nil sources are
// skipped.
func NewResolver(sources ...Source) *Resolver {
	kept := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &Resolver{sources: kept}
}

// Resolve queries every source concurrently, merges all results, and
// returns the best candidate of the re-sorted union. Source failures are
// logged and treated as empty. Returns ErrNotFound when nothing matched.
func (r *Resolver) Resolve(ctx context.Context, query catalog.Query) (Candidate, error) {
	var (
		mu     sync.Mutex
		merged []Candidate
	)

	jobs := make([]nursery.ConcurrentJob, 0, len(r.sources))
	for _, src := range r.sources {
		src := src
		jobs = append(jobs, func(ctx context.Context, _ chan error) {
			candidates, err := src.Search(ctx, query)
			if err != nil {
				log.Printf("lyrics: source failed for %q / %q: %v", query.Artist, query.Title, err)
				return
			}
			mu.Lock()
			merged = append(merged, candidates...)
			mu.Unlock()
		})
	}

	if err := nursery.RunConcurrentlyWithContext(ctx, jobs...); err != nil {
		return Candidate{}, err
	}
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}

	if len(merged) == 0 {
		return Candidate{}, ErrNotFound
	}

	// Completion order is arbitrary: always re-sort the union so the global
	// confidence order holds no matter which source returned first.
	sortByConfidence(merged)

	return merged[0], nil
}
