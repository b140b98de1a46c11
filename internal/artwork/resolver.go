// Package artwork resolves album artwork through an ordered cascade of
// search tiers. Tiers are tried strictly in priority order and the first one
// that produces any candidate wins; a terminal placeholder tier makes the
// cascade total.
package artwork

import (
	"context"
	"errors"
	"log"

	"github.com/tferrand/sleeve/internal/catalog"
)

// ErrNotFound is returned when every tier comes back empty. A resolver
// configured with the placeholder tier never returns it.
var ErrNotFound = errors.New("no artwork candidate found")

// Source is one tier of the cascade. Implementations return an empty slice
// for "no match" and reserve errors for transport and parse failures. The
// returned list must be sorted by confidence descending.
type Source interface {
	Search(ctx context.Context, query catalog.Query) ([]catalog.Candidate, error)
}

// Resolver walks artwork tiers in priority order.
type Resolver struct {
	tiers []Source
}

// NewResolver creates a resolver over the given tiers, in priority order.
// Nil interface values are skipped. A typed-nil client slips past this
// check, so unconfigured clients answer Search as empty on a nil receiver.
func NewResolver(tiers ...Source) *Resolver {
	kept := make([]Source, 0, len(tiers))
	for _, t := range tiers {
		if t != nil {
			kept = append(kept, t)
		}
	}
	return &Resolver{tiers: kept}
}

// Resolve walks the tiers in order and returns the best candidate from the
// first tier that produces any. A tier failure counts as "no match" for that
// tier; the cascade moves on. ErrNotFound is returned only when every tier is
// empty or failed.
func (r *Resolver) Resolve(ctx context.Context, query catalog.Query) (catalog.Candidate, error) {
	for _, tier := range r.tiers {
		if err := ctx.Err(); err != nil {
			return catalog.Candidate{}, err
		}

		candidates, err := tier.Search(ctx, query)
		if err != nil {
			// Transport failure in one tier must not sink the cascade.
			log.Printf("artwork: tier failed for %q / %q: %v", query.Artist, query.Album, err)
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		return catalog.Best(candidates), nil
	}

	return catalog.Candidate{}, ErrNotFound
}
