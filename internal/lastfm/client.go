// Package lastfm provides the artist-photo artwork tier, backed by the
// Last.fm artist.getInfo API. It is used when no album-level match exists;
// confidence is artist-name similarity alone since no album is known.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shkh/lastfm-go/lastfm"

	"github.com/tferrand/sleeve/internal/catalog"
	"github.com/tferrand/sleeve/internal/similarity"
)

// SourceLabel identifies candidates produced by this tier.
const SourceLabel = "lastfm-artist"

const artistNotFoundCode = 6 // Last.fm error code for unknown artist

// Client wraps the Last.fm API for artist image lookups.
type Client struct {
	api *lastfm.Api
}

// New creates a new Last.fm client with the given API credentials.
// Returns nil if no API key is configured; a nil client answers every
// search with no results.
func New(apiKey, apiSecret string) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{api: lastfm.New(apiKey, apiSecret)}
}

// Search looks up the artist on Last.fm and returns at most one candidate
// built from the largest published artist image. An unknown artist yields
// an empty slice, not an error. Safe on a nil receiver.
func (c *Client) Search(ctx context.Context, query catalog.Query) ([]catalog.Candidate, error) {
	if c == nil || query.Artist == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := c.api.Artist.GetInfo(lastfm.P{"artist": query.Artist})
	if err != nil {
		var lferr *lastfm.LastfmError
		if errors.As(err, &lferr) && lferr.Code == artistNotFoundCode {
			return nil, nil
		}
		return nil, fmt.Errorf("artistlookup: %w", err)
	}

	// Last.fm lists images in ascending size order: keep the largest as the
	// main URL and the smallest as the thumbnail.
	var imageURL, thumbURL string
	for _, img := range info.Images {
		if img.Url == "" {
			continue
		}
		if thumbURL == "" {
			thumbURL = img.Url
		}
		imageURL = img.Url
	}
	if imageURL == "" {
		return nil, nil
	}

	return []catalog.Candidate{{
		URL:        UpgradeImageURL(imageURL),
		ThumbURL:   thumbURL,
		Source:     SourceLabel,
		Confidence: catalog.Clamp(similarity.Score(query.Artist, info.Name)),
	}}, nil
}

// UpgradeImageURL rewrites Last.fm's sized image path segments to the
// large-image variant. Purely textual, mirroring the catalog-tier upgrade.
func UpgradeImageURL(imageURL string) string {
	for _, token := range []string{"/34s/", "/64s/", "/174s/", "/300x300/"} {
		if strings.Contains(imageURL, token) {
			return strings.Replace(imageURL, token, "/770x0/", 1)
		}
	}
	return imageURL
}
