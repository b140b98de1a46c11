// Package itunes provides a client for the iTunes Search API, used as the
// first artwork tier. Results are scored against the query with a weighted
// blend of artist and album similarity.
package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tferrand/sleeve/internal/catalog"
	"github.com/tferrand/sleeve/internal/similarity"
)

const (
	defaultBaseURL = "https://itunes.apple.com"
	userAgent      = "sleeve/1.0 (https://github.com/tferrand/sleeve)"

	// SourceLabel identifies candidates produced by this tier.
	SourceLabel = "itunes"

	// upgradedSize is the pixel size of a rewritten artwork URL.
	upgradedSize = 600
)

// Weights controls the similarity blend used for confidence scoring.
type Weights struct {
	Artist float64
	Album  float64
}

// DefaultWeights favors the album name slightly over the artist name.
var DefaultWeights = Weights{Artist: 0.4, Album: 0.6}

// Client is an iTunes Search API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	weights    Weights
}

// New creates a new iTunes client with default scoring weights.
func New() *Client {
	return NewWithWeights(DefaultWeights)
}

// NewWithWeights creates a new iTunes client with custom scoring weights.
func NewWithWeights(w Weights) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		weights:    w,
	}
}

// searchResponse mirrors the iTunes Search API payload.
type searchResponse struct {
	ResultCount int           `json:"resultCount"`
	Results     []albumResult `json:"results"`
}

type albumResult struct {
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName"`
	ArtworkURL100  string `json:"artworkUrl100"`
}

// Search queries the album catalog by artist and album. An empty slice means
// no match was found; errors are reserved for transport and parse failures.
// The returned candidates are sorted by confidence descending.
func (c *Client) Search(ctx context.Context, query catalog.Query) ([]catalog.Candidate, error) {
	if query.Artist == "" && query.Album == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("term", strings.TrimSpace(query.Artist+" "+query.Album))
	params.Set("entity", "album")
	params.Set("media", "music")
	params.Set("limit", "25")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return c.convert(query, result.Results), nil
}

// convert scores raw API results against the query and drops entries
// without artwork.
func (c *Client) convert(query catalog.Query, results []albumResult) []catalog.Candidate {
	candidates := make([]catalog.Candidate, 0, len(results))

	for _, r := range results {
		if r.ArtworkURL100 == "" {
			continue
		}

		confidence := c.weights.Artist*similarity.ScoreNormalized(query.Artist, r.ArtistName) +
			c.weights.Album*similarity.ScoreNormalized(query.Album, r.CollectionName)

		// Dimensions are only known when the URL actually carried the
		// low-resolution token and got rewritten.
		fullURL := UpgradeArtworkURL(r.ArtworkURL100)
		var width, height int
		if fullURL != r.ArtworkURL100 {
			width, height = upgradedSize, upgradedSize
		}

		candidates = append(candidates, catalog.Candidate{
			URL:        fullURL,
			ThumbURL:   r.ArtworkURL100,
			Width:      width,
			Height:     height,
			Source:     SourceLabel,
			Confidence: catalog.Clamp(confidence),
		})
	}

	catalog.SortByConfidence(candidates)
	return candidates
}

// UpgradeArtworkURL rewrites the low-resolution artwork URL pattern the
// catalog exposes into its higher-resolution variant. This is a purely
// textual substitution; no image processing is involved.
func UpgradeArtworkURL(artworkURL string) string {
	return strings.Replace(artworkURL, "100x100", "600x600", 1)
}
