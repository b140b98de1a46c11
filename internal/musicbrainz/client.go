// Package musicbrainz provides the secondary artwork catalog tier. Album
// releases are searched on the MusicBrainz API and candidate artwork URLs
// are built against the Cover Art Archive.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tferrand/sleeve/internal/catalog"
	"github.com/tferrand/sleeve/internal/similarity"
)

const (
	defaultBaseURL     = "https://musicbrainz.org/ws/2"
	defaultCoverArtURL = "https://coverartarchive.org"
	userAgent          = "sleeve/1.0 (https://github.com/tferrand/sleeve)"
	rateLimitDur       = time.Second // MusicBrainz requires 1 request per second

	// SourceLabel identifies candidates produced by this tier.
	SourceLabel = "musicbrainz"

	maxRetries   = 3
	initialDelay = 2 * time.Second
	maxDelay     = 30 * time.Second
)

// Weights controls the similarity blend used for confidence scoring.
type Weights struct {
	Artist float64
	Album  float64
}

// DefaultWeights matches the primary catalog tier.
var DefaultWeights = Weights{Artist: 0.4, Album: 0.6}

// Client is a MusicBrainz API client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	coverArtURL string
	weights     Weights

	mu          sync.Mutex
	lastRequest time.Time
}

// New creates a new MusicBrainz client with default scoring weights.
func New() *Client {
	return NewWithWeights(DefaultWeights)
}

// NewWithWeights creates a new MusicBrainz client with custom scoring weights.
func NewWithWeights(w Weights) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     defaultBaseURL,
		coverArtURL: defaultCoverArtURL,
		weights:     w,
	}
}

type searchResponse struct {
	Releases []releaseResult `json:"releases"`
}

type releaseResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []artistCredit `json:"artist-credit"`
}

type artistCredit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
	Artist     struct {
		Name string `json:"name"`
	} `json:"artist"`
}

// Search queries MusicBrainz for releases matching the artist and album and
// returns candidates pointing at the Cover Art Archive front image for each
// release, sorted by confidence descending. An empty slice means no match.
func (c *Client) Search(ctx context.Context, query catalog.Query) ([]catalog.Candidate, error) {
	if query.Artist == "" && query.Album == "" {
		return nil, nil
	}

	c.waitForRateLimit()

	// MusicBrainz Lucene query syntax, field-scoped for accuracy
	params := url.Values{}
	params.Set("query", fmt.Sprintf(`release:%q AND artist:%q`, query.Album, query.Artist))
	params.Set("fmt", "json")
	params.Set("limit", "10")

	reqURL := fmt.Sprintf("%s/release?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doRequestWithRetry(ctx, req)
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

	return c.convert(query, result.Releases), nil
}

// convert scores raw release results against the query. Each candidate URL
// points at the Cover Art Archive front image for the release; the archive
// serves 404 for releases without artwork, which the downloader treats as a
// failed candidate rather than an error of this tier.
func (c *Client) convert(query catalog.Query, releases []releaseResult) []catalog.Candidate {
	candidates := make([]catalog.Candidate, 0, len(releases))

	for i := range releases {
		r := &releases[i]
		if r.ID == "" {
			continue
		}

		confidence := c.weights.Artist*similarity.ScoreNormalized(query.Artist, extractArtist(r.ArtistCredit)) +
			c.weights.Album*similarity.ScoreNormalized(query.Album, r.Title)

		candidates = append(candidates, catalog.Candidate{
			URL:        fmt.Sprintf("%s/release/%s/front-500", c.coverArtURL, r.ID),
			ThumbURL:   fmt.Sprintf("%s/release/%s/front-250", c.coverArtURL, r.ID),
			Width:      500,
			Height:     500,
			Source:     SourceLabel,
			Confidence: catalog.Clamp(confidence),
		})
	}

	catalog.SortByConfidence(candidates)
	return candidates
}

// extractArtist extracts the artist name from artist credits.
func extractArtist(credits []artistCredit) string {
	var name string
	for _, cr := range credits {
		n := cr.Name
		if n == "" {
			n = cr.Artist.Name
		}
		name += n + cr.JoinPhrase
	}
	return name
}

// waitForRateLimit ensures we don't exceed MusicBrainz rate limits.
func (c *Client) waitForRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := time.Since(c.lastRequest)
	if elapsed < rateLimitDur {
		time.Sleep(rateLimitDur - elapsed)
	}
	c.lastRequest = time.Now()
}

// doRequestWithRetry executes an HTTP request with exponential backoff.
// Retries on 5xx errors and network errors; honors context cancellation
// between attempts.
func (c *Client) doRequestWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay = min(delay*2, maxDelay)
			c.waitForRateLimit()
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		// Success or client error (4xx) - don't retry
		if resp.StatusCode < 500 {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries+1, lastErr)
}
