package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tferrand/sleeve/internal/catalog"
	"github.com/tferrand/sleeve/internal/similarity"
)

const (
	lrclibBaseURL   = "https://lrclib.net/api"
	lrclibUserAgent = "sleeve/1.0 (https://github.com/tferrand/sleeve)"

	// LrclibSourceLabel identifies candidates produced by lrclib.net.
	LrclibSourceLabel = "lrclib"
)

// LrclibClient is an lrclib.net API client.
type LrclibClient struct {
	httpClient *http.Client
	baseURL    string
	weights    Weights
}

// NewLrclib creates a new lrclib client with default scoring weights.
func NewLrclib() *LrclibClient {
	return NewLrclibWithWeights(DefaultWeights)
}

// NewLrclibWithWeights creates a new lrclib client with custom weights.
func NewLrclibWithWeights(w Weights) *LrclibClient {
	return &LrclibClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    lrclibBaseURL,
		weights:    w,
	}
}

// lrclibResult mirrors the lrclib API payload.
type lrclibResult struct {
	TrackName    string `json:"trackName"`
	ArtistName   string `json:"artistName"`
	AlbumName    string `json:"albumName"`
	Instrumental bool   `json:"instrumental"`
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
}

// Search queries lrclib by track and artist name. An empty slice means no
// lyrics were found; errors are reserved for transport and parse failures.
// Results are sorted by confidence descending.
func (c *LrclibClient) Search(ctx context.Context, query catalog.Query) ([]Candidate, error) {
	if query.Title == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("track_name", query.Title)
	if query.Artist != "" {
		params.Set("artist_name", query.Artist)
	}

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", lrclibUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var results []lrclibResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return c.convert(query, results), nil
}

func (c *LrclibClient) convert(query catalog.Query, results []lrclibResult) []Candidate {
	candidates := make([]Candidate, 0, len(results))

	for _, r := range results {
		text := r.SyncedLyrics
		if text == "" {
			text = r.PlainLyrics
		}
		if text == "" || r.Instrumental {
			continue
		}

		confidence := c.weights.Title*similarity.Score(query.Title, r.TrackName) +
			c.weights.Artist*similarity.Score(query.Artist, r.ArtistName)

		candidates = append(candidates, Candidate{
			Text:       text,
			Synced:     IsSynced(text),
			Source:     LrclibSourceLabel,
			Confidence: catalog.Clamp(confidence),
		})
	}

	sortByConfidence(candidates)
	return candidates
}
