// Package stockphoto provides the themed-image artwork tier. It queries a
// stock photo API with a loose phrase built from the artist name and tags
// every result with a fixed confidence: this tier exists for visual variety,
// not for textual accuracy.
package stockphoto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tferrand/sleeve/internal/catalog"
)

const (
	defaultBaseURL = "https://api.unsplash.com"
	userAgent      = "sleeve/1.0 (https://github.com/tferrand/sleeve)"

	// SourceLabel identifies candidates produced by this tier.
	SourceLabel = "stockphoto"

	// DefaultConfidence is assigned to every result regardless of match quality.
	DefaultConfidence = 0.6

	maxResults = 5
)

// Client is a stock photo search client (Unsplash API shape).
type Client struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
	confidence float64
}

// New creates a new stock photo client. Returns nil if no access key is
// configured; a nil client answers every search with no results.
func New(accessKey string) *Client {
	return NewWithConfidence(accessKey, DefaultConfidence)
}

// NewWithConfidence creates a client with a custom fixed confidence.
func NewWithConfidence(accessKey string, confidence float64) *Client {
	if accessKey == "" {
		return nil
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		accessKey:  accessKey,
		confidence: catalog.Clamp(confidence),
	}
}

type searchResponse struct {
	Results []photoResult `json:"results"`
}

type photoResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	URLs   struct {
		Regular string `json:"regular"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
}

// Search queries the photo API with "<artist> music" and returns up to five
// fixed-confidence candidates. An empty slice means no match. Safe on a
// nil receiver.
func (c *Client) Search(ctx context.Context, query catalog.Query) ([]catalog.Candidate, error) {
	if c == nil || query.Artist == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("query", query.Artist+" music")
	params.Set("per_page", fmt.Sprint(maxResults))
	params.Set("orientation", "squarish")

	reqURL := fmt.Sprintf("%s/search/photos?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)

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

	candidates := make([]catalog.Candidate, 0, len(result.Results))
	for _, r := range result.Results {
		if r.URLs.Regular == "" {
			continue
		}
		candidates = append(candidates, catalog.Candidate{
			URL:        r.URLs.Regular,
			ThumbURL:   r.URLs.Thumb,
			Width:      r.Width,
			Height:     r.Height,
			Source:     SourceLabel,
			Confidence: c.confidence,
		})
	}

	// All confidences are equal, so the list is trivially sorted.
	return candidates, nil
}
