package lyrics

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
	ovhBaseURL   = "https://api.lyrics.ovh/v1"
	ovhUserAgent = "sleeve/1.0 (https://github.com/tferrand/sleeve)"

	// OvhSourceLabel identifies candidates produced by lyrics.ovh.
	OvhSourceLabel = "lyrics.ovh"

	// ovhConfidence applies to every hit: the endpoint is keyed by exact
	// artist and title, so a hit is an exact match by construction.
	ovhConfidence = 1.0
)

// OvhClient is a lyrics.ovh API client. The API is a direct keyed lookup
// rather than a search: it yields at most one candidate.
type OvhClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewOvh creates a new lyrics.ovh client.
func NewOvh() *OvhClient {
	return &OvhClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    ovhBaseURL,
	}
}

type ovhResponse struct {
	Lyrics string `json:"lyrics"`
}

// Search looks up lyrics by exact artist and title. An empty slice means no
// lyrics were found; errors are reserved for transport and parse failures.
func (c *OvhClient) Search(ctx context.Context, query catalog.Query) ([]Candidate, error) {
	if query.Title == "" || query.Artist == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/%s/%s",
		c.baseURL, url.PathEscape(query.Artist), url.PathEscape(query.Title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", ovhUserAgent)

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

	var result ovhResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if result.Lyrics == "" {
		return nil, nil
	}

	return []Candidate{{
		Text:       result.Lyrics,
		Source:     OvhSourceLabel,
		Confidence: ovhConfidence,
	}}, nil
}
