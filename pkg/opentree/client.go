// Package opentree provides a client for the Open Tree of Life taxonomic
// name resolution API. The API is public and needs no key.
package opentree

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/plantcare/internal/resilience"
)

const (
	defaultBaseURL = "https://api.opentreeoflife.org/v3"
	plantsContext  = "Plants"
)

// Client defines the Open Tree of Life operations.
type Client interface {
	// Autocomplete returns taxa whose names match a partial name within the
	// Plants context.
	Autocomplete(ctx context.Context, name string) ([]Taxon, error)
}

// Taxon is one autocomplete match.
type Taxon struct {
	OTTID        int    `json:"ott_id"`
	UniqueName   string `json:"unique_name"`
	IsSuppressed bool   `json:"is_suppressed"`
	IsHigher     bool   `json:"is_higher"`
}

type autocompleteRequest struct {
	Name        string `json:"name"`
	ContextName string `json:"context_name"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Open Tree of Life client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Autocomplete(ctx context.Context, name string) ([]Taxon, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "opentree: rate limit")
	}

	payload, err := json.Marshal(autocompleteRequest{Name: name, ContextName: plantsContext})
	if err != nil {
		return nil, eris.Wrap(err, "opentree: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tnrs/autocomplete_name", bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "opentree: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "opentree: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	// The API answers 400 when nothing in the context matches.
	if resp.StatusCode == http.StatusBadRequest {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.NewHTTPError("opentree", "tnrs/autocomplete_name", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "opentree: read body")
	}

	var taxa []Taxon
	if err := json.Unmarshal(body, &taxa); err != nil {
		return nil, eris.Wrap(err, "opentree: parse response")
	}

	out := taxa[:0]
	for _, t := range taxa {
		if !t.IsSuppressed && t.UniqueName != "" {
			out = append(out, t)
		}
	}
	return out, nil
}
