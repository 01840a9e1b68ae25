// Package perenual provides a client for the Perenual plant species API.
package perenual

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/plantcare/internal/resilience"
)

const defaultBaseURL = "https://perenual.com/api"

// Client defines the Perenual API operations.
type Client interface {
	// SearchSpecies returns species matching a free-text query (first page).
	SearchSpecies(ctx context.Context, query string) ([]Species, error)
	// CareGuide returns the care guide for a species, or nil when none exists.
	CareGuide(ctx context.Context, speciesID int) (*CareGuide, error)
}

// Species is a row of the species-list endpoint.
type Species struct {
	ID             int      `json:"id"`
	CommonName     string   `json:"common_name"`
	ScientificName []string `json:"scientific_name"`
	OtherName      []string `json:"other_name"`
	Cycle          string   `json:"cycle"`
	Watering       string   `json:"watering"`
	Sunlight       []string `json:"sunlight"`
	Description    string   `json:"description"`
	DefaultImage   *Image   `json:"default_image"`
}

// PrimaryScientificName returns the first scientific name, or "".
func (s Species) PrimaryScientificName() string {
	if len(s.ScientificName) == 0 {
		return ""
	}
	return s.ScientificName[0]
}

// Image holds the image URLs Perenual returns for a species.
type Image struct {
	OriginalURL  string `json:"original_url"`
	RegularURL   string `json:"regular_url"`
	MediumURL    string `json:"medium_url"`
	SmallURL     string `json:"small_url"`
	ThumbnailURL string `json:"thumbnail"`
}

// BestURL prefers the medium rendition.
func (i *Image) BestURL() string {
	if i == nil {
		return ""
	}
	for _, u := range []string{i.MediumURL, i.RegularURL, i.OriginalURL, i.SmallURL} {
		if u != "" {
			return u
		}
	}
	return ""
}

// CareGuide is one entry of the species-care-guide-list endpoint.
type CareGuide struct {
	ID             int       `json:"id"`
	SpeciesID      int       `json:"species_id"`
	CommonName     string    `json:"common_name"`
	ScientificName []string  `json:"scientific_name"`
	Section        []Section `json:"section"`
}

// Section is a typed block of care advice, e.g. "watering" or "pruning".
type Section struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type listResponse[T any] struct {
	Data        []T `json:"data"`
	Total       int `json:"total"`
	CurrentPage int `json:"current_page"`
}

// Option configures the Perenual client.
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
	key     string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Perenual API client.
func NewClient(key string, opts ...Option) Client {
	c := &httpClient{
		key:     key,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchSpecies(ctx context.Context, query string) ([]Species, error) {
	var resp listResponse[Species]
	params := url.Values{
		"q":    {query},
		"page": {"1"},
	}
	if err := c.get(ctx, "species-list", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *httpClient) CareGuide(ctx context.Context, speciesID int) (*CareGuide, error) {
	var resp listResponse[CareGuide]
	params := url.Values{"species_id": {strconv.Itoa(speciesID)}}
	if err := c.get(ctx, "species-care-guide-list", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return &resp.Data[0], nil
}

func (c *httpClient) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrapf(err, "perenual: %s rate limit", endpoint)
	}

	params.Set("key", c.key)
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrapf(err, "perenual: %s build request", endpoint)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "perenual: %s request", endpoint)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return resilience.NewHTTPError("perenual", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "perenual: %s read body", endpoint)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "perenual: %s parse response", endpoint)
	}
	return nil
}
