// Package trefle provides a client for the Trefle botanical API.
package trefle

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

const defaultBaseURL = "https://trefle.io/api/v1"

// Client defines the Trefle API operations.
type Client interface {
	// SearchPlants returns plants matching a free-text query.
	SearchPlants(ctx context.Context, query string) ([]Plant, error)
	// Plant returns the detail record for a plant id.
	Plant(ctx context.Context, id int) (*PlantDetail, error)
}

// Plant is a row of the plants/search endpoint.
type Plant struct {
	ID             int    `json:"id"`
	CommonName     string `json:"common_name"`
	ScientificName string `json:"scientific_name"`
	Family         string `json:"family"`
	FamilyCommon   string `json:"family_common_name"`
	Genus          string `json:"genus"`
	ImageURL       string `json:"image_url"`
}

// DisplayName prefers the common name.
func (p Plant) DisplayName() string {
	if p.CommonName != "" {
		return p.CommonName
	}
	return p.ScientificName
}

// PlantDetail is the plants/{id} payload.
type PlantDetail struct {
	ID             int          `json:"id"`
	CommonName     string       `json:"common_name"`
	ScientificName string       `json:"scientific_name"`
	Family         any          `json:"family"`
	Observations   string       `json:"observations"`
	ImageURL       string       `json:"image_url"`
	Growth         *Growth      `json:"growth"`
	MainSpecies    *MainSpecies `json:"main_species"`
}

// FamilyName returns the family, which Trefle encodes either as a string or
// as an object with a name field.
func (d *PlantDetail) FamilyName() string {
	switch f := d.Family.(type) {
	case string:
		return f
	case map[string]any:
		if name, ok := f["name"].(string); ok {
			return name
		}
	}
	return ""
}

// GrowthInfo returns the plant's growth block, falling back to the main species.
func (d *PlantDetail) GrowthInfo() *Growth {
	if d.Growth != nil {
		return d.Growth
	}
	if d.MainSpecies != nil {
		return d.MainSpecies.Growth
	}
	return nil
}

// MainSpecies carries the species-level fields of a plant.
type MainSpecies struct {
	ID           int     `json:"id"`
	Observations string  `json:"observations"`
	Growth       *Growth `json:"growth"`
}

// Growth holds Trefle's growing requirements. Scales run 0-10.
type Growth struct {
	Light               *float64     `json:"light"`
	AtmosphericHumidity *float64     `json:"atmospheric_humidity"`
	PhMinimum           *float64     `json:"ph_minimum"`
	PhMaximum           *float64     `json:"ph_maximum"`
	SoilHumidity        *float64     `json:"soil_humidity"`
	MinimumTemperature  *Temperature `json:"minimum_temperature"`
	MaximumTemperature  *Temperature `json:"maximum_temperature"`
}

// Temperature is a temperature bound in both scales.
type Temperature struct {
	DegC *float64 `json:"deg_c"`
	DegF *float64 `json:"deg_f"`
}

type searchResponse struct {
	Data []Plant `json:"data"`
	Meta struct {
		Total int `json:"total"`
	} `json:"meta"`
}

type detailResponse struct {
	Data *PlantDetail `json:"data"`
}

// Option configures the Trefle client.
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
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Trefle API client authenticated by token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchPlants(ctx context.Context, query string) ([]Plant, error) {
	var resp searchResponse
	if err := c.get(ctx, "plants/search", url.Values{"q": {query}}, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *httpClient) Plant(ctx context.Context, id int) (*PlantDetail, error) {
	var resp detailResponse
	if err := c.get(ctx, "plants/"+strconv.Itoa(id), url.Values{}, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, eris.Errorf("trefle: plant %d has no data", id)
	}
	return resp.Data, nil
}

func (c *httpClient) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrapf(err, "trefle: %s rate limit", endpoint)
	}

	params.Set("token", c.token)
	reqURL := c.baseURL + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrapf(err, "trefle: %s build request", endpoint)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "trefle: %s request", endpoint)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return resilience.NewHTTPError("trefle", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "trefle: %s read body", endpoint)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "trefle: %s parse response", endpoint)
	}
	return nil
}
