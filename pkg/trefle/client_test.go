package trefle

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/plantcare/internal/resilience"
)

func newTestClient(srv *httptest.Server) Client {
	c := NewClient("tok", WithBaseURL(srv.URL), WithHTTPClient(srv.Client())).(*httpClient)
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func TestSearchPlants(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plants/search", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		assert.Equal(t, "pothos", r.URL.Query().Get("q"))
		fmt.Fprint(w, `{"data":[{"id":9,"common_name":"Golden pothos","scientific_name":"Epipremnum aureum","family":"Araceae","image_url":"https://img/p.jpg"},{"id":10,"common_name":null,"scientific_name":"Epipremnum pinnatum","family":"Araceae"}],"meta":{"total":2}}`)
	}))
	defer srv.Close()

	plants, err := newTestClient(srv).SearchPlants(context.Background(), "pothos")
	require.NoError(t, err)
	require.Len(t, plants, 2)
	assert.Equal(t, 9, plants[0].ID)
	assert.Equal(t, "Golden pothos", plants[0].DisplayName())
	assert.Equal(t, "Epipremnum pinnatum", plants[1].DisplayName())
	assert.Equal(t, "Araceae", plants[1].Family)
}

func TestSearchPlants_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SearchPlants(context.Background(), "rose")
	require.Error(t, err)
	assert.True(t, resilience.IsRateLimited(err))
}

func TestPlant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/plants/9", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		fmt.Fprint(w, `{"data":{"id":9,"common_name":"Golden pothos","scientific_name":"Epipremnum aureum","family":{"name":"Araceae"},"observations":"Climbing vine","main_species":{"id":90,"growth":{"light":6,"atmospheric_humidity":7,"ph_minimum":6.1,"ph_maximum":6.5,"minimum_temperature":{"deg_c":15}}}}}`)
	}))
	defer srv.Close()

	d, err := newTestClient(srv).Plant(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "Araceae", d.FamilyName())
	assert.Equal(t, "Climbing vine", d.Observations)

	g := d.GrowthInfo()
	require.NotNil(t, g)
	require.NotNil(t, g.Light)
	assert.InDelta(t, 6.0, *g.Light, 1e-9)
	assert.InDelta(t, 6.1, *g.PhMinimum, 1e-9)
	require.NotNil(t, g.MinimumTemperature)
	assert.InDelta(t, 15.0, *g.MinimumTemperature.DegC, 1e-9)
	assert.Nil(t, g.MaximumTemperature)
}

func TestPlant_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Plant(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, 404, resilience.StatusCode(err))
}

func TestPlant_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":null}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Plant(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no data")
}

func TestPlantDetail_FamilyAndGrowthFallbacks(t *testing.T) {
	light := 4.0
	d := &PlantDetail{Family: "Rosaceae", Growth: &Growth{Light: &light}}
	assert.Equal(t, "Rosaceae", d.FamilyName())
	assert.Same(t, d.Growth, d.GrowthInfo())

	empty := &PlantDetail{}
	assert.Empty(t, empty.FamilyName())
	assert.Nil(t, empty.GrowthInfo())
}
