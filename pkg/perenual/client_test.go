package perenual

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sells-group/plantcare/internal/resilience"
)

func newTestClient(srv *httptest.Server) Client {
	c := NewClient("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client())).(*httpClient)
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func TestSearchSpecies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/species-list", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "monstera", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[{"id":42,"common_name":"Swiss cheese plant","scientific_name":["Monstera deliciosa"],"watering":"Average","sunlight":["part shade"],"default_image":{"medium_url":"https://img/m.jpg","original_url":"https://img/o.jpg"}}],"total":1,"current_page":1}`)
	}))
	defer srv.Close()

	species, err := newTestClient(srv).SearchSpecies(context.Background(), "monstera")
	require.NoError(t, err)
	require.Len(t, species, 1)

	s := species[0]
	assert.Equal(t, 42, s.ID)
	assert.Equal(t, "Swiss cheese plant", s.CommonName)
	assert.Equal(t, "Monstera deliciosa", s.PrimaryScientificName())
	assert.Equal(t, "https://img/m.jpg", s.DefaultImage.BestURL())
	assert.Equal(t, []string{"part shade"}, s.Sunlight)
}

func TestSearchSpecies_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":[],"total":0}`)
	}))
	defer srv.Close()

	species, err := newTestClient(srv).SearchSpecies(context.Background(), "xyzzy")
	require.NoError(t, err)
	assert.Empty(t, species)
}

func TestSearchSpecies_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SearchSpecies(context.Background(), "rose")
	require.Error(t, err)
	assert.True(t, resilience.IsRateLimited(err))
	assert.Contains(t, err.Error(), "species-list returned status 429")
}

func TestSearchSpecies_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SearchSpecies(context.Background(), "rose")
	require.Error(t, err)
	assert.Equal(t, 401, resilience.StatusCode(err))
	assert.False(t, resilience.IsTransient(err))
}

func TestSearchSpecies_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SearchSpecies(context.Background(), "rose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse response")
}

func TestSearchSpecies_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(srv)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.SearchSpecies(ctx, "rose")
	require.Error(t, err)
	assert.True(t, resilience.IsTimeout(err))
}

func TestCareGuide(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/species-care-guide-list", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("species_id"))
		fmt.Fprint(w, `{"data":[{"id":1,"species_id":42,"common_name":"Swiss cheese plant","section":[{"id":1,"type":"watering","description":"Water weekly"},{"id":2,"type":"sunlight","description":"Bright indirect"}]}]}`)
	}))
	defer srv.Close()

	guide, err := newTestClient(srv).CareGuide(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, guide)
	require.Len(t, guide.Section, 2)
	assert.Equal(t, "watering", guide.Section[0].Type)
	assert.Equal(t, "Water weekly", guide.Section[0].Description)
}

func TestCareGuide_None(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer srv.Close()

	guide, err := newTestClient(srv).CareGuide(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, guide)
}

func TestImageBestURL(t *testing.T) {
	var nilImg *Image
	assert.Empty(t, nilImg.BestURL())
	assert.Equal(t, "o", (&Image{OriginalURL: "o"}).BestURL())
	assert.Equal(t, "r", (&Image{RegularURL: "r", OriginalURL: "o"}).BestURL())
}

func TestWithRateLimit(t *testing.T) {
	c := NewClient("k", WithRateLimit(2)).(*httpClient)
	assert.Equal(t, rate.Limit(2), c.limiter.Limit())
	assert.Equal(t, 2, c.limiter.Burst())

	c = NewClient("k", WithRateLimit(0)).(*httpClient)
	assert.Equal(t, rate.Limit(5), c.limiter.Limit())
}
