package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/plantcare/internal/model"
	"github.com/sells-group/plantcare/internal/resilience"
	"github.com/sells-group/plantcare/pkg/perenual"
)

type fakePerenual struct {
	species    []perenual.Species
	searchErr  error
	guide      *perenual.CareGuide
	guideErr   error
	searches   int
	guideCalls int

	searchDelay time.Duration
	guideDelay  time.Duration
}

func (f *fakePerenual) SearchSpecies(ctx context.Context, _ string) ([]perenual.Species, error) {
	f.searches++
	if err := wait(ctx, f.searchDelay); err != nil {
		return nil, err
	}
	return f.species, f.searchErr
}

func (f *fakePerenual) CareGuide(ctx context.Context, _ int) (*perenual.CareGuide, error) {
	f.guideCalls++
	if err := wait(ctx, f.guideDelay); err != nil {
		return nil, err
	}
	return f.guide, f.guideErr
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newTestPerenual(f *fakePerenual) *Perenual {
	return NewPerenual(f, Settings{Descriptor: Descriptor{Priority: 1, Enabled: true}})
}

func TestPerenual_Identify(t *testing.T) {
	f := &fakePerenual{
		species: []perenual.Species{{ID: 7, CommonName: "Rose", ScientificName: []string{"Rosa"}}},
		guide: &perenual.CareGuide{Section: []perenual.Section{
			{Type: "watering", Description: "Water deeply twice a week"},
			{Type: "Pruning", Description: "Prune in late winter"},
			{Type: "propagation", Description: "Dropped"},
		}},
	}
	rec, err := newTestPerenual(f).Identify(context.Background(), "rose")
	require.NoError(t, err)

	assert.Equal(t, "perenual", rec.Provider)
	assert.Equal(t, "7", rec.ExternalID)
	assert.Equal(t, "Rose", rec.CommonName)
	assert.Equal(t, "Rosa", rec.ScientificName)
	assert.Equal(t, "Care information for Rose", rec.Description)
	assert.Equal(t, []string{"Water deeply twice a week"}, rec.Care[model.CareWatering])
	assert.Equal(t, []string{"Prune in late winter"}, rec.Care[model.CarePruning])
	assert.Equal(t, model.GenericCare()[model.CareSoil], rec.Care[model.CareSoil])
	assert.Len(t, rec.Care, 8)
	assert.Equal(t, 1, f.guideCalls)
}

func TestPerenual_Identify_CareGuideHasOwnTimeout(t *testing.T) {
	f := &fakePerenual{
		species:     []perenual.Species{{ID: 7, CommonName: "Rose"}},
		guide:       &perenual.CareGuide{Section: []perenual.Section{{Type: "watering", Description: "Deep water"}}},
		searchDelay: 250 * time.Millisecond,
		guideDelay:  150 * time.Millisecond,
	}
	p := NewPerenual(f, Settings{Descriptor: Descriptor{Enabled: true}, Timeout: 400 * time.Millisecond})

	rec, err := p.Identify(context.Background(), "rose")
	require.NoError(t, err)
	assert.Equal(t, []string{"Deep water"}, rec.Care[model.CareWatering])
}

func TestPerenual_Identify_SearchTimeout(t *testing.T) {
	f := &fakePerenual{searchDelay: time.Second}
	p := NewPerenual(f, Settings{Descriptor: Descriptor{Enabled: true}, Timeout: 50 * time.Millisecond})

	_, err := p.Identify(context.Background(), "rose")
	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.Zero(t, f.guideCalls)
}

func TestPerenual_Identify_NoMatch(t *testing.T) {
	f := &fakePerenual{}
	rec, err := newTestPerenual(f).Identify(context.Background(), "xyzzy")
	assert.Nil(t, rec)
	assert.Equal(t, KindNoMatch, KindOf(err))
	assert.Equal(t, 0, f.guideCalls)
}

func TestPerenual_Identify_RateLimited(t *testing.T) {
	f := &fakePerenual{searchErr: resilience.NewHTTPError("perenual", "species-list", 429)}
	_, err := newTestPerenual(f).Identify(context.Background(), "rose")
	assert.Equal(t, KindRateLimited, KindOf(err))
}

func TestPerenual_Identify_CareGuideFailureKeepsGeneric(t *testing.T) {
	f := &fakePerenual{
		species:  []perenual.Species{{ID: 3, ScientificName: nil}},
		guideErr: resilience.NewHTTPError("perenual", "species-care-guide-list", 500),
	}
	rec, err := newTestPerenual(f).Identify(context.Background(), "mint")
	require.NoError(t, err)

	assert.Equal(t, "mint", rec.CommonName, "falls back to the query")
	assert.Equal(t, "Unknown", rec.ScientificName)
	assert.Equal(t, model.GenericCare(), rec.Care)
}

func TestPerenual_SearchMany(t *testing.T) {
	f := &fakePerenual{species: []perenual.Species{
		{ID: 1, CommonName: "Rose", ScientificName: []string{"Rosa"}, Watering: "Frequent", Sunlight: []string{"full sun"}, Cycle: "Perennial"},
		{ID: 2, CommonName: "Desert rose", DefaultImage: &perenual.Image{MediumURL: "https://img/2.jpg"}},
		{ID: 3}, {ID: 4}, {ID: 5}, {ID: 6},
	}}
	results, err := newTestPerenual(f).SearchMany(context.Background(), "rose", 5)
	require.NoError(t, err)
	require.Len(t, results, 5)

	r := results[0]
	assert.Equal(t, "perenual_1", r.ID)
	assert.Equal(t, "Rosa", r.BotanicalName)
	assert.Equal(t, "Perennial", r.Type)
	assert.Equal(t, "🌹", r.Image)
	assert.Equal(t, "Weekly", r.Watering)
	assert.Equal(t, "Bright Direct", r.Sunlight)
	assert.Equal(t, "Perenual", r.Source)

	assert.Equal(t, "https://img/2.jpg", results[1].Image)
	assert.Equal(t, "rose", results[2].Name, "nameless species use the query")
	assert.Equal(t, "Unknown", results[2].BotanicalName)
	assert.Equal(t, 0, f.guideCalls, "search never fetches care guides")
}

func TestPerenual_Details(t *testing.T) {
	f := &fakePerenual{guide: &perenual.CareGuide{
		CommonName: "Aloe",
		Section:    []perenual.Section{{Type: "sunlight", Description: "Full sun"}},
	}}
	rec, err := newTestPerenual(f).Details(context.Background(), "12")
	require.NoError(t, err)
	assert.Equal(t, "Aloe", rec.CommonName)
	assert.Equal(t, "From Perenual", rec.ScientificName)
	assert.Equal(t, []string{"Full sun"}, rec.Care[model.CareSunlight])

	_, err = newTestPerenual(f).Details(context.Background(), "abc")
	assert.Equal(t, KindNoMatch, KindOf(err))

	_, err = newTestPerenual(&fakePerenual{}).Details(context.Background(), "12")
	assert.Equal(t, KindNoMatch, KindOf(err))
}

func TestNewPerenual_DefaultName(t *testing.T) {
	p := NewPerenual(&fakePerenual{}, Settings{})
	assert.Equal(t, "perenual", p.Descriptor().Name)
}
