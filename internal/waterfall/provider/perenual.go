package provider

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/plantcare/internal/model"
	"github.com/sells-group/plantcare/pkg/perenual"
)

// perenualSections maps Perenual care-guide section types onto care
// categories. Sections not listed are dropped.
var perenualSections = map[string]model.CareCategory{
	"watering":    model.CareWatering,
	"sunlight":    model.CareSunlight,
	"soil":        model.CareSoil,
	"fertilizer":  model.CareFertilizer,
	"fertilizing": model.CareFertilizer,
	"temperature": model.CareTemperature,
	"hardiness":   model.CareTemperature,
	"pests":       model.CarePests,
	"pruning":     model.CarePruning,
	"seasonal":    model.CareSeasonalTips,
}

// Perenual is the primary identification provider.
type Perenual struct {
	base
	client perenual.Client
}

// NewPerenual wraps a Perenual API client.
func NewPerenual(client perenual.Client, s Settings) *Perenual {
	if s.Descriptor.Name == "" {
		s.Descriptor.Name = "perenual"
	}
	return &Perenual{base: newBase(s), client: client}
}

// Identify searches species by name and enriches the first match with its
// care guide. A failed care-guide call keeps the generic template.
func (p *Perenual) Identify(ctx context.Context, query string) (*model.ProviderRecord, error) {
	return call(ctx, p.base, func(ctx context.Context) (*model.ProviderRecord, error) {
		sctx, cancel := p.withTimeout(ctx)
		species, err := p.client.SearchSpecies(sctx, query)
		cancel()
		if err != nil {
			return nil, err
		}
		if len(species) == 0 {
			return nil, NoMatch(p.desc.Name)
		}

		s := species[0]
		gctx, cancel := p.withTimeout(ctx)
		guide, err := p.client.CareGuide(gctx, s.ID)
		cancel()
		if err != nil {
			zap.L().Warn("perenual care guide unavailable, using generic care",
				zap.Int("species_id", s.ID),
				zap.Error(err),
			)
			guide = nil
		}

		name := s.CommonName
		if name == "" {
			name = query
		}
		description := s.Description
		if description == "" {
			description = "Care information for " + name
		}
		scientific := s.PrimaryScientificName()
		if scientific == "" {
			scientific = "Unknown"
		}

		return &model.ProviderRecord{
			Provider:       p.desc.Name,
			ExternalID:     strconv.Itoa(s.ID),
			CommonName:     name,
			ScientificName: scientific,
			Description:    description,
			Care:           perenualCare(guide),
			Confidence:     "high",
		}, nil
	})
}

// SearchMany returns up to limit species summaries.
func (p *Perenual) SearchMany(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	return call(ctx, p.base, func(ctx context.Context) ([]model.SearchResult, error) {
		ctx, cancel := p.withTimeout(ctx)
		defer cancel()
		species, err := p.client.SearchSpecies(ctx, query)
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(species) > limit {
			species = species[:limit]
		}

		out := make([]model.SearchResult, 0, len(species))
		for _, s := range species {
			name := s.CommonName
			if name == "" {
				name = query
			}
			botanical := s.PrimaryScientificName()
			if botanical == "" {
				botanical = "Unknown"
			}
			about := s.Description
			if about == "" {
				about = "Information about " + name
			}
			description := s.Description
			if description == "" {
				description = "Plant from Perenual database"
			}
			out = append(out, model.SearchResult{
				ID:            "perenual_" + strconv.Itoa(s.ID),
				Name:          name,
				BotanicalName: botanical,
				Type:          TypeLabel(s.Cycle),
				Image:         imageOr(s.DefaultImage.BestURL(), name),
				Watering:      WateringLabel(s.Watering),
				Sunlight:      SunlightLabel(s.Sunlight),
				About:         about,
				Description:   description,
				Source:        "Perenual",
			})
		}
		return out, nil
	})
}

// Details loads the care guide for a Perenual species id.
func (p *Perenual) Details(ctx context.Context, externalID string) (*model.ProviderRecord, error) {
	id, err := strconv.Atoi(externalID)
	if err != nil {
		return nil, &Error{Provider: p.desc.Name, Kind: KindNoMatch, Err: eris.Wrapf(err, "perenual: invalid species id %q", externalID)}
	}

	return call(ctx, p.base, func(ctx context.Context) (*model.ProviderRecord, error) {
		ctx, cancel := p.withTimeout(ctx)
		defer cancel()
		guide, err := p.client.CareGuide(ctx, id)
		if err != nil {
			return nil, err
		}
		if guide == nil {
			return nil, NoMatch(p.desc.Name)
		}

		name := guide.CommonName
		if name == "" {
			name = "Plant Details"
		}
		scientific := "From Perenual"
		if len(guide.ScientificName) > 0 {
			scientific = guide.ScientificName[0]
		}
		return &model.ProviderRecord{
			Provider:       p.desc.Name,
			ExternalID:     externalID,
			CommonName:     name,
			ScientificName: scientific,
			Description:    "Complete care guide from Perenual database",
			Care:           perenualCare(guide),
			Confidence:     "high",
		}, nil
	})
}

// perenualCare overlays mapped guide sections onto the generic template.
func perenualCare(guide *perenual.CareGuide) model.CareGuide {
	care := model.GenericCare()
	if guide == nil {
		return care
	}
	for _, sec := range guide.Section {
		category, ok := perenualSections[strings.ToLower(strings.TrimSpace(sec.Type))]
		if !ok || sec.Description == "" {
			continue
		}
		care[category] = []string{sec.Description}
	}
	return care
}
