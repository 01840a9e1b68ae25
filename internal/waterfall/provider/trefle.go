package provider

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/plantcare/internal/model"
	"github.com/sells-group/plantcare/pkg/trefle"
)

// Trefle is the secondary identification provider.
type Trefle struct {
	base
	client trefle.Client
}

// NewTrefle wraps a Trefle API client.
func NewTrefle(client trefle.Client, s Settings) *Trefle {
	if s.Descriptor.Name == "" {
		s.Descriptor.Name = "trefle"
	}
	return &Trefle{base: newBase(s), client: client}
}

// Identify searches plants by name and adds growth requirements from the
// detail endpoint. A failed detail call keeps the generic template.
func (t *Trefle) Identify(ctx context.Context, query string) (*model.ProviderRecord, error) {
	return call(ctx, t.base, func(ctx context.Context) (*model.ProviderRecord, error) {
		sctx, cancel := t.withTimeout(ctx)
		plants, err := t.client.SearchPlants(sctx, query)
		cancel()
		if err != nil {
			return nil, err
		}
		if len(plants) == 0 {
			return nil, NoMatch(t.desc.Name)
		}

		p := plants[0]
		var detail *trefle.PlantDetail
		if p.ID != 0 {
			dctx, cancel := t.withTimeout(ctx)
			detail, err = t.client.Plant(dctx, p.ID)
			cancel()
			if err != nil {
				zap.L().Warn("trefle plant detail unavailable, using generic care",
					zap.Int("plant_id", p.ID),
					zap.Error(err),
				)
				detail = nil
			}
		}

		name := p.DisplayName()
		if name == "" {
			name = query
		}
		scientific := p.ScientificName
		if scientific == "" {
			scientific = "Unknown"
		}
		family := p.Family
		description := "Plant information for " + name
		if detail != nil {
			if family == "" {
				family = detail.FamilyName()
			}
			if detail.Observations != "" {
				description = detail.Observations
			}
		}
		confidence := "medium"
		if p.CommonName != "" {
			confidence = "high"
		}

		return &model.ProviderRecord{
			Provider:       t.desc.Name,
			ExternalID:     strconv.Itoa(p.ID),
			CommonName:     name,
			ScientificName: scientific,
			Family:         family,
			Description:    description,
			Care:           trefleCare(detail),
			Confidence:     confidence,
		}, nil
	})
}

// SearchMany returns up to limit plant summaries.
func (t *Trefle) SearchMany(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	return call(ctx, t.base, func(ctx context.Context) ([]model.SearchResult, error) {
		ctx, cancel := t.withTimeout(ctx)
		defer cancel()
		plants, err := t.client.SearchPlants(ctx, query)
		if err != nil {
			return nil, err
		}
		if limit > 0 && len(plants) > limit {
			plants = plants[:limit]
		}

		out := make([]model.SearchResult, 0, len(plants))
		for _, p := range plants {
			name := p.DisplayName()
			if name == "" {
				name = query
			}
			botanical := p.ScientificName
			if botanical == "" {
				botanical = "Unknown"
			}
			kind := p.Family
			if kind == "" {
				kind = "Plant"
			}
			out = append(out, model.SearchResult{
				ID:            "trefle_" + strconv.Itoa(p.ID),
				Name:          name,
				BotanicalName: botanical,
				Type:          kind,
				Image:         imageOr(p.ImageURL, name),
				Watering:      "Check care guide",
				Sunlight:      "Varies by species",
				About:         name + " from Trefle database",
				Description:   "Scientific name: " + botanical,
				Source:        "Trefle",
			})
		}
		return out, nil
	})
}

// Details loads a Trefle plant by id.
func (t *Trefle) Details(ctx context.Context, externalID string) (*model.ProviderRecord, error) {
	id, err := strconv.Atoi(externalID)
	if err != nil {
		return nil, &Error{Provider: t.desc.Name, Kind: KindNoMatch, Err: eris.Wrapf(err, "trefle: invalid plant id %q", externalID)}
	}

	return call(ctx, t.base, func(ctx context.Context) (*model.ProviderRecord, error) {
		ctx, cancel := t.withTimeout(ctx)
		defer cancel()
		d, err := t.client.Plant(ctx, id)
		if err != nil {
			return nil, err
		}
		name := d.CommonName
		if name == "" {
			name = d.ScientificName
		}
		scientific := d.ScientificName
		if scientific == "" {
			scientific = "Unknown"
		}
		description := d.Observations
		if description == "" {
			description = "Plant information from Trefle"
		}
		return &model.ProviderRecord{
			Provider:       t.desc.Name,
			ExternalID:     externalID,
			CommonName:     name,
			ScientificName: scientific,
			Family:         d.FamilyName(),
			Description:    description,
			Care:           trefleCare(d),
			Confidence:     "high",
		}, nil
	})
}

// trefleCare appends growth requirements to the generic template.
func trefleCare(d *trefle.PlantDetail) model.CareGuide {
	care := model.GenericCare()
	if d == nil {
		return care
	}
	g := d.GrowthInfo()
	if g == nil {
		return care
	}

	if g.PhMinimum != nil {
		ph := "Preferred pH: " + num(*g.PhMinimum)
		if g.PhMaximum != nil {
			ph += " - " + num(*g.PhMaximum)
		}
		care[model.CareSoil] = append(care[model.CareSoil], ph)
	}
	if g.Light != nil {
		care[model.CareSunlight] = append(care[model.CareSunlight], fmt.Sprintf("Light: %s/10", num(*g.Light)))
	}
	if g.AtmosphericHumidity != nil {
		care[model.CareSeasonalTips] = append(care[model.CareSeasonalTips], fmt.Sprintf("Humidity: %s/10", num(*g.AtmosphericHumidity)))
	}
	if g.SoilHumidity != nil {
		care[model.CareWatering] = append(care[model.CareWatering], fmt.Sprintf("Soil moisture: %s/10", num(*g.SoilHumidity)))
	}
	if lo, hi := degC(g.MinimumTemperature), degC(g.MaximumTemperature); lo != "" || hi != "" {
		switch {
		case lo != "" && hi != "":
			care[model.CareTemperature] = append(care[model.CareTemperature], fmt.Sprintf("Tolerates %s°C to %s°C", lo, hi))
		case lo != "":
			care[model.CareTemperature] = append(care[model.CareTemperature], fmt.Sprintf("Minimum temperature: %s°C", lo))
		default:
			care[model.CareTemperature] = append(care[model.CareTemperature], fmt.Sprintf("Maximum temperature: %s°C", hi))
		}
	}
	return care
}

func degC(t *trefle.Temperature) string {
	if t == nil || t.DegC == nil {
		return ""
	}
	return num(*t.DegC)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
