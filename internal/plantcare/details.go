package plantcare

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/plantcare/internal/model"
)

// Search result id prefixes.
const (
	LocalPrefix    = "local_"
	PerenualPrefix = "perenual_"
	TreflePrefix   = "trefle_"
)

// PlantDetails loads the record behind a search result id. Unknown prefixes
// and failed lookups yield generic details rather than an error.
func (s *Service) PlantDetails(ctx context.Context, id string) *model.CareRecord {
	id = strings.TrimSpace(id)
	var (
		rec *model.CareRecord
		err error
	)
	switch {
	case strings.HasPrefix(id, LocalPrefix):
		rec, err = s.localDetails(ctx, strings.TrimPrefix(id, LocalPrefix))
	case strings.HasPrefix(id, PerenualPrefix):
		rec, err = s.providerDetails(ctx, "perenual", strings.TrimPrefix(id, PerenualPrefix))
	case strings.HasPrefix(id, TreflePrefix):
		rec, err = s.providerDetails(ctx, "trefle", strings.TrimPrefix(id, TreflePrefix))
	}
	if err != nil {
		zap.L().Warn("plantcare: detail lookup failed", zap.String("id", id), zap.Error(err))
	}
	if rec == nil {
		return genericDetails(id)
	}
	rec.ID = id
	return rec
}

func (s *Service) localDetails(ctx context.Context, id string) (*model.CareRecord, error) {
	if s.deps.Catalog == nil {
		return nil, nil
	}
	plant, err := s.deps.Catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return plant.CareRecord(), nil
}

func (s *Service) providerDetails(ctx context.Context, name, externalID string) (*model.CareRecord, error) {
	if s.deps.Providers == nil {
		return nil, nil
	}
	d, ok := s.deps.Providers.Detailer(name)
	if !ok {
		return nil, nil
	}
	rec, err := d.Details(ctx, externalID)
	if err != nil || rec == nil {
		return nil, err
	}
	return &model.CareRecord{
		CommonName:     rec.CommonName,
		ScientificName: rec.ScientificName,
		Family:         rec.Family,
		Description:    rec.Description,
		Care:           rec.Care.Clone(),
		Provenance: model.Provenance{
			SourceKind: model.SourceProvider,
			Provider:   rec.Provider,
		},
	}, nil
}

func genericDetails(id string) *model.CareRecord {
	return &model.CareRecord{
		ID:          id,
		Description: "Plant details not available",
		Care:        model.GenericCare(),
		Provenance:  model.Provenance{SourceKind: model.SourceGenericTemplate},
	}
}
