package catalog

import (
	"context"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/plantcare/internal/fetcher"
	"github.com/sells-group/plantcare/internal/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// seedRecord is one plant as it appears in a seed file. Several spellings
// are accepted for the same field, and care advice may be nested under
// "care" or given as top-level category fields.
type seedRecord struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	CommonName         string          `json:"common_name"`
	BotanicalName      string          `json:"botanicalName"`
	BotanicalNameSnake string          `json:"botanical_name"`
	Type               string          `json:"type"`
	About              string          `json:"about"`
	Description        string          `json:"description"`
	Image              string          `json:"image"`
	ImageURL           string          `json:"image_url"`
	Care               model.CareGuide `json:"care"`

	Watering     model.AdviceList `json:"watering"`
	Sunlight     model.AdviceList `json:"sunlight"`
	Soil         model.AdviceList `json:"soil"`
	Fertilizer   model.AdviceList `json:"fertilizer"`
	Temperature  model.AdviceList `json:"temperature"`
	Pests        model.AdviceList `json:"pests"`
	Pruning      model.AdviceList `json:"pruning"`
	SeasonalTips model.AdviceList `json:"seasonalTips"`
}

func (r seedRecord) flat() map[model.CareCategory]model.AdviceList {
	return map[model.CareCategory]model.AdviceList{
		model.CareWatering:     r.Watering,
		model.CareSunlight:     r.Sunlight,
		model.CareSoil:         r.Soil,
		model.CareFertilizer:   r.Fertilizer,
		model.CareTemperature:  r.Temperature,
		model.CarePests:        r.Pests,
		model.CarePruning:      r.Pruning,
		model.CareSeasonalTips: r.SeasonalTips,
	}
}

// plant normalizes the record. Nested care wins over a top-level field of
// the same category; every category is present in the result.
func (r seedRecord) plant() model.CatalogPlant {
	name := strings.TrimSpace(firstNonBlank(r.Name, r.CommonName))
	p := model.CatalogPlant{
		ID:            strings.TrimSpace(r.ID),
		Name:          name,
		CommonName:    strings.TrimSpace(r.CommonName),
		BotanicalName: strings.TrimSpace(firstNonBlank(r.BotanicalName, r.BotanicalNameSnake)),
		Type:          strings.TrimSpace(r.Type),
		Description:   strings.TrimSpace(firstNonBlank(r.About, r.Description)),
		ImageURL:      imageURL(firstNonBlank(r.ImageURL, r.Image)),
		Care:          model.NewCareGuide(),
	}
	if p.CommonName == p.Name {
		p.CommonName = ""
	}
	flat := r.flat()
	for _, c := range model.CareCategories {
		if advice := r.Care[c]; len(advice) > 0 {
			p.Care[c] = append([]string(nil), advice...)
		} else if len(flat[c]) > 0 {
			p.Care[c] = append([]string(nil), flat[c]...)
		}
	}
	if p.ID == "" && p.Name != "" {
		p.ID = PlantID(p.Name, p.BotanicalName)
	}
	return p
}

func firstNonBlank(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

// imageURL keeps only http(s) images. Emoji placeholders are dropped and
// regenerated at display time.
func imageURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	return ""
}

// PlantID derives a stable id from the name pair so reseeding the same file
// updates rows in place.
func PlantID(name, botanical string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(model.Fold(name)+"|"+model.Fold(botanical))).String()
}

// LoadSeedFile reads plants from a JSON, CSV, TSV or XLSX seed file. JSON may
// be a top-level array or {"plants": [...]}. Tabular files need a header row.
// The first invalid record fails the load.
func LoadSeedFile(ctx context.Context, path string) ([]model.CatalogPlant, error) {
	format, err := fetcher.DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var records []seedRecord
	switch format {
	case fetcher.FormatJSON:
		records, err = readJSONSeed(ctx, path)
	case fetcher.FormatText:
		return nil, eris.Errorf("catalog: seed file %s has no columns", path)
	default:
		records, err = readTabularSeed(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	plants := make([]model.CatalogPlant, 0, len(records))
	for i, r := range records {
		p := r.plant()
		if err := validate.Struct(p); err != nil {
			return nil, eris.Wrapf(err, "catalog: seed record %d", i+1)
		}
		plants = append(plants, p)
	}
	return plants, nil
}

func readJSONSeed(ctx context.Context, path string) ([]seedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: open seed file %s", path)
	}
	defer f.Close() //nolint:errcheck

	out, errs := fetcher.DecodeJSONArray[seedRecord](ctx, f, fetcher.JSONOptions{Key: "plants"})
	var records []seedRecord
	for r := range out {
		records = append(records, r)
	}
	for err := range errs {
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: read seed file %s", path)
		}
	}
	return records, nil
}

func readTabularSeed(ctx context.Context, path string) ([]seedRecord, error) {
	rows, err := fetcher.Collect(fetcher.StreamRows(ctx, path))
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read seed file %s", path)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = headerKey(h)
	}

	records := make([]seedRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var r seedRecord
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			r.set(header[i], cell)
		}
		records = append(records, r)
	}
	return records, nil
}

// headerKey folds "Botanical Name", "botanical-name" and "botanicalName"
// to "botanicalname".
func headerKey(h string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(h)))
}

func (r *seedRecord) set(key, value string) {
	value = strings.TrimSpace(value)
	switch key {
	case "id":
		r.ID = value
	case "name":
		r.Name = value
	case "commonname":
		r.CommonName = value
	case "botanicalname", "scientificname":
		r.BotanicalName = value
	case "type":
		r.Type = value
	case "about", "description":
		r.Description = firstNonBlank(r.Description, value)
	case "image", "imageurl":
		r.ImageURL = firstNonBlank(r.ImageURL, value)
	case "watering":
		r.Watering = splitAdvice(value)
	case "sunlight":
		r.Sunlight = splitAdvice(value)
	case "soil":
		r.Soil = splitAdvice(value)
	case "fertilizer":
		r.Fertilizer = splitAdvice(value)
	case "temperature":
		r.Temperature = splitAdvice(value)
	case "pests":
		r.Pests = splitAdvice(value)
	case "pruning":
		r.Pruning = splitAdvice(value)
	case "seasonaltips":
		r.SeasonalTips = splitAdvice(value)
	default:
		zap.L().Debug("catalog: ignoring seed column", zap.String("column", key))
	}
}

// splitAdvice splits a spreadsheet cell holding several tips separated by
// "|", ";" or newlines.
func splitAdvice(cell string) model.AdviceList {
	parts := strings.FieldsFunc(cell, func(r rune) bool {
		return r == '|' || r == ';' || r == '\n'
	})
	var out model.AdviceList
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Seed loads path into c. With replace set, existing plants are removed
// first.
func Seed(ctx context.Context, c Catalog, path string, replace bool) (int64, error) {
	plants, err := LoadSeedFile(ctx, path)
	if err != nil {
		return 0, err
	}
	var n int64
	if replace {
		n, err = c.Replace(ctx, plants)
	} else {
		n, err = c.Upsert(ctx, plants)
	}
	if err != nil {
		return 0, eris.Wrapf(err, "catalog: seed from %s", path)
	}
	zap.L().Info("catalog: seeded",
		zap.String("path", path),
		zap.Int64("plants", n),
		zap.Bool("replace", replace),
	)
	return n, nil
}
