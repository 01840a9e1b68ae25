package provider

import (
	"strings"
)

// DefaultImage is the placeholder used when a source has no imagery.
const DefaultImage = "🌿"

// emojiByKeyword is scanned in order; the first keyword found in the plant
// name picks the placeholder.
var emojiByKeyword = []struct {
	keyword string
	emoji   string
}{
	{"rose", "🌹"},
	{"sunflower", "🌻"},
	{"tulip", "🌷"},
	{"lily", "🌸"},
	{"orchid", "🌸"},
	{"hibiscus", "🌺"},
	{"cactus", "🌵"},
	{"aloe", "🌵"},
	{"succulent", "🌵"},
	{"palm", "🌴"},
	{"fern", "🍀"},
	{"tomato", "🍅"},
	{"pepper", "🌶️"},
	{"basil", "🌿"},
	{"mint", "🌿"},
	{"bamboo", "🎋"},
	{"tree", "🌳"},
}

// PlaceholderImage picks an emoji for a plant with no image URL.
func PlaceholderImage(name string) string {
	lower := strings.ToLower(name)
	for _, e := range emojiByKeyword {
		if strings.Contains(lower, e.keyword) {
			return e.emoji
		}
	}
	return DefaultImage
}

// imageOr returns url, or a placeholder derived from name.
func imageOr(url, name string) string {
	if url != "" {
		return url
	}
	return PlaceholderImage(name)
}

var sunlightLabels = map[string]string{
	"full sun":            "Bright Direct",
	"full_sun":            "Bright Direct",
	"sun-part shade":      "Bright Indirect",
	"part sun/part shade": "Bright Indirect",
	"part shade":          "Medium Indirect",
	"part_shade":          "Medium Indirect",
	"filtered shade":      "Medium Indirect",
	"full shade":          "Low Light",
	"full_shade":          "Low Light",
	"deep shade":          "Low Light",
}

// SunlightLabel maps a provider sunlight value to a display label.
func SunlightLabel(values []string) string {
	for _, v := range values {
		if label, ok := sunlightLabels[strings.ToLower(strings.TrimSpace(v))]; ok {
			return label
		}
	}
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return "Bright indirect light"
}

var wateringLabels = map[string]string{
	"frequent": "Weekly",
	"average":  "Every 1-2 weeks",
	"minimum":  "Every 2-3 weeks",
	"none":     "Rarely",
}

// WateringLabel maps a provider watering value to a display label.
func WateringLabel(value string) string {
	if label, ok := wateringLabels[strings.ToLower(strings.TrimSpace(value))]; ok {
		return label
	}
	if value != "" {
		return value
	}
	return "Regular"
}

var typeLabels = map[string]string{
	"perennial":            "Perennial",
	"annual":               "Annual",
	"biennial":             "Biennial",
	"biannual":             "Biennial",
	"herbaceous perennial": "Perennial",
}

// TypeLabel maps a provider life-cycle value to a plant type.
func TypeLabel(cycle string) string {
	if label, ok := typeLabels[strings.ToLower(strings.TrimSpace(cycle))]; ok {
		return label
	}
	return "Plant"
}
