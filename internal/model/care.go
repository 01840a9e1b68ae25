// Package model defines the plant care records exchanged between the catalog,
// the botanical data providers and the resolution pipeline.
package model

import "encoding/json"

// CareCategory is one of the fixed care advice sections.
type CareCategory string

// Care categories. Every CareGuide carries all of them.
const (
	CareWatering     CareCategory = "watering"
	CareSunlight     CareCategory = "sunlight"
	CareSoil         CareCategory = "soil"
	CareFertilizer   CareCategory = "fertilizer"
	CareTemperature  CareCategory = "temperature"
	CarePests        CareCategory = "pests"
	CarePruning      CareCategory = "pruning"
	CareSeasonalTips CareCategory = "seasonalTips"
)

// CareCategories lists the categories in display order.
var CareCategories = []CareCategory{
	CareWatering,
	CareSunlight,
	CareSoil,
	CareFertilizer,
	CareTemperature,
	CarePests,
	CarePruning,
	CareSeasonalTips,
}

// ParseCareCategory maps a category key to its CareCategory.
func ParseCareCategory(key string) (CareCategory, bool) {
	for _, c := range CareCategories {
		if string(c) == key {
			return c, true
		}
	}
	return "", false
}

// CareGuide maps each care category to ordered advice strings.
type CareGuide map[CareCategory][]string

// NewCareGuide returns a guide with every category present and empty.
func NewCareGuide() CareGuide {
	g := make(CareGuide, len(CareCategories))
	for _, c := range CareCategories {
		g[c] = []string{}
	}
	return g
}

// GenericCare returns a fresh copy of the fallback care template.
func GenericCare() CareGuide {
	return CareGuide{
		CareWatering: {
			"Water when the top inch of soil feels dry",
			"Adjust watering frequency based on season and environment",
		},
		CareSunlight: {
			"Provide appropriate light conditions - most plants prefer bright indirect light",
		},
		CareSoil: {
			"Use well-draining potting mix suitable for plant type",
		},
		CareFertilizer: {
			"Feed with balanced fertilizer during active growing season",
			"Reduce feeding in winter",
		},
		CareTemperature: {
			"Maintain temperatures between 18-24°C for most plants",
			"Avoid drafts and sudden temperature changes",
		},
		CarePests: {
			"Regularly inspect for common pests",
			"Treat infestations early with appropriate methods",
		},
		CarePruning: {
			"Remove dead or yellowing leaves",
			"Prune to maintain shape and encourage growth",
		},
		CareSeasonalTips: {
			"Reduce watering in winter",
			"Increase humidity in dry conditions",
			"Rotate plant for even growth",
		},
	}
}

// Clone returns a deep copy with every category present. Unknown keys are dropped.
func (g CareGuide) Clone() CareGuide {
	out := NewCareGuide()
	for _, c := range CareCategories {
		if advice := g[c]; len(advice) > 0 {
			out[c] = append([]string(nil), advice...)
		}
	}
	return out
}

// Empty reports whether no category holds any advice.
func (g CareGuide) Empty() bool {
	for _, c := range CareCategories {
		if len(g[c]) > 0 {
			return false
		}
	}
	return true
}

// First returns the first advice line for a category, or "".
func (g CareGuide) First(c CareCategory) string {
	if advice := g[c]; len(advice) > 0 {
		return advice[0]
	}
	return ""
}

// MarshalJSON always emits all eight category keys.
func (g CareGuide) MarshalJSON() ([]byte, error) {
	out := make(map[string][]string, len(CareCategories))
	for _, c := range CareCategories {
		advice := g[c]
		if advice == nil {
			advice = []string{}
		}
		out[string(c)] = advice
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts either a list or a single string per category.
func (g *CareGuide) UnmarshalJSON(data []byte) error {
	var raw map[string]AdviceList
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := NewCareGuide()
	for key, advice := range raw {
		if c, ok := ParseCareCategory(key); ok && len(advice) > 0 {
			out[c] = []string(advice)
		}
	}
	*g = out
	return nil
}

// AdviceList decodes a JSON string or array of strings into a list.
type AdviceList []string

// UnmarshalJSON implements json.Unmarshaler.
func (a *AdviceList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = compact(list)
		return nil
	}
	var single *string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == nil || *single == "" {
		*a = nil
		return nil
	}
	*a = AdviceList{*single}
	return nil
}

func compact(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
