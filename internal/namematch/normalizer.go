package namematch

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/plantcare/internal/model"
)

const (
	// DefaultThreshold is the similarity a canonical name must exceed to be chosen.
	DefaultThreshold = 0.7

	maxSuggestions   = 8
	minSuggestPrefix = 2
)

// Normalizer corrects plant names against an alias table. It is immutable
// after construction and safe for concurrent use.
type Normalizer struct {
	aliases   AliasTable
	canonical map[string]bool
	threshold float64
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithThreshold overrides the similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(n *Normalizer) {
		if threshold > 0 && threshold <= 1 {
			n.threshold = threshold
		}
	}
}

// New creates a Normalizer over the given table.
func New(aliases AliasTable, opts ...Option) *Normalizer {
	n := &Normalizer{
		aliases:   make(AliasTable, 0, len(aliases)),
		canonical: make(map[string]bool, len(aliases)),
		threshold: DefaultThreshold,
	}
	for _, a := range aliases {
		canonical := model.Fold(a.Canonical)
		if canonical == "" || n.canonical[canonical] {
			continue
		}
		variants := make([]string, 0, len(a.Variants))
		for _, v := range a.Variants {
			if v = model.Fold(v); v != "" {
				variants = append(variants, v)
			}
		}
		n.canonical[canonical] = true
		n.aliases = append(n.aliases, Alias{Canonical: canonical, Variants: variants})
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Aliases returns the table in match order.
func (n *Normalizer) Aliases() AliasTable {
	return slices.Clone(n.aliases)
}

// IsCanonical reports whether name is a canonical key.
func (n *Normalizer) IsCanonical(name string) bool {
	return n.canonical[model.Fold(name)]
}

// Normalize maps input to a canonical name. When nothing matches it returns
// the trimmed, lowercased input. Blank input yields "".
func (n *Normalizer) Normalize(input string) string {
	clean := model.Fold(input)
	if clean == "" {
		return ""
	}

	if n.canonical[clean] {
		return clean
	}

	for _, a := range n.aliases {
		if slices.Contains(a.Variants, clean) {
			return a.Canonical
		}
		if strings.Contains(clean, a.Canonical) || strings.Contains(a.Canonical, clean) {
			return a.Canonical
		}
	}

	best, bestScore := "", 0.0
	for _, a := range n.aliases {
		score := Similarity(clean, a.Canonical)
		if score > bestScore && score > n.threshold {
			best, bestScore = a.Canonical, score
		}
	}
	if best != "" {
		return best
	}
	return clean
}

// Suggest returns up to eight canonical names related to partial, for
// autocomplete. Inputs shorter than two characters yield no suggestions.
func (n *Normalizer) Suggest(partial string) []string {
	clean := model.Fold(partial)
	out := []string{}
	if utf8.RuneCountInString(clean) < minSuggestPrefix {
		return out
	}

	for _, a := range n.aliases {
		if len(out) == maxSuggestions {
			break
		}
		if related(clean, a.Canonical) || slices.ContainsFunc(a.Variants, func(v string) bool { return related(clean, v) }) {
			out = append(out, a.Canonical)
		}
	}
	return out
}

func related(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
