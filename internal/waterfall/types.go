package waterfall

import (
	"time"

	"github.com/sells-group/plantcare/internal/model"
)

// Pass identifies which waterfall pass made an attempt.
type Pass int

// Waterfall passes.
const (
	PassCorrected Pass = 1 // normalized name
	PassRaw       Pass = 2 // user's name verbatim
)

// Outcome is the result of one provider attempt.
type Outcome string

// Attempt outcomes.
const (
	OutcomeHit         Outcome = "hit"
	OutcomeNoMatch     Outcome = "no_match"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeRateLimited Outcome = "rate_limited"
)

// Attempt records a single provider lookup during resolution.
type Attempt struct {
	Provider string  `json:"provider"`
	Pass     Pass    `json:"pass"`
	Query    string  `json:"query"`
	Outcome  Outcome `json:"outcome"`
	Cached   bool    `json:"cached"`
}

// Resolution is the overall output of resolving one plant name.
type Resolution struct {
	Input    string            `json:"input"`
	Record   *model.CareRecord `json:"record"`
	Attempts []Attempt         `json:"attempts,omitempty"`
	Elapsed  time.Duration     `json:"elapsed"`
}

// ProviderCalls counts attempts that reached a provider rather than the cache.
func (r *Resolution) ProviderCalls() int {
	n := 0
	for _, a := range r.Attempts {
		if !a.Cached {
			n++
		}
	}
	return n
}
