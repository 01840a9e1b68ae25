package model

import "fmt"

// SourceKind identifies which stage of resolution produced a CareRecord.
type SourceKind string

// Source kinds.
const (
	SourceLocalCatalog    SourceKind = "local_catalog"
	SourceProvider        SourceKind = "provider"
	SourceGenericTemplate SourceKind = "generic_template"
)

// NameCorrection records a normalization that changed the user's input.
type NameCorrection struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
}

// Provenance describes where a CareRecord came from.
type Provenance struct {
	SourceKind SourceKind      `json:"source_kind"`
	Provider   string          `json:"provider,omitempty"`
	Correction *NameCorrection `json:"correction,omitempty"`
}

// CorrectedFrom returns the original input when the name was corrected.
func (p Provenance) CorrectedFrom() string {
	if p.Correction == nil {
		return ""
	}
	return p.Correction.Original
}

// CareSource returns the tag persisted alongside a user's plant.
func (p Provenance) CareSource() string {
	switch p.SourceKind {
	case SourceLocalCatalog:
		return "plantCareDatabase"
	case SourceProvider:
		return "api_" + p.Provider
	default:
		return "generic_template"
	}
}

var sourceNotes = map[string]string{
	"plantCareDatabase": "Care information from local plant database",
	"api_perenual":      "Care information from Perenual Plant Database",
	"api_trefle":        "Care information from Trefle API",
	"generic_template":  "General plant care guidelines - you can customize these",
}

// SourceNote returns a human readable note about the care source.
func (p Provenance) SourceNote() string {
	note, ok := sourceNotes[p.CareSource()]
	if !ok {
		note = "Plant care information"
	}
	if p.Correction != nil {
		note += fmt.Sprintf(" (Name corrected from %q)", p.Correction.Original)
	}
	if p.SourceKind == SourceGenericTemplate {
		note += " - You can edit care details later"
	}
	return note
}
