package model

import "strings"

// CareRecord is the resolved plant with structured care advice.
type CareRecord struct {
	ID             string     `json:"id,omitempty"`
	CommonName     string     `json:"common_name"`
	ScientificName string     `json:"scientific_name"`
	Type           string     `json:"type,omitempty"`
	Family         string     `json:"family,omitempty"`
	Description    string     `json:"description"`
	Care           CareGuide  `json:"care_categories"`
	Provenance     Provenance `json:"provenance"`
}

// ProviderRecord is the intermediate shape a provider adapter produces.
// Values stored in the response cache are shared and must not be mutated.
type ProviderRecord struct {
	Provider       string    `json:"provider"`
	ExternalID     string    `json:"external_id,omitempty"`
	CommonName     string    `json:"common_name"`
	ScientificName string    `json:"scientific_name"`
	Family         string    `json:"family,omitempty"`
	Description    string    `json:"description"`
	Care           CareGuide `json:"care"`
	Confidence     string    `json:"confidence,omitempty"`
}

// CatalogPlant is a plant stored in the local catalog.
type CatalogPlant struct {
	ID            string    `json:"id" validate:"omitempty,max=128"`
	Name          string    `json:"name" validate:"required,max=200"`
	CommonName    string    `json:"common_name,omitempty" validate:"max=200"`
	BotanicalName string    `json:"botanical_name,omitempty" validate:"max=200"`
	Type          string    `json:"type,omitempty"`
	Description   string    `json:"description,omitempty"`
	ImageURL      string    `json:"image_url,omitempty" validate:"omitempty,url"`
	Care          CareGuide `json:"care"`
}

// Matches reports a case-insensitive exact match on the name fields.
func (p CatalogPlant) Matches(name string) bool {
	name = Fold(name)
	if name == "" {
		return false
	}
	for _, field := range []string{p.Name, p.CommonName, p.BotanicalName} {
		if field != "" && Fold(field) == name {
			return true
		}
	}
	return false
}

// Contains reports a case-insensitive substring match on the searchable fields.
func (p CatalogPlant) Contains(query string) bool {
	query = Fold(query)
	if query == "" {
		return false
	}
	for _, field := range []string{p.Name, p.CommonName, p.BotanicalName, p.Description} {
		if strings.Contains(Fold(field), query) {
			return true
		}
	}
	return false
}

// CareRecord converts a catalog hit into a resolved record.
func (p CatalogPlant) CareRecord() *CareRecord {
	name := p.Name
	if name == "" {
		name = p.CommonName
	}
	return &CareRecord{
		ID:             p.ID,
		CommonName:     name,
		ScientificName: p.BotanicalName,
		Type:           p.Type,
		Description:    p.Description,
		Care:           p.Care.Clone(),
		Provenance:     Provenance{SourceKind: SourceLocalCatalog},
	}
}

// SearchResult is a single summary row returned by plant search.
type SearchResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	BotanicalName string `json:"botanical_name"`
	Type          string `json:"type"`
	Image         string `json:"image"`
	Watering      string `json:"watering"`
	Sunlight      string `json:"sunlight"`
	About         string `json:"about"`
	Description   string `json:"description"`
	Source        string `json:"source"`
}
