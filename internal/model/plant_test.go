package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogPlant_Matches(t *testing.T) {
	t.Parallel()

	p := CatalogPlant{Name: "Rose", BotanicalName: "Rosa"}
	assert.True(t, p.Matches("rose"))
	assert.True(t, p.Matches("  ROSA "))
	assert.False(t, p.Matches("ros"))
	assert.False(t, p.Matches(""))
}

func TestCatalogPlant_Contains(t *testing.T) {
	t.Parallel()

	p := CatalogPlant{Name: "Peace Lily", BotanicalName: "Spathiphyllum", Description: "Tolerates low light"}
	assert.True(t, p.Contains("lily"))
	assert.True(t, p.Contains("SPATH"))
	assert.True(t, p.Contains("low light"))
	assert.False(t, p.Contains("cactus"))
}

func TestCatalogPlant_CareRecord(t *testing.T) {
	t.Parallel()

	p := CatalogPlant{
		ID:            "p1",
		Name:          "Rose",
		BotanicalName: "Rosa",
		Care:          CareGuide{CareWatering: {"Deeply, twice a week"}},
	}
	rec := p.CareRecord()

	assert.Equal(t, "Rose", rec.CommonName)
	assert.Equal(t, "Rosa", rec.ScientificName)
	assert.Equal(t, SourceLocalCatalog, rec.Provenance.SourceKind)
	assert.Nil(t, rec.Provenance.Correction)
	assert.Len(t, rec.Care, 8)
	assert.Equal(t, []string{"Deeply, twice a week"}, rec.Care[CareWatering])
}
