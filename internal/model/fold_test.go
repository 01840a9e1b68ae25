package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Rose ", "rose"},
		{"SNAKE PLANT", "snake plant"},
		{"Érable", "érable"},
		{"E\u0301rable", "érable"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), tt.in)
	}
}

func TestCatalogPlant_MatchesDecomposedAccents(t *testing.T) {
	p := CatalogPlant{Name: "Érable", Description: "Arbre élancé"}
	assert.True(t, p.Matches("e\u0301rable"))
	assert.True(t, p.Contains("E\u0301LANC"))
}
