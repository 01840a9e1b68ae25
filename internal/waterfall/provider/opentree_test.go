package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/plantcare/pkg/opentree"
)

type fakeOpenTree struct {
	taxa []opentree.Taxon
	err  error
}

func (f *fakeOpenTree) Autocomplete(_ context.Context, _ string) ([]opentree.Taxon, error) {
	return f.taxa, f.err
}

func TestOpenTree_SearchMany(t *testing.T) {
	f := &fakeOpenTree{taxa: []opentree.Taxon{
		{OTTID: 1, UniqueName: "Rosa"},
		{OTTID: 2, UniqueName: "Rosa canina"},
		{OTTID: 3, UniqueName: "Rosa gallica"},
	}}
	o := NewOpenTree(f, Settings{Descriptor: Descriptor{Priority: 3, Enabled: true}})

	results, err := o.SearchMany(context.Background(), "rosa", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "opentree_1", results[0].ID)
	assert.Equal(t, "Open Tree of Life", results[0].Source)
	assert.Equal(t, DefaultImage, results[0].Image)
	assert.Equal(t, "Rosa canina from Open Tree of Life taxonomy database", results[1].About)
	assert.Equal(t, "opentree", o.Descriptor().Name)
}

func TestOpenTree_SearchMany_Error(t *testing.T) {
	o := NewOpenTree(&fakeOpenTree{err: errors.New("connection refused")}, Settings{})
	_, err := o.SearchMany(context.Background(), "rosa", 5)
	assert.Equal(t, KindUnavailable, KindOf(err))
}

func TestOpenTree_IsNotAnIdentifier(t *testing.T) {
	var p Provider = NewOpenTree(&fakeOpenTree{}, Settings{})
	_, ok := p.(Identifier)
	assert.False(t, ok)
}
