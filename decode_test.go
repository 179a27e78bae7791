package ddsave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOffsetSizesTakesArbitraryPhysicalOrder(t *testing.T) {
	// Declared in file order offset 20, 0, 10 — computeOffsetSizes must
	// still derive correct per-field sizes by sorting offsets first.
	f := &fields{items: []fieldInfo{
		{offset: 20},
		{offset: 0},
		{offset: 10},
	}}
	sizes, err := computeOffsetSizes(f, 30)
	require.NoError(t, err)
	assert.Equal(t, 10, sizes[0])
	assert.Equal(t, 10, sizes[10])
	assert.Equal(t, 10, sizes[20])
}

func TestComputeOffsetSizesRejectsOffsetPastDataLen(t *testing.T) {
	f := &fields{items: []fieldInfo{{offset: 100}}}
	_, err := computeOffsetSizes(f, 10)
	require.Error(t, err)
}

func TestComputeOffsetSizesEmpty(t *testing.T) {
	f := &fields{}
	sizes, err := computeOffsetSizes(f, 0)
	require.NoError(t, err)
	assert.Empty(t, sizes)
}
