package ddsave

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectsWriteReadRoundTrip(t *testing.T) {
	o := &objects{}
	root, err := o.createObject(0, false, 0)
	require.NoError(t, err)
	assert.Equal(t, ObjIdx(0), root)

	child, err := o.createObject(3, true, root)
	require.NoError(t, err)
	assert.Equal(t, ObjIdx(1), child)

	o.get(root).numDirectChilds = 1
	o.get(root).numAllChilds = 1

	var buf bytes.Buffer
	require.NoError(t, o.writeTo(&buf))
	assert.Equal(t, int(o.calcBinSize()), buf.Len())

	h := &header{objectsNum: o.len()}
	got, err := readObjects(bytes.NewReader(buf.Bytes()), h)
	require.NoError(t, err)

	require.Equal(t, 2, int(got.len()))
	assert.False(t, got.get(0).hasParent)
	assert.True(t, got.get(1).hasParent)
	assert.Equal(t, ObjIdx(0), got.get(1).parent)
	assert.Equal(t, FieldIdx(3), got.get(1).field)
	assert.Equal(t, uint32(1), got.get(0).numDirectChilds)
}
