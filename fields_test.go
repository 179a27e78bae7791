package ddsave

import (
	"bytes"
	"testing"

	"github.com/scigolib/ddsave/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFieldPacksNameHashAndLength(t *testing.T) {
	f := &fields{}
	idx, err := f.createField("hero_name")
	require.NoError(t, err)
	assert.Equal(t, FieldIdx(0), idx)

	fi := f.get(idx)
	assert.Equal(t, utils.NameHash([]byte("hero_name")), fi.nameHash)
	assert.Equal(t, uint32(len("hero_name")+1), fi.nameLength())
	assert.False(t, fi.isObject())
}

func TestMarkObjectSetsBitAndIndex(t *testing.T) {
	f := &fields{}
	idx, err := f.createField("some_obj")
	require.NoError(t, err)
	f.markObject(idx, ObjIdx(42))

	fi := f.get(idx)
	assert.True(t, fi.isObject())
	objIdx, ok := fi.objectIndex()
	require.True(t, ok)
	assert.Equal(t, ObjIdx(42), objIdx)
	// name_length must be preserved after the bits are OR'd in.
	assert.Equal(t, uint32(len("some_obj")+1), fi.nameLength())
}

func TestFieldsWriteClearsGarbageBit(t *testing.T) {
	f := &fields{items: []fieldInfo{{nameHash: 7, offset: 0, fieldInfoBits: garbageBit | 0b1}}}
	var buf bytes.Buffer
	require.NoError(t, f.writeTo(&buf))

	h := &header{fieldsNum: 1}
	got, err := readFields(bytes.NewReader(buf.Bytes()), h)
	require.NoError(t, err)
	assert.False(t, got.get(0).fieldInfoBits&garbageBit != 0)
	assert.True(t, got.get(0).isObject())
}

func TestReadFieldsMasksGarbageBitOnRead(t *testing.T) {
	buf := make([]byte, fieldInfoSize)
	// fieldInfoBits = garbageBit set, rest zero.
	buf[11] = 0x80
	h := &header{fieldsNum: 1}
	got, err := readFields(bytes.NewReader(buf), h)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got.get(0).fieldInfoBits)
}

func TestSetOffset(t *testing.T) {
	f := &fields{}
	idx, err := f.createField("x")
	require.NoError(t, err)
	f.setOffset(idx, 123)
	assert.Equal(t, uint32(123), f.get(idx).offset)
}
