package ddsave

import (
	"bytes"
	"strings"
	"testing"

	"github.com/scigolib/ddsave/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatF32ShortestRoundTrip(t *testing.T) {
	assert.Equal(t, "1", formatF32(1.0))
	assert.Equal(t, "1.5", formatF32(1.5))
	assert.Equal(t, "0", formatF32(0))
}

// buildMinimalFile constructs a single-object File by hand (root with one
// scalar child) without going through FromJSON, to exercise WriteJSON's
// array/vector/escape formatting directly.
func buildMinimalFile(t *testing.T, childType FieldType) *File {
	t.Helper()
	file := &File{}
	rootIdx, err := file.f.createField("root")
	require.NoError(t, err)
	file.dat = append(file.dat, Field{Name: "root", Type: FieldType{Kind: KindObject}})

	rootObj, err := file.o.createObject(rootIdx, false, 0)
	require.NoError(t, err)
	file.f.markObject(rootIdx, rootObj)

	childIdx, err := file.f.createField("child")
	require.NoError(t, err)
	file.dat = append(file.dat, Field{Name: "child", HasParent: true, Parent: rootObj, Type: childType})

	oi := file.o.get(rootObj)
	oi.numDirectChilds = 1
	oi.numAllChilds = 1
	file.dat[rootIdx].Type.Children = []FieldIdx{childIdx}

	h, err := fixupHeader(file.o.len(), file.f.len(), 1, 0)
	require.NoError(t, err)
	file.h = *h
	return file
}

func TestWriteJSONIntVector(t *testing.T) {
	file := buildMinimalFile(t, FieldType{Kind: KindIntVector, IntVec: []int32{1, 2, 3}})
	var buf bytes.Buffer
	require.NoError(t, file.WriteJSON(&buf, 0, JSONWriteOptions{}))
	assert.Contains(t, buf.String(), `"child" : [1, 2, 3]`)
}

func TestWriteJSONStringEscaping(t *testing.T) {
	file := buildMinimalFile(t, FieldType{Kind: KindString, Str: "line\nbreak"})
	var buf bytes.Buffer
	require.NoError(t, file.WriteJSON(&buf, 0, JSONWriteOptions{}))
	assert.Contains(t, buf.String(), `"child" : "line\nbreak"`)
}

func TestWriteJSONFloatArray(t *testing.T) {
	file := buildMinimalFile(t, FieldType{Kind: KindFloatArray, FloatVec: []float32{1, 2.5}})
	var buf bytes.Buffer
	require.NoError(t, file.WriteJSON(&buf, 0, JSONWriteOptions{}))
	assert.Contains(t, buf.String(), `"child" : [1, 2.5]`)
}

func TestWriteJSONEmptyObjectChild(t *testing.T) {
	file := buildMinimalFile(t, FieldType{Kind: KindObject})
	var buf bytes.Buffer
	require.NoError(t, file.WriteJSON(&buf, 0, JSONWriteOptions{}))
	assert.Contains(t, buf.String(), `"child" : {}`)
}

func TestWriteJSONUnhashesLoneInt(t *testing.T) {
	hash := utils.NameHash([]byte("jester"))
	file := buildMinimalFile(t, FieldType{Kind: KindInt, Int: hash})
	var buf bytes.Buffer
	require.NoError(t, file.WriteJSON(&buf, 0, JSONWriteOptions{Unhash: map[int32]string{hash: "jester"}}))
	assert.Contains(t, buf.String(), `"child" : "###jester"`)

	reparsed, err := FromJSON(strings.NewReader(buf.String()))
	require.NoError(t, err)
	child := byName(t, reparsed, "child")
	require.Equal(t, KindInt, child.Type.Kind)
	assert.Equal(t, hash, child.Type.Int)
}

func TestWriteJSONUnhashesIntVectorElement(t *testing.T) {
	hash := utils.NameHash([]byte("jester"))
	file := buildMinimalFile(t, FieldType{Kind: KindIntVector, IntVec: []int32{1, hash}})
	var buf bytes.Buffer
	require.NoError(t, file.WriteJSON(&buf, 0, JSONWriteOptions{Unhash: map[int32]string{hash: "jester"}}))
	assert.Contains(t, buf.String(), `"child" : [1, "###jester"]`)
}

func TestWriteJSONLeavesUnmappedIntsAlone(t *testing.T) {
	file := buildMinimalFile(t, FieldType{Kind: KindInt, Int: 42})
	var buf bytes.Buffer
	require.NoError(t, file.WriteJSON(&buf, 0, JSONWriteOptions{Unhash: map[int32]string{7: "other"}}))
	assert.Contains(t, buf.String(), `"child" : 42`)
}

func TestWriteJSONIncludesVersionField(t *testing.T) {
	file := buildMinimalFile(t, FieldType{Kind: KindBool, Bool: true})
	var buf bytes.Buffer
	require.NoError(t, file.WriteJSON(&buf, 0, JSONWriteOptions{}))
	assert.Contains(t, buf.String(), `"__revision_dont_touch": 1`)
}
