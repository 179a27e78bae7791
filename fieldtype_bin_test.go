package ddsave

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func TestCStringFromBytesValid(t *testing.T) {
	s, err := cStringFromBytes([]byte("hero\x00"))
	require.NoError(t, err)
	assert.Equal(t, "hero", s)
}

func TestCStringFromBytesRejectsInteriorNUL(t *testing.T) {
	_, err := cStringFromBytes([]byte("he\x00ro\x00"))
	require.Error(t, err)
}

func TestCStringFromBytesRejectsMissingNUL(t *testing.T) {
	_, err := cStringFromBytes([]byte("hero"))
	require.Error(t, err)
}

func TestDecodeHeuristicBinBool(t *testing.T) {
	ft, err := decodeFieldTypeBin([]byte{1}, 0, 1, nil, "plain_flag")
	require.NoError(t, err)
	assert.Equal(t, KindBool, ft.Kind)
	assert.True(t, ft.Bool)
}

func TestDecodeHeuristicBinInt(t *testing.T) {
	buf := u32le(42)
	ft, err := decodeFieldTypeBin(buf, 0, 4, nil, "plain_int")
	require.NoError(t, err)
	assert.Equal(t, KindInt, ft.Kind)
	assert.Equal(t, int32(42), ft.Int)
}

func TestDecodeHeuristicBinString(t *testing.T) {
	var buf []byte
	buf = append(buf, u32le(5)...) // length including NUL
	buf = append(buf, []byte("abcd\x00")...)
	ft, err := decodeFieldTypeBin(buf, 0, len(buf), nil, "plain_str")
	require.NoError(t, err)
	assert.Equal(t, KindString, ft.Kind)
	assert.Equal(t, "abcd", ft.Str)
}

func TestDecodeHeuristicBinEmbeddedMagicSniff(t *testing.T) {
	innerHeader, err := fixupHeader(0, 0, 1, 0)
	require.NoError(t, err)
	var innerBuf bytes.Buffer
	require.NoError(t, innerHeader.writeTo(&innerBuf))
	inner := innerBuf.Bytes()

	var buf []byte
	buf = append(buf, u32le(uint32(len(inner)))...)
	buf = append(buf, inner...)

	ft, err := decodeFieldTypeBin(buf, 0, len(buf), nil, "raw_data")
	require.NoError(t, err)
	assert.Equal(t, KindEmbedded, ft.Kind)
	require.NotNil(t, ft.Embedded)
}

func TestDecodeHardcodedBinFloat(t *testing.T) {
	buf := u32le(math.Float32bits(3.5))
	ft, err := decodeFieldTypeBin(buf, 0, 4, nil, "current_hp")
	require.NoError(t, err)
	assert.Equal(t, KindFloat, ft.Kind)
	assert.InDelta(t, float32(3.5), ft.Float, 1e-6)
}

func TestDecodeHardcodedBinChar(t *testing.T) {
	ft, err := decodeFieldTypeBin([]byte{'Z'}, 0, 1, nil, "requirement_code")
	require.NoError(t, err)
	assert.Equal(t, KindChar, ft.Kind)
	assert.Equal(t, byte('Z'), ft.Char)
}

func TestDecodeHardcodedBinCharRejectsNonASCII(t *testing.T) {
	_, err := decodeFieldTypeBin([]byte{0xFF}, 0, 1, nil, "requirement_code")
	require.Error(t, err)
}
