package ddsave

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/scigolib/ddsave/internal/utils"
)

// cStringFromBytes validates buf as a single NUL-terminated, interior-NUL-free,
// valid-UTF-8 C string and returns its content without the terminator.
func cStringFromBytes(buf []byte) (string, error) {
	nul := bytes.IndexByte(buf, 0)
	if nul != len(buf)-1 {
		return "", &BinError{Kind: BinErrEncoding, Msg: "string not NUL-terminated, or has an interior NUL"}
	}
	s := buf[:nul]
	if !utf8.Valid(s) {
		return "", &BinError{Kind: BinErrEncoding, Msg: "string is not valid UTF-8"}
	}
	return string(s), nil
}

// decodeFieldTypeBin decodes one field's binary payload. toSkipIfAligned is
// the alignment padding already accounted for by the caller (the bytes
// between the field name's NUL terminator and the next 4-byte boundary);
// maxLen is the payload's total byte length including that padding.
// name/parents drive a hardcoded-type lookup identical to the JSON decoder's,
// since the two encodings must agree on every field's type.
func decodeFieldTypeBin(buf []byte, toSkipIfAligned, maxLen int, parents []string, name string) (FieldType, error) {
	if kind, ok := hardcodedType(parents, name); ok {
		return decodeHardcodedBin(kind, buf, toSkipIfAligned, maxLen, name)
	}
	return decodeHeuristicBin(buf, toSkipIfAligned, maxLen, parents)
}

func decodeHardcodedBin(kind Kind, buf []byte, toSkipIfAligned, maxLen int, name string) (FieldType, error) {
	pos := toSkipIfAligned
	switch kind {
	case KindFloat:
		f, err := readF32(buf, pos)
		return FieldType{Kind: KindFloat, Float: f}, err
	case KindIntVector:
		return decodeIntVectorBin(buf, pos)
	case KindStringVector:
		return decodeStringVectorBin(buf, pos)
	case KindFloatArray:
		num := (maxLen - toSkipIfAligned) / 4
		vec := make([]float32, 0, num)
		for i := 0; i < num; i++ {
			f, err := readF32(buf, pos)
			if err != nil {
				return FieldType{}, err
			}
			vec = append(vec, f)
			pos += 4
		}
		return FieldType{Kind: KindFloatArray, FloatVec: vec}, nil
	case KindTwoInt:
		i1, err := readI32(buf, pos)
		if err != nil {
			return FieldType{}, err
		}
		i2, err := readI32(buf, pos+4)
		if err != nil {
			return FieldType{}, err
		}
		return FieldType{Kind: KindTwoInt, Int2: [2]int32{i1, i2}}, nil
	case KindTwoBool:
		b1, err := readI32(buf, pos)
		if err != nil {
			return FieldType{}, err
		}
		b2, err := readI32(buf, pos+4)
		if err != nil {
			return FieldType{}, err
		}
		return FieldType{Kind: KindTwoBool, Bool: b1 != 0, Bool2: b2 != 0}, nil
	case KindChar:
		if len(buf) < 1 {
			return FieldType{}, &BinError{Kind: BinErrSizeMismatch, At: 0, Exp: 1}
		}
		if buf[0] > 0x7F {
			return FieldType{}, &BinError{Kind: BinErrChar, At: uint64(buf[0])}
		}
		return FieldType{Kind: KindChar, Char: buf[0]}, nil
	default:
		return FieldType{}, &BinError{Kind: BinErrUnknownField, Msg: name}
	}
}

func decodeIntVectorBin(buf []byte, pos int) (FieldType, error) {
	num, err := readU32(buf, pos)
	if err != nil {
		return FieldType{}, err
	}
	pos += 4
	if num > utils.MaxVectorLen {
		return FieldType{}, &BinError{Kind: BinErrArith, Msg: "int vector length exceeds limit"}
	}
	vec := make([]int32, 0, num)
	for i := uint32(0); i < num; i++ {
		v, err := readI32(buf, pos)
		if err != nil {
			return FieldType{}, err
		}
		vec = append(vec, v)
		pos += 4
	}
	return FieldType{Kind: KindIntVector, IntVec: vec}, nil
}

func decodeStringVectorBin(buf []byte, pos int) (FieldType, error) {
	num, err := readU32(buf, pos)
	if err != nil {
		return FieldType{}, err
	}
	pos += 4
	if num > utils.MaxVectorLen {
		return FieldType{}, &BinError{Kind: BinErrArith, Msg: "string vector length exceeds limit"}
	}
	vec := make([]string, 0, num)
	toSkip := 0
	for i := uint32(0); i < num; i++ {
		pos += toSkip
		strLen, err := readU32(buf, pos)
		if err != nil {
			return FieldType{}, err
		}
		pos += 4
		if pos+int(strLen) > len(buf) {
			return FieldType{}, &BinError{Kind: BinErrSizeMismatch, At: uint64(pos), Exp: uint64(strLen)}
		}
		s, err := cStringFromBytes(buf[pos : pos+int(strLen)])
		if err != nil {
			return FieldType{}, err
		}
		vec = append(vec, s)
		pos += int(strLen)
		toSkip = (int(strLen)+3)&^3 - int(strLen)
	}
	return FieldType{Kind: KindStringVector, StrVec: vec}, nil
}

func decodeHeuristicBin(buf []byte, toSkipIfAligned, maxLen int, parents []string) (FieldType, error) {
	if maxLen == 1 {
		if len(buf) < 1 {
			return FieldType{}, &BinError{Kind: BinErrSizeMismatch, At: 0, Exp: 1}
		}
		return FieldType{Kind: KindBool, Bool: buf[0] != 0}, nil
	}

	alignedMaxLen := maxLen - toSkipIfAligned
	pos := toSkipIfAligned
	if alignedMaxLen == 4 {
		v, err := readI32(buf, pos)
		return FieldType{Kind: KindInt, Int: v}, err
	}

	length, err := readI32(buf, pos)
	if err != nil {
		return FieldType{}, err
	}
	pos += 4
	if length < 0 {
		return FieldType{}, &BinError{Kind: BinErrFormat}
	}
	if int(length)+4 != alignedMaxLen {
		leaf := ""
		if len(parents) > 0 {
			leaf = parents[len(parents)-1]
		}
		return FieldType{}, &BinError{Kind: BinErrUnknownField, Msg: leaf}
	}
	if pos+int(length) > len(buf) {
		return FieldType{}, &BinError{Kind: BinErrSizeMismatch, At: uint64(pos), Exp: uint64(length)}
	}
	payload := buf[pos : pos+int(length)]

	if length >= 4 && bytes.Equal(payload[0:4], headerMagic[:]) {
		inner, err := decodeBinFromBytes(payload)
		if err != nil {
			return FieldType{}, err
		}
		return FieldType{Kind: KindEmbedded, Embedded: inner}, nil
	}
	s, err := cStringFromBytes(payload)
	if err != nil {
		return FieldType{}, err
	}
	return FieldType{Kind: KindString, Str: s}, nil
}

func readU32(buf []byte, at int) (uint32, error) {
	if at < 0 || at+4 > len(buf) {
		return 0, &BinError{Kind: BinErrSizeMismatch, At: uint64(at), Exp: 4}
	}
	return binary.LittleEndian.Uint32(buf[at : at+4]), nil
}

func readI32(buf []byte, at int) (int32, error) {
	v, err := readU32(buf, at)
	return int32(v), err
}

func readF32(buf []byte, at int) (float32, error) {
	v, err := readU32(buf, at)
	return math.Float32frombits(v), err
}
