package ddsave

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/scigolib/ddsave/internal/utils"
)

// FromBin decodes a binary Darkest Dungeon save from r.
//
// Unlike some reference decoders, this does not require r to be Seek-able:
// the header's own offsets are cross-validated against each other at parse
// time (see readHeader), and the three tables that follow are always laid
// out back-to-back with no gaps, so a plain sequential read already lands
// on every table at the offset the header claims for it.
func FromBin(r io.Reader) (*File, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if err := validateTableCounts(h); err != nil {
		return nil, err
	}
	o, err := readObjects(r, h)
	if err != nil {
		return nil, err
	}
	f, err := readFields(r, h)
	if err != nil {
		return nil, err
	}
	dat, err := decodeFields(r, f, o, h)
	if err != nil {
		return nil, err
	}
	return &File{h: *h, o: *o, f: *f, dat: dat}, nil
}

// decodeBinFromBytes decodes an embedded sub-file ("raw_data"/"static_save")
// whose complete binary payload has already been sliced out of its parent's
// data section.
func decodeBinFromBytes(buf []byte) (*File, error) {
	return FromBin(bytes.NewReader(buf))
}

func validateTableCounts(h *header) error {
	if err := limitCheck(h.objectsNum, "objects table"); err != nil {
		return err
	}
	return limitCheck(h.fieldsNum, "fields table")
}

func limitCheck(count uint32, what string) error {
	if count > maxTableEntries {
		return &BinError{Kind: BinErrArith, Msg: what + " entry count exceeds limit"}
	}
	return nil
}

// maxTableEntries bounds objects_num/fields_num, read directly from the
// header, before they ever drive a slice allocation.
const maxTableEntries = utils.MaxFieldCount

// WriteBin writes this File in its binary on-disk form.
func (file *File) WriteBin(w io.Writer) error {
	if err := file.h.writeTo(w); err != nil {
		return err
	}
	if err := file.o.writeTo(w); err != nil {
		return err
	}
	if err := file.f.writeTo(w); err != nil {
		return err
	}
	var offset uint64
	for i := range file.dat {
		next, err := writeFieldBin(w, &file.dat[i], offset)
		if err != nil {
			return err
		}
		offset = next
	}
	return nil
}

// calcBinSize returns the total encoded size of this file, used to size
// embedded sub-files' length prefixes in addBinSize.
func (file *File) calcBinSize() uint64 {
	size := file.h.calcBinSize() + file.o.calcBinSize() + file.f.calcBinSize()
	var existing uint64
	for i := range file.dat {
		next, err := file.dat[i].addBinSize(existing)
		if err != nil {
			// addBinSize only fails for a nil embedded file, which cannot
			// occur here: every embedded file was fully decoded or built
			// before this method can be reached.
			panic(err)
		}
		existing = next
	}
	return size + existing
}

// fixupOffsets assigns every field's table offset by walking the fields in
// declaration order and accumulating each one's binary size in turn, then
// returns the data section's total size.
func (file *File) fixupOffsets() (uint32, error) {
	var offset uint64
	for idx := range file.f.items {
		file.f.setOffset(FieldIdx(idx), uint32(offset))
		next, err := file.dat[idx].addBinSize(offset)
		if err != nil {
			return 0, &BinError{Kind: BinErrArith, Cause: err}
		}
		offset = next
	}
	if offset > 0xFFFFFFFF {
		return 0, &BinError{Kind: BinErrArith, Msg: "data section too large to encode"}
	}
	return uint32(offset), nil
}

// writeFieldBin writes one field's binary record (name, then, for payloads
// of 4 bytes or more, padding to a 4-byte boundary, then its type-specific
// payload) and returns the offset one past it. Bool and Char payloads are
// written unpadded; Object fields have no payload.
func writeFieldBin(w io.Writer, f *Field, existingOffset uint64) (uint64, error) {
	if _, err := io.WriteString(w, f.Name); err != nil {
		return 0, binIO(err)
	}
	if _, err := w.Write([]byte{0}); err != nil {
		return 0, binIO(err)
	}
	existingOffset += uint64(len(f.Name)) + 1
	align := alignPad(existingOffset)
	alignZeros := make([]byte, align)

	switch f.Type.Kind {
	case KindBool:
		b := byte(0)
		if f.Type.Bool {
			b = 1
		}
		if _, err := w.Write([]byte{b}); err != nil {
			return 0, binIO(err)
		}
		return existingOffset + 1, nil

	case KindChar:
		if _, err := w.Write([]byte{f.Type.Char}); err != nil {
			return 0, binIO(err)
		}
		return existingOffset + 1, nil

	case KindTwoBool:
		if err := writePadded(w, alignZeros, u32Bytes(boolToU32(f.Type.Bool)), u32Bytes(boolToU32(f.Type.Bool2))); err != nil {
			return 0, err
		}
		return existingOffset + align + 8, nil

	case KindInt:
		if err := writePadded(w, alignZeros, u32Bytes(uint32(f.Type.Int))); err != nil {
			return 0, err
		}
		return existingOffset + align + 4, nil

	case KindFloat:
		if err := writePadded(w, alignZeros, u32Bytes(f32Bits(f.Type.Float))); err != nil {
			return 0, err
		}
		return existingOffset + align + 4, nil

	case KindString:
		s := f.Type.Str
		if err := writePadded(w, alignZeros, u32Bytes(uint32(len(s)+1))); err != nil {
			return 0, err
		}
		if _, err := io.WriteString(w, s); err != nil {
			return 0, binIO(err)
		}
		if _, err := w.Write([]byte{0}); err != nil {
			return 0, binIO(err)
		}
		return existingOffset + align + 4 + uint64(len(s)) + 1, nil

	case KindIntVector:
		v := f.Type.IntVec
		if err := writePadded(w, alignZeros, u32Bytes(uint32(len(v)))); err != nil {
			return 0, err
		}
		for _, i := range v {
			if _, err := w.Write(u32Bytes(uint32(i))); err != nil {
				return 0, binIO(err)
			}
		}
		return existingOffset + align + 4 + uint64(len(v))*4, nil

	case KindFloatArray:
		v := f.Type.FloatVec
		if len(alignZeros) > 0 {
			if _, err := w.Write(alignZeros); err != nil {
				return 0, binIO(err)
			}
		}
		for _, val := range v {
			if _, err := w.Write(u32Bytes(f32Bits(val))); err != nil {
				return 0, binIO(err)
			}
		}
		return existingOffset + align + 4*uint64(len(v)), nil

	case KindTwoInt:
		if err := writePadded(w, alignZeros, u32Bytes(uint32(f.Type.Int2[0])), u32Bytes(uint32(f.Type.Int2[1]))); err != nil {
			return 0, err
		}
		return existingOffset + align + 8, nil

	case KindStringVector:
		return writeStringVectorBin(w, f.Type.StrVec, alignZeros, existingOffset+align)

	case KindEmbedded:
		return writeEmbeddedBin(w, f.Type.Embedded, alignZeros, existingOffset+align)

	case KindObject:
		return existingOffset, nil

	default:
		return 0, &BinError{Kind: BinErrFormat, Msg: "unknown field kind"}
	}
}

func writeStringVectorBin(w io.Writer, v []string, alignZeros []byte, base uint64) (uint64, error) {
	if err := writePadded(w, alignZeros, u32Bytes(uint32(len(v)))); err != nil {
		return 0, err
	}
	tmpSize := uint64(4)
	for _, s := range v {
		pad := alignPad(tmpSize)
		if pad > 0 {
			if _, err := w.Write(make([]byte, pad)); err != nil {
				return 0, binIO(err)
			}
		}
		if _, err := w.Write(u32Bytes(uint32(len(s) + 1))); err != nil {
			return 0, binIO(err)
		}
		if _, err := io.WriteString(w, s); err != nil {
			return 0, binIO(err)
		}
		if _, err := w.Write([]byte{0}); err != nil {
			return 0, binIO(err)
		}
		tmpSize += pad + 4 + uint64(len(s)) + 1
	}
	return base + tmpSize, nil
}

func writeEmbeddedBin(w io.Writer, inner *File, alignZeros []byte, base uint64) (uint64, error) {
	if inner == nil {
		return 0, &BinError{Kind: BinErrFormat, Msg: "embedded file missing at encode time"}
	}
	var buf bytes.Buffer
	if err := inner.WriteBin(&buf); err != nil {
		return 0, err
	}
	if err := writePadded(w, alignZeros, u32Bytes(uint32(buf.Len()))); err != nil {
		return 0, err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return 0, binIO(err)
	}
	return base + 4 + uint64(buf.Len()), nil
}

func writePadded(w io.Writer, alignZeros []byte, chunks ...[]byte) error {
	if len(alignZeros) > 0 {
		if _, err := w.Write(alignZeros); err != nil {
			return binIO(err)
		}
	}
	for _, c := range chunks {
		if _, err := w.Write(c); err != nil {
			return binIO(err)
		}
	}
	return nil
}

func u32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func f32Bits(f float32) uint32 {
	return math.Float32bits(f)
}
