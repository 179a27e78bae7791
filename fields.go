package ddsave

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/scigolib/ddsave/internal/utils"
)

// fieldInfoSize is the wire size of one fields-table entry.
const fieldInfoSize = 12

const (
	nameLenBits = 0x1FF    // 9 bits
	objIdxBits  = 0xFFFFF  // 20 bits
	garbageBit  = 0x8000_0000
)

// fieldInfo is one entry of the fields table. is_object, name_length and
// object_index are all packed into fieldInfoBits (§ packed bitfield
// layout): bit0 is_object, bits2-10 name_length, bits11-30 object_index,
// bit31 is unidentified and always masked out on read / cleared on write.
type fieldInfo struct {
	nameHash      int32
	offset        uint32
	fieldInfoBits uint32
}

func (f *fieldInfo) isObject() bool {
	return f.fieldInfoBits&0b1 == 1
}

func (f *fieldInfo) nameLength() uint32 {
	return (f.fieldInfoBits >> 2) & nameLenBits
}

func (f *fieldInfo) objectIndex() (ObjIdx, bool) {
	if !f.isObject() {
		return 0, false
	}
	return ObjIdx((f.fieldInfoBits >> 11) & objIdxBits), true
}

// fields is the file's full fields table, in physical (declaration) order.
type fields struct {
	items []fieldInfo
}

func readFields(r io.Reader, h *header) (*fields, error) {
	f := &fields{items: make([]fieldInfo, 0, h.fieldsNum)}
	buf := make([]byte, fieldInfoSize)
	for i := uint32(0); i < h.fieldsNum; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, binIO(err)
		}
		nameHash := int32(binary.LittleEndian.Uint32(buf[0:4]))
		offset := binary.LittleEndian.Uint32(buf[4:8])
		// Bit 31 is never assigned a meaning by the format; mask it out.
		info := binary.LittleEndian.Uint32(buf[8:12]) &^ garbageBit
		f.items = append(f.items, fieldInfo{nameHash: nameHash, offset: offset, fieldInfoBits: info})
	}
	return f, nil
}

func (f *fields) writeTo(w io.Writer) error {
	buf := make([]byte, fieldInfoSize)
	for _, fi := range f.items {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(fi.nameHash))
		binary.LittleEndian.PutUint32(buf[4:8], fi.offset)
		// Clear bit 31 on write too: no semantics are ever assigned to it,
		// so re-encoded files never reproduce whatever wrote it originally.
		binary.LittleEndian.PutUint32(buf[8:12], fi.fieldInfoBits&^garbageBit)
		if _, err := w.Write(buf); err != nil {
			return binIO(err)
		}
	}
	return nil
}

func (f *fields) calcBinSize() uint64 {
	return uint64(fieldInfoSize) * uint64(len(f.items))
}

func (f *fields) len() uint32 {
	return uint32(len(f.items))
}

func (f *fields) get(idx FieldIdx) *fieldInfo {
	return &f.items[idx]
}

// createField appends a new field named name (the string used solely to
// compute the stored hash and declared name length) and returns its index.
// The offset is left at zero; fixupOffsets fills in every field's real
// offset once the whole tree is known.
func (f *fields) createField(name string) (FieldIdx, error) {
	if f.len() == math.MaxUint32 {
		return 0, &JSONError{Kind: JSONErrInteger}
	}
	nameLen, err := utils.SafeAdd32(uint32(len(name)), 1)
	if err != nil {
		return 0, &JSONError{Kind: JSONErrInteger}
	}
	idx := FieldIdx(f.len())
	f.items = append(f.items, fieldInfo{
		nameHash:      utils.NameHash([]byte(name)),
		fieldInfoBits: (nameLen & nameLenBits) << 2,
	})
	return idx, nil
}

// markObject sets the is_object bit and packs objIdx into a field's
// fieldInfoBits, once the JSON decoder has discovered that this field's
// value is a nested object rather than a scalar.
func (f *fields) markObject(idx FieldIdx, objIdx ObjIdx) {
	fi := &f.items[idx]
	fi.fieldInfoBits |= 1
	fi.fieldInfoBits |= (uint32(objIdx) & objIdxBits) << 11
}

func (f *fields) setOffset(idx FieldIdx, offset uint32) {
	f.items[idx].offset = offset
}
