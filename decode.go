package ddsave

import (
	"io"
	"sort"

	"github.com/scigolib/ddsave/internal/utils"
)

// decodeFields reads the data section in full and walks the fields table
// to reconstruct every field's name, type, and parent — the physical
// (on-disk) field order need not match any particular tree order; this
// rebuilds the tree purely from each field's declared offset and from the
// objects table's child counts.
func decodeFields(r io.Reader, f *fields, o *objects, h *header) ([]Field, error) {
	if err := utils.ValidateSize(uint64(h.dataSize), utils.MaxDataSize, "data section"); err != nil {
		return nil, &BinError{Kind: BinErrArith, Cause: err}
	}
	buf := utils.GetBuffer(int(h.dataSize))
	defer utils.ReleaseBuffer(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, binIO(err)
	}

	offsetSizes, err := computeOffsetSizes(f, len(buf))
	if err != nil {
		return nil, err
	}

	data := make([]Field, 0, len(f.items))
	var objStack []ObjIdx
	var objNums []uint32
	var objNames []string

	for idx := range f.items {
		fi := &f.items[idx]
		off := int(fi.offset)
		nameLen := int(fi.nameLength())
		if off < 0 || off+nameLen > len(buf) {
			return nil, &BinError{Kind: BinErrSizeMismatch, At: uint64(off), Exp: uint64(nameLen)}
		}
		name, err := cStringFromBytes(buf[off : off+nameLen])
		if err != nil {
			return nil, err
		}
		if utils.NameHash([]byte(name)) != fi.nameHash {
			return nil, &BinError{Kind: BinErrHashMismatch}
		}

		dataBegin := off + nameLen
		dataEnd := off + offsetSizes[fi.offset]

		var fieldType FieldType
		if fi.isObject() {
			fieldType = FieldType{Kind: KindObject}
		} else {
			if dataEnd <= dataBegin {
				return nil, &BinError{Kind: BinErrFormat}
			}
			toSkipIfAligned := int(alignPad(uint64(dataBegin)))
			if dataEnd > len(buf) {
				return nil, &BinError{Kind: BinErrSizeMismatch, At: uint64(dataBegin), Exp: uint64(dataEnd - dataBegin)}
			}
			fieldType, err = decodeFieldTypeBin(buf[dataBegin:dataEnd], toSkipIfAligned, dataEnd-dataBegin, objNames, name)
			if err != nil {
				return nil, err
			}
		}

		field := Field{Name: name, Type: fieldType}
		if len(objStack) > 0 {
			field.HasParent = true
			field.Parent = objStack[len(objStack)-1]
		}
		data = append(data, field)

		if len(objStack) == 0 {
			if !fi.isObject() {
				return nil, &BinError{Kind: BinErrMissingRoot}
			}
		} else {
			parentObj := o.get(objStack[len(objStack)-1])
			parentField := &data[parentObj.field]
			if parentField.Type.Kind != KindObject {
				return nil, &BinError{Kind: BinErrFormat}
			}
			parentField.Type.Children = append(parentField.Type.Children, FieldIdx(idx))
			objNums[len(objNums)-1]++
		}

		if fi.isObject() {
			objIdx, _ := fi.objectIndex()
			if uint32(objIdx) >= o.len() {
				return nil, &BinError{Kind: BinErrFormat}
			}
			objStack = append(objStack, objIdx)
			objNums = append(objNums, 0)
			objNames = append(objNames, name)
		}

		for len(objStack) > 0 && objNums[len(objNums)-1] == o.get(objStack[len(objStack)-1]).numDirectChilds {
			objStack = objStack[:len(objStack)-1]
			objNums = objNums[:len(objNums)-1]
			objNames = objNames[:len(objNames)-1]
		}
	}

	return data, nil
}

// computeOffsetSizes derives each field's total on-disk record length
// (name + payload) from the gaps between consecutive field offsets, sorted
// ascending, with the last field's size filled in from the data section's
// total length. This tolerates fields being physically stored in any
// order, since nothing here assumes table order matches offset order.
func computeOffsetSizes(f *fields, dataLen int) (map[uint32]int, error) {
	offsets := make([]uint32, len(f.items))
	for i, fi := range f.items {
		offsets[i] = fi.offset
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	sizes := make(map[uint32]int, len(offsets))
	for i := 0; i+1 < len(offsets); i++ {
		sizes[offsets[i]] = int(offsets[i+1] - offsets[i])
	}
	if len(offsets) > 0 {
		last := offsets[len(offsets)-1]
		if int(last) > dataLen {
			return nil, &BinError{Kind: BinErrArith}
		}
		sizes[last] = dataLen - int(last)
	}
	return sizes, nil
}
