package ddsave

// ObjIdx indexes into a File's object table. Always less than 1<<31.
type ObjIdx uint32

// FieldIdx indexes into a File's flat field list, in declaration/physical
// order.
type FieldIdx uint32

// Kind tags which variant of the save format's 12-member field type union
// a FieldType holds. Rendered as a tagged struct (rather than 12 separate
// types behind an interface) since nothing here needs dynamic dispatch —
// every consumer already switches on Kind to decide what to do.
type Kind uint8

const (
	KindBool Kind = iota
	KindTwoBool
	KindInt
	KindFloat
	KindChar
	KindString
	KindIntVector
	KindStringVector
	KindFloatArray
	KindTwoInt
	KindEmbedded
	KindObject
)

// FieldType is the value held by a single field. Only the member(s)
// matching Kind are meaningful; the rest are zero.
type FieldType struct {
	Kind Kind

	Bool  bool
	Bool2 bool

	Int int32

	Float float32

	Char byte

	Str string

	IntVec   []int32
	StrVec   []string
	FloatVec []float32

	Int2 [2]int32

	// Embedded holds a nested save file (the "raw_data"/"static_save"
	// convention: a field whose binary payload is itself a complete,
	// independently-framed File). Nil until decoded.
	Embedded *File

	// Children holds the field indices of an object's direct children, in
	// declaration order. Only meaningful when Kind == KindObject.
	Children []FieldIdx
}

// Field is one named, typed value in a File's flat field list.
type Field struct {
	Name   string
	Parent ObjIdx
	// HasParent is false only for the root field.
	HasParent bool
	Type      FieldType
}

// addBinSize returns the byte offset one past this field's binary encoding,
// given the offset its name would start at. It mirrors the layout
// writeFieldBin (file_bin.go) produces exactly, which lets the encoder compute every
// field's offset before writing a single byte.
func (f *Field) addBinSize(existingSize uint64) (uint64, error) {
	existingSize += uint64(len(f.Name)) + 1
	align := alignPad(existingSize)

	switch f.Type.Kind {
	case KindBool, KindChar:
		return existingSize + 1, nil
	case KindTwoBool, KindTwoInt:
		return existingSize + align + 8, nil
	case KindInt, KindFloat:
		return existingSize + align + 4, nil
	case KindString:
		return existingSize + align + 4 + uint64(len(f.Type.Str)) + 1, nil
	case KindIntVector:
		return existingSize + align + 4 + uint64(len(f.Type.IntVec))*4, nil
	case KindFloatArray:
		return existingSize + align + 4*uint64(len(f.Type.FloatVec)), nil
	case KindStringVector:
		tmp := uint64(4)
		for _, s := range f.Type.StrVec {
			tmp += alignPad(tmp)
			tmp += 4
			tmp += uint64(len(s)) + 1
		}
		return existingSize + align + tmp, nil
	case KindEmbedded:
		if f.Type.Embedded == nil {
			return 0, &BinError{Kind: BinErrFormat, Msg: "embedded file missing at encode time"}
		}
		return existingSize + align + 4 + f.Type.Embedded.calcBinSize(), nil
	case KindObject:
		return existingSize, nil
	default:
		return 0, &BinError{Kind: BinErrFormat, Msg: "unknown field kind"}
	}
}

// alignPad returns the number of padding bytes needed to round offset up
// to the next multiple of 4.
func alignPad(offset uint64) uint64 {
	return (4 - offset%4) % 4
}
