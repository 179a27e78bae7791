package ddsave

import (
	"encoding/binary"
	"io"

	"github.com/scigolib/ddsave/internal/utils"
)

// headerSize is the fixed byte length of every save file's header, and
// also objectsOffset: the objects table always immediately follows it.
const headerSize = 64

// headerMagic is the 4-byte signature every binary save begins with.
var headerMagic = [4]byte{0x01, 0xB1, 0x00, 0x00}

// header mirrors the file's 64-byte fixed header. Every *Offset/*Size field
// is redundant with the table lengths it describes; readHeader cross-checks
// them against each other so a later out-of-bounds read can never happen
// silently, and fixupHeader recomputes them all from scratch before encode.
type header struct {
	version       uint32
	objectsSize   uint32
	objectsNum    uint32
	objectsOffset uint32
	fieldsNum     uint32
	fieldsOffset  uint32
	dataSize      uint32
	dataOffset    uint32
}

// readHeader reads and validates the fixed 64-byte header. Reading it whole
// upfront, rather than field by field, means every later field read in
// this function operates on an in-memory buffer that can never itself
// short-read.
func readHeader(r io.Reader) (*header, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, binIO(err)
	}

	var magic [4]byte
	copy(magic[:], buf[0:4])
	if magic != headerMagic {
		return nil, &BinError{Kind: BinErrNotBinFile}
	}

	version := binary.LittleEndian.Uint32(buf[4:8])
	headerLen := binary.LittleEndian.Uint32(buf[8:12])
	if headerLen != headerSize {
		return nil, &BinError{Kind: BinErrOffsetMismatch, Exp: headerSize, At: uint64(headerLen)}
	}
	// buf[12:16] are zeroes.
	objectsSize := binary.LittleEndian.Uint32(buf[16:20])
	objectsNum := binary.LittleEndian.Uint32(buf[20:24])
	objectsOffset := binary.LittleEndian.Uint32(buf[24:28])
	if objectsOffset != headerLen {
		return nil, &BinError{Kind: BinErrOffsetMismatch, Exp: uint64(headerLen), At: uint64(objectsOffset)}
	}
	// buf[28:44] are zeroes (two u64s).
	fieldsNum := binary.LittleEndian.Uint32(buf[44:48])
	fieldsOffset := binary.LittleEndian.Uint32(buf[48:52])
	wantFieldsOffset, err := safeAdd(objectsOffset, objectsNum, 16)
	if err != nil {
		return nil, err
	}
	if fieldsOffset != wantFieldsOffset {
		return nil, &BinError{Kind: BinErrOffsetMismatch, Exp: uint64(wantFieldsOffset), At: uint64(fieldsOffset)}
	}
	// buf[52:56] are zeroes.
	dataSize := binary.LittleEndian.Uint32(buf[56:60])
	dataOffset := binary.LittleEndian.Uint32(buf[60:64])
	wantDataOffset, err := safeAdd(fieldsOffset, fieldsNum, 12)
	if err != nil {
		return nil, err
	}
	if dataOffset != wantDataOffset {
		return nil, &BinError{Kind: BinErrOffsetMismatch, Exp: uint64(wantDataOffset), At: uint64(dataOffset)}
	}

	return &header{
		version:       version,
		objectsSize:   objectsSize,
		objectsNum:    objectsNum,
		objectsOffset: objectsOffset,
		fieldsNum:     fieldsNum,
		fieldsOffset:  fieldsOffset,
		dataSize:      dataSize,
		dataOffset:    dataOffset,
	}, nil
}

// safeAdd computes base + count*mul, checked, for cross-validating a table
// offset against the table before it.
func safeAdd(base, count, mul uint32) (uint32, error) {
	size, err := safeMul(count, mul)
	if err != nil {
		return 0, err
	}
	sum, err := safeAdd32(base, size)
	if err != nil {
		return 0, err
	}
	return sum, nil
}

func safeMul(a, b uint32) (uint32, error) {
	v, err := utils.SafeMultiply32(a, b)
	if err != nil {
		return 0, &BinError{Kind: BinErrArith, Cause: err}
	}
	return v, nil
}

func safeAdd32(a, b uint32) (uint32, error) {
	v, err := utils.SafeAdd32(a, b)
	if err != nil {
		return 0, &BinError{Kind: BinErrArith, Cause: err}
	}
	return v, nil
}

// writeTo writes the header in its 64-byte wire format.
func (h *header) writeTo(w io.Writer) error {
	buf := make([]byte, headerSize)
	copy(buf[0:4], headerMagic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.version)
	binary.LittleEndian.PutUint32(buf[8:12], headerSize)
	binary.LittleEndian.PutUint32(buf[16:20], h.objectsSize)
	binary.LittleEndian.PutUint32(buf[20:24], h.objectsNum)
	binary.LittleEndian.PutUint32(buf[24:28], h.objectsOffset)
	binary.LittleEndian.PutUint32(buf[44:48], h.fieldsNum)
	binary.LittleEndian.PutUint32(buf[48:52], h.fieldsOffset)
	binary.LittleEndian.PutUint32(buf[56:60], h.dataSize)
	binary.LittleEndian.PutUint32(buf[60:64], h.dataOffset)

	_, err := w.Write(buf)
	return binIO(err)
}

// fixupHeader recomputes every offset/size field from the final object and
// field counts, always placing tables back-to-back starting right after
// the header: objects, then fields, then data.
func fixupHeader(numObjects, numFields, version, dataSize uint32) (*header, error) {
	h := &header{version: version, objectsNum: numObjects, fieldsNum: numFields, dataSize: dataSize}

	objectsSize, err := safeMul(numObjects, 16)
	if err != nil {
		return nil, err
	}
	h.objectsSize = objectsSize
	h.objectsOffset = headerSize

	fieldsOffset, err := safeAdd32(h.objectsOffset, h.objectsSize)
	if err != nil {
		return nil, err
	}
	h.fieldsOffset = fieldsOffset

	fieldsSize, err := safeMul(numFields, 12)
	if err != nil {
		return nil, err
	}
	dataOffset, err := safeAdd32(h.fieldsOffset, fieldsSize)
	if err != nil {
		return nil, err
	}
	h.dataOffset = dataOffset

	return h, nil
}

func (h *header) calcBinSize() uint64 {
	return headerSize
}
