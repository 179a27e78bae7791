package ddsave

import (
	"fmt"

	"github.com/scigolib/ddsave/internal/jsontext"
)

// BinErrKind enumerates the ways decoding a binary save can fail.
type BinErrKind uint8

const (
	// BinErrIO wraps an underlying I/O failure.
	BinErrIO BinErrKind = iota
	// BinErrNotBinFile means the header magic number didn't match.
	BinErrNotBinFile
	// BinErrUnknownField means a field's type could not be identified by
	// the type dictionary or the bin-layout heuristic.
	BinErrUnknownField
	// BinErrSizeMismatch means a read ran past the end of the data section.
	BinErrSizeMismatch
	// BinErrOffsetMismatch means a table didn't start where the header said.
	BinErrOffsetMismatch
	// BinErrHashMismatch means a field name's hash didn't match its stored hash.
	BinErrHashMismatch
	// BinErrEncoding means a string wasn't valid UTF-8 or NUL-terminated.
	BinErrEncoding
	// BinErrChar means a Char field held a non-ASCII byte.
	BinErrChar
	// BinErrMissingRoot means the file contained no root object.
	BinErrMissingRoot
	// BinErrArith means an offset/size computation over- or under-flowed.
	BinErrArith
	// BinErrFormat is a generic structural format error.
	BinErrFormat
)

// BinError is returned by FromBin and everything it calls.
type BinError struct {
	Kind BinErrKind
	Msg  string
	// At/Exp carry byte offsets for BinErrSizeMismatch and BinErrOffsetMismatch.
	At, Exp uint64
	Cause   error
}

func (e *BinError) Error() string {
	switch e.Kind {
	case BinErrIO:
		return fmt.Sprintf("i/o error: %v", e.Cause)
	case BinErrNotBinFile:
		return "not a Darkest Dungeon binary save (magic number mismatch)"
	case BinErrUnknownField:
		return fmt.Sprintf("unrecognized field type for %q", e.Msg)
	case BinErrSizeMismatch:
		return fmt.Sprintf("read past end of data at offset %d (needed %d more bytes)", e.At, e.Exp)
	case BinErrOffsetMismatch:
		return fmt.Sprintf("section offset mismatch: expected %d, file says %d", e.Exp, e.At)
	case BinErrHashMismatch:
		return "field name hash did not match stored hash"
	case BinErrEncoding:
		return fmt.Sprintf("invalid string encoding: %s", e.Msg)
	case BinErrChar:
		return fmt.Sprintf("char field held non-ASCII byte 0x%02x", e.At)
	case BinErrMissingRoot:
		return "file contains no root object"
	case BinErrArith:
		return "arithmetic overflow computing an offset or size"
	default:
		return fmt.Sprintf("malformed binary save: %s", e.Msg)
	}
}

func (e *BinError) Unwrap() error { return e.Cause }

func binIO(cause error) error {
	if cause == nil {
		return nil
	}
	return &BinError{Kind: BinErrIO, Cause: cause}
}

// JSONErrKind enumerates the ways decoding a JSON save can fail.
type JSONErrKind uint8

const (
	// JSONErrIO wraps an underlying I/O failure.
	JSONErrIO JSONErrKind = iota
	// JSONErrExpected means a specific token kind was required but not found.
	JSONErrExpected
	// JSONErrLiteralFormat means a literal violated the save format's rules
	// (e.g. a "###" hash-sentinel string, a bad number, a non-single-char Char).
	JSONErrLiteralFormat
	// JSONErrSyntax means the JSON itself was not well-formed.
	JSONErrSyntax
	// JSONErrUnexpEOF means the document ended before parsing finished.
	JSONErrUnexpEOF
	// JSONErrInteger means an index or count overflowed its integer type.
	JSONErrInteger
	// JSONErrEncoding means the JSON input was not valid UTF-8.
	JSONErrEncoding
)

// JSONError is returned by FromJSON and everything it calls.
type JSONError struct {
	Kind JSONErrKind
	Msg  string
	Span jsontext.Span
	Cause error
}

func (e *JSONError) Error() string {
	switch e.Kind {
	case JSONErrIO:
		return fmt.Sprintf("i/o error: %v", e.Cause)
	case JSONErrExpected:
		return fmt.Sprintf("expected %s at byte %d", e.Msg, e.Span.First)
	case JSONErrLiteralFormat:
		return fmt.Sprintf("%s at byte %d", e.Msg, e.Span.First)
	case JSONErrSyntax:
		return fmt.Sprintf("invalid JSON at byte %d", e.Span.First)
	case JSONErrUnexpEOF:
		return "unexpected end of JSON input"
	case JSONErrInteger:
		return "ran out of field or object indices"
	case JSONErrEncoding:
		return fmt.Sprintf("invalid string encoding at byte %d", e.Span.First)
	default:
		return "malformed JSON save"
	}
}

func (e *JSONError) Unwrap() error { return e.Cause }

func jsonIO(cause error) error {
	if cause == nil {
		return nil
	}
	return &JSONError{Kind: JSONErrIO, Cause: cause}
}

// fromSyntaxError converts a jsontext.SyntaxError (or EOF sentinel) into the
// JSONError taxonomy, mirroring the From<&JsonError> for FromJsonError
// mapping this codec is grounded on.
func fromSyntaxError(err error) error {
	se, ok := err.(*jsontext.SyntaxError)
	if !ok {
		return jsonIO(err)
	}
	switch se.Kind {
	case jsontext.ErrEOF:
		return &JSONError{Kind: JSONErrUnexpEOF}
	case jsontext.ErrExpectedValue:
		return &JSONError{Kind: JSONErrSyntax, Span: se.Span}
	case jsontext.ErrBareControl:
		return &JSONError{Kind: JSONErrLiteralFormat, Msg: "bare control character", Span: se.Span}
	case jsontext.ErrBadNumber:
		return &JSONError{Kind: JSONErrLiteralFormat, Msg: "bad number format", Span: se.Span}
	case jsontext.ErrExpected:
		return &JSONError{Kind: JSONErrExpected, Msg: se.Want, Span: se.Span}
	default:
		return &JSONError{Kind: JSONErrSyntax, Span: se.Span}
	}
}
