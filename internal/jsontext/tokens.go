// Package jsontext implements a small, purpose-built JSON tokenizer and
// parser for the save format's JSON representation. It is not a
// general-purpose JSON library: the parser exposes an explicit block-stack
// (shift-reduce) state machine so the caller can peek at the next token's
// kind before deciding how to consume it, and every token carries the byte
// span it was lexed from so callers can build precise error messages.
package jsontext

import "fmt"

// TokenType identifies the lexical/grammatical class of a Token.
type TokenType uint8

const (
	BeginObject TokenType = iota
	EndObject
	BeginArray
	EndArray
	FieldName
	Number
	BoolTrue
	BoolFalse
	String
	Null

	// invalid and comma/colon are never handed to callers; comma and colon
	// are consumed internally by the parser, and invalid always becomes a
	// SyntaxError before it would otherwise escape the lexer.
	invalid
	comma
	colon
)

// String renders the token type the way it would appear in an "expected X"
// diagnostic.
func (t TokenType) String() string {
	switch t {
	case BeginObject:
		return "{"
	case EndObject:
		return "}"
	case BeginArray:
		return "["
	case EndArray:
		return "]"
	case FieldName:
		return "<field name>"
	case Number:
		return "<number>"
	case BoolTrue:
		return "true"
	case BoolFalse:
		return "false"
	case String:
		return "<string>"
	case Null:
		return "null"
	case comma:
		return ","
	case colon:
		return ":"
	default:
		return "<invalid>"
	}
}

// Span records the half-open byte range [First, End) a token was lexed
// from, for diagnostics that point back into the original source text.
type Span struct {
	First int
	End   int
}

// Token is a single lexed-and-classified unit of JSON source. Dat holds the
// decoded payload for String tokens (escapes resolved, quotes stripped) and
// the raw source slice for every other kind.
type Token struct {
	Kind TokenType
	Dat  string
	Span Span
}

// ErrKind enumerates the distinct ways lexing or parsing can fail.
type ErrKind uint8

const (
	// ErrEOF means the input ended where a token was expected.
	ErrEOF ErrKind = iota
	// ErrExpectedValue means the next token could not begin a value.
	ErrExpectedValue
	// ErrBareControl means a string body contained a literal control byte.
	ErrBareControl
	// ErrBadNumber means a numeric token didn't parse as an int or float.
	ErrBadNumber
	// ErrExpected means a specific token kind was required but not found.
	ErrExpected
)

// SyntaxError is returned by the lexer and parser for all failure modes;
// Want carries the human-readable description used by ErrExpected.
type SyntaxError struct {
	Kind ErrKind
	Want string
	Span Span
}

func (e *SyntaxError) Error() string {
	switch e.Kind {
	case ErrEOF:
		return "unexpected end of input"
	case ErrExpectedValue:
		return fmt.Sprintf("expected a value at byte %d", e.Span.First)
	case ErrBareControl:
		return fmt.Sprintf("bare control character in string at byte %d", e.Span.First)
	case ErrBadNumber:
		return fmt.Sprintf("malformed number at byte %d", e.Span.First)
	case ErrExpected:
		return fmt.Sprintf("expected %s at byte %d", e.Want, e.Span.First)
	default:
		return "invalid JSON"
	}
}
