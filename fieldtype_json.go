package ddsave

import (
	"strconv"
	"strings"

	"github.com/scigolib/ddsave/internal/jsontext"
	"github.com/scigolib/ddsave/internal/utils"
)

// hashSentinelPrefix marks a JSON string as holding a pre-hashed name
// rather than literal text: "###foo" decodes to the int32 name_hash of
// "foo", both for a lone Int field and for individual IntVector elements.
const hashSentinelPrefix = "###"

func parseI32Token(tok jsontext.Token) (int32, error) {
	v, err := strconv.ParseInt(tok.Dat, 10, 32)
	if err != nil {
		return 0, &JSONError{Kind: JSONErrLiteralFormat, Msg: "integer", Span: tok.Span}
	}
	return int32(v), nil
}

func parseF32Token(tok jsontext.Token) (float32, error) {
	v, err := strconv.ParseFloat(tok.Dat, 32)
	if err != nil {
		return 0, &JSONError{Kind: JSONErrLiteralFormat, Msg: "float", Span: tok.Span}
	}
	return float32(v), nil
}

func expectBoolToken(p *jsontext.Parser) (bool, error) {
	tok, err, ok := p.Next()
	if !ok {
		return false, &JSONError{Kind: JSONErrUnexpEOF}
	}
	if err != nil {
		return false, fromSyntaxError(err)
	}
	switch tok.Kind {
	case jsontext.BoolTrue:
		return true, nil
	case jsontext.BoolFalse:
		return false, nil
	default:
		return false, &JSONError{Kind: JSONErrExpected, Msg: "bool", Span: tok.Span}
	}
}

// decodeFieldTypeJSON decodes the value of a non-object field. parents is
// the field's ancestor chain (not including name); name is its own name.
func decodeFieldTypeJSON(p *jsontext.Parser, parents []string, name string) (FieldType, error) {
	if kind, ok := hardcodedType(parents, name); ok {
		return decodeHardcodedJSON(p, kind)
	}
	return decodeHeuristicJSON(p)
}

func decodeHardcodedJSON(p *jsontext.Parser, kind Kind) (FieldType, error) {
	switch kind {
	case KindFloat:
		tok, err := p.Expect(jsontext.Number)
		if err != nil {
			return FieldType{}, fromSyntaxError(err)
		}
		f, err := parseF32Token(tok)
		return FieldType{Kind: KindFloat, Float: f}, err

	case KindIntVector:
		if _, err := p.Expect(jsontext.BeginArray); err != nil {
			return FieldType{}, fromSyntaxError(err)
		}
		var vec []int32
		for {
			tok, err, ok := p.Next()
			if !ok {
				return FieldType{}, &JSONError{Kind: JSONErrUnexpEOF}
			}
			if err != nil {
				return FieldType{}, fromSyntaxError(err)
			}
			if tok.Kind == jsontext.EndArray {
				break
			}
			if tok.Kind == jsontext.Number {
				v, err := parseI32Token(tok)
				if err != nil {
					return FieldType{}, err
				}
				vec = append(vec, v)
				continue
			}
			if tok.Kind == jsontext.String && strings.HasPrefix(tok.Dat, hashSentinelPrefix) {
				vec = append(vec, utils.NameHash([]byte(tok.Dat[len(hashSentinelPrefix):])))
				continue
			}
			return FieldType{}, &JSONError{Kind: JSONErrExpected, Msg: "number or ]", Span: tok.Span}
		}
		return FieldType{Kind: KindIntVector, IntVec: vec}, nil

	case KindStringVector:
		if _, err := p.Expect(jsontext.BeginArray); err != nil {
			return FieldType{}, fromSyntaxError(err)
		}
		var vec []string
		for {
			tok, err, ok := p.Next()
			if !ok {
				return FieldType{}, &JSONError{Kind: JSONErrUnexpEOF}
			}
			if err != nil {
				return FieldType{}, fromSyntaxError(err)
			}
			if tok.Kind == jsontext.EndArray {
				break
			}
			if tok.Kind != jsontext.String {
				return FieldType{}, &JSONError{Kind: JSONErrExpected, Msg: "string or ]", Span: tok.Span}
			}
			vec = append(vec, tok.Dat)
		}
		return FieldType{Kind: KindStringVector, StrVec: vec}, nil

	case KindFloatArray:
		if _, err := p.Expect(jsontext.BeginArray); err != nil {
			return FieldType{}, fromSyntaxError(err)
		}
		var vec []float32
		for {
			tok, err, ok := p.Next()
			if !ok {
				return FieldType{}, &JSONError{Kind: JSONErrUnexpEOF}
			}
			if err != nil {
				return FieldType{}, fromSyntaxError(err)
			}
			if tok.Kind == jsontext.EndArray {
				break
			}
			if tok.Kind != jsontext.Number {
				return FieldType{}, &JSONError{Kind: JSONErrExpected, Msg: "number or ]", Span: tok.Span}
			}
			f, err := parseF32Token(tok)
			if err != nil {
				return FieldType{}, err
			}
			vec = append(vec, f)
		}
		return FieldType{Kind: KindFloatArray, FloatVec: vec}, nil

	case KindTwoInt:
		if _, err := p.Expect(jsontext.BeginArray); err != nil {
			return FieldType{}, fromSyntaxError(err)
		}
		t1, err := p.Expect(jsontext.Number)
		if err != nil {
			return FieldType{}, fromSyntaxError(err)
		}
		i1, err := parseI32Token(t1)
		if err != nil {
			return FieldType{}, err
		}
		t2, err := p.Expect(jsontext.Number)
		if err != nil {
			return FieldType{}, fromSyntaxError(err)
		}
		i2, err := parseI32Token(t2)
		if err != nil {
			return FieldType{}, err
		}
		if _, err := p.Expect(jsontext.EndArray); err != nil {
			return FieldType{}, fromSyntaxError(err)
		}
		return FieldType{Kind: KindTwoInt, Int2: [2]int32{i1, i2}}, nil

	case KindTwoBool:
		if _, err := p.Expect(jsontext.BeginArray); err != nil {
			return FieldType{}, fromSyntaxError(err)
		}
		b1, err := expectBoolToken(p)
		if err != nil {
			return FieldType{}, err
		}
		b2, err := expectBoolToken(p)
		if err != nil {
			return FieldType{}, err
		}
		if _, err := p.Expect(jsontext.EndArray); err != nil {
			return FieldType{}, fromSyntaxError(err)
		}
		return FieldType{Kind: KindTwoBool, Bool: b1, Bool2: b2}, nil

	case KindChar:
		tok, err := p.Expect(jsontext.String)
		if err != nil {
			return FieldType{}, fromSyntaxError(err)
		}
		if len(tok.Dat) != 1 || tok.Dat[0] > 0x7F {
			return FieldType{}, &JSONError{Kind: JSONErrLiteralFormat, Msg: "exactly one ascii char", Span: tok.Span}
		}
		return FieldType{Kind: KindChar, Char: tok.Dat[0]}, nil

	default:
		return FieldType{}, &JSONError{Kind: JSONErrSyntax, Msg: "unhandled hardcoded field kind"}
	}
}

func decodeHeuristicJSON(p *jsontext.Parser) (FieldType, error) {
	tok, err, ok := p.Next()
	if !ok {
		return FieldType{}, &JSONError{Kind: JSONErrUnexpEOF}
	}
	if err != nil {
		return FieldType{}, fromSyntaxError(err)
	}
	switch tok.Kind {
	case jsontext.Number:
		v, err := parseI32Token(tok)
		return FieldType{Kind: KindInt, Int: v}, err
	case jsontext.String:
		if strings.HasPrefix(tok.Dat, hashSentinelPrefix) {
			return FieldType{Kind: KindInt, Int: utils.NameHash([]byte(tok.Dat[len(hashSentinelPrefix):]))}, nil
		}
		return FieldType{Kind: KindString, Str: tok.Dat}, nil
	case jsontext.BoolTrue:
		return FieldType{Kind: KindBool, Bool: true}, nil
	case jsontext.BoolFalse:
		return FieldType{Kind: KindBool, Bool: false}, nil
	default:
		return FieldType{}, &JSONError{Kind: JSONErrLiteralFormat, Msg: "unknown field", Span: tok.Span}
	}
}
