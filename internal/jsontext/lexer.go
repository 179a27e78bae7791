package jsontext

import (
	"strconv"

	"github.com/scigolib/ddsave/internal/utils"
)

// lexerToken is what the lexer itself produces: a classified span with no
// decoded payload yet. The parser (via tokenFromSpan) resolves escapes and
// validates numbers only once a token is actually consumed, since most
// lexed tokens in a shift-reduce walk are structural (braces, commas) and
// never need it.
type lexerToken struct {
	kind TokenType
	span Span
}

// lexer walks a string byte-by-byte (ASCII structural characters only, so
// byte indexing is safe even though string bodies may hold UTF-8) and
// produces a flat stream of lexerTokens with no lookahead beyond what a
// single token requires.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// next returns the next lexerToken, or ok=false at end of input.
func (l *lexer) next() (lexerToken, bool) {
	for l.pos < len(l.src) && isWhitespace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return lexerToken{}, false
	}

	start := l.pos
	c := l.src[l.pos]
	l.pos++

	var kind TokenType
	switch c {
	case '{':
		kind = BeginObject
	case '}':
		kind = EndObject
	case '[':
		kind = BeginArray
	case ']':
		kind = EndArray
	case ':':
		kind = colon
	case ',':
		kind = comma
	case 't':
		if l.consumeLiteral("rue") {
			kind = BoolTrue
		} else {
			kind = invalid
		}
	case 'f':
		if l.consumeLiteral("alse") {
			kind = BoolFalse
		} else {
			kind = invalid
		}
	case 'n':
		if l.consumeLiteral("ull") {
			kind = Null
		} else {
			kind = invalid
		}
	case '"':
		if !l.consumeString() {
			kind = invalid
		} else {
			kind = String
		}
	default:
		if isNumberByte(c) {
			for l.pos < len(l.src) && isNumberByte(l.src[l.pos]) {
				l.pos++
			}
			kind = Number
		} else {
			kind = invalid
		}
	}

	return lexerToken{kind: kind, span: Span{First: start, End: l.pos}}, true
}

func isNumberByte(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b == '-' || b == '+' || b == '.' || b == 'E' || b == 'e':
		return true
	default:
		return false
	}
}

// consumeLiteral advances over want if it matches the upcoming bytes
// exactly, leaving pos unchanged on mismatch (the caller reports Invalid).
func (l *lexer) consumeLiteral(want string) bool {
	if l.pos+len(want) > len(l.src) {
		return false
	}
	if l.src[l.pos:l.pos+len(want)] != want {
		return false
	}
	l.pos += len(want)
	return true
}

// consumeString advances past a closing, unescaped quote. It does not
// validate escape sequences; that happens later, in tokenFromSpan, against
// the full quoted span.
func (l *lexer) consumeString() bool {
	esc := false
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		l.pos++
		switch {
		case c == '\\':
			esc = !esc
		case c == '"' && !esc:
			return true
		default:
			esc = false
		}
	}
	return false
}

// tokenFromSpan resolves a lexerToken's raw span into the payload callers
// actually consume: unescaping String bodies and validating Number syntax.
func tokenFromSpan(data string, tok lexerToken) (Token, error) {
	raw := data[tok.span.First:tok.span.End]

	switch tok.kind {
	case String:
		body := data[tok.span.First+1 : tok.span.End-1]
		unescaped, ok := utils.Unescape(body)
		if !ok {
			return Token{}, &SyntaxError{Kind: ErrBareControl, Span: tok.span}
		}
		return Token{Kind: String, Dat: unescaped, Span: tok.span}, nil
	case Number:
		if _, err := strconv.ParseInt(raw, 10, 32); err != nil {
			if _, err := strconv.ParseFloat(raw, 32); err != nil {
				return Token{}, &SyntaxError{Kind: ErrBadNumber, Span: tok.span}
			}
		}
		return Token{Kind: Number, Dat: raw, Span: tok.span}, nil
	default:
		return Token{Kind: tok.kind, Dat: raw, Span: tok.span}, nil
	}
}
