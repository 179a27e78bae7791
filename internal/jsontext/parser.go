package jsontext

// blockKind identifies which grammar production a parser stack frame is
// currently inside of.
type blockKind uint8

const (
	blockValue blockKind = iota
	blockObject
	blockArray
)

// block is one frame of the parser's explicit shift-reduce stack. needFlag
// means "need colon" for a Value frame and "need comma" for Object/Array
// frames; the two never coexist so one field covers both.
type block struct {
	kind     blockKind
	needFlag bool
}

// Parser turns a JSON document into a flat stream of Tokens via Next,
// tracking object/array nesting with an explicit stack rather than
// recursive descent. This lets a caller peek at the next token's kind
// (via Peek) before deciding how a field's value should be consumed —
// needed because the save format's field grammar is context-sensitive
// (a BeginObject can mean either a child object or an embedded sub-file).
type Parser struct {
	lex       *lexer
	data      string
	stack     []block
	peeked    *Token
	peekedErr error
	hasPeeked bool
}

// NewParser constructs a Parser reading from src. The grammar starts in a
// single top-level Value frame: a bare JSON document is exactly one value.
func NewParser(src string) *Parser {
	return &Parser{
		lex:   newLexer(src),
		data:  src,
		stack: []block{{kind: blockValue}},
	}
}

// Next returns the next token and advances the parser, or returns
// ok=false once the top-level value has been fully consumed.
func (p *Parser) Next() (Token, error, bool) {
	if p.hasPeeked {
		tok, err := *p.peeked, p.peekedErr
		p.hasPeeked = false
		p.peeked = nil
		p.peekedErr = nil
		return tok, err, true
	}
	if len(p.stack) == 0 {
		return Token{}, nil, false
	}
	tok, err := p.nextInner()
	return tok, err, true
}

// Peek returns the next token without consuming it. The same token (and
// any error) is then returned again by the following Next call.
func (p *Parser) Peek() (Token, error, bool) {
	if !p.hasPeeked {
		if len(p.stack) == 0 {
			return Token{}, nil, false
		}
		tok, err := p.nextInner()
		p.peeked = &tok
		p.peekedErr = err
		p.hasPeeked = true
	}
	return *p.peeked, p.peekedErr, true
}

// AtEnd reports whether the source has nothing left but trailing
// whitespace, with no token already buffered by Peek. It does not consume
// or look past whatever comes next, so it's safe to call once a caller's
// own grammar (a single top-level value, here) is known to be complete and
// it only remains to reject trailing garbage.
func (p *Parser) AtEnd() (ok bool, at int) {
	if p.hasPeeked {
		return false, p.peeked.Span.First
	}
	pos := p.lex.pos
	for pos < len(p.lex.src) && isWhitespace(p.lex.src[pos]) {
		pos++
	}
	return pos >= len(p.lex.src), pos
}

// Expect consumes the next token and requires it to have kind want,
// returning a SyntaxError (ErrExpected) otherwise.
func (p *Parser) Expect(want TokenType) (Token, error) {
	tok, err, ok := p.Next()
	if !ok {
		return Token{}, &SyntaxError{Kind: ErrEOF}
	}
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != want {
		return Token{}, &SyntaxError{Kind: ErrExpected, Want: want.String(), Span: tok.Span}
	}
	return tok, nil
}

func (p *Parser) lexNext() (lexerToken, error) {
	raw, ok := p.lex.next()
	if !ok {
		return lexerToken{}, &SyntaxError{Kind: ErrEOF}
	}
	return raw, nil
}

func (p *Parser) token(raw lexerToken) (Token, error) {
	if raw.kind == invalid {
		return Token{}, &SyntaxError{Kind: ErrExpectedValue, Span: raw.span}
	}
	return tokenFromSpan(p.data, raw)
}

// parseValue reduces one value production: a scalar pops the enclosing
// Value frame immediately, while an object/array push a new frame that the
// matching EndObject/EndArray will later pop alongside it.
func (p *Parser) parseValue(raw lexerToken) (Token, error) {
	switch raw.kind {
	case BeginObject:
		p.stack = append(p.stack, block{kind: blockObject})
		return p.token(raw)
	case BeginArray:
		p.stack = append(p.stack, block{kind: blockArray})
		return p.token(raw)
	case Number, BoolTrue, BoolFalse, String, Null:
		p.stack = p.stack[:len(p.stack)-1] // leave the Value frame
		return p.token(raw)
	default:
		return Token{}, &SyntaxError{Kind: ErrExpectedValue, Span: raw.span}
	}
}

func (p *Parser) nextInner() (Token, error) {
	top := &p.stack[len(p.stack)-1]
	switch top.kind {
	case blockValue:
		needColon := top.needFlag
		raw, err := p.lexNext()
		if err != nil {
			return Token{}, err
		}
		if needColon {
			if raw.kind != colon {
				return Token{}, &SyntaxError{Kind: ErrExpected, Want: colon.String(), Span: raw.span}
			}
			raw, err = p.lexNext()
			if err != nil {
				return Token{}, err
			}
		}
		top.needFlag = false
		return p.parseValue(raw)

	case blockObject:
		raw, err := p.lexNext()
		if err != nil {
			return Token{}, err
		}
		if raw.kind == EndObject {
			p.stack = p.stack[:len(p.stack)-1] // leave the object
			p.stack = p.stack[:len(p.stack)-1] // terminate its enclosing value
			return p.token(raw)
		}
		if top.needFlag {
			if raw.kind != comma {
				return Token{}, &SyntaxError{Kind: ErrExpected, Want: comma.String(), Span: raw.span}
			}
			raw, err = p.lexNext()
			if err != nil {
				return Token{}, err
			}
		}
		top.needFlag = true
		if raw.kind != String {
			return Token{}, &SyntaxError{Kind: ErrExpected, Want: FieldName.String(), Span: raw.span}
		}
		p.stack = append(p.stack, block{kind: blockValue, needFlag: true})
		tok, err := p.token(raw)
		if err != nil {
			return Token{}, err
		}
		tok.Kind = FieldName
		return tok, nil

	default: // blockArray
		raw, err := p.lexNext()
		if err != nil {
			return Token{}, err
		}
		if raw.kind == EndArray {
			p.stack = p.stack[:len(p.stack)-1] // leave the array
			p.stack = p.stack[:len(p.stack)-1] // terminate its enclosing value
			return p.token(raw)
		}
		if top.needFlag {
			if raw.kind != comma {
				return Token{}, &SyntaxError{Kind: ErrExpected, Want: comma.String(), Span: raw.span}
			}
			raw, err = p.lexNext()
			if err != nil {
				return Token{}, err
			}
		}
		top.needFlag = true
		p.stack = append(p.stack, block{kind: blockValue})
		return p.parseValue(raw)
	}
}
