package ddsave

import (
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/scigolib/ddsave/internal/jsontext"
)

// embeddedFieldNames are the field names whose value is itself a complete,
// independently-encoded save file rather than a plain nested object.
var embeddedFieldNames = map[string]bool{
	"raw_data":    true,
	"static_save": true,
}

// FromJSON decodes a Darkest Dungeon save from its JSON representation.
// Only whitespace may follow the top-level document's closing brace; any
// other trailing byte is a syntax error.
func FromJSON(r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, jsonIO(err)
	}
	if !utf8.Valid(raw) {
		return nil, &JSONError{Kind: JSONErrEncoding, Msg: "not utf-8"}
	}
	p := jsontext.NewParser(string(raw))
	file, err := fromJSONParser(p)
	if err != nil {
		return nil, err
	}
	if ok, at := p.AtEnd(); !ok {
		return nil, &JSONError{Kind: JSONErrSyntax, Msg: "trailing data after top-level document", Span: jsontext.Span{First: at, End: at}}
	}
	return file, nil
}

// fromJSONParser decodes one save (top-level or embedded) from an
// in-progress Parser, leaving it positioned right after the closing brace
// so a caller mid-document can keep reading siblings. The version field
// (builtinVersionField) may appear anywhere among the object's top-level
// keys — first, last, or anywhere between — rather than being pinned to
// the first key, since the game itself does not guarantee its position.
func fromJSONParser(p *jsontext.Parser) (*File, error) {
	file := &File{}

	if _, err := p.Expect(jsontext.BeginObject); err != nil {
		return nil, fromSyntaxError(err)
	}

	var nameStack []string
	var versNum uint32
	var versSeen bool

	for {
		tok, err, ok := p.Next()
		if !ok {
			return nil, &JSONError{Kind: JSONErrUnexpEOF}
		}
		if err != nil {
			return nil, fromSyntaxError(err)
		}

		switch tok.Kind {
		case jsontext.EndObject:
			if !versSeen {
				return nil, &JSONError{Kind: JSONErrExpected, Msg: builtinVersionField, Span: tok.Span}
			}
			dataSize, err := file.fixupOffsets()
			if err != nil {
				return nil, err
			}
			h, err := fixupHeader(file.o.len(), file.f.len(), versNum, dataSize)
			if err != nil {
				return nil, err
			}
			file.h = *h
			return file, nil

		case jsontext.FieldName:
			if tok.Dat == builtinVersionField {
				numTok, err := p.Expect(jsontext.Number)
				if err != nil {
					return nil, fromSyntaxError(err)
				}
				v, err := strconv.ParseUint(numTok.Dat, 10, 32)
				if err != nil {
					return nil, &JSONError{Kind: JSONErrExpected, Msg: "number", Span: numTok.Span}
				}
				versNum = uint32(v)
				versSeen = true
				continue
			}
			if _, err := file.readField(tok.Dat, false, 0, &nameStack, p); err != nil {
				return nil, err
			}

		default:
			return nil, &JSONError{Kind: JSONErrExpected, Msg: "name or }", Span: tok.Span}
		}
	}
}

// readChildFields reads a JSON object's fields until its closing brace,
// returning the field indices created for each, in declaration order.
func (file *File) readChildFields(hasParent bool, parent ObjIdx, nameStack *[]string, p *jsontext.Parser) ([]FieldIdx, error) {
	var children []FieldIdx
	for {
		tok, err, ok := p.Next()
		if !ok {
			return nil, &JSONError{Kind: JSONErrUnexpEOF}
		}
		if err != nil {
			return nil, fromSyntaxError(err)
		}
		switch tok.Kind {
		case jsontext.EndObject:
			return children, nil
		case jsontext.FieldName:
			idx, err := file.readField(tok.Dat, hasParent, parent, nameStack, p)
			if err != nil {
				return nil, err
			}
			children = append(children, idx)
		default:
			return nil, &JSONError{Kind: JSONErrExpected, Msg: "name or }", Span: tok.Span}
		}
	}
}

// readField decodes one field: name has already been lexed as a
// FieldName token; the field's value comes next.
func (file *File) readField(name string, hasParent bool, parent ObjIdx, nameStack *[]string, p *jsontext.Parser) (FieldIdx, error) {
	fieldIdx, err := file.f.createField(name)
	if err != nil {
		return 0, err
	}

	ancestors := append([]string(nil), *nameStack...)
	*nameStack = append(*nameStack, name)
	defer func() { *nameStack = (*nameStack)[:len(*nameStack)-1] }()

	peek, err, ok := p.Peek()
	if !ok {
		return 0, &JSONError{Kind: JSONErrUnexpEOF}
	}
	if err != nil {
		return 0, fromSyntaxError(err)
	}

	if peek.Kind == jsontext.BeginObject {
		if embeddedFieldNames[name] {
			inner, err := fromJSONParser(p)
			if err != nil {
				return 0, err
			}
			file.dat = append(file.dat, Field{
				Name: name, HasParent: hasParent, Parent: parent,
				Type: FieldType{Kind: KindEmbedded, Embedded: inner},
			})
			return fieldIdx, nil
		}

		// Consume the peeked BeginObject and descend into the child object.
		p.Next()
		file.dat = append(file.dat, Field{
			Name: name, HasParent: hasParent, Parent: parent,
			Type: FieldType{Kind: KindObject},
		})
		objIdx, err := file.o.createObject(fieldIdx, hasParent, parent)
		if err != nil {
			return 0, err
		}
		file.f.markObject(fieldIdx, objIdx)

		childs, err := file.readChildFields(true, objIdx, nameStack, p)
		if err != nil {
			return 0, err
		}

		oi := file.o.get(objIdx)
		oi.numDirectChilds = uint32(len(childs))
		oi.numAllChilds = file.f.len() - 1 - uint32(fieldIdx)
		file.dat[fieldIdx].Type.Children = childs
		return fieldIdx, nil
	}

	ft, err := decodeFieldTypeJSON(p, ancestors, name)
	if err != nil {
		return 0, err
	}
	file.dat = append(file.dat, Field{Name: name, HasParent: hasParent, Parent: parent, Type: ft})
	return fieldIdx, nil
}
