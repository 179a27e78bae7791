package ddsave

import (
	"fmt"
	"io"
	"strconv"

	"github.com/scigolib/ddsave/internal/utils"
)

// JSONWriteOptions controls WriteJSON's emission. AllowDupes controls how a
// re-encoded file with duplicate child field names (possible only via a
// hand-edited save) is handled: false drops every repeat past the first,
// matching what the game itself tolerates on load. Unhash is an optional,
// caller-owned, read-only table of known name hashes: any Int value (lone
// or inside an IntVector) found in it is emitted as "###name" instead of
// its raw integer, inverting the hash-sentinel convention decode already
// understands.
type JSONWriteOptions struct {
	AllowDupes bool
	Unhash     map[int32]string
}

// WriteJSON writes this File as JSON, indented by 4 spaces per nesting
// level starting at indent.
func (file *File) WriteJSON(w io.Writer, indent uint32, opts JSONWriteOptions) error {
	if _, err := io.WriteString(w, "{\n"); err != nil {
		return jsonIO(err)
	}
	if err := writeIndent(w, indent+1); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\"%s\": %d,\n", builtinVersionField, file.h.version); err != nil {
		return jsonIO(err)
	}
	if root, ok := file.rootField(); ok {
		if err := file.writeField(root, w, indent+1, false, opts); err != nil {
			return err
		}
	}
	if err := writeIndent(w, indent); err != nil {
		return err
	}
	_, err := io.WriteString(w, "}")
	return jsonIO(err)
}

func writeIndent(w io.Writer, n uint32) error {
	for i := uint32(0); i < n; i++ {
		if _, err := io.WriteString(w, "    "); err != nil {
			return jsonIO(err)
		}
	}
	return nil
}

func (file *File) writeObject(fieldIdx FieldIdx, w io.Writer, indent uint32, comma bool, opts JSONWriteOptions) error {
	dat := &file.dat[fieldIdx]
	children := dat.Type.Children
	if len(children) == 0 {
		s := "{}\n"
		if comma {
			s = "{},\n"
		}
		_, err := io.WriteString(w, s)
		return jsonIO(err)
	}

	if _, err := io.WriteString(w, "{\n"); err != nil {
		return jsonIO(err)
	}
	toWrite := children
	if !opts.AllowDupes {
		emitted := make(map[string]bool, len(children))
		toWrite = make([]FieldIdx, 0, len(children))
		for _, child := range children {
			name := file.dat[child].Name
			if emitted[name] {
				continue
			}
			emitted[name] = true
			toWrite = append(toWrite, child)
		}
	}
	for i, child := range toWrite {
		if err := file.writeField(child, w, indent+1, i != len(toWrite)-1, opts); err != nil {
			return err
		}
	}
	if err := writeIndent(w, indent); err != nil {
		return err
	}
	s := "}\n"
	if comma {
		s = "},\n"
	}
	_, err := io.WriteString(w, s)
	return jsonIO(err)
}

func (file *File) writeField(fieldIdx FieldIdx, w io.Writer, indent uint32, comma bool, opts JSONWriteOptions) error {
	dat := &file.dat[fieldIdx]
	if err := writeIndent(w, indent); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\"%s\" : ", dat.Name); err != nil {
		return jsonIO(err)
	}

	t := &dat.Type
	switch t.Kind {
	case KindBool:
		_, err := fmt.Fprintf(w, "%t", t.Bool)
		if err != nil {
			return jsonIO(err)
		}
	case KindTwoBool:
		_, err := fmt.Fprintf(w, "[%t, %t]", t.Bool, t.Bool2)
		if err != nil {
			return jsonIO(err)
		}
	case KindInt:
		_, err := io.WriteString(w, formatUnhashableInt(t.Int, opts.Unhash))
		if err != nil {
			return jsonIO(err)
		}
	case KindFloat:
		_, err := io.WriteString(w, formatF32(t.Float))
		if err != nil {
			return jsonIO(err)
		}
	case KindChar:
		_, err := fmt.Fprintf(w, "%q", string(t.Char))
		if err != nil {
			return jsonIO(err)
		}
	case KindString:
		_, err := fmt.Fprintf(w, "\"%s\"", utils.Escape(t.Str))
		if err != nil {
			return jsonIO(err)
		}
	case KindIntVector:
		if err := writeIntArray(w, t.IntVec, opts.Unhash); err != nil {
			return err
		}
	case KindStringVector:
		if err := writeStringArray(w, t.StrVec); err != nil {
			return err
		}
	case KindFloatArray:
		if err := writeFloatArray(w, t.FloatVec); err != nil {
			return err
		}
	case KindTwoInt:
		_, err := fmt.Fprintf(w, "[%d, %d]", t.Int2[0], t.Int2[1])
		if err != nil {
			return jsonIO(err)
		}
	case KindEmbedded:
		if err := t.Embedded.WriteJSON(w, indent, opts); err != nil {
			return err
		}
	case KindObject:
		return file.writeObject(fieldIdx, w, indent, comma, opts)
	default:
		return &JSONError{Kind: JSONErrSyntax, Msg: "unknown field kind"}
	}

	if comma {
		_, err := io.WriteString(w, ",\n")
		return jsonIO(err)
	}
	_, err := io.WriteString(w, "\n")
	return jsonIO(err)
}

func writeIntArray(w io.Writer, v []int32, unhash map[int32]string) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return jsonIO(err)
	}
	for i, n := range v {
		if _, err := io.WriteString(w, formatUnhashableInt(n, unhash)); err != nil {
			return jsonIO(err)
		}
		if i != len(v)-1 {
			if _, err := io.WriteString(w, ", "); err != nil {
				return jsonIO(err)
			}
		}
	}
	_, err := io.WriteString(w, "]")
	return jsonIO(err)
}

// formatUnhashableInt renders n as a plain JSON number, unless unhash maps
// it to a known name, in which case it's rendered as the "###name"
// sentinel decode already understands as the inverse of this operation.
func formatUnhashableInt(n int32, unhash map[int32]string) string {
	if name, ok := unhash[n]; ok {
		return `"` + hashSentinelPrefix + utils.Escape(name) + `"`
	}
	return strconv.FormatInt(int64(n), 10)
}

func writeStringArray(w io.Writer, v []string) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return jsonIO(err)
	}
	for i, s := range v {
		if _, err := fmt.Fprintf(w, "\"%s\"", utils.Escape(s)); err != nil {
			return jsonIO(err)
		}
		if i != len(v)-1 {
			if _, err := io.WriteString(w, ", "); err != nil {
				return jsonIO(err)
			}
		}
	}
	_, err := io.WriteString(w, "]")
	return jsonIO(err)
}

func writeFloatArray(w io.Writer, v []float32) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return jsonIO(err)
	}
	for i, f := range v {
		if _, err := io.WriteString(w, formatF32(f)); err != nil {
			return jsonIO(err)
		}
		if i != len(v)-1 {
			if _, err := io.WriteString(w, ", "); err != nil {
				return jsonIO(err)
			}
		}
	}
	_, err := io.WriteString(w, "]")
	return jsonIO(err)
}

// formatF32 renders f as the shortest decimal that round-trips back to the
// same float32 value, using exponent notation (e.g. "1e+06") when the
// decimal exponent is below -4 or at least 6.
func formatF32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
