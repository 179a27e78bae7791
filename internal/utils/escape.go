package utils

import "strings"

// escapeMap and its reverse define the codec's 7-entry JSON string escape
// table (§4.4): \b \f \n \r \t \" \\.
var escapeMap = map[byte]string{
	'\b': `\b`,
	'\f': `\f`,
	'\n': `\n`,
	'\r': `\r`,
	'\t': `\t`,
	'"':  `\"`,
	'\\': `\\`,
}

func isControlOrBackslash(b byte) bool {
	switch b {
	case '\b', '\f', '\n', '\r', '\t', '"', '\\':
		return true
	default:
		return false
	}
}

// Escape returns s with control characters and backslashes replaced by
// their JSON escape sequence. Quotes are escaped too, since callers always
// wrap the result in a pair of quotes. When nothing needs escaping, the
// input is returned unchanged without allocating.
func Escape(s string) string {
	needsWork := false
	for i := 0; i < len(s); i++ {
		if isControlOrBackslash(s[i]) {
			needsWork = true
			break
		}
	}
	if !needsWork {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if esc, ok := escapeMap[c]; ok {
			b.WriteString(esc)
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// bareControlChar reports whether c is one of the five control characters
// that must never appear literally inside a JSON string body (§4.3/§4.4).
func bareControlChar(c byte) bool {
	switch c {
	case '\b', '\f', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

// Unescape reverses Escape. It rejects literal (unescaped) control bytes
// and unknown escape sequences, returning ok=false in either case. When s
// contains no backslash and no bare control character, s is returned
// unchanged.
func Unescape(s string) (string, bool) {
	for i := 0; i < len(s); i++ {
		if bareControlChar(s[i]) {
			return "", false
		}
	}
	if strings.IndexByte(s, '\\') < 0 {
		return s, true
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", false
		}
		switch s[i] {
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			return "", false
		}
	}
	return b.String(), true
}
