// Package rbxml implements the Roblox XML model document format:
// the instance tree, its serializer, and the text escaping rules.
package rbxml

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Escape makes a string safe for element-content placement.
//
// The five XML-special characters become named entities. Any rune
// outside the printable ASCII range (tab, CR, LF and 0x20-0x7E are the
// only code points passed through) becomes a decimal character
// reference, so the original text is always recoverable by entity
// decoding. Bytes that are not valid UTF-8 are referenced
// individually rather than collapsed to the replacement character,
// keeping the original byte sequence intact for binary content and
// for multi-byte runes split across chunk boundaries.
func Escape(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteString("&#")
			sb.WriteString(strconv.Itoa(int(s[i])))
			sb.WriteByte(';')
			i++
			continue
		}
		i += size
		switch r {
		case '"':
			sb.WriteString("&quot;")
		case '&':
			sb.WriteString("&amp;")
		case '\'':
			sb.WriteString("&apos;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '\t', '\n', '\r':
			sb.WriteRune(r)
		default:
			if r >= 0x20 && r <= 0x7E {
				sb.WriteRune(r)
			} else {
				sb.WriteString("&#")
				sb.WriteString(strconv.FormatInt(int64(r), 10))
				sb.WriteByte(';')
			}
		}
	}
	return sb.String()
}

// EncodeLeadingMarker guards values whose first character the document
// format would truncate on decode. If s starts with whitespace or a
// literal backslash, the whole value is prefixed with a backslash; a
// compatible reader strips the marker on load.
func EncodeLeadingMarker(s string) string {
	if s == "" {
		return s
	}
	for _, r := range s {
		if r == '\\' || unicode.IsSpace(r) {
			return "\\" + s
		}
		break
	}
	return s
}
