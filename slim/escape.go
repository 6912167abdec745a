package slim

import (
	"bytes"
	"unicode/utf8"
)

const replacement = "\uFFFD"

// escapeText writes s as XML character data. Carriage returns are written as
// references so a parser does not fold them into line feeds.
func escapeText(b *bytes.Buffer, s string) {
	escape(b, s, false)
}

// escapeAttr writes s as a double-quoted attribute value. Tab, line feed and
// carriage return become references so attribute normalization keeps them.
func escapeAttr(b *bytes.Buffer, s string) {
	escape(b, s, true)
}

// escape replaces characters XML 1.0 cannot carry, including invalid UTF-8,
// with U+FFFD.
func escape(b *bytes.Buffer, s string, attr bool) {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			b.WriteString(replacement)
		case r == '&':
			b.WriteString("&amp;")
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case r == '"' && attr:
			b.WriteString("&quot;")
		case r == '\r':
			b.WriteString("&#xD;")
		case r == '\n' && attr:
			b.WriteString("&#xA;")
		case r == '\t' && attr:
			b.WriteString("&#x9;")
		case !isXMLChar(r):
			b.WriteString(replacement)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
