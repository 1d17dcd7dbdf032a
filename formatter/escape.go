package formatter

import "strings"

// escapeString escapes s for use inside a quoted Beancount string, using
// C-style escape sequences.
func escapeString(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\t\r") {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + 8)

	for _, c := range s {
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteRune(c)
		}
	}

	return buf.String()
}
