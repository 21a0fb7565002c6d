package nexus

import (
	"strings"
)

/* ---------- globals & tiny helpers ---------- */

var EnableColor = false // REPL-only; tests can leave this false

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func colorize(s, c string) string {
	if !EnableColor {
		return s
	}
	return c + s + colorReset
}

// quoteString renders s as a double-quoted literal with common control
// characters escaped. Display only; source strings carry no escapes.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

/* ---------- value display ---------- */

// FormatValue renders v the way the REPL echoes results: strings are quoted
// so that "5" and 5 are distinguishable, everything else prints as
// Stringify does. Colors apply only when EnableColor is set.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNull:
		return colorize("null", colorCyan)
	case VTBool:
		return colorize(Stringify(v), colorYellow)
	case VTNum:
		return colorize(Stringify(v), colorYellow)
	case VTStr:
		return colorize(quoteString(v.Data.(string)), colorGreen)
	case VTArray:
		elems := v.Data.([]Value)
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(FormatValue(e))
		}
		b.WriteByte(']')
		return b.String()
	default:
		return colorize(Stringify(v), colorCyan)
	}
}
