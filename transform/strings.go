package transform

import (
	"strconv"
	"strings"

	"github.com/apparentlymart/go-textseg/v15/textseg"
)

// unquote strips the surrounding double quotes from a lexed string literal
// and resolves backslash and "$$" escapes. Interpolation segments ("${...}")
// are not interpreted, but they are not skipped either: an escape inside one
// is resolved like any other.
func unquote(raw string) string {
	inner := raw[1 : len(raw)-1]
	var sb strings.Builder
	i := 0
	for i < len(inner) {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			n := inner[i+1]
			switch n {
			case 'n':
				sb.WriteByte('\n')
				i += 2
				continue
			case 't':
				sb.WriteByte('\t')
				i += 2
				continue
			case 'r':
				sb.WriteByte('\r')
				i += 2
				continue
			case '"', '\\':
				sb.WriteByte(n)
				i += 2
				continue
			case 'u', 'U':
				width := 4
				if n == 'U' {
					width = 8
				}
				if i+2+width <= len(inner) {
					if code, err := strconv.ParseInt(inner[i+2:i+2+width], 16, 32); err == nil {
						sb.WriteRune(rune(code))
						i += 2 + width
						continue
					}
				}
			}
		}
		if c == '$' && i+1 < len(inner) && inner[i+1] == '$' {
			sb.WriteByte('$')
			i += 2
			continue
		}
		sb.WriteByte(c)
		i++
	}
	return sb.String()
}

// interpolationSpan reports whether the body of a quoted string (without
// its surrounding quotes) is exactly one "${ ... }" interpolation and
// nothing else, returning the inner expression text if so.
func interpolationSpan(inner string) (string, bool) {
	if !strings.HasPrefix(inner, "${") || !strings.HasSuffix(inner, "}") {
		return "", false
	}
	depth := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return inner[2 : len(inner)-1], i == len(inner)-1
			}
		}
	}
	return "", false
}

// dedentHeredoc strips the marker line and closing tag line from a raw
// <<TAG...TAG token, and — for the "<<-" indented form — removes the
// minimum common leading whitespace from every content line, measured in
// grapheme clusters (spec.md §3.1) so combining sequences aren't split.
func dedentHeredoc(raw string, trimIndent bool) string {
	lines := strings.Split(raw, "\n")
	// lines[0] is "<<TAG" or "<<-TAG". The tag line is the last element,
	// unless the token ended with a trailing newline, in which case the
	// tag line is second-to-last and the final element is "".
	end := len(lines) - 1
	if end >= 0 && lines[end] == "" {
		end--
	}
	var content []string
	if end > 1 {
		content = lines[1:end]
	}
	if !trimIndent {
		return strings.Join(content, "\n")
	}
	minIndent := -1
	for _, line := range content {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := leadingWhitespaceGraphemes(line)
		if minIndent == -1 || n < minIndent {
			minIndent = n
		}
	}
	if minIndent <= 0 {
		return strings.Join(content, "\n")
	}
	out := make([]string, len(content))
	for i, line := range content {
		out[i] = dropGraphemes(line, minIndent)
	}
	return strings.Join(out, "\n")
}

func leadingWhitespaceGraphemes(s string) int {
	count := 0
	rest := s
	for len(rest) > 0 {
		advance, tok, err := textseg.ScanGraphemeClusters([]byte(rest), true)
		if err != nil || advance == 0 {
			break
		}
		if string(tok) != " " && string(tok) != "\t" {
			break
		}
		rest = rest[advance:]
		count++
	}
	return count
}

func dropGraphemes(s string, n int) string {
	rest := s
	for i := 0; i < n && len(rest) > 0; i++ {
		advance, _, err := textseg.ScanGraphemeClusters([]byte(rest), true)
		if err != nil || advance == 0 {
			break
		}
		rest = rest[advance:]
	}
	return rest
}
