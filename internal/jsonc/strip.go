// Package jsonc removes comments from JSON text so that commented source maps
// can be handed to a regular JSON parser.
package jsonc

import "strings"

type state int

const (
	document state = iota
	str
	lineComment
	blockComment
)

// Strip returns text without `//` and `#` line comments and `/* */` block
// comments. Text inside string literals is kept verbatim, including escaped
// quotes and backslashes. The newline ending a line comment is kept. An
// unterminated block comment runs to the end of the input.
func Strip(text string) string {
	var out strings.Builder
	out.Grow(len(text))

	start := 0
	st := document
	for pos := 0; pos < len(text); pos++ {
		ch := text[pos]
		switch st {
		case document:
			switch {
			case ch == '"':
				st = str
			case ch == '#':
				out.WriteString(text[start:pos])
				st = lineComment
			case ch == '/' && next(text, pos) == '/':
				out.WriteString(text[start:pos])
				st = lineComment
				pos++
			case ch == '/' && next(text, pos) == '*':
				out.WriteString(text[start:pos])
				st = blockComment
				pos++
			}
		case str:
			switch {
			case ch == '"':
				st = document
			case ch == '\\' && (next(text, pos) == '\\' || next(text, pos) == '"'):
				pos++
			}
		case lineComment:
			if ch == '\r' || ch == '\n' {
				start = pos
				st = document
			}
		case blockComment:
			if ch == '*' && next(text, pos) == '/' {
				pos++
				start = pos + 1
				st = document
			}
		}
	}

	if st == document || st == str {
		out.WriteString(text[start:])
	}
	return out.String()
}

func next(text string, pos int) byte {
	if pos+1 < len(text) {
		return text[pos+1]
	}
	return 0
}
