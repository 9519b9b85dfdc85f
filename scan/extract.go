/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/
// Package scan extracts module specifiers from JavaScript and
// TypeScript source and aggregates them into per-project usage
// records.
package scan

import "regexp"

// Import is one module reference extracted from a source file.
type Import struct {
	Specifier string
	TypeOnly  bool
}

// span is a half-open byte range [Start, End) within a source file.
type span struct {
	start, end int
}

// strip returns a same-length copy of src with comment bytes blanked
// to spaces, plus the byte ranges covered by string literals. Literal
// content is preserved verbatim so the caller can tell quoted text
// from code. Escaped quotes and backslashes are honored; newlines
// terminate unterminated single and double quoted literals.
func strip(src []byte) ([]byte, []span) {
	const (
		code = iota
		lineComment
		blockComment
		single
		double
		backtick
	)

	out := make([]byte, len(src))
	copy(out, src)
	var literals []span

	state := code
	start := 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(src) && src[i+1] == '/':
				state = lineComment
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				state = blockComment
				out[i], out[i+1] = ' ', ' '
				i++
			case c == '\'':
				state = single
				start = i
			case c == '"':
				state = double
				start = i
			case c == '`':
				state = backtick
				start = i
			}
		case lineComment:
			if c == '\n' {
				state = code
			} else {
				out[i] = ' '
			}
		case blockComment:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				out[i], out[i+1] = ' ', ' '
				i++
				state = code
			} else if c != '\n' {
				out[i] = ' '
			}
		case single, double:
			quote := byte('\'')
			if state == double {
				quote = '"'
			}
			switch c {
			case '\\':
				i++
			case quote:
				literals = append(literals, span{start, i + 1})
				state = code
			case '\n':
				literals = append(literals, span{start, i})
				state = code
			}
		case backtick:
			switch c {
			case '\\':
				i++
			case '`':
				literals = append(literals, span{start, i + 1})
				state = code
			}
		}
	}
	if state == single || state == double || state == backtick {
		literals = append(literals, span{start, len(src)})
	}
	return out, literals
}

// inLiteral reports whether offset falls inside one of the recorded
// string literal ranges. Spans are ordered by start offset.
func inLiteral(literals []span, offset int) bool {
	for _, s := range literals {
		if s.start > offset {
			return false
		}
		if offset < s.end {
			return true
		}
	}
	return false
}

// The four scans. Quotes and semicolons are excluded from the
// between-keyword classes so a match never crosses a statement or
// literal boundary; \x60 is a backtick.
var (
	staticImportRE  = regexp.MustCompile("\\bimport\\s+(type\\s+)?[^'\"\x60;]*?\\bfrom\\s*['\"\x60]([^'\"\x60]+)['\"\x60]")
	exportFromRE    = regexp.MustCompile("\\bexport\\s+(type\\s+)?[^'\"\x60;]*?\\bfrom\\s*['\"\x60]([^'\"\x60]+)['\"\x60]")
	dynamicImportRE = regexp.MustCompile("\\bimport\\s*\\(\\s*['\"\x60]([^'\"\x60]+)['\"\x60]\\s*[,)]")
	requireRE       = regexp.MustCompile("\\brequire\\s*\\(\\s*['\"\x60]([^'\"\x60]+)['\"\x60]\\s*\\)")
)

// Extract scans source text for module references without parsing
// it. Comments are blanked first; a match is accepted only when its
// keyword starts outside every string literal, so specifiers that
// merely appear inside strings are never extracted. Dynamic imports
// and require calls are always runtime references. Exact duplicate
// (specifier, typeOnly) pairs are discarded; a specifier imported
// both ways surfaces as both pairs.
func Extract(source []byte) []Import {
	text, literals := strip(source)

	seen := make(map[Import]struct{})
	var out []Import
	add := func(spec string, typeOnly bool) {
		imp := Import{Specifier: spec, TypeOnly: typeOnly}
		if _, dup := seen[imp]; dup {
			return
		}
		seen[imp] = struct{}{}
		out = append(out, imp)
	}

	for _, re := range []*regexp.Regexp{staticImportRE, exportFromRE} {
		for _, m := range re.FindAllSubmatchIndex(text, -1) {
			if inLiteral(literals, m[0]) {
				continue
			}
			add(string(text[m[4]:m[5]]), m[2] >= 0)
		}
	}
	for _, re := range []*regexp.Regexp{dynamicImportRE, requireRE} {
		for _, m := range re.FindAllSubmatchIndex(text, -1) {
			if inLiteral(literals, m[0]) {
				continue
			}
			add(string(text[m[2]:m[3]]), false)
		}
	}
	return out
}
