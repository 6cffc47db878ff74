// Package sourcemap owns file contents and source-span primitives used by
// every later stage of the pipeline (tokens, AST nodes, diagnostics).
package sourcemap

import "strings"

// Position is a 0-indexed line/column pair. Columns count UTF-16-ish width:
// supplementary-plane code points advance the column by 2, matching the
// tokenizer's scanning rule.
type Position struct {
	Line int
	Col  int
}

// Span covers a half-open range [Start, End) within a single File.
type Span struct {
	File  string
	Start Position
	End   Position
}

// String renders the span 1-indexed, the form used in diagnostic messages.
func (s Span) String() string {
	return s.File + ":" + itoa(s.Start.Line+1) + ":" + itoa(s.Start.Col+1)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// SourceMap owns the text of every file known to a compilation or LSP
// session. Entries live for the lifetime of the session; on change the
// caller is responsible for invalidating dependent caches (tokens, AST,
// definitions, diagnostics) atomically — see internal/workspace.
type SourceMap struct {
	files map[string]string
}

// New returns an empty SourceMap.
func New() *SourceMap {
	return &SourceMap{files: map[string]string{}}
}

// Put stores (or replaces) the contents of a file, normalizing CRLF to LF.
func (sm *SourceMap) Put(file, text string) {
	sm.files[file] = normalizeNewlines(text)
}

// Remove drops a file from the map.
func (sm *SourceMap) Remove(file string) {
	delete(sm.files, file)
}

// Text returns the stored contents of file and whether it is known.
func (sm *SourceMap) Text(file string) (string, bool) {
	t, ok := sm.files[file]
	return t, ok
}

// Files returns the known file names in no particular order.
func (sm *SourceMap) Files() []string {
	out := make([]string, 0, len(sm.files))
	for f := range sm.files {
		out = append(out, f)
	}
	return out
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
