// Package workspace implements the LSP-facing incremental compilation
// session. A Session holds one diagnostic bag and one Analyzer
// across edits; UpdateFile re-runs exactly the five steps an editor needs
// after a single file changes, without re-tokenizing or re-parsing any
// other file.
package workspace

import (
	"log/slog"
	"sort"

	"github.com/DanielSharp01/eprotoc/internal/analyzer"
	"github.com/DanielSharp01/eprotoc/internal/ast"
	"github.com/DanielSharp01/eprotoc/internal/diag"
	"github.com/DanielSharp01/eprotoc/internal/sourcemap"
	"github.com/DanielSharp01/eprotoc/internal/token"
)

// Session is one long-lived compilation state shared across file edits.
type Session struct {
	Diags    *diag.Bag
	Analyzer *analyzer.Analyzer
	sources  *sourcemap.SourceMap
	nodes    map[string][]ast.Node
}

// New returns an empty Session.
func New() *Session {
	diags := diag.NewBag()
	return &Session{
		Diags:    diags,
		Analyzer: analyzer.New(diags),
		sources:  sourcemap.New(),
		nodes:    map[string][]ast.Node{},
	}
}

// UpdateFile runs the five-step re-analysis sequence for a single changed
// (or newly opened) file: invalidate that file's local and every global
// diagnostic, remove its previously materialized definitions, re-tokenize
// and re-parse only this file, re-run the global analyze() pass over the
// whole session, then return diagnostics grouped by file for publishing.
func (s *Session) UpdateFile(file, text string) map[string][]diag.Diagnostic {
	slog.Info("invalidating file", "file", file)
	s.Diags.InvalidateFile(file)
	s.Diags.InvalidateGlobal()
	s.Analyzer.InvalidateFile(file)

	s.sources.Put(file, text)
	toks := token.Tokenize(file, text, s.Diags)
	nodes := ast.Parse(file, toks, s.Diags)
	s.nodes[file] = nodes
	s.Analyzer.AnalyzeFile(file, nodes)

	s.Analyzer.Analyze()

	return s.publish()
}

// CloseFile removes a file from the session entirely: its text, its parsed
// nodes, its materialized definitions, and its diagnostics, then re-runs the
// global pass so any dangling cross-file references are re-diagnosed.
func (s *Session) CloseFile(file string) map[string][]diag.Diagnostic {
	slog.Info("closing file", "file", file)
	s.Diags.InvalidateFile(file)
	s.Diags.InvalidateGlobal()
	s.Analyzer.InvalidateFile(file)
	s.sources.Remove(file)
	delete(s.nodes, file)

	s.Analyzer.Analyze()
	return s.publish()
}

func (s *Session) publish() map[string][]diag.Diagnostic {
	out := map[string][]diag.Diagnostic{}
	for file := range s.nodes {
		out[file] = s.Diags.ForFile(file)
	}
	for _, d := range s.Diags.All() {
		if _, ok := out[d.Span.File]; !ok {
			out[d.Span.File] = s.Diags.ForFile(d.Span.File)
		}
	}
	return out
}

// Files returns every file currently open in the session, sorted.
func (s *Session) Files() []string {
	out := make([]string, 0, len(s.nodes))
	for f := range s.nodes {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Nodes returns the parsed AST for a file currently open in the session.
func (s *Session) Nodes(file string) []ast.Node {
	return s.nodes[file]
}
