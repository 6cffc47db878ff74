// Package diag collects compiler diagnostics: errors with token locations,
// a local/global scope, and an optional cross-reference to a related span.
package diag

import (
	"fmt"

	"github.com/DanielSharp01/eprotoc/internal/sourcemap"
)

// Scope distinguishes diagnostics that can be invalidated by re-analyzing a
// single file (Local) from ones that may point across files and must be
// recomputed whenever any file in the set changes (Global).
type Scope int

const (
	Local Scope = iota
	Global
)

func (s Scope) String() string {
	if s == Global {
		return "global"
	}
	return "local"
}

// Kind enumerates the diagnostic taxonomy.
type Kind string

const (
	LexUnknownSymbol   Kind = "lex-unknown-symbol"
	ParseExpect        Kind = "parse-expect"
	MissingPackage     Kind = "missing-package"
	MultiplePackages   Kind = "multiple-packages"
	PackageNotFirst    Kind = "package-not-first"
	Redefinition       Kind = "redefinition"
	FieldRedefinition  Kind = "field-redefinition"
	OrdinalNonpositive Kind = "ordinal-nonpositive"
	OrdinalNotMonotone Kind = "ordinal-not-monotonic"
	UnknownType        Kind = "unknown-type"
	ArityMismatch      Kind = "arity-mismatch"
	GenericHasArgs     Kind = "generic-has-args"
	GenericFormInvalid Kind = "generic-form-invalid"
)

// Related is a cross-reference to another span, e.g. the first definition
// of a symbol being redefined.
type Related struct {
	Message string
	Span    sourcemap.Span
}

// Diagnostic is one reported error. Severity is always "error" — there are
// no warnings in this compiler.
type Diagnostic struct {
	Kind    Kind
	Scope   Scope
	Message string
	Span    sourcemap.Span
	Related *Related
}

// Bag accumulates diagnostics for a compilation or LSP session. It never
// aborts a pass; callers append freely and inspect HasErrors at the end.
type Bag struct {
	byFile map[string][]Diagnostic
}

// NewBag returns an empty diagnostic bag.
func NewBag() *Bag {
	return &Bag{byFile: map[string][]Diagnostic{}}
}

// Add appends a diagnostic, filed under its span's source file.
func (b *Bag) Add(d Diagnostic) {
	b.byFile[d.Span.File] = append(b.byFile[d.Span.File], d)
}

// Errorf is a convenience for the common case: no related span.
func (b *Bag) Errorf(kind Kind, scope Scope, span sourcemap.Span, format string, args ...any) {
	b.Add(Diagnostic{Kind: kind, Scope: scope, Message: fmt.Sprintf(format, args...), Span: span})
}

// ErrorfRelated attaches a related cross-reference span.
func (b *Bag) ErrorfRelated(kind Kind, scope Scope, span sourcemap.Span, related Related, format string, args ...any) {
	b.Add(Diagnostic{Kind: kind, Scope: scope, Message: fmt.Sprintf(format, args...), Span: span, Related: &related})
}

// InvalidateFile drops every Local diagnostic filed under file, and every
// Global diagnostic filed under file (global diagnostics are cheap to
// recompute and callers are expected to re-run the global analyze() pass
// immediately after calling this — see internal/workspace).
func (b *Bag) InvalidateFile(file string) {
	delete(b.byFile, file)
}

// InvalidateGlobal clears every Global diagnostic across every file,
// leaving Local diagnostics untouched. Call this before re-running the
// global analyze() pass.
func (b *Bag) InvalidateGlobal() {
	for file, ds := range b.byFile {
		kept := ds[:0]
		for _, d := range ds {
			if d.Scope == Local {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 {
			delete(b.byFile, file)
		} else {
			b.byFile[file] = kept
		}
	}
}

// RemoveWhere deletes every diagnostic matching pred, across every file.
// The analyzer uses this to clear exactly the diagnostic kinds it is about
// to recompute, leaving tokenizer/parser diagnostics untouched.
func (b *Bag) RemoveWhere(pred func(Diagnostic) bool) {
	for file, ds := range b.byFile {
		kept := ds[:0]
		for _, d := range ds {
			if !pred(d) {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 {
			delete(b.byFile, file)
		} else {
			b.byFile[file] = kept
		}
	}
}

// All returns every diagnostic across every file, in no particular file
// order but stable within a file.
func (b *Bag) All() []Diagnostic {
	out := make([]Diagnostic, 0)
	for _, ds := range b.byFile {
		out = append(out, ds...)
	}
	return out
}

// ForFile returns the diagnostics filed under a single file.
func (b *Bag) ForFile(file string) []Diagnostic {
	return b.byFile[file]
}

// HasErrors reports whether any diagnostic has been recorded at all.
func (b *Bag) HasErrors() bool {
	for _, ds := range b.byFile {
		if len(ds) > 0 {
			return true
		}
	}
	return false
}
