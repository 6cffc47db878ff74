package emit

import "sort"

// ImportSet tracks which other source files' symbols one emitted file
// needs, computing the minimal alias set each file actually requires: each
// imported symbol is aliased as `<packageId>__<name>` to avoid collisions
// between packages that reuse the same local name, and the synthetic Any
// type is always aliased `Builtin__Any` regardless of which file defines it.
type ImportSet struct {
	// byFile maps a defining file path to the set of symbol names imported
	// from it, each to the alias it must be imported under.
	byFile map[string]map[string]string
	// calls records every writer/reader call name used by this file's
	// emitted procedures, for wire-helper import computation.
	calls map[string]bool
}

// NewImportSet returns an empty ImportSet.
func NewImportSet() *ImportSet {
	return &ImportSet{byFile: map[string]map[string]string{}, calls: map[string]bool{}}
}

// Need records that the symbol named by packageID/name, defined in
// definedIn, must be imported and referenced via its alias.
func (s *ImportSet) Need(definedIn, packageID, name string) string {
	alias := Alias(packageID, name)
	if s.byFile[definedIn] == nil {
		s.byFile[definedIn] = map[string]string{}
	}
	s.byFile[definedIn][name] = alias
	return alias
}

// AliasFor returns the alias a symbol previously registered via Need was
// assigned, for rendering an actual `import ... as alias` line.
func (s *ImportSet) AliasFor(file, name string) string {
	return s.byFile[file][name]
}

// NoteCall records use of a writer/reader wire-helper call, so the emitter
// can compute which helper functions a file actually needs.
func (s *ImportSet) NoteCall(name string) {
	s.calls[name] = true
}

// Alias is the `<packageId>__<name>` aliasing rule; the synthetic Any type
// is always aliased under the fixed "Builtin" package id.
func Alias(packageID, name string) string {
	return packageID + "__" + name
}

// Files returns the set of files this set needs to import from, sorted for
// deterministic emission order.
func (s *ImportSet) Files() []string {
	out := make([]string, 0, len(s.byFile))
	for f := range s.byFile {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// SymbolsFrom returns the sorted symbol names imported from the given file.
func (s *ImportSet) SymbolsFrom(file string) []string {
	names := make([]string, 0, len(s.byFile[file]))
	for n := range s.byFile[file] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Calls returns the sorted set of wire-helper call names this file's
// emitted code references.
func (s *ImportSet) Calls() []string {
	return SortedCallNames(s.calls)
}
