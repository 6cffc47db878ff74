// Package analyzer implements the eprotoc semantic analyzer.
//
// Analysis is two-phase. AnalyzeFile runs Phase 1 for exactly one file:
// it determines the file's packageId, materializes unresolved definition
// skeletons, and enforces symbol uniqueness as each skeleton is installed
// into the shared Registry. Analyze runs the global Phase 2 over every
// file known to the Analyzer: it resolves every field and RPC type
// against the package namespace, checks field ordinals, and computes the
// fixpoint of generic realizations reachable from RPC signatures.
package analyzer

import (
	"github.com/DanielSharp01/eprotoc/internal/ast"
	"github.com/DanielSharp01/eprotoc/internal/diag"
	"github.com/DanielSharp01/eprotoc/internal/sourcemap"
	"github.com/DanielSharp01/eprotoc/internal/types"
)

// unresolvedPackageID names the sentinel package used for a file with no (valid)
// package declaration, scoped to the file so two such files never collide.
func unresolvedPackageID(file string) string {
	return "$unknown$" + file
}

type declared struct {
	def  types.Def
	node ast.Node
}

type fileRecord struct {
	packageID  string
	hasPackage bool
	nodes      []ast.Node
	declared   []declared
}

// Analyzer owns the Type Registry and per-file bookkeeping needed to
// invalidate and re-derive definitions as files change.
type Analyzer struct {
	diags    *diag.Bag
	registry *types.Registry
	files    map[string]*fileRecord
	// defSpan records where each (packageID, name) was most recently
	// declared, for the next redefinition diagnostic's related-information
	// span.
	defSpan map[defKey]sourcemap.Span
}

type defKey struct {
	packageID string
	name      string
}

// New returns an Analyzer with an empty (builtins-only) registry.
func New(diags *diag.Bag) *Analyzer {
	return &Analyzer{
		diags:    diags,
		registry: types.NewRegistry(),
		files:    map[string]*fileRecord{},
		defSpan:  map[defKey]sourcemap.Span{},
	}
}

// Registry exposes the underlying Type Registry for the monomorphizer and
// GenIR builder to resolve against.
func (a *Analyzer) Registry() *types.Registry { return a.registry }

// InvalidateFile removes every definition a prior AnalyzeFile call installed
// for file, and forgets the file entirely. Safe to call on an unknown file.
func (a *Analyzer) InvalidateFile(file string) {
	rec, ok := a.files[file]
	if !ok {
		return
	}
	for _, d := range rec.declared {
		k := defKey{d.def.PackageID(), d.def.DefName()}
		a.registry.Remove(k.packageID, k.name)
		delete(a.defSpan, k)
	}
	delete(a.files, file)
}

// AnalyzeFile runs Phase 1 for one file's AST. Call InvalidateFile(file)
// first if this file was analyzed before.
func (a *Analyzer) AnalyzeFile(file string, nodes []ast.Node) {
	rec := &fileRecord{nodes: nodes}

	for i, n := range nodes {
		pd, ok := n.(*ast.PackageDecl)
		if !ok {
			continue
		}
		if rec.hasPackage {
			a.diags.Errorf(diag.MultiplePackages, diag.Local, pd.Span(), "multiple package declarations")
			continue
		}
		rec.hasPackage = true
		rec.packageID = pd.ID()
		if i != 0 {
			a.diags.Errorf(diag.PackageNotFirst, diag.Local, pd.Span(), "package declaration must be first")
		}
	}
	if !rec.hasPackage {
		sp := sourcemap.Span{File: file}
		if len(nodes) > 0 {
			sp = nodes[0].Span()
		}
		a.diags.Errorf(diag.MissingPackage, diag.Local, sp, "missing package declaration")
		rec.packageID = unresolvedPackageID(file)
	}

	for _, n := range nodes {
		switch decl := n.(type) {
		case *ast.MessageDecl:
			a.materializeMessage(rec, file, decl)
		case *ast.EnumDecl:
			a.materializeEnum(rec, file, decl)
		case *ast.StringEnumDecl:
			a.materializeStringEnum(rec, file, decl)
		case *ast.ServiceDecl:
			a.materializeService(rec, file, decl)
		}
	}

	a.files[file] = rec
}

func (a *Analyzer) define(rec *fileRecord, node ast.Node, d types.Def, nameSpan sourcemap.Span) {
	k := defKey{d.PackageID(), d.DefName()}
	prev, hadPrev := a.registry.Define(d)
	if hadPrev {
		if _, isBuiltin := prev.(*types.BuiltinDef); !isBuiltin {
			related := diag.Related{Message: "first defined here", Span: a.defSpan[k]}
			a.diags.ErrorfRelated(diag.Redefinition, diag.Global, nameSpan, related,
				"%q is already defined in package %q", d.DefName(), d.PackageID())
		}
	}
	a.defSpan[k] = nameSpan
	rec.declared = append(rec.declared, declared{def: d, node: node})
}

func (a *Analyzer) materializeMessage(rec *fileRecord, file string, decl *ast.MessageDecl) {
	if decl.NameType == nil {
		return
	}
	name := decl.NameType.Name()
	formals := make([]string, 0, len(decl.NameType.Args))
	for _, arg := range decl.NameType.Args {
		if len(arg.Segments) != 1 || len(arg.Args) != 0 {
			a.diags.Errorf(diag.GenericFormInvalid, diag.Local, arg.Sp,
				"generic parameter must be a single, non-parameterized identifier")
			continue
		}
		formals = append(formals, arg.Segments[0].Name)
	}
	def := &types.MessageDef{Package: rec.packageID, Name: name, Formals: formals}
	a.define(rec, decl, def, nameSpanOf(decl.NameType))
}

func (a *Analyzer) materializeEnum(rec *fileRecord, file string, decl *ast.EnumDecl) {
	def := &types.EnumDef{Package: rec.packageID, Name: decl.Name.Name}
	a.define(rec, decl, def, decl.Name.Span)
}

func (a *Analyzer) materializeStringEnum(rec *fileRecord, file string, decl *ast.StringEnumDecl) {
	values := make([]string, 0, len(decl.Values))
	for _, v := range decl.Values {
		values = append(values, v.Value)
	}
	def := &types.StringEnumDef{Package: rec.packageID, Name: decl.Name.Name, Values: values}
	a.define(rec, decl, def, decl.Name.Span)
}

func (a *Analyzer) materializeService(rec *fileRecord, file string, decl *ast.ServiceDecl) {
	def := &types.ServiceDef{Package: rec.packageID, Name: decl.Name.Name}
	a.define(rec, decl, def, decl.Name.Span)
}

func nameSpanOf(t *ast.TypeNode) sourcemap.Span {
	if len(t.Segments) == 0 {
		return t.Sp
	}
	return t.Segments[len(t.Segments)-1].Span
}
