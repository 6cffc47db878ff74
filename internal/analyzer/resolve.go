package analyzer

import (
	"sort"
	"strings"

	"github.com/DanielSharp01/eprotoc/internal/ast"
	"github.com/DanielSharp01/eprotoc/internal/diag"
	"github.com/DanielSharp01/eprotoc/internal/types"
)

// semanticKinds are the diagnostic kinds Analyze fully recomputes on every
// call; RemoveWhere clears exactly these before re-deriving them, which is
// what makes repeated Analyze() calls over an unchanged file set idempotent
// without disturbing tokenizer/parser diagnostics.
var semanticKinds = map[diag.Kind]bool{
	diag.FieldRedefinition:  true,
	diag.OrdinalNonpositive: true,
	diag.OrdinalNotMonotone: true,
	diag.UnknownType:        true,
	diag.ArityMismatch:      true,
	diag.GenericHasArgs:     true,
}

// Analyze runs the global Phase 2 over every file the Analyzer currently
// knows about: it resolves message fields and RPC signatures, checks field
// ordinals, and computes the realized generic argument tuples reachable
// from RPC signatures.
func (a *Analyzer) Analyze() {
	a.diags.RemoveWhere(func(d diag.Diagnostic) bool { return semanticKinds[d.Kind] })

	// Process files in a stable order so redefinition related-info and any
	// order-sensitive diagnostics are deterministic across runs.
	files := make([]string, 0, len(a.files))
	for f := range a.files {
		files = append(files, f)
	}
	sort.Strings(files)

	for _, f := range files {
		rec := a.files[f]
		for _, d := range rec.declared {
			switch def := d.def.(type) {
			case *types.MessageDef:
				decl := d.node.(*ast.MessageDecl)
				a.resolveMessageFields(rec, def, decl)
			case *types.EnumDef:
				decl := d.node.(*ast.EnumDecl)
				a.resolveEnumValues(def, decl)
			case *types.ServiceDef:
				decl := d.node.(*ast.ServiceDecl)
				a.resolveService(rec, def, decl)
			}
		}
	}

	a.collectRealizations()
}

func (a *Analyzer) resolveMessageFields(rec *fileRecord, md *types.MessageDef, decl *ast.MessageDecl) {
	md.Fields = md.Fields[:0]
	seen := map[string]bool{}
	var k int32 = 1
	for _, f := range decl.Fields {
		if f.Name.Name == "" {
			continue
		}
		if seen[f.Name.Name] {
			a.diags.Errorf(diag.FieldRedefinition, diag.Local, f.Name.Span, "field %q already defined", f.Name.Name)
		} else {
			seen[f.Name.Name] = true
		}

		typ := a.resolveType(rec, md.Formals, f.Type)

		ordinal := k
		if f.HasOrdinal {
			n := f.Ordinal
			if n < 1 {
				a.diags.Errorf(diag.OrdinalNonpositive, diag.Local, f.OrdinalSp, "field ordinal must be > 0")
			} else if n < int64(k) {
				a.diags.Errorf(diag.OrdinalNotMonotone, diag.Local, f.OrdinalSp, "field ordinal must be sequential")
			} else {
				ordinal = int32(n)
			}
		}
		md.Fields = append(md.Fields, &types.FieldDef{
			Ordinal:  ordinal,
			Name:     f.Name.Name,
			Optional: f.Optional,
			Type:     typ,
		})
		k = ordinal + 1
	}
}

func (a *Analyzer) resolveEnumValues(ed *types.EnumDef, decl *ast.EnumDecl) {
	ed.Values = ed.Values[:0]
	seen := map[string]bool{}
	var next int32 = 0
	for _, f := range decl.Fields {
		if f.Name.Name == "" {
			continue
		}
		if seen[f.Name.Name] {
			a.diags.Errorf(diag.FieldRedefinition, diag.Local, f.Name.Span, "enum member %q already defined", f.Name.Name)
		} else {
			seen[f.Name.Name] = true
		}
		v := next
		if f.HasValue {
			v = int32(f.Value)
		}
		ed.Values = append(ed.Values, types.EnumValue{Name: f.Name.Name, Value: v})
		next = v + 1
	}
}

func (a *Analyzer) resolveService(rec *fileRecord, sd *types.ServiceDef, decl *ast.ServiceDecl) {
	sd.Rpcs = sd.Rpcs[:0]
	seen := map[string]bool{}
	for _, r := range decl.Rpcs {
		if r.Name.Name == "" {
			continue
		}
		if seen[r.Name.Name] {
			a.diags.Errorf(diag.FieldRedefinition, diag.Local, r.Name.Span, "RPC %q already defined", r.Name.Name)
		} else {
			seen[r.Name.Name] = true
		}
		reqType := a.resolveType(rec, nil, r.ReqType)
		respType := a.resolveType(rec, nil, r.RespType)
		sd.Rpcs = append(sd.Rpcs, &types.RpcDef{
			Name:       r.Name.Name,
			ReqStream:  r.ReqStream,
			ReqType:    reqType,
			RespStream: r.RespStream,
			RespType:   respType,
		})
	}
}

// resolveType resolves an *ast.TypeNode to a *types.Instance against the
// package namespace, in this order:
//
//  1. if it's a single-segment name matching a formal generic parameter in
//     scope, resolve to Generic (arguments are forbidden);
//  2. otherwise split into a package-prefix and a type name and try, in
//     order: builtins, the same-package definition, (if a prefix is
//     present) a direct packageId == prefix match, then — only if the
//     current package is a real (non-sentinel) name — a relative match
//     packageId == current + prefix.
//
// On failure it reports unknown-type and returns Unknown so callers keep
// traversing instead of aborting the whole pass.
func (a *Analyzer) resolveType(rec *fileRecord, formals []string, t *ast.TypeNode) *types.Instance {
	if t == nil || len(t.Segments) == 0 {
		return types.NewUnknown()
	}
	name := t.Segments[len(t.Segments)-1].Name
	prefixSegs := t.Segments[:len(t.Segments)-1]
	hasPrefix := len(prefixSegs) > 0

	if !hasPrefix {
		for _, f := range formals {
			if f == name {
				if len(t.Args) > 0 {
					a.diags.Errorf(diag.GenericHasArgs, diag.Local, t.Sp,
						"generic parameter %q may not take type arguments", name)
				}
				return types.NewGeneric(name)
			}
		}
	}

	var def types.Def
	found := false
	if !hasPrefix {
		if bd, ok := a.registry.Builtin(name); ok {
			def, found = bd, true
		}
	}
	if !found {
		if d, ok := a.registry.Lookup(rec.packageID, name); ok {
			def, found = d, true
		}
	}
	if !found && hasPrefix {
		prefixConcat := concatSegments(prefixSegs)
		if d, ok := a.registry.Lookup(prefixConcat, name); ok {
			def, found = d, true
		} else if isRealPackage(rec.packageID) {
			if d, ok := a.registry.Lookup(rec.packageID+prefixConcat, name); ok {
				def, found = d, true
			}
		}
	}
	if !found {
		a.diags.Errorf(diag.UnknownType, diag.Global, t.Sp, "unknown type %q", typeNodeText(t))
		return types.NewUnknown()
	}

	args := make([]*types.Instance, 0, len(t.Args))
	for _, argNode := range t.Args {
		args = append(args, a.resolveType(rec, formals, argNode))
	}
	if len(args) > def.Arity() {
		a.diags.Errorf(diag.ArityMismatch, diag.Global, t.Sp,
			"too many type arguments for %q: expected %d, got %d", name, def.Arity(), len(args))
	}
	return types.NewReal(def, args...)
}

func concatSegments(segs []ast.Ident) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Name)
	}
	return sb.String()
}

func isRealPackage(packageID string) bool {
	return packageID != "" && !strings.HasPrefix(packageID, "$unknown$")
}

func typeNodeText(t *ast.TypeNode) string {
	var sb strings.Builder
	for i, s := range t.Segments {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(s.Name)
	}
	return sb.String()
}
