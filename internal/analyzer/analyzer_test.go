package analyzer

import (
	"sort"
	"testing"

	"github.com/DanielSharp01/eprotoc/internal/ast"
	"github.com/DanielSharp01/eprotoc/internal/diag"
	"github.com/DanielSharp01/eprotoc/internal/token"
	"github.com/DanielSharp01/eprotoc/internal/types"
)

func compileOne(t *testing.T, file, src string) (*Analyzer, *diag.Bag) {
	t.Helper()
	diags := diag.NewBag()
	toks := token.Tokenize(file, src, diags)
	nodes := ast.Parse(file, toks, diags)
	a := New(diags)
	a.AnalyzeFile(file, nodes)
	a.Analyze()
	return a, diags
}

func diagKinds(diags *diag.Bag) []diag.Kind {
	out := make([]diag.Kind, 0)
	for _, d := range diags.All() {
		out = append(out, d.Kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestOrdinalAlgorithmNonMonotoneStaysAtRunningCounter(t *testing.T) {
	// E3: "message M { int32 a = 1; int32 b = 1; }" -> a single
	// ordinal-not-monotonic on b's explicit ordinal; b keeps ordinal 2 (the
	// running counter), not 1.
	a, diags := compileOne(t, "f.eproto", `package a;
message M {
  int32 a = 1;
  int32 b = 1;
}`)
	kinds := diagKinds(diags)
	if len(kinds) != 1 || kinds[0] != diag.OrdinalNotMonotone {
		t.Fatalf("want exactly one ordinal-not-monotonic diagnostic, got %+v", diags.All())
	}
	def, ok := a.Registry().Lookup("a", "M")
	if !ok {
		t.Fatalf("M must be defined")
	}
	fields := def.(*types.MessageDef).Fields
	if len(fields) != 2 || fields[1].Ordinal != 2 {
		t.Errorf("want b to keep the running-counter ordinal 2, got %+v", fields)
	}
}

func TestOrdinalNonpositiveReported(t *testing.T) {
	_, diags := compileOne(t, "f.eproto", `package a;
message M {
  int32 a = 0;
}`)
	kinds := diagKinds(diags)
	if len(kinds) != 1 || kinds[0] != diag.OrdinalNonpositive {
		t.Fatalf("want exactly one ordinal-nonpositive diagnostic, got %+v", diags.All())
	}
}

func TestRedefinitionAcrossFilesInSamePackage(t *testing.T) {
	diags := diag.NewBag()
	a := New(diags)

	toks1 := token.Tokenize("a.eproto", "package p;\nmessage M { int32 x = 1; }", diags)
	nodes1 := ast.Parse("a.eproto", toks1, diags)
	a.AnalyzeFile("a.eproto", nodes1)

	toks2 := token.Tokenize("b.eproto", "package p;\nmessage M { int32 y = 1; }", diags)
	nodes2 := ast.Parse("b.eproto", toks2, diags)
	a.AnalyzeFile("b.eproto", nodes2)

	a.Analyze()

	found := false
	for _, d := range diags.All() {
		if d.Kind == diag.Redefinition {
			found = true
			if d.Related == nil {
				t.Errorf("redefinition diagnostic should carry a related span to the first definition")
			}
		}
	}
	if !found {
		t.Fatalf("want a redefinition diagnostic, got %+v", diags.All())
	}
}

func TestUnknownTypeAndArityMismatch(t *testing.T) {
	_, diags := compileOne(t, "f.eproto", `package a;
message Box<T> {
  int32 x = 1;
}
message N {
  Box<int32, string> y = 1;
  Ghost z = 2;
}`)
	kinds := diagKinds(diags)
	want := []diag.Kind{diag.ArityMismatch, diag.UnknownType}
	if len(kinds) != len(want) {
		t.Fatalf("want %v, got %v (full: %+v)", want, kinds, diags.All())
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("want %v, got %v", want, kinds)
		}
	}
}

func TestGenericRealizationFixpointFromRpcSignature(t *testing.T) {
	// Mirrors the "Response<Pagination<int32>, Date>" scenario: a generic
	// realization reachable only through a nested generic argument of an RPC
	// response type must still be discovered.
	a, diags := compileOne(t, "f.eproto", `package a;
message Pagination<T> {
  Array<T> items = 1;
}
message Response<T, U> {
  T data = 1;
  U timestamp = 2;
}
service Listing {
  rpc List(Request) returns (Response<Pagination<int32>, Date>);
}
message Request {
  int32 pageSize = 1;
}`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}

	reg := a.Registry()
	paginationDef, ok := reg.Lookup("a", "Pagination")
	if !ok {
		t.Fatalf("Pagination must be defined")
	}
	md := paginationDef.(*types.MessageDef)
	realizations := md.Realizations()
	if len(realizations) != 1 {
		t.Fatalf("want exactly one Pagination realization, got %d: %+v", len(realizations), realizations)
	}
	arg := realizations[0].Args[0]
	bd, ok := arg.Def.(*types.BuiltinDef)
	if !ok || bd.Name != types.Int32 {
		t.Errorf("want Pagination<int32>, got arg %+v", arg)
	}

	responseDef, ok := reg.Lookup("a", "Response")
	if !ok {
		t.Fatalf("Response must be defined")
	}
	if len(responseDef.(*types.MessageDef).Realizations()) != 1 {
		t.Errorf("want exactly one Response realization")
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	diags := diag.NewBag()
	a := New(diags)
	toks := token.Tokenize("f.eproto", `package a;
message Pagination<T> { Array<T> items = 1; }
message N { Pagination<int32> p = 1; }`, diags)
	nodes := ast.Parse("f.eproto", toks, diags)
	a.AnalyzeFile("f.eproto", nodes)

	a.Analyze()
	first := len(diags.All())
	firstRealizations := len(a.Registry().All())

	a.Analyze()
	second := len(diags.All())
	secondRealizations := len(a.Registry().All())

	if first != second {
		t.Errorf("Analyze must be idempotent in diagnostic count: %d vs %d", first, second)
	}
	if firstRealizations != secondRealizations {
		t.Errorf("Analyze must be idempotent in definition count: %d vs %d", firstRealizations, secondRealizations)
	}
}
