package genir

import (
	"testing"

	"github.com/DanielSharp01/eprotoc/internal/monomorph"
	"github.com/DanielSharp01/eprotoc/internal/types"
)

func TestBuildScalarPrimitive(t *testing.T) {
	b := New(Native, types.NewRegistry())
	int32Inst := types.NewReal(&types.BuiltinDef{Name: types.Int32})
	node := b.Build(int32Inst)
	prim, ok := node.(*Primitive)
	if !ok {
		t.Fatalf("want *Primitive, got %T", node)
	}
	if prim.Wire != WireVarint || prim.WriterFn != "writeInt32" {
		t.Errorf("want varint writeInt32, got %+v", prim)
	}
}

func TestBuildNullableNativeWrapsInOneFieldStruct(t *testing.T) {
	b := New(Native, types.NewRegistry())
	inner := types.NewReal(&types.BuiltinDef{Name: types.Int32})
	node := b.buildNullable(inner)
	outer, ok := node.(*Len)
	if !ok {
		t.Fatalf("want *Len, got %T", node)
	}
	st, ok := outer.Sub.(*Struct)
	if !ok {
		t.Fatalf("native Nullable must wrap a one-field Struct, got %T", outer.Sub)
	}
	if len(st.Fields) != 1 || st.Fields[0].Condition.Kind != CondNotNull {
		t.Fatalf("want one conditional field, got %+v", st.Fields)
	}
}

func TestBuildNullableEvolvedIsDirect(t *testing.T) {
	b := New(Evolved, types.NewRegistry())
	inner := types.NewReal(&types.BuiltinDef{Name: types.Int32})
	node := b.buildNullable(inner)
	outer, ok := node.(*Len)
	if !ok {
		t.Fatalf("want *Len, got %T", node)
	}
	if _, ok := outer.Sub.(*Nullable); !ok {
		t.Fatalf("evolved Nullable must wrap a bare Nullable node, got %T", outer.Sub)
	}
}

func TestBuildArrayNativeWrapsNestedArray(t *testing.T) {
	b := New(Native, types.NewRegistry())
	arrayBuiltin := &types.BuiltinDef{Name: types.Array, FormalArity: 1}
	innerArray := types.NewReal(arrayBuiltin, types.NewReal(&types.BuiltinDef{Name: types.Int32}))

	node := b.buildArray(innerArray)
	outer, ok := node.(*Len)
	if !ok {
		t.Fatalf("want *Len, got %T", node)
	}
	arr, ok := outer.Sub.(*Array)
	if !ok {
		t.Fatalf("want *Array, got %T", outer.Sub)
	}
	innerLen, ok := arr.Sub.(*Len)
	if !ok {
		t.Fatalf("a nested array under Native must be wrapped, got %T", arr.Sub)
	}
	if _, ok := innerLen.Sub.(*Struct); !ok {
		t.Fatalf("wrapped nested array must be a one-field Struct, got %T", innerLen.Sub)
	}
}

func TestBuildArrayEvolvedDoesNotWrapNestedArray(t *testing.T) {
	b := New(Evolved, types.NewRegistry())
	arrayBuiltin := &types.BuiltinDef{Name: types.Array, FormalArity: 1}
	innerArray := types.NewReal(arrayBuiltin, types.NewReal(&types.BuiltinDef{Name: types.Int32}))

	node := b.buildArray(innerArray)
	outer := node.(*Len)
	arr := outer.Sub.(*Array)
	innerLen, ok := arr.Sub.(*Len)
	if !ok {
		t.Fatalf("evolved nested array must keep its own Len framing, got %T", arr.Sub)
	}
	if _, ok := innerLen.Sub.(*Array); !ok {
		t.Fatalf("evolved nested array must not be wrapped in an extra Struct, got %T", innerLen.Sub)
	}
}

func TestBuildMessageBodyOmitsOuterLen(t *testing.T) {
	reg := types.NewRegistry()
	def := &types.MessageDef{Package: "a", Name: "Request", Fields: []*types.FieldDef{
		{Ordinal: 1, Name: "pageSize", Type: types.NewReal(&types.BuiltinDef{Name: types.Int32})},
	}}
	b := New(Native, reg)
	inst := monomorph.Realize(def, nil)
	body := b.BuildMessageBody(inst)
	if len(body.Fields) != 1 {
		t.Fatalf("want 1 field, got %d", len(body.Fields))
	}
	if body.Fields[0].Ordinal != 1 || body.Fields[0].Selector.FieldName != "pageSize" {
		t.Errorf("want field pageSize#1, got %+v", body.Fields[0])
	}
	if _, isPrimitive := body.Fields[0].Sub.(*Primitive); !isPrimitive {
		t.Errorf("scalar field's sub-node should be a bare Primitive, got %T", body.Fields[0].Sub)
	}
}

func TestBuildMessageRefCarriesDefiningPackageAndMangledName(t *testing.T) {
	reg := types.NewRegistry()
	def := &types.MessageDef{Package: "shared", Name: "Id", Fields: []*types.FieldDef{
		{Ordinal: 1, Name: "value", Type: types.NewReal(&types.BuiltinDef{Name: types.String})},
	}}
	reg.Define(def)
	b := New(Native, reg)

	wrapperDef := &types.MessageDef{Package: "shared", Name: "Wrapper", Fields: []*types.FieldDef{
		{Ordinal: 1, Name: "id", Type: types.NewReal(def)},
	}}
	inst := monomorph.Realize(wrapperDef, nil)
	body := b.BuildMessageBody(inst)

	outer, ok := body.Fields[0].Sub.(*Len)
	if !ok {
		t.Fatalf("want a message-typed field wrapped in Len, got %T", body.Fields[0].Sub)
	}
	ref, ok := outer.Sub.(*MessageRef)
	if !ok {
		t.Fatalf("want *MessageRef, got %T", outer.Sub)
	}
	if ref.PackageID != "shared" || ref.DefName != "Id" || ref.MangledName != "Id" {
		t.Errorf("want shared.Id/Id, got %+v", ref)
	}
}

func TestBuildAnyBodyBranchOrder(t *testing.T) {
	b := New(Native, types.NewRegistry())
	sw := b.BuildAnyBody()
	if len(sw.Branches) != 6 {
		t.Fatalf("want 6 Any branches, got %d", len(sw.Branches))
	}
	wantOrdinals := []int32{1, 2, 3, 4, 6, 5}
	for i, br := range sw.Branches {
		if br.Field.Ordinal != wantOrdinals[i] {
			t.Errorf("branch %d: want ordinal %d, got %d", i, wantOrdinals[i], br.Field.Ordinal)
		}
	}
}
