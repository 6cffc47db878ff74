package monomorph

import (
	"testing"

	"github.com/DanielSharp01/eprotoc/internal/types"
)

func TestRealizeSubstitutesFieldTypes(t *testing.T) {
	arrayBuiltin := &types.BuiltinDef{Name: types.Array, FormalArity: 1}
	def := &types.MessageDef{
		Package: "a",
		Name:    "Pagination",
		Formals: []string{"T"},
		Fields: []*types.FieldDef{
			{Ordinal: 1, Name: "items", Type: types.NewReal(arrayBuiltin, types.NewGeneric("T"))},
		},
	}
	int32Inst := types.NewReal(&types.BuiltinDef{Name: types.Int32})

	inst := Realize(def, []*types.Instance{int32Inst})
	if len(inst.Fields) != 1 {
		t.Fatalf("want 1 field, got %d", len(inst.Fields))
	}
	if !inst.Fields[0].Type.IsDeeplyReal() {
		t.Fatalf("realized field type must be deeply real, got %+v", inst.Fields[0].Type)
	}
	if inst.Name() != "Pagination<int32>" {
		t.Errorf("want Pagination<int32>, got %q", inst.Name())
	}
	if inst.MangledName() != "Pagination_int32_" {
		t.Errorf("want Pagination_int32_, got %q", inst.MangledName())
	}
}

func TestRealizeAllNonGenericMessageReturnsOneTrivialInstance(t *testing.T) {
	def := &types.MessageDef{Package: "a", Name: "Request", Fields: []*types.FieldDef{
		{Ordinal: 1, Name: "pageSize", Type: types.NewReal(&types.BuiltinDef{Name: types.Int32})},
	}}
	insts := RealizeAll(def)
	if len(insts) != 1 {
		t.Fatalf("want exactly 1 realization for a non-generic message, got %d", len(insts))
	}
	if insts[0].Name() != "Request" {
		t.Errorf("want plain name Request, got %q", insts[0].Name())
	}
}

func TestRealizeAllReturnsOnePerRecordedRealization(t *testing.T) {
	def := &types.MessageDef{Package: "a", Name: "Pagination", Formals: []string{"T"},
		Fields: []*types.FieldDef{{Ordinal: 1, Name: "item", Type: types.NewGeneric("T")}}}
	def.AddRealization([]*types.Instance{types.NewReal(&types.BuiltinDef{Name: types.Int32})})
	def.AddRealization([]*types.Instance{types.NewReal(&types.BuiltinDef{Name: types.String})})

	insts := RealizeAll(def)
	if len(insts) != 2 {
		t.Fatalf("want 2 realizations, got %d", len(insts))
	}
	names := map[string]bool{insts[0].Name(): true, insts[1].Name(): true}
	if !names["Pagination<int32>"] || !names["Pagination<string>"] {
		t.Errorf("want Pagination<int32> and Pagination<string>, got %v", names)
	}
}
