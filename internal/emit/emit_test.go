package emit

import (
	"strings"
	"testing"

	"github.com/DanielSharp01/eprotoc/internal/genir"
	"github.com/DanielSharp01/eprotoc/internal/monomorph"
	"github.com/DanielSharp01/eprotoc/internal/types"
)

func TestEmitMessageRendersSerializeAndDeserialize(t *testing.T) {
	reg := types.NewRegistry()
	def := &types.MessageDef{Package: "a", Name: "Request", Fields: []*types.FieldDef{
		{Ordinal: 1, Name: "pageSize", Type: types.NewReal(&types.BuiltinDef{Name: types.Int32})},
	}}
	b := genir.New(genir.Native, reg)
	inst := monomorph.Realize(def, nil)
	body := b.BuildMessageBody(inst)

	w := NewWriter("request.ts")
	ser, deser := w.EmitMessage(inst, body)

	serText := strings.Join(ser, "\n")
	if !strings.Contains(serText, "writer.writeInt32(value.pageSize);") {
		t.Errorf("serialize body must write the scalar field, got:\n%s", serText)
	}
	deserText := strings.Join(deser, "\n")
	if !strings.Contains(deserText, "value.pageSize = reader.readInt32();") {
		t.Errorf("deserialize body must read the scalar field, got:\n%s", deserText)
	}
}

func TestEmitServiceVoidShortCircuits(t *testing.T) {
	svc := &types.ServiceDef{Package: "a", Name: "Pings", Rpcs: []*types.RpcDef{
		{Name: "Ping", ReqType: types.NewReal(&types.BuiltinDef{Name: types.VoidName}),
			RespType: types.NewReal(&types.BuiltinDef{Name: types.VoidName})},
	}}
	lines := EmitService(svc, func(t *types.Instance) rpcCodec {
		if isVoid(t) {
			return voidCodec()
		}
		return rpcCodec{serialize: "unused", deserialize: "unused"}
	})
	text := strings.Join(lines, "\n")
	if !strings.Contains(text, "new Uint8Array(0)") {
		t.Errorf("void request must short-circuit to an empty-buffer closure, got:\n%s", text)
	}
	if !strings.Contains(text, `path: "/Pings/Ping"`) {
		t.Errorf("want an RPC path, got:\n%s", text)
	}
}

func TestEmitMessageImportsAReferencedMessageAndCallsItsGeneratedFunction(t *testing.T) {
	idDef := &types.MessageDef{Package: "shared", Name: "Id", Fields: []*types.FieldDef{
		{Ordinal: 1, Name: "value", Type: types.NewReal(&types.BuiltinDef{Name: types.String})},
	}}
	wrapperDef := &types.MessageDef{Package: "shared", Name: "Wrapper", Fields: []*types.FieldDef{
		{Ordinal: 1, Name: "id", Type: types.NewReal(idDef)},
	}}
	reg := types.NewRegistry()
	b := genir.New(genir.Native, reg)
	inst := monomorph.Realize(wrapperDef, nil)
	body := b.BuildMessageBody(inst)

	w := NewWriter("wrapper.ts")
	ser, _ := w.EmitMessage(inst, body)
	serText := strings.Join(ser, "\n")
	if !strings.Contains(serText, "shared__Id_serialize(value.id, writer);") {
		t.Errorf("want a call to the imported Id serializer, got:\n%s", serText)
	}
	if len(w.Imports.Files()) != 1 || w.Imports.Files()[0] != "id.ts" {
		t.Errorf("want id.ts recorded as an imported file, got %+v", w.Imports.Files())
	}
}

func TestEmitMessageRecursiveReferenceCallsItselfDirectly(t *testing.T) {
	nodeDef := &types.MessageDef{Package: "tree", Name: "Node"}
	nodeDef.Fields = []*types.FieldDef{
		{Ordinal: 1, Name: "child", Type: types.NewReal(nodeDef)},
	}
	reg := types.NewRegistry()
	b := genir.New(genir.Native, reg)
	inst := monomorph.Realize(nodeDef, nil)
	body := b.BuildMessageBody(inst)

	w := NewWriter("node.ts")
	ser, _ := w.EmitMessage(inst, body)
	serText := strings.Join(ser, "\n")
	if !strings.Contains(serText, "Node_serialize(value.child, writer);") {
		t.Errorf("want a direct self-call with no alias, got:\n%s", serText)
	}
	if len(w.Imports.Files()) != 0 {
		t.Errorf("a recursive self-reference must not register an import, got %+v", w.Imports.Files())
	}
}

func TestImportSetAliasing(t *testing.T) {
	s := NewImportSet()
	alias := s.Need("other.ts", "pkgA", "Foo")
	if alias != "pkgA__Foo" {
		t.Errorf("want pkgA__Foo, got %q", alias)
	}
	if len(s.Files()) != 1 || s.Files()[0] != "other.ts" {
		t.Errorf("want one imported file, got %+v", s.Files())
	}
	if len(s.SymbolsFrom("other.ts")) != 1 || s.SymbolsFrom("other.ts")[0] != "Foo" {
		t.Errorf("want Foo imported from other.ts, got %+v", s.SymbolsFrom("other.ts"))
	}
}

func TestAnyImportAliasIsFixed(t *testing.T) {
	if AnyImportAlias() != "Builtin__Any" {
		t.Errorf("want Builtin__Any, got %q", AnyImportAlias())
	}
}

func TestEmitServiceFileInlinesNonMessageRpcTypes(t *testing.T) {
	reg := types.NewRegistry()
	svc := &types.ServiceDef{Package: "a", Name: "Counters", Rpcs: []*types.RpcDef{
		{Name: "Increment",
			ReqType:  types.NewReal(&types.BuiltinDef{Name: types.Int32}),
			RespType: types.NewReal(&types.BuiltinDef{Name: types.Int32})},
	}}
	g := NewGenerator(genir.Native, reg)
	out := g.EmitServiceFile(svc)

	if strings.Contains(out.Text, "int32_serialize") || strings.Contains(out.Text, "int32_deserialize") {
		t.Errorf("a scalar RPC type must not call a nonexistent named function, got:\n%s", out.Text)
	}
	if !strings.Contains(out.Text, "writer.writeInt32(value);") {
		t.Errorf("want an inline scalar write in the request/response closures, got:\n%s", out.Text)
	}
	if !strings.Contains(out.Text, "value = reader.readInt32();") {
		t.Errorf("want an inline scalar read in the request/response closures, got:\n%s", out.Text)
	}
}
