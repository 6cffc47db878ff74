package emit

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/DanielSharp01/eprotoc/internal/genir"
	"github.com/DanielSharp01/eprotoc/internal/types"
)

// rpcCodec is a rendered `(value) => bytes` / `(bytes) => value` closure
// pair, already lowered to text, for one RPC request or response type.
type rpcCodec struct {
	serialize   string
	deserialize string
}

// EmitService renders one service's RPC descriptor table: for each rpc, a
// path, its streaming flags, and the four serialize/deserialize closures
// the transport layer dispatches through. codecOf resolves each rpc's
// request/response type to its closure pair — a call to a named top-level
// function for message types, an inline GenIR body for everything else
// deeply-real (scalars, Date, Enum, StringEnum, Array<T>, Map<K,V>,
// Nullable<T>, any), or the void short-circuit.
func EmitService(svc *types.ServiceDef, codecOf func(*types.Instance) rpcCodec) []string {
	out := []string{fmt.Sprintf("const %s = {", svc.Name)}
	for _, rpc := range svc.Rpcs {
		req := codecOf(rpc.ReqType)
		resp := codecOf(rpc.RespType)
		out = append(out, fmt.Sprintf("  %s: {", rpc.Name))
		out = append(out, fmt.Sprintf(`    path: "/%s/%s",`, svc.Name, rpc.Name))
		out = append(out, fmt.Sprintf("    requestStream: %t,", rpc.ReqStream))
		out = append(out, fmt.Sprintf("    responseStream: %t,", rpc.RespStream))
		out = append(out, "    requestSerialize: "+req.serialize+",")
		out = append(out, "    requestDeserialize: "+req.deserialize+",")
		out = append(out, "    responseSerialize: "+resp.serialize+",")
		out = append(out, "    responseDeserialize: "+resp.deserialize+",")
		out = append(out, "  },")
	}
	out = append(out, "};")
	return out
}

func isVoid(t *types.Instance) bool {
	if t == nil {
		return true
	}
	bd, ok := t.Def.(*types.BuiltinDef)
	return ok && bd.Name == types.VoidName
}

func isMessage(t *types.Instance) bool {
	_, ok := t.Def.(*types.MessageDef)
	return ok
}

func voidCodec() rpcCodec {
	return rpcCodec{
		serialize:   "(value) => new Uint8Array(0)",
		deserialize: "(bytes) => undefined",
	}
}

// messageCodec is the fast path for message-typed RPC fields: delegate to
// the named top-level serialize/deserialize pair EmitMessageFile produced
// for that message elsewhere.
func messageCodec(name string) rpcCodec {
	return rpcCodec{
		serialize:   fmt.Sprintf("(value) => { const writer = Writer.create(); %s_serialize(value, writer); return writer.finish(); }", name),
		deserialize: fmt.Sprintf("(bytes) => %s_deserialize(Reader.create(bytes), bytes.length)", name),
	}
}

// inlineCodec handles every RPC type that isn't a message and isn't void —
// scalars, Date, Enum, StringEnum, Array<T>, Map<K,V>, Nullable<T>, any.
// None of these get a named top-level function anywhere in the emitted
// output, so the closure body is the GenIR traversal itself, the same way
// EmitAnyFile wraps its Switch body inline rather than calling out to a
// function that doesn't exist.
func inlineCodec(w *Writer, node genir.Node) rpcCodec {
	ser := []string{"(value) => {", "  const writer = Writer.create();"}
	ser = append(ser, w.serializeGenNode(node, "value", 1)...)
	ser = append(ser, "  return writer.finish();", "}")

	deser := []string{"(bytes) => {", "  const reader = Reader.create(bytes);", "  let value;"}
	deser = append(deser, w.deserializeGenNode(node, "value", 1)...)
	deser = append(deser, "  return value;", "}")

	return rpcCodec{serialize: strings.Join(ser, "\n"), deserialize: strings.Join(deser, "\n")}
}

// ServiceFileName derives the output file name for a service's descriptor
// table, matching the snake_case file-per-top-level-declaration convention
// used for message output files.
func ServiceFileName(svc *types.ServiceDef) string {
	return strcase.ToSnake(svc.Name) + "_service"
}
