// Package emit implements the GenIR emitter. Two mutually
// recursive traversals (serialize, deserialize) walk a GenIR tree and
// produce the textual procedure bodies for the target runtime — a
// TypeScript protobuf-style wire codec, matching the `writer.fork()`,
// `Object.entries`, and `typeof` helper vocabulary the source language's
// standard library uses.
package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/DanielSharp01/eprotoc/internal/genir"
	"github.com/DanielSharp01/eprotoc/internal/monomorph"
)

// Writer accumulates the textual output for one realized type's
// serialize/deserialize pair, and tracks cross-file imports as it goes.
// selfFile is the output file this Writer's own text will end up in, so a
// MessageRef that happens to point back at it (a recursive message type, or
// the synthetic Any type referencing itself) calls the local function
// directly instead of importing a symbol from itself.
type Writer struct {
	Imports  *ImportSet
	selfFile string
}

// NewWriter returns a Writer backed by a fresh ImportSet, rendering text
// destined for selfFile.
func NewWriter(selfFile string) *Writer {
	return &Writer{Imports: NewImportSet(), selfFile: selfFile}
}

// EmitMessage renders the `serialize`/`deserialize` procedure bodies for
// one realized message.
func (w *Writer) EmitMessage(inst *monomorph.MessageDefInstance, body *genir.Struct) (serialize, deserialize []string) {
	name := inst.MangledName()
	serialize = append(serialize, fmt.Sprintf("function %s_serialize(value, writer) {", name))
	serialize = append(serialize, w.serializeStruct(body, "value", 1)...)
	serialize = append(serialize, "}")

	deserialize = append(deserialize, fmt.Sprintf("function %s_deserialize(reader, end) {", name))
	deserialize = append(deserialize, "  const value_end = end;")
	deserialize = append(deserialize, fmt.Sprintf("  let value = %s;", zeroValueExpr(inst)))
	deserialize = append(deserialize, w.deserializeStruct(body, "value", 1)...)
	deserialize = append(deserialize, "  return value;", "}")
	return serialize, deserialize
}

func zeroValueExpr(inst *monomorph.MessageDefInstance) string {
	fields := make([]string, 0, len(inst.Fields))
	for _, f := range inst.Fields {
		zero := "undefined"
		if f.Optional {
			zero = "null"
		}
		fields = append(fields, fmt.Sprintf("%s: %s", f.Name, zero))
	}
	return "{ " + strings.Join(fields, ", ") + " }"
}

// serializeGenNode and deserializeGenNode are the two mutually recursive
// walk procedures over a GenIR tree; each node variant has one rule. indent
// is the nesting depth used only for readability of the generated text.
func (w *Writer) serializeGenNode(node genir.Node, valueExpr string, indent int) []string {
	pad := strings.Repeat("  ", indent)
	switch n := node.(type) {
	case *genir.Primitive:
		w.Imports.NoteCall(n.WriterFn)
		return []string{pad + fmt.Sprintf("writer.%s(%s);", n.WriterFn, valueExpr)}
	case *genir.Nullable:
		disc := mangleExpr(valueExpr) + "_present"
		out := []string{pad + fmt.Sprintf("const %s = %s != null ? 1 : 0;", disc, valueExpr)}
		out = append(out, pad+fmt.Sprintf("writer.writeUint32(%s);", disc))
		out = append(out, pad+fmt.Sprintf("if (%s) {", valueExpr))
		out = append(out, w.serializeGenNode(n.Sub, valueExpr, indent+1)...)
		out = append(out, pad+"}")
		return out
	case *genir.Len:
		out := []string{pad + "writer.fork();"}
		out = append(out, w.serializeGenNode(n.Sub, valueExpr, indent)...)
		out = append(out, pad+"writer.ldelim();")
		return out
	case *genir.Array:
		iter := mangleExpr(valueExpr) + "_i"
		out := []string{pad + fmt.Sprintf("for (const %s of %s) {", iter, valueExpr)}
		out = append(out, w.serializeGenNode(n.Sub, iter, indent+1)...)
		out = append(out, pad+"}")
		return out
	case *genir.Struct:
		return w.serializeStruct(n, valueExpr, indent)
	case *genir.Field:
		return w.serializeField(n, valueExpr, indent)
	case *genir.Switch:
		return w.serializeSwitch(n, valueExpr, indent)
	case *genir.MapValue:
		tmp := mangleExpr(valueExpr) + "_entries"
		out := []string{pad + fmt.Sprintf("const %s = %s;", tmp, n.MapSerialize)}
		out = append(out, w.serializeGenNode(n.Sub, tmp, indent)...)
		return out
	case *genir.MessageRef:
		return []string{pad + fmt.Sprintf("%s_serialize(%s, writer);", w.messageRefName(n), valueExpr)}
	default:
		panic("This is a bug: unknown GenIR node in serializeGenNode")
	}
}

func (w *Writer) deserializeGenNode(node genir.Node, valueExpr string, indent int) []string {
	pad := strings.Repeat("  ", indent)
	switch n := node.(type) {
	case *genir.Primitive:
		w.Imports.NoteCall(n.ReaderFn)
		return []string{pad + fmt.Sprintf("%s = reader.%s();", valueExpr, n.ReaderFn)}
	case *genir.Nullable:
		disc := mangleExpr(valueExpr) + "_present"
		out := []string{pad + fmt.Sprintf("const %s = reader.readUint32();", disc)}
		out = append(out, pad+fmt.Sprintf("if (%s) {", disc))
		out = append(out, w.deserializeGenNode(n.Sub, valueExpr, indent+1)...)
		out = append(out, pad+"} else {", pad+"  "+valueExpr+" = null;", pad+"}")
		return out
	case *genir.Len:
		lenVar := mangleExpr(valueExpr) + "_len"
		endVar := mangleExpr(valueExpr) + "_end"
		out := []string{
			pad + fmt.Sprintf("const %s = reader.uint32();", lenVar),
			pad + fmt.Sprintf("const %s = reader.pos + %s;", endVar, lenVar),
		}
		out = append(out, w.deserializeGenNode(n.Sub, valueExpr, indent)...)
		return out
	case *genir.Array:
		// The enclosing Len, deserialized with the same value expression,
		// has already bound the end offset this loop runs up to.
		endVar := mangleExpr(valueExpr) + "_end"
		out := []string{pad + fmt.Sprintf("%s = [];", valueExpr)}
		tmp := mangleExpr(valueExpr) + "_item"
		out = append(out, pad+fmt.Sprintf("while (reader.pos < %s) {", endVar))
		out = append(out, pad+fmt.Sprintf("  let %s;", tmp))
		out = append(out, w.deserializeGenNode(n.Sub, tmp, indent+1)...)
		out = append(out, pad+fmt.Sprintf("  %s.push(%s);", valueExpr, tmp))
		out = append(out, pad+"}")
		return out
	case *genir.Struct:
		return w.deserializeStruct(n, valueExpr, indent)
	case *genir.Field:
		return w.deserializeGenNode(n.Sub, fieldExpr(valueExpr, n.Selector), indent)
	case *genir.Switch:
		return w.deserializeSwitch(n, valueExpr, indent)
	case *genir.MapValue:
		tmp := mangleExpr(valueExpr) + "_entries"
		out := []string{pad + fmt.Sprintf("let %s;", tmp)}
		out = append(out, w.deserializeGenNode(n.Sub, tmp, indent)...)
		out = append(out, pad+fmt.Sprintf("%s = %s;", valueExpr, n.MapDeserialize))
		return out
	case *genir.MessageRef:
		endVar := mangleExpr(valueExpr) + "_end"
		return []string{pad + fmt.Sprintf("%s = %s_deserialize(reader, %s);", valueExpr, w.messageRefName(n), endVar)}
	default:
		panic("This is a bug: unknown GenIR node in deserializeGenNode")
	}
}

// messageRefFile is the output file a MessageRef's symbols must be imported
// from: the shared Any file for the synthetic Any type, or the snake-cased
// per-declaration file EmitMessageFile produces otherwise.
func messageRefFile(n *genir.MessageRef) string {
	if n.PackageID == AnyPackageID {
		return "any.ts"
	}
	return strcase.ToSnake(n.DefName) + ".ts"
}

// messageRefName resolves the identifier a MessageRef's serialize/
// deserialize calls should use: the bare mangled name when it refers back
// to the file being emitted right now (a recursive message, or Any
// referencing Any), otherwise an imported alias.
func (w *Writer) messageRefName(n *genir.MessageRef) string {
	file := messageRefFile(n)
	if file == w.selfFile {
		return n.MangledName
	}
	return w.Imports.Need(file, n.PackageID, n.MangledName)
}

func (w *Writer) serializeStruct(n *genir.Struct, valueExpr string, indent int) []string {
	pad := strings.Repeat("  ", indent)
	out := make([]string, 0, len(n.Fields)*2)
	for _, f := range n.Fields {
		fv := fieldExpr(valueExpr, f.Selector)
		guard := conditionExpr(f.Condition, fv)
		body := w.serializeField(f, valueExpr, indent)
		if guard == "" {
			out = append(out, body...)
			continue
		}
		out = append(out, pad+fmt.Sprintf("if (%s) {", guard))
		out = append(out, body...)
		out = append(out, pad+"}")
	}
	return out
}

func (w *Writer) serializeField(f *genir.Field, structExpr string, indent int) []string {
	pad := strings.Repeat("  ", indent)
	fv := fieldExpr(structExpr, f.Selector)
	tag := tagByte(f.Ordinal, f.Wire)
	out := []string{pad + fmt.Sprintf("writer.uint32(%d); // field %d, wire %d", tag, f.Ordinal, f.Wire)}
	out = append(out, w.serializeGenNode(f.Sub, fv, indent)...)
	return out
}

func (w *Writer) deserializeStruct(n *genir.Struct, valueExpr string, indent int) []string {
	pad := strings.Repeat("  ", indent)
	endVar := mangleExpr(valueExpr) + "_end"
	out := []string{pad + fmt.Sprintf("while (reader.pos < %s) {", endVar)}
	out = append(out, pad+"  const tag = reader.uint32() >>> 3;")
	out = append(out, pad+"  switch (tag) {")
	for _, f := range n.Fields {
		out = append(out, pad+fmt.Sprintf("    case %d:", f.Ordinal))
		out = append(out, w.deserializeGenNode(f.Sub, fieldExpr(valueExpr, f.Selector), indent+3)...)
		out = append(out, pad+"      break;")
	}
	out = append(out, pad+"    default:")
	out = append(out, pad+"      reader.skip();")
	out = append(out, pad+"  }")
	out = append(out, pad+"}")
	return out
}

func (w *Writer) serializeSwitch(n *genir.Switch, valueExpr string, indent int) []string {
	pad := strings.Repeat("  ", indent)
	out := make([]string, 0)
	for i, br := range n.Branches {
		kw := "if"
		if i > 0 {
			kw = "} else if"
		}
		out = append(out, pad+fmt.Sprintf("%s (%s) {", kw, br.Predicate))
		out = append(out, w.serializeField(br.Field, valueExpr, indent+1)...)
	}
	out = append(out, pad+"}")
	return out
}

func (w *Writer) deserializeSwitch(n *genir.Switch, valueExpr string, indent int) []string {
	pad := strings.Repeat("  ", indent)
	out := []string{pad + "switch (tag) {"}
	for _, br := range n.Branches {
		out = append(out, pad+fmt.Sprintf("  case %d:", br.Field.Ordinal))
		out = append(out, w.deserializeGenNode(br.Field.Sub, valueExpr, indent+2)...)
		out = append(out, pad+"    break;")
	}
	out = append(out, pad+"}")
	return out
}

func fieldExpr(base string, s genir.Selector) string {
	switch s.Kind {
	case genir.SelFieldName:
		return base + "." + s.FieldName
	case genir.SelArrayIndex:
		return base + "[i]"
	default:
		return base
	}
}

func conditionExpr(c genir.Condition, valueExpr string) string {
	switch c.Kind {
	case genir.CondNotUndefined:
		return valueExpr + " !== undefined"
	case genir.CondNotNull:
		return valueExpr + " != null"
	case genir.CondCustom:
		return c.Custom
	default:
		return ""
	}
}

func mangleExpr(expr string) string {
	r := strings.NewReplacer("[", "_", "]", "_", ".", "_")
	return r.Replace(expr)
}

func tagByte(ordinal int32, wire genir.WireType) int32 {
	return ordinal<<3 | int32(wire)
}

// SortedCallNames returns the writer/reader call names noted during
// emission, sorted for deterministic output.
func SortedCallNames(names map[string]bool) []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
