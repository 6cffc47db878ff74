package emit

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/DanielSharp01/eprotoc/internal/genir"
	"github.com/DanielSharp01/eprotoc/internal/monomorph"
	"github.com/DanielSharp01/eprotoc/internal/types"
)

// AnyPackageID is the fixed package id the synthetic Any struct is
// considered to belong to, for import-aliasing purposes: wherever any other
// file references it, the alias is always "Builtin__Any".
const AnyPackageID = "Builtin"

// OutputFile is one emitted source file's rendered text plus the list of
// other output files it imports from.
type OutputFile struct {
	Name    string
	Text    string
	Imports []string
}

// Generator drives per-file emission for one selected Strategy: it builds
// GenIR for every realized message reachable from a source file, renders the
// serialize/deserialize pairs, and tracks cross-file imports so each output
// file ends up with the minimal import list it actually needs.
type Generator struct {
	builder *genir.Builder
	anyUsed bool
}

// NewGenerator returns a Generator lowering against the given registry with
// the given wire-format Strategy.
func NewGenerator(strategy genir.Strategy, registry *types.Registry) *Generator {
	return &Generator{builder: genir.New(strategy, registry)}
}

// EmitMessageFile renders the output file for every realization of one
// message definition: one output file per message declaration, named after
// the message in snake_case. Declarations are not grouped by the source
// file that declared them.
func (g *Generator) EmitMessageFile(def *types.MessageDef) OutputFile {
	selfFile := strcase.ToSnake(def.Name) + ".ts"
	w := NewWriter(selfFile)
	var sb strings.Builder
	for _, inst := range monomorph.RealizeAll(def) {
		body := g.builder.BuildMessageBody(inst)
		ser, deser := w.EmitMessage(inst, body)
		sb.WriteString(strings.Join(ser, "\n"))
		sb.WriteString("\n\n")
		sb.WriteString(strings.Join(deser, "\n"))
		sb.WriteString("\n\n")
	}
	return OutputFile{
		Name:    strcase.ToSnake(def.Name),
		Text:    renderImports(w.Imports) + sb.String(),
		Imports: w.Imports.Files(),
	}
}

// renderImports renders one `import { ... as alias, ... } from "./file";`
// line per file an emitted body referenced, aliasing each imported
// serialize/deserialize pair the same way ImportSet computed it.
func renderImports(imp *ImportSet) string {
	var sb strings.Builder
	for _, file := range imp.Files() {
		parts := make([]string, 0)
		for _, name := range imp.SymbolsFrom(file) {
			alias := imp.AliasFor(file, name)
			parts = append(parts,
				fmt.Sprintf("%s_serialize as %s_serialize", name, alias),
				fmt.Sprintf("%s_deserialize as %s_deserialize", name, alias))
		}
		modulePath := "./" + strings.TrimSuffix(file, ".ts")
		sb.WriteString(fmt.Sprintf("import { %s } from %q;\n", strings.Join(parts, ", "), modulePath))
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

// EmitServiceFile renders one service's RPC descriptor table, resolving
// each rpc's request/response type names through the same realized-name
// convention used by message bodies, and importing each referenced
// message's generated serialize/deserialize pair the same way a message
// body would.
func (g *Generator) EmitServiceFile(svc *types.ServiceDef) OutputFile {
	w := NewWriter(ServiceFileName(svc) + ".ts")
	codecOf := func(t *types.Instance) rpcCodec {
		if isVoid(t) {
			return voidCodec()
		}
		if isMessage(t) {
			md := t.Def.(*types.MessageDef)
			inst := monomorph.Realize(md, t.Args)
			name := w.Imports.Need(strcase.ToSnake(md.Name)+".ts", md.Package, inst.MangledName())
			return messageCodec(name)
		}
		return inlineCodec(w, g.builder.Build(t))
	}
	lines := EmitService(svc, codecOf)
	text := `import { Writer, Reader } from "protobufjs/minimal";` + "\n" +
		renderImports(w.Imports) + strings.Join(lines, "\n") + "\n"
	return OutputFile{Name: ServiceFileName(svc), Text: text, Imports: w.Imports.Files()}
}

// EmitAnyFile renders the synthetic Any struct's serialize/deserialize pair
// exactly once per compiled output tree: callers invoke this only after
// confirming at least one emitted file referenced `any`.
func (g *Generator) EmitAnyFile() OutputFile {
	body := g.builder.BuildAnyBody()
	var sb strings.Builder
	sb.WriteString("function Any_serialize(value, writer) {\n")
	sb.WriteString(strings.Join(serializeSwitchTop(body), "\n"))
	sb.WriteString("\n}\n\n")
	sb.WriteString("function Any_deserialize(reader, end) {\n")
	sb.WriteString("  let value;\n")
	sb.WriteString("  const tag = reader.uint32() >>> 3;\n")
	sb.WriteString(strings.Join(deserializeSwitchTop(body), "\n"))
	sb.WriteString("\n  return value;\n}\n")
	return OutputFile{Name: "any", Text: sb.String()}
}

func serializeSwitchTop(sw *genir.Switch) []string {
	w := NewWriter("any.ts")
	return w.serializeSwitch(sw, "value", 1)
}

func deserializeSwitchTop(sw *genir.Switch) []string {
	w := NewWriter("any.ts")
	return w.deserializeSwitch(sw, "value", 1)
}

// NoteAnyUse records that some field somewhere in the compiled tree
// referenced `any`, so the driver knows to call EmitAnyFile once.
func (g *Generator) NoteAnyUse() { g.anyUsed = true }

// AnyUsed reports whether NoteAnyUse was ever called.
func (g *Generator) AnyUsed() bool { return g.anyUsed }

// AnyImportAlias is the fixed alias every file that references `any` uses,
// regardless of where the Any file physically lives.
func AnyImportAlias() string { return Alias(AnyPackageID, "Any") }
