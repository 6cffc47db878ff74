// Package driver wires the front-end pipeline (tokenizer, parser, semantic
// analyzer) and the back-end (GenIR builder, emitter) together for the
// one-shot command-line compile, as opposed to the incremental
// workspace.Session used by an editor integration.
package driver

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DanielSharp01/eprotoc/internal/analyzer"
	"github.com/DanielSharp01/eprotoc/internal/ast"
	"github.com/DanielSharp01/eprotoc/internal/diag"
	"github.com/DanielSharp01/eprotoc/internal/emit"
	"github.com/DanielSharp01/eprotoc/internal/genir"
	"github.com/DanielSharp01/eprotoc/internal/token"
	"github.com/DanielSharp01/eprotoc/internal/types"
)

// Run holds the parsed AST for every source file compiled in one pass.
type Run struct {
	Nodes map[string][]ast.Node
}

// Compile tokenizes, parses, and analyzes every file, in two phases: Phase 1
// (AnalyzeFile) runs as each file is parsed, Phase 2 (Analyze) runs once
// after every file is known.
func Compile(az *analyzer.Analyzer, diags *diag.Bag, files []string) (*Run, error) {
	run := &Run{Nodes: map[string][]ast.Node{}}
	for _, f := range files {
		contents, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		toks := token.Tokenize(f, string(contents), diags)
		nodes := ast.Parse(f, toks, diags)
		run.Nodes[f] = nodes
		az.AnalyzeFile(f, nodes)
	}
	az.Analyze()
	return run, nil
}

// Strategy selects what EmitAll should produce: the two wire-format
// strategies, or Skip to run the front end only (definitions/AST dumps,
// diagnostics) without generating any output.
type Strategy int

const (
	Native Strategy = iota
	Evolved
	Skip
)

// ParseStrategy maps a -gen flag value to a Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "native":
		return Native, true
	case "evolved":
		return Evolved, true
	case "skip":
		return Skip, true
	default:
		return 0, false
	}
}

// EmitAll renders every message and service descriptor table in the
// registry into outputDir, one file per declaration, plus the shared Any
// file if any emitted file used it. Enums and string enums get no file of
// their own; they are encoded inline wherever a field or RPC uses them.
func EmitAll(az *analyzer.Analyzer, run *Run, strategy Strategy, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}
	gstrat := genir.Native
	if strategy == Evolved {
		gstrat = genir.Evolved
	}
	gen := emit.NewGenerator(gstrat, az.Registry())

	written := 0
	anyUsed := false
	for _, def := range sortedDefs(az.Registry().All()) {
		switch d := def.(type) {
		case *types.MessageDef:
			of := gen.EmitMessageFile(d)
			if strings.Contains(of.Text, "Builtin__Any_serialize") {
				anyUsed = true
			}
			if err := writeFile(outputDir, of); err != nil {
				return err
			}
			written++
		case *types.ServiceDef:
			of := gen.EmitServiceFile(d)
			if strings.Contains(of.Text, "Builtin__Any_serialize") {
				anyUsed = true
			}
			if err := writeFile(outputDir, of); err != nil {
				return err
			}
			written++
		}
	}
	if anyUsed {
		gen.NoteAnyUse()
		if err := writeFile(outputDir, gen.EmitAnyFile()); err != nil {
			return err
		}
		written++
	}
	slog.Info("wrote generated output", "dir", outputDir, "files", written)
	return nil
}

func writeFile(outputDir string, of emit.OutputFile) error {
	path := filepath.Join(outputDir, of.Name+".ts")
	return os.WriteFile(path, []byte(of.Text), 0644)
}

func sortedDefs(defs []types.Def) []types.Def {
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].PackageID() != defs[j].PackageID() {
			return defs[i].PackageID() < defs[j].PackageID()
		}
		return defs[i].DefName() < defs[j].DefName()
	})
	return defs
}

// fieldJSON is one message field in the -d/-definitions JSON dump.
type fieldJSON struct {
	Ordinal  int32  `json:"ordinal"`
	Name     string `json:"name"`
	Optional bool   `json:"optional,omitempty"`
	Type     string `json:"type"`
}

// enumValueJSON is one numeric enum member in the -d/-definitions JSON dump.
type enumValueJSON struct {
	Name  string `json:"name"`
	Value int32  `json:"value"`
}

// rpcJSON is one service RPC entry in the -d/-definitions JSON dump.
type rpcJSON struct {
	Name           string `json:"name"`
	RequestType    string `json:"requestType"`
	RequestStream  bool   `json:"requestStream,omitempty"`
	ResponseType   string `json:"responseType"`
	ResponseStream bool   `json:"responseStream,omitempty"`
}

// definitionJSON is one declared definition in the -d/-definitions JSON
// dump; exactly one of Fields, EnumValues, StringValues, Rpcs is populated,
// chosen by Kind.
type definitionJSON struct {
	Package      string          `json:"package"`
	Name         string          `json:"name"`
	Kind         string          `json:"kind"`
	Fields       []fieldJSON     `json:"fields,omitempty"`
	EnumValues   []enumValueJSON `json:"enumValues,omitempty"`
	StringValues []string        `json:"stringValues,omitempty"`
	Rpcs         []rpcJSON       `json:"rpcs,omitempty"`
}

// DumpDefinitions renders a deterministic JSON listing of every declared
// definition in the registry, for the -d/-definitions flag.
func DumpDefinitions(az *analyzer.Analyzer) string {
	out := make([]definitionJSON, 0)
	for _, def := range sortedDefs(az.Registry().All()) {
		dj := definitionJSON{Package: def.PackageID(), Name: def.DefName()}
		switch d := def.(type) {
		case *types.MessageDef:
			dj.Kind = "message"
			dj.Fields = make([]fieldJSON, 0, len(d.Fields))
			for _, f := range d.Fields {
				dj.Fields = append(dj.Fields, fieldJSON{Ordinal: f.Ordinal, Name: f.Name, Optional: f.Optional, Type: typeText(f.Type)})
			}
		case *types.EnumDef:
			dj.Kind = "enum"
			dj.EnumValues = make([]enumValueJSON, 0, len(d.Values))
			for _, v := range d.Values {
				dj.EnumValues = append(dj.EnumValues, enumValueJSON{Name: v.Name, Value: v.Value})
			}
		case *types.StringEnumDef:
			dj.Kind = "string-enum"
			dj.StringValues = append([]string(nil), d.Values...)
		case *types.ServiceDef:
			dj.Kind = "service"
			dj.Rpcs = make([]rpcJSON, 0, len(d.Rpcs))
			for _, r := range d.Rpcs {
				dj.Rpcs = append(dj.Rpcs, rpcJSON{
					Name:           r.Name,
					RequestType:    typeText(r.ReqType),
					RequestStream:  r.ReqStream,
					ResponseType:   typeText(r.RespType),
					ResponseStream: r.RespStream,
				})
			}
		}
		out = append(out, dj)
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		panic("This is a bug: definitions dump must always be JSON-marshalable: " + err.Error())
	}
	return string(b)
}

func typeText(t *types.Instance) string {
	if t == nil {
		return "?"
	}
	switch t.Kind {
	case types.Generic:
		return t.GenericName
	case types.Unknown:
		return "?"
	default:
		s := t.Def.DefName()
		if len(t.Args) > 0 {
			parts := make([]string, len(t.Args))
			for i, a := range t.Args {
				parts[i] = typeText(a)
			}
			s += "<" + strings.Join(parts, ", ") + ">"
		}
		return s
	}
}

// nodeJSON is one parsed top-level declaration in the -a/-ast JSON dump.
type nodeJSON struct {
	Kind     string `json:"kind"`
	Complete bool   `json:"complete"`
	Span     string `json:"span"`
}

// fileASTJSON is one source file's parsed declarations in the -a/-ast JSON
// dump.
type fileASTJSON struct {
	File  string     `json:"file"`
	Nodes []nodeJSON `json:"nodes"`
}

// DumpAST renders a deterministic JSON listing of every parsed top-level
// declaration per file, for the -a/-ast flag.
func DumpAST(nodes map[string][]ast.Node) string {
	files := make([]string, 0, len(nodes))
	for f := range nodes {
		files = append(files, f)
	}
	sort.Strings(files)

	out := make([]fileASTJSON, 0, len(files))
	for _, f := range files {
		fj := fileASTJSON{File: f, Nodes: make([]nodeJSON, 0, len(nodes[f]))}
		for _, n := range nodes[f] {
			fj.Nodes = append(fj.Nodes, nodeJSON{Kind: kindName(n.Kind()), Complete: n.IsComplete(), Span: n.Span().String()})
		}
		out = append(out, fj)
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		panic("This is a bug: AST dump must always be JSON-marshalable: " + err.Error())
	}
	return string(b)
}

func kindName(k ast.Kind) string {
	switch k {
	case ast.KindPackage:
		return "package"
	case ast.KindMessage:
		return "message"
	case ast.KindService:
		return "service"
	case ast.KindEnum:
		return "enum"
	case ast.KindStringEnum:
		return "string-enum"
	default:
		return "unknown"
	}
}
