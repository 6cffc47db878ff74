package token

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/DanielSharp01/eprotoc/internal/diag"
)

func texts(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func types_(toks []Token) []Type {
	out := make([]Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokenizeKeywordsAndSymbols(t *testing.T) {
	diags := diag.NewBag()
	toks := Tokenize("f.eproto", "message Foo<T> { optional T x = 1; }", diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}

	gotText := texts(toks)
	wantText := []string{
		"message", "Foo", "<", "T", ">", "{", "optional", "T", "x", "=", "1", ";", "}", "",
	}
	if diff := cmp.Diff(wantText, gotText); diff != "" {
		t.Errorf("mismatched token text (-want, +got):\n%s", diff)
	}

	gotType := types_(toks)
	wantType := []Type{
		Keyword, Identifier, Symbol, Identifier, Symbol, Symbol, Keyword, Identifier,
		Identifier, Symbol, NumericLiteral, Symbol, Symbol, EOF,
	}
	if diff := cmp.Diff(wantType, gotType); diff != "" {
		t.Errorf("mismatched token types (-want, +got):\n%s", diff)
	}
}

func TestTokenizeStringLiteralKeepsRawEscapes(t *testing.T) {
	diags := diag.NewBag()
	toks := Tokenize("f.eproto", `"a\"b"`, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.All())
	}
	if len(toks) != 2 {
		t.Fatalf("want 2 tokens (string + eof), got %d", len(toks))
	}
	if toks[0].Type != StringLiteral {
		t.Fatalf("want StringLiteral, got %v", toks[0].Type)
	}
	if toks[0].Str != `a"b` {
		t.Errorf("want backslash consumed and escaped char kept verbatim, got %q", toks[0].Str)
	}
}

func TestTokenizeCommentsRetained(t *testing.T) {
	diags := diag.NewBag()
	toks := Tokenize("f.eproto", "// hi\nmessage", diags)
	gotType := types_(toks)
	wantType := []Type{Comment, Keyword, EOF}
	if diff := cmp.Diff(wantType, gotType); diff != "" {
		t.Errorf("mismatched token types (-want, +got):\n%s", diff)
	}
}

func TestTokenizeUnknownSymbolReportsDiagnostic(t *testing.T) {
	diags := diag.NewBag()
	Tokenize("f.eproto", "message Foo # bar", diags)
	found := false
	for _, d := range diags.All() {
		if d.Kind == diag.LexUnknownSymbol {
			found = true
		}
	}
	if !found {
		t.Errorf("want a %s diagnostic for '#'", diag.LexUnknownSymbol)
	}
}
