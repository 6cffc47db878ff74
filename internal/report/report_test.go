package report

import (
	"strings"
	"testing"

	"github.com/DanielSharp01/eprotoc/internal/diag"
	"github.com/DanielSharp01/eprotoc/internal/sourcemap"
)

func TestRenderGroupsByFileAndConvertsMarkdown(t *testing.T) {
	bag := diag.NewBag()
	bag.Errorf(diag.UnknownType, diag.Global,
		sourcemap.Span{File: "b.eproto"}, "unknown type `%s`", "Ghost")
	bag.Errorf(diag.OrdinalNonpositive, diag.Local,
		sourcemap.Span{File: "a.eproto"}, "ordinal must be positive")

	html, err := Render(bag)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "Diagnostics (2)") {
		t.Errorf("want a diagnostic count of 2, got:\n%s", html)
	}
	if !strings.Contains(html, "<h2>a.eproto</h2>") || !strings.Contains(html, "<h2>b.eproto</h2>") {
		t.Errorf("want both files grouped as sections, got:\n%s", html)
	}
	if !strings.Contains(html, "<code>Ghost</code>") {
		t.Errorf("want the backtick-quoted type name converted to markdown code, got:\n%s", html)
	}
	if strings.Index(html, "a.eproto") > strings.Index(html, "b.eproto") {
		t.Errorf("want files sorted alphabetically, got:\n%s", html)
	}
}

func TestRenderEmptyBag(t *testing.T) {
	html, err := Render(diag.NewBag())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, "Diagnostics (0)") {
		t.Errorf("want a zero count for an empty bag, got:\n%s", html)
	}
}
