// Package report renders a human-readable HTML dump of one compile's
// diagnostics: a small mustache template rendered against the collected
// diag.Diagnostic list, with each diagnostic's message passed through
// goldmark so authors can use simple markdown (backtick type names, etc.)
// in diagnostic text without it reading as a wall of escaped punctuation.
package report

import (
	"bytes"
	"sort"

	"github.com/cbroglie/mustache"
	"github.com/yuin/goldmark"

	"github.com/DanielSharp01/eprotoc/internal/diag"
)

const tpl = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>eprotoc diagnostics</title></head>
<body>
<h1>Diagnostics ({{count}})</h1>
{{#files}}
<h2>{{name}}</h2>
<ul>
{{#items}}
<li><strong>{{kind}}</strong> {{scope}} {{location}}<div>{{{messageHTML}}}</div></li>
{{/items}}
</ul>
{{/files}}
</body>
</html>
`

type fileGroup struct {
	Name  string
	Items []item
}

type item struct {
	Kind        string
	Scope       string
	Location    string
	MessageHTML string
}

// Render renders every diagnostic in the bag into one self-contained HTML
// document, grouped and sorted by file.
func Render(bag *diag.Bag) (string, error) {
	all := bag.All()
	byFile := map[string][]diag.Diagnostic{}
	for _, d := range all {
		byFile[d.Span.File] = append(byFile[d.Span.File], d)
	}
	names := make([]string, 0, len(byFile))
	for f := range byFile {
		names = append(names, f)
	}
	sort.Strings(names)

	groups := make([]fileGroup, 0, len(names))
	for _, name := range names {
		ds := byFile[name]
		items := make([]item, 0, len(ds))
		for _, d := range ds {
			html, err := renderMarkdown(d.Message)
			if err != nil {
				return "", err
			}
			items = append(items, item{
				Kind:        string(d.Kind),
				Scope:       d.Scope.String(),
				Location:    d.Span.String(),
				MessageHTML: html,
			})
		}
		groups = append(groups, fileGroup{Name: name, Items: items})
	}

	return mustache.Render(tpl, map[string]any{
		"count": len(all),
		"files": groups,
	})
}

func renderMarkdown(message string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(message), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
