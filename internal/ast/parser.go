package ast

import (
	"github.com/DanielSharp01/eprotoc/internal/diag"
	"github.com/DanielSharp01/eprotoc/internal/sourcemap"
	"github.com/DanielSharp01/eprotoc/internal/token"
)

// parser is a recursive-descent, error-tolerant parser over a token stream
// with comments already stripped. Every production returns a best-effort
// node with Complete == false when a required sub-production was missing;
// the parser either consumes the offending token and continues, or leaves
// the cursor in place for the caller to resynchronize, never panicking and
// never looping on zero forward progress.
type parser struct {
	file   string
	toks   []token.Token
	pos    int
	diags  *diag.Bag
}

// Parse builds a permissive AST out of a token stream. Comment tokens are
// dropped here, at parse entry — the tokenizer still emitted them so an LSP
// consumer can color them.
func Parse(file string, toks []token.Token, diags *diag.Bag) []Node {
	filtered := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Type != token.Comment {
			filtered = append(filtered, t)
		}
	}
	p := &parser{file: file, toks: filtered, diags: diags}
	return p.parseFile()
}

func (p *parser) cur() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return p.toks[len(p.toks)-1] // EOF
}

func (p *parser) at(off int) token.Token {
	i := p.pos + off
	if i < 0 {
		i = 0
	}
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) atEOF() bool {
	return p.cur().Type == token.EOF
}

// expectSymbol consumes a symbol token if present; on failure it reports
// parse-expect and does NOT advance, so callers can try to resynchronize.
func (p *parser) expectSymbol(sym string) (sourcemap.Span, bool) {
	if p.cur().IsSymbol(sym) {
		t := p.advance()
		return t.Span, true
	}
	p.expectError("%q", sym)
	return p.cur().Span, false
}

func (p *parser) expectKeyword(kw string) (sourcemap.Span, bool) {
	if p.cur().IsKeyword(kw) {
		t := p.advance()
		return t.Span, true
	}
	p.expectError("keyword %q", kw)
	return p.cur().Span, false
}

func (p *parser) expectError(format string, args ...any) {
	p.diags.Errorf(diag.ParseExpect, diag.Local, p.cur().Span, "expected "+format+", found %q", append(args, p.cur().Text)...)
}

func (p *parser) expectIdentifier() (Ident, bool) {
	if p.cur().Type == token.Identifier {
		t := p.advance()
		return Ident{Name: t.Text, Span: t.Span}, true
	}
	p.expectError("identifier")
	return Ident{Name: "", Span: p.cur().Span}, false
}

func (p *parser) expectNumber() (token.Token, bool) {
	if p.cur().Type == token.NumericLiteral {
		return p.advance(), true
	}
	p.expectError("number")
	return token.Token{}, false
}

func (p *parser) expectString() (StringEnumValue, bool) {
	if p.cur().Type == token.StringLiteral {
		t := p.advance()
		return StringEnumValue{Value: t.Str, Sp: t.Span}, true
	}
	p.expectError("string literal")
	return StringEnumValue{Sp: p.cur().Span}, false
}

// parseFile := packageDecl topLevel*
func (p *parser) parseFile() []Node {
	// The parser only builds structure; whether a package declaration is
	// present, unique, and first is a semantic question the analyzer
	// answers in its Phase 1 so that missing-package, multiple-packages,
	// and package-not-first diagnostics come from one place regardless of
	// how the AST was assembled (parse vs. edit/patch).
	nodes := make([]Node, 0)
	if p.cur().IsKeyword("package") {
		nodes = append(nodes, p.parsePackage())
	}

	for !p.atEOF() {
		before := p.pos
		if p.cur().IsKeyword("package") {
			nodes = append(nodes, p.parsePackage())
		} else {
			nodes = append(nodes, p.parseTopLevel())
		}
		if p.pos == before {
			// No production made progress; step one token to guarantee the
			// parser terminates on malformed input.
			p.advance()
		}
	}
	return nodes
}

func (p *parser) parsePackage() *PackageDecl {
	start, _ := p.expectKeyword("package")
	segs, complete := p.parseDottedId()
	semi, okSemi := p.expectSymbol(";")
	end := semi
	if len(segs) > 0 {
		end = segs[len(segs)-1].Span
	}
	return &PackageDecl{
		Segments: segs,
		Sp:       spanUnion(start, end),
		Complete: complete && okSemi,
	}
}

func (p *parser) parseDottedId() ([]Ident, bool) {
	first, ok := p.expectIdentifier()
	if !ok {
		return nil, false
	}
	segs := []Ident{first}
	for p.cur().IsSymbol(".") {
		p.advance()
		id, ok := p.expectIdentifier()
		if !ok {
			return segs, false
		}
		segs = append(segs, id)
	}
	return segs, true
}

// topLevel := message | enum | stringEnum | service
func (p *parser) parseTopLevel() Node {
	switch {
	case p.cur().IsKeyword("message"):
		return p.parseMessage()
	case p.cur().IsKeyword("service"):
		return p.parseService()
	case p.cur().IsKeyword("enum"):
		return p.parseEnum()
	case p.cur().Type == token.Identifier && p.cur().Text == "string" && p.at(1).IsKeyword("enum"):
		return p.parseStringEnum()
	default:
		t := p.advance()
		p.diags.Errorf(diag.ParseExpect, diag.Local, t.Span, "expected a top-level declaration, found %q", t.Text)
		return &MessageDecl{NameType: &TypeNode{Sp: t.Span}, Sp: t.Span, Complete: false}
	}
}

// message := 'message' type '{' messageField* '}'
func (p *parser) parseMessage() *MessageDecl {
	start, ok1 := p.expectKeyword("message")
	nameType, ok2 := p.parseType()
	_, ok3 := p.expectSymbol("{")
	fields := make([]*MessageField, 0)
	for !p.atEOF() && !p.cur().IsSymbol("}") {
		before := p.pos
		fields = append(fields, p.parseMessageField())
		if p.pos == before {
			p.advance()
		}
	}
	end, ok4 := p.expectSymbol("}")
	return &MessageDecl{
		NameType: nameType,
		Fields:   fields,
		Sp:       spanUnion(start, end),
		Complete: ok1 && ok2 && ok3 && ok4,
	}
}

// messageField := 'optional'? type ident ('=' number)? ';'
func (p *parser) parseMessageField() *MessageField {
	start := p.cur().Span
	optional := false
	if p.cur().IsKeyword("optional") {
		p.advance()
		optional = true
	}
	typ, ok1 := p.parseType()
	name, ok2 := p.expectIdentifier()
	hasOrdinal := false
	var ordTok token.Token
	if p.cur().IsSymbol("=") {
		p.advance()
		hasOrdinal = true
		var ok bool
		ordTok, ok = p.expectNumber()
		if !ok {
			hasOrdinal = false
		}
	}
	semi, ok3 := p.expectSymbol(";")
	return &MessageField{
		Optional:   optional,
		Type:       typ,
		Name:       name,
		HasOrdinal: hasOrdinal,
		Ordinal:    ordTok.Int,
		OrdinalSp:  ordTok.Span,
		Sp:         spanUnion(start, semi),
		Complete:   ok1 && ok2 && ok3,
	}
}

// type := dottedId ('<' type (',' type)* '>')?
func (p *parser) parseType() (*TypeNode, bool) {
	start := p.cur().Span
	segs, ok := p.parseDottedId()
	if !ok {
		return &TypeNode{Sp: start, Complete: false}, false
	}
	node := &TypeNode{Segments: segs, Sp: spanUnion(segs[0].Span, segs[len(segs)-1].Span), Complete: true}
	if p.cur().IsSymbol("<") {
		p.advance()
		for {
			arg, okArg := p.parseType()
			node.Args = append(node.Args, arg)
			if !okArg {
				node.Complete = false
			}
			if p.cur().IsSymbol(",") {
				p.advance()
				continue
			}
			break
		}
		end, okClose := p.expectSymbol(">")
		if !okClose {
			node.Complete = false
		}
		node.Sp = spanUnion(node.Sp, end)
	}
	return node, node.Complete
}

// enum := 'enum' ident '{' enumField (',' enumField)* ','? '}'
func (p *parser) parseEnum() *EnumDecl {
	start, ok1 := p.expectKeyword("enum")
	name, ok2 := p.expectIdentifier()
	_, ok3 := p.expectSymbol("{")
	fields := make([]*EnumField, 0)
	for !p.atEOF() && !p.cur().IsSymbol("}") {
		before := p.pos
		fields = append(fields, p.parseEnumField())
		if p.cur().IsSymbol(",") {
			p.advance()
		}
		if p.pos == before {
			p.advance()
		}
	}
	end, ok4 := p.expectSymbol("}")
	return &EnumDecl{
		Name:     name,
		Fields:   fields,
		Sp:       spanUnion(start, end),
		Complete: ok1 && ok2 && ok3 && ok4,
	}
}

func (p *parser) parseEnumField() *EnumField {
	name, ok1 := p.expectIdentifier()
	hasValue := false
	var valTok token.Token
	if p.cur().IsSymbol("=") {
		p.advance()
		hasValue = true
		var ok bool
		valTok, ok = p.expectNumber()
		if !ok {
			hasValue = false
		}
	}
	end := name.Span
	if hasValue {
		end = valTok.Span
	}
	return &EnumField{
		Name:     name,
		HasValue: hasValue,
		Value:    valTok.Int,
		Sp:       spanUnion(name.Span, end),
		Complete: ok1,
	}
}

// stringEnum := 'string' 'enum' ident '{' string (',' string)* ','? '}'
func (p *parser) parseStringEnum() *StringEnumDecl {
	start := p.advance().Span // "string" (plain identifier, not a keyword)
	_, ok1 := p.expectKeyword("enum")
	name, ok2 := p.expectIdentifier()
	_, ok3 := p.expectSymbol("{")
	values := make([]StringEnumValue, 0)
	for !p.atEOF() && !p.cur().IsSymbol("}") {
		before := p.pos
		v, _ := p.expectString()
		values = append(values, v)
		if p.cur().IsSymbol(",") {
			p.advance()
		}
		if p.pos == before {
			p.advance()
		}
	}
	end, ok4 := p.expectSymbol("}")
	return &StringEnumDecl{
		Name:     name,
		Values:   values,
		Sp:       spanUnion(start, end),
		Complete: ok1 && ok2 && ok3 && ok4,
	}
}

// service := 'service' ident '{' rpc* '}'
func (p *parser) parseService() *ServiceDecl {
	start, ok1 := p.expectKeyword("service")
	name, ok2 := p.expectIdentifier()
	_, ok3 := p.expectSymbol("{")
	rpcs := make([]*Rpc, 0)
	for !p.atEOF() && !p.cur().IsSymbol("}") {
		before := p.pos
		rpcs = append(rpcs, p.parseRpc())
		if p.pos == before {
			p.advance()
		}
	}
	end, ok4 := p.expectSymbol("}")
	return &ServiceDecl{
		Name:     name,
		Rpcs:     rpcs,
		Sp:       spanUnion(start, end),
		Complete: ok1 && ok2 && ok3 && ok4,
	}
}

// rpc := 'rpc' ident '(' 'stream'? type ')' 'returns' '(' 'stream'? type ')' ';'
func (p *parser) parseRpc() *Rpc {
	start, ok1 := p.expectKeyword("rpc")
	name, ok2 := p.expectIdentifier()
	_, ok3 := p.expectSymbol("(")
	reqStream := false
	if p.cur().IsKeyword("stream") {
		p.advance()
		reqStream = true
	}
	reqType, ok4 := p.parseType()
	_, ok5 := p.expectSymbol(")")
	_, ok6 := p.expectKeyword("returns")
	_, ok7 := p.expectSymbol("(")
	respStream := false
	if p.cur().IsKeyword("stream") {
		p.advance()
		respStream = true
	}
	respType, ok8 := p.parseType()
	_, ok9 := p.expectSymbol(")")
	semi, ok10 := p.expectSymbol(";")
	return &Rpc{
		Name:       name,
		ReqStream:  reqStream,
		ReqType:    reqType,
		RespStream: respStream,
		RespType:   respType,
		Sp:         spanUnion(start, semi),
		Complete:   ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7 && ok8 && ok9 && ok10,
	}
}

func spanUnion(a, b sourcemap.Span) sourcemap.Span {
	return sourcemap.Span{File: a.File, Start: a.Start, End: b.End}
}
