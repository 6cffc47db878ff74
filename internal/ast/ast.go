// Package ast defines the eprotoc AST, an error-tolerant node tree produced
// by the parser: each node can mark itself incomplete rather than abort the
// whole parse on a syntax error.
package ast

import "github.com/DanielSharp01/eprotoc/internal/sourcemap"

// Kind tags the AST Node variant.
type Kind int

const (
	KindPackage Kind = iota
	KindMessage
	KindService
	KindEnum
	KindStringEnum
)

// Node is any top-level declaration. Every concrete node type carries its
// defining tokens (indirectly, via Span) and an IsComplete flag: true iff
// every required sub-part parsed without falling back to a synthetic error
// token.
type Node interface {
	Kind() Kind
	Span() sourcemap.Span
	IsComplete() bool
}

// Ident is a single identifier occurrence.
type Ident struct {
	Name string
	Span sourcemap.Span
}

// TypeNode is a (possibly dotted, possibly generic) type reference:
// `type := dottedId ('<' type (',' type)* '>')?`.
type TypeNode struct {
	// Segments is the dotted identifier, e.g. `a.Fruit` -> ["a", "Fruit"].
	Segments []Ident
	Args     []*TypeNode
	Sp       sourcemap.Span
	Complete bool
}

func (n *TypeNode) Name() string {
	if len(n.Segments) == 0 {
		return ""
	}
	return n.Segments[len(n.Segments)-1].Name
}

// Qualifier returns the dot-joined prefix before the final segment, or ""
// if the type name was a single identifier.
func (n *TypeNode) Qualifier() string {
	if len(n.Segments) <= 1 {
		return ""
	}
	s := ""
	for i, seg := range n.Segments[:len(n.Segments)-1] {
		if i > 0 {
			s += "."
		}
		s += seg.Name
	}
	return s
}

// PackageDecl is `package := 'package' dottedId ';'`.
type PackageDecl struct {
	Segments []Ident
	Sp       sourcemap.Span
	Complete bool
}

func (n *PackageDecl) Kind() Kind               { return KindPackage }
func (n *PackageDecl) Span() sourcemap.Span     { return n.Sp }
func (n *PackageDecl) IsComplete() bool         { return n.Complete }
func (n *PackageDecl) ID() string {
	s := ""
	for _, seg := range n.Segments {
		s += seg.Name
	}
	return s
}

// MessageField is `messageField := 'optional'? type ident ('=' number)? ';'`.
type MessageField struct {
	Optional   bool
	Type       *TypeNode
	Name       Ident
	HasOrdinal bool
	Ordinal    int64
	OrdinalSp  sourcemap.Span
	Sp         sourcemap.Span
	Complete   bool
}

// MessageDecl is `message := 'message' type '{' messageField* '}'`. The
// generic formal parameter list, if any, is carried in NameType.Args — each
// a single-segment, argument-less TypeNode.
type MessageDecl struct {
	NameType *TypeNode
	Fields   []*MessageField
	Sp       sourcemap.Span
	Complete bool
}

func (n *MessageDecl) Kind() Kind           { return KindMessage }
func (n *MessageDecl) Span() sourcemap.Span { return n.Sp }
func (n *MessageDecl) IsComplete() bool     { return n.Complete }
func (n *MessageDecl) Name() string {
	if n.NameType == nil {
		return ""
	}
	return n.NameType.Name()
}

// EnumField is `enumField := ident ('=' number)?`.
type EnumField struct {
	Name     Ident
	HasValue bool
	Value    int64
	Sp       sourcemap.Span
	Complete bool
}

// EnumDecl is `enum := 'enum' ident '{' enumField (',' enumField)* ','? '}'`.
type EnumDecl struct {
	Name     Ident
	Fields   []*EnumField
	Sp       sourcemap.Span
	Complete bool
}

func (n *EnumDecl) Kind() Kind           { return KindEnum }
func (n *EnumDecl) Span() sourcemap.Span { return n.Sp }
func (n *EnumDecl) IsComplete() bool     { return n.Complete }

// StringEnumValue is one quoted literal in a string-enum body.
type StringEnumValue struct {
	Value string
	Sp    sourcemap.Span
}

// StringEnumDecl is
// `stringEnum := 'string' 'enum' ident '{' string (',' string)* ','? '}'`.
type StringEnumDecl struct {
	Name     Ident
	Values   []StringEnumValue
	Sp       sourcemap.Span
	Complete bool
}

func (n *StringEnumDecl) Kind() Kind           { return KindStringEnum }
func (n *StringEnumDecl) Span() sourcemap.Span { return n.Sp }
func (n *StringEnumDecl) IsComplete() bool     { return n.Complete }

// Rpc is `rpc := 'rpc' ident '(' 'stream'? type ')' 'returns' '(' 'stream'? type ')' ';'`.
type Rpc struct {
	Name         Ident
	ReqStream    bool
	ReqType      *TypeNode
	RespStream   bool
	RespType     *TypeNode
	Sp           sourcemap.Span
	Complete     bool
}

// ServiceDecl is `service := 'service' ident '{' rpc* '}'`.
type ServiceDecl struct {
	Name     Ident
	Rpcs     []*Rpc
	Sp       sourcemap.Span
	Complete bool
}

func (n *ServiceDecl) Kind() Kind           { return KindService }
func (n *ServiceDecl) Span() sourcemap.Span { return n.Sp }
func (n *ServiceDecl) IsComplete() bool     { return n.Complete }
