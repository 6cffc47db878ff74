// Package types implements the two-level (packageId, name) type registry:
// Type Definitions, Type Instances, and the generic-realization bookkeeping
// that drives monomorphization.
package types

import "strings"

// Builtin name constants — the fixed set of scalar, pseudo, and
// generic-constructor builtins.
const (
	Int32    = "int32"
	Int64    = "int64"
	Uint32   = "uint32"
	Uint64   = "uint64"
	Float    = "float"
	Double   = "double"
	Sint32   = "sint32"
	Sint64   = "sint64"
	Fixed32  = "fixed32"
	Fixed64  = "fixed64"
	Sfixed32 = "sfixed32"
	Sfixed64 = "sfixed64"
	Bool     = "bool"
	String   = "string"
	Bytes    = "bytes"
	DateName = "Date"
	VoidName = "void"
	AnyName  = "any"
	Array    = "Array"
	Nullable = "Nullable"
	Map      = "Map"
)

// Def is a Type Definition: a tagged variant over
// {Builtin, Enum, StringEnum, Message}, modeled here as an interface so
// each concrete kind owns exactly the fields it needs — the common ones
// (package, name, arity) are promoted to the interface for registry use.
type Def interface {
	PackageID() string
	DefName() string
	Arity() int
}

// BuiltinDef is a scalar, pseudo, or generic-constructor builtin.
type BuiltinDef struct {
	Name        string
	FormalArity int
}

func (d *BuiltinDef) PackageID() string { return "" }
func (d *BuiltinDef) DefName() string   { return d.Name }
func (d *BuiltinDef) Arity() int        { return d.FormalArity }

// EnumValue is one numeric member of an Enum definition.
type EnumValue struct {
	Name  string
	Value int32
}

// EnumDef is a numeric enum: sequential default values starting at 0,
// explicit values permitted and not deduplicated.
type EnumDef struct {
	Package string
	Name    string
	Values  []EnumValue
}

func (d *EnumDef) PackageID() string { return d.Package }
func (d *EnumDef) DefName() string   { return d.Name }
func (d *EnumDef) Arity() int        { return 0 }

// StringEnumDef is a flat set of string literals.
type StringEnumDef struct {
	Package string
	Name    string
	Values  []string
}

func (d *StringEnumDef) PackageID() string { return d.Package }
func (d *StringEnumDef) DefName() string   { return d.Name }
func (d *StringEnumDef) Arity() int        { return 0 }

// FieldDef is one ordered field of a Message definition.
type FieldDef struct {
	Ordinal  int32
	Name     string
	Optional bool
	Type     *Instance
}

// ArgTuple is one realized (concrete) generic argument tuple recorded
// against a MessageDef, e.g. the `(int32)` in `Pagination<int32>`.
type ArgTuple struct {
	Args []*Instance
}

// MessageDef is a (possibly generic) message: a formal parameter list, an
// ordered field list, and the set of realized argument tuples discovered
// during analysis, which the monomorphizer consumes as its source data.
type MessageDef struct {
	Package string
	Name    string
	Formals []string
	Fields  []*FieldDef

	realizations []*ArgTuple
}

func (d *MessageDef) PackageID() string { return d.Package }
func (d *MessageDef) DefName() string   { return d.Name }
func (d *MessageDef) Arity() int        { return len(d.Formals) }

// IsGeneric reports whether the message declares at least one formal.
func (d *MessageDef) IsGeneric() bool { return len(d.Formals) > 0 }

// Realizations returns the deduplicated set of argument tuples recorded so
// far, in first-seen order (deterministic for tests and codegen).
func (d *MessageDef) Realizations() []*ArgTuple {
	return d.realizations
}

// ResetRealizations clears the recorded realization set so a fresh global
// analyze() pass can recompute it from scratch; analyze() must be
// idempotent.
func (d *MessageDef) ResetRealizations() {
	d.realizations = nil
}

// AddRealization records args against this definition, deduplicating under
// structural equality: the recorded tuple set never contains two entries
// that are structurally equal. Returns true if this call added a
// new tuple.
func (d *MessageDef) AddRealization(args []*Instance) bool {
	key := canonicalArgs(args)
	for _, existing := range d.realizations {
		if canonicalArgs(existing.Args) == key {
			return false
		}
	}
	d.realizations = append(d.realizations, &ArgTuple{Args: args})
	return true
}

// InstanceKind tags the Type Instance variant.
type InstanceKind int

const (
	Real InstanceKind = iota
	Generic
	Unknown
)

// Instance is a Type Instance. Real references a Def with a
// concrete or still-generic argument list; Generic names a formal parameter
// in scope in the enclosing message; Unknown is the resolution-failure
// placeholder that lets later passes keep traversing.
type Instance struct {
	Kind InstanceKind

	// Real
	Def  Def
	Args []*Instance

	// Generic
	GenericName string
}

// NewReal constructs a Real instance.
func NewReal(def Def, args ...*Instance) *Instance {
	return &Instance{Kind: Real, Def: def, Args: args}
}

// NewGeneric constructs a Generic instance.
func NewGeneric(name string) *Instance {
	return &Instance{Kind: Generic, GenericName: name}
}

// NewUnknown constructs the Unknown placeholder.
func NewUnknown() *Instance {
	return &Instance{Kind: Unknown}
}

// IsDeeplyReal reports whether this instance is Real and its transitive
// argument list contains no Generic and no Unknown.
func (t *Instance) IsDeeplyReal() bool {
	if t == nil || t.Kind != Real {
		return false
	}
	for _, a := range t.Args {
		if !a.IsDeeplyReal() {
			return false
		}
	}
	return true
}

// Substitute performs a pure tree rewrite, replacing every Generic instance
// whose name matches a key in bindings with the bound concrete instance.
// Ordinals and optionality live outside the Instance tree and are untouched
// by callers; this only rewrites the type.
func (t *Instance) Substitute(bindings map[string]*Instance) *Instance {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case Generic:
		if bound, ok := bindings[t.GenericName]; ok {
			return bound
		}
		return t
	case Real:
		newArgs := make([]*Instance, len(t.Args))
		for i, a := range t.Args {
			newArgs[i] = a.Substitute(bindings)
		}
		return &Instance{Kind: Real, Def: t.Def, Args: newArgs}
	default:
		return t
	}
}

// canonicalArgs produces a deterministic textual encoding of an argument
// list for structural-equality dedup: a canonical string keyed by
// definition identity then recursively by each argument's canonical form.
func canonicalArgs(args []*Instance) string {
	var sb strings.Builder
	for i, a := range args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(canonicalInstance(a))
	}
	return sb.String()
}

func canonicalInstance(t *Instance) string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Generic:
		return "$" + t.GenericName
	case Unknown:
		return "?"
	default:
		var sb strings.Builder
		sb.WriteString(t.Def.PackageID())
		sb.WriteByte('#')
		sb.WriteString(t.Def.DefName())
		if len(t.Args) > 0 {
			sb.WriteByte('<')
			sb.WriteString(canonicalArgs(t.Args))
			sb.WriteByte('>')
		}
		return sb.String()
	}
}

// CanonicalKey exposes canonicalInstance for callers outside the package
// that need a structural-equality key, e.g. the analyzer's realization
// fixpoint, which uses it to skip instances it has already visited.
func CanonicalKey(t *Instance) string { return canonicalInstance(t) }
