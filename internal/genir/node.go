// Package genir implements the code-generation intermediate representation:
// a small tree of serialize/deserialize combinators, built once per
// realized type, then lowered into textual code by the emitter's two
// symmetric traversals.
package genir

// WireType is the 3-bit protobuf tag class.
type WireType int

const (
	WireVarint WireType = 0
	WireI64    WireType = 1
	WireLen    WireType = 2
	WireI32    WireType = 5
)

// Kind tags the GenIR node variant.
type Kind int

const (
	KindPrimitive Kind = iota
	KindNullable
	KindLen
	KindArray
	KindStruct
	KindField
	KindSwitch
	KindMapValue
	KindMessageRef
)

// Node is any GenIR tree node.
type Node interface {
	Kind() Kind
}

// Primitive is a leaf: one scalar encode/decode call.
type Primitive struct {
	WriterFn string
	ReaderFn string
	Wire     WireType
}

func (*Primitive) Kind() Kind { return KindPrimitive }

// Nullable is a one-byte discriminant (0 null, 1 present) followed by Sub.
type Nullable struct {
	Sub Node
}

func (*Nullable) Kind() Kind { return KindNullable }

// Len is length-delimited framing: serialize forks and delimits, while
// deserialize reads a length and bounds an `end` offset.
type Len struct {
	Sub Node
}

func (*Len) Kind() Kind { return KindLen }

// Array is packed-style repeated encoding of Sub, inside the enclosing Len.
type Array struct {
	Sub Node
}

func (*Array) Kind() Kind { return KindArray }

// Struct is a message body: an initial value, then for each incoming wire
// tag, match ordinal to a Field.
type Struct struct {
	InitValue string
	Fields    []*Field
}

func (*Struct) Kind() Kind { return KindStruct }

// SelectorKind tags how a Field's value is projected out of / into its
// containing value expression — a small ADT rather than first-class-function
// selector closures, so the tree stays introspectable and serializable.
type SelectorKind int

const (
	SelIdentity SelectorKind = iota
	SelFieldName
	SelArrayIndex
)

// Selector names the projection; FieldName is populated for SelFieldName.
type Selector struct {
	Kind      SelectorKind
	FieldName string
}

// ConditionKind tags a Field's guard for whether it's even considered.
type ConditionKind int

const (
	CondNone ConditionKind = iota
	CondNotUndefined
	CondNotNull
	CondCustom
)

// Condition names the guard; Custom is populated for CondCustom.
type Condition struct {
	Kind   ConditionKind
	Custom string
}

// Field is one labelled member: emits its tag byte then Sub.
type Field struct {
	Ordinal   int32
	Wire      WireType
	Selector  Selector
	Condition Condition
	Sub       Node
}

func (*Field) Kind() Kind { return KindField }

// SwitchBranch pairs a value-test predicate with the Field it routes to.
type SwitchBranch struct {
	Predicate string
	Field     *Field
}

// Switch is used for the builtin `any`: at serialize time, pick the first
// branch whose predicate holds; at deserialize time it expands to the same
// struct-match as Struct.
type Switch struct {
	Branches []SwitchBranch
}

func (*Switch) Kind() Kind { return KindSwitch }

// MapValue interposes bidirectional value adaptation (Map<K,V> <-> a
// sequence of key/value structs, enum <-> integer) around Sub.
type MapValue struct {
	MapSerialize   string
	MapDeserialize string
	Sub            Node
}

func (*MapValue) Kind() Kind { return KindMapValue }

// MessageRef is the shape used wherever another message (or the synthetic
// Any type) is referenced as a field's type: it delegates wholesale to that
// type's own generated serialize/deserialize pair, which normally lives in
// a different output file, so the emitter must resolve a cross-file import
// alias for it.
type MessageRef struct {
	PackageID   string
	DefName     string
	MangledName string
}

func (*MessageRef) Kind() Kind { return KindMessageRef }
