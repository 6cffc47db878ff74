package genir

import (
	"github.com/DanielSharp01/eprotoc/internal/monomorph"
	"github.com/DanielSharp01/eprotoc/internal/types"
)

// scalarTable maps a scalar builtin name to its writer/reader call suffix
// and protobuf wire type.
var scalarTable = map[string]struct {
	fn   string
	wire WireType
}{
	types.Int32:    {"Int32", WireVarint},
	types.Int64:    {"Int64", WireVarint},
	types.Uint32:   {"Uint32", WireVarint},
	types.Uint64:   {"Uint64", WireVarint},
	types.Sint32:   {"Sint32", WireVarint},
	types.Sint64:   {"Sint64", WireVarint},
	types.Fixed32:  {"Fixed32", WireI32},
	types.Fixed64:  {"Fixed64", WireI64},
	types.Sfixed32: {"Sfixed32", WireI32},
	types.Sfixed64: {"Sfixed64", WireI64},
	types.Float:    {"Float", WireI32},
	types.Double:   {"Double", WireI64},
	types.String:   {"String", WireLen},
	types.Bytes:    {"Bytes", WireLen},
}

// Builder lowers Type Instances into GenIR trees using a fixed Strategy.
// It is stateless aside from the registry it resolves message/enum/
// string-enum definitions against. The Any pseudo-type being realized once
// is an emission-time property, not a builder one: the
// emitter calls BuildAnyBody() at most once per output tree, regardless of
// how many fields reference `any` — see internal/emit.
type Builder struct {
	Strategy Strategy
	registry *types.Registry
}

// New returns a Builder for the given strategy and registry.
func New(strategy Strategy, registry *types.Registry) *Builder {
	return &Builder{Strategy: strategy, registry: registry}
}

// Build lowers a deeply-real Type Instance to the GenIR tree used to
// encode/decode one occurrence of it — the form used when the instance
// appears as a field's type, a map value, an array element, etc.
func (b *Builder) Build(t *types.Instance) Node {
	switch def := t.Def.(type) {
	case *types.BuiltinDef:
		return b.buildBuiltin(def, t.Args)
	case *types.EnumDef:
		return buildEnum(def)
	case *types.StringEnumDef:
		return buildStringEnum(def)
	case *types.MessageDef:
		return b.buildMessageRef(def, t.Args)
	default:
		panic("This is a bug: unresolved or unknown type reached GenIR construction")
	}
}

func (b *Builder) buildBuiltin(def *types.BuiltinDef, args []*types.Instance) Node {
	if st, ok := scalarTable[def.Name]; ok {
		return &Primitive{WriterFn: "write" + st.fn, ReaderFn: "read" + st.fn, Wire: st.wire}
	}
	switch def.Name {
	case types.Bool:
		return &MapValue{
			MapSerialize:   "value ? 1 : 0",
			MapDeserialize: "!!value",
			Sub:            &Primitive{WriterFn: "writeUint32", ReaderFn: "readUint32", Wire: WireVarint},
		}
	case types.DateName:
		return &Primitive{WriterFn: "writeDate", ReaderFn: "readDate", Wire: WireLen}
	case types.AnyName:
		return b.buildAnyRef()
	case types.Array:
		return b.buildArray(args[0])
	case types.Nullable:
		return b.buildNullable(args[0])
	case types.Map:
		return b.buildMap(args[0], args[1])
	}
	panic("This is a bug: unknown builtin " + def.Name)
}

func buildEnum(def *types.EnumDef) Node {
	return &MapValue{
		MapSerialize:   "int32(value)",
		MapDeserialize: def.Name + "(value)",
		Sub:            &Primitive{WriterFn: "writeUint32", ReaderFn: "readUint32", Wire: WireVarint},
	}
}

func buildStringEnum(def *types.StringEnumDef) Node {
	return &Primitive{WriterFn: "writeString", ReaderFn: "readString", Wire: WireLen}
}

// buildArray: `Array<U> -> Len(Array(sub(U)))`. Under the native strategy,
// a nested Array<Array<T>> gets its inner array wrapped in a one-field
// struct (ordinal #1), because protobuf cannot represent nested packed
// arrays directly.
func (b *Builder) buildArray(elem *types.Instance) Node {
	sub := b.Build(elem)
	if b.Strategy == Native && isArrayInstance(elem) {
		sub = &Len{Sub: &Struct{
			InitValue: "nil",
			Fields: []*Field{{
				Ordinal:  1,
				Wire:     WireLen,
				Selector: Selector{Kind: SelIdentity},
				Sub:      sub,
			}},
		}}
	}
	return &Len{Sub: &Array{Sub: sub}}
}

func isArrayInstance(t *types.Instance) bool {
	if t == nil || t.Kind != types.Real {
		return false
	}
	bd, ok := t.Def.(*types.BuiltinDef)
	return ok && bd.Name == types.Array
}

// buildNullable implements the native/evolved Nullable<T> encodings.
func (b *Builder) buildNullable(inner *types.Instance) Node {
	sub := b.Build(inner)
	if b.Strategy == Evolved {
		return &Len{Sub: &Nullable{Sub: sub}}
	}
	return &Len{Sub: &Struct{
		InitValue: "value = null",
		Fields: []*Field{{
			Ordinal:   1,
			Wire:      wireOf(sub),
			Selector:  Selector{Kind: SelIdentity},
			Condition: Condition{Kind: CondNotNull},
			Sub:       sub,
		}},
	}}
}

// BuildOptionalField is the field-level counterpart: `optional T field`
// desugars, for GenIR purposes, to the same shape as `Nullable<T>` — an
// `optional Array<int32> xs` field round-trips exactly like a
// Nullable<Array<int32>> field.
func (b *Builder) BuildOptionalField(inner *types.Instance) Node {
	return b.buildNullable(inner)
}

func (b *Builder) buildMap(key, val *types.Instance) Node {
	entry := &Struct{
		InitValue: "map entry",
		Fields: []*Field{
			{Ordinal: 1, Wire: wireOf(b.Build(key)), Selector: Selector{Kind: SelFieldName, FieldName: "key"}, Sub: b.Build(key)},
			{Ordinal: 2, Wire: wireOf(b.Build(val)), Selector: Selector{Kind: SelFieldName, FieldName: "value"}, Sub: b.Build(val)},
		},
	}
	return &MapValue{
		MapSerialize:   "Object.entries(value)",
		MapDeserialize: "new Map(entries)",
		Sub:            &Len{Sub: &Array{Sub: entry}},
	}
}

// buildMessageRef is the shape used when a message type is referenced as a
// field's type elsewhere: `Len(MessageRef(...))`, resolved at emission time
// to a call out to that message's own generated serialize/deserialize pair.
func (b *Builder) buildMessageRef(def *types.MessageDef, args []*types.Instance) Node {
	inst := monomorph.Realize(def, args)
	return &Len{Sub: &MessageRef{
		PackageID:   def.Package,
		DefName:     def.Name,
		MangledName: inst.MangledName(),
	}}
}

// BuildMessageBody lowers a realized message's own field list into the
// Struct used to generate that message's serialize/deserialize procedures.
// The top-level Len that buildMessageRef would otherwise wrap this in is
// omitted: the caller (a referencing field, or the RPC framing code)
// already owns the `end` boundary.
func (b *Builder) BuildMessageBody(inst *monomorph.MessageDefInstance) *Struct {
	fields := make([]*Field, 0, len(inst.Fields))
	for _, f := range inst.Fields {
		var sub Node
		if f.Optional {
			sub = b.BuildOptionalField(f.Type)
		} else {
			sub = b.Build(f.Type)
		}
		fields = append(fields, &Field{
			Ordinal:  f.Ordinal,
			Wire:     wireOf(sub),
			Selector: Selector{Kind: SelFieldName, FieldName: f.Name},
			Sub:      sub,
		})
	}
	return &Struct{InitValue: "zero value", Fields: fields}
}

// wireOf derives the outer wire type of a constructed node: a bare Primitive
// reports its own scalar wire type, a MapValue reports the wire type of the
// node it adapts, and every other combinator (Len, Nullable, Array, Struct,
// Switch, MessageRef) reports LEN.
func wireOf(n Node) WireType {
	switch v := n.(type) {
	case *Primitive:
		return v.Wire
	case *MapValue:
		return wireOf(v.Sub)
	case *Len, *Nullable, *Array, *Struct, *Switch, *MessageRef:
		return WireLen
	default:
		return WireLen
	}
}
