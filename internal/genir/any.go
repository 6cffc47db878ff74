package genir

// anyPackageID is the fixed package id the synthetic Any struct is
// considered to belong to for import-aliasing purposes; internal/emit
// mirrors this as emit.AnyPackageID so both sides agree on the alias.
const anyPackageID = "Builtin"

// buildAnyRef is the shape used wherever `any` is referenced as a field's
// type: a call out to the pre-built Any struct's serialize/deserialize
// pair, exactly like a message reference.
func (b *Builder) buildAnyRef() Node {
	return &Len{Sub: &MessageRef{PackageID: anyPackageID, DefName: "Any", MangledName: "Any"}}
}

// BuildAnyBody constructs the fixed Switch that defines the synthetic Any
// struct's own serialize/deserialize bodies. Branches are
// tested, at serialize time, in the order below — the first predicate that
// holds on the runtime value wins; at deserialize time the same ordinals
// are matched against the incoming wire tag, which is simply the inverse
// of this table.
func (b *Builder) BuildAnyBody() *Switch {
	arrayOfAny := &Len{Sub: &Array{Sub: b.buildAnyRef()}}

	stringField := &Primitive{WriterFn: "writeString", ReaderFn: "readString", Wire: WireLen}
	mapOfStringAny := &MapValue{
		MapSerialize:   "Object.entries(value)",
		MapDeserialize: "new Map(entries)",
		Sub: &Len{Sub: &Array{Sub: &Struct{
			InitValue: "map entry",
			Fields: []*Field{
				{Ordinal: 1, Wire: WireLen, Selector: Selector{Kind: SelFieldName, FieldName: "key"}, Sub: stringField},
				{Ordinal: 2, Wire: WireLen, Selector: Selector{Kind: SelFieldName, FieldName: "value"}, Sub: b.buildAnyRef()},
			},
		}}},
	}

	return &Switch{Branches: []SwitchBranch{
		{Predicate: "value == null", Field: &Field{
			Ordinal: 1, Wire: WireLen, Selector: Selector{Kind: SelIdentity},
			Sub: &Primitive{WriterFn: "writeEmpty", ReaderFn: "readEmpty", Wire: WireLen},
		}},
		{Predicate: `typeof value === "number"`, Field: &Field{
			Ordinal: 2, Wire: WireI64, Selector: Selector{Kind: SelIdentity},
			Sub: &Primitive{WriterFn: "writeDouble", ReaderFn: "readDouble", Wire: WireI64},
		}},
		{Predicate: `typeof value === "string"`, Field: &Field{
			Ordinal: 3, Wire: WireLen, Selector: Selector{Kind: SelIdentity},
			Sub: &Primitive{WriterFn: "writeString", ReaderFn: "readString", Wire: WireLen},
		}},
		{Predicate: `typeof value === "boolean"`, Field: &Field{
			Ordinal: 4, Wire: WireVarint, Selector: Selector{Kind: SelIdentity},
			Sub: &MapValue{MapSerialize: "value ? 1 : 0", MapDeserialize: "!!value",
				Sub: &Primitive{WriterFn: "writeUint32", ReaderFn: "readUint32", Wire: WireVarint}},
		}},
		{Predicate: "Array.isArray(value)", Field: &Field{
			Ordinal: 6, Wire: WireLen, Selector: Selector{Kind: SelIdentity},
			Sub: arrayOfAny,
		}},
		{Predicate: `typeof value === "object"`, Field: &Field{
			Ordinal: 5, Wire: WireLen, Selector: Selector{Kind: SelIdentity},
			Sub: mapOfStringAny,
		}},
	}}
}
