// Package monomorph implements generic monomorphization.
//
// For a message M<A,B,...> and a realized tuple (tA,tB,...), it produces a
// MessageDefInstance by substituting every Generic occurrence in each
// field's Type Instance with the corresponding concrete type. Substitution
// is a pure tree rewrite; ordinals and optionality are preserved.
package monomorph

import "github.com/DanielSharp01/eprotoc/internal/types"

// FieldInstance is one field of a realized message, after substitution.
type FieldInstance struct {
	Ordinal  int32
	Name     string
	Optional bool
	Type     *types.Instance
}

// MessageDefInstance is a message definition plus one concrete argument
// tuple: its "realization", or "monomorphization".
type MessageDefInstance struct {
	Def    *types.MessageDef
	Args   []*types.Instance
	Fields []*FieldInstance
}

// Name returns a human-readable realized name, e.g. "Pagination<int32>",
// used for emitted identifiers and diagnostics.
func (m *MessageDefInstance) Name() string {
	if len(m.Args) == 0 {
		return m.Def.Name
	}
	s := m.Def.Name + "<"
	for i, a := range m.Args {
		if i > 0 {
			s += ", "
		}
		s += instanceText(a)
	}
	return s + ">"
}

// MangledName returns an identifier-safe rendering of Name(), for use as a
// generated function/type name: `Pagination<int32>` -> `Pagination_int32_`.
func (m *MessageDefInstance) MangledName() string {
	return mangle(m.Name())
}

func mangle(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<', '>', ',':
			out = append(out, '_')
		case ' ':
			// dropped: ", " already contributed one underscore via ','
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

func instanceText(t *types.Instance) string {
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
			s += "<"
			for i, a := range t.Args {
				if i > 0 {
					s += ", "
				}
				s += instanceText(a)
			}
			s += ">"
		}
		return s
	}
}

// Realize substitutes args for def's formals across every field, in
// declaration order. If def has zero formals, args must be empty and the
// result is the (trivial) non-generic realization of the message.
func Realize(def *types.MessageDef, args []*types.Instance) *MessageDefInstance {
	bindings := make(map[string]*types.Instance, len(def.Formals))
	for i, formal := range def.Formals {
		if i < len(args) {
			bindings[formal] = args[i]
		}
	}
	fields := make([]*FieldInstance, 0, len(def.Fields))
	for _, f := range def.Fields {
		fields = append(fields, &FieldInstance{
			Ordinal:  f.Ordinal,
			Name:     f.Name,
			Optional: f.Optional,
			Type:     f.Type.Substitute(bindings),
		})
	}
	return &MessageDefInstance{Def: def, Args: args, Fields: fields}
}

// RealizeAll produces one MessageDefInstance per realization recorded on
// def during analysis, plus — for non-generic messages — the
// single trivial realization with no arguments, so the monomorphizer's
// output uniformly covers both generic and non-generic messages for the
// GenIR builder.
func RealizeAll(def *types.MessageDef) []*MessageDefInstance {
	if !def.IsGeneric() {
		return []*MessageDefInstance{Realize(def, nil)}
	}
	tuples := def.Realizations()
	out := make([]*MessageDefInstance, 0, len(tuples))
	for _, tuple := range tuples {
		out = append(out, Realize(def, tuple.Args))
	}
	return out
}
