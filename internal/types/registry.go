package types

// key identifies a definition by its two-level namespace.
type key struct {
	packageID string
	name      string
}

// Registry is a flat map of (packageId, name) -> definition; no cyclic
// pointers. Message fields hold Type Instances, not direct
// definition references, so live cycles between messages are representable
// without any ownership problem: an Instance carries the symbolic
// (packageId, name) indirectly through the Def it points to, but resolution
// against the Registry always happens through this flat map, never through
// an embedded pointer cycle that would need special teardown.
type Registry struct {
	defs map[key]Def
}

// NewRegistry returns a registry pre-populated with the builtin set.
func NewRegistry() *Registry {
	r := &Registry{defs: map[key]Def{}}
	for _, b := range builtins() {
		r.defs[key{"", b.Name}] = b
	}
	return r
}

func builtins() []*BuiltinDef {
	scalar := []string{
		Int32, Int64, Uint32, Uint64, Float, Double,
		Sint32, Sint64, Fixed32, Fixed64, Sfixed32, Sfixed64,
		Bool, String, Bytes,
	}
	out := make([]*BuiltinDef, 0, len(scalar)+5)
	for _, s := range scalar {
		out = append(out, &BuiltinDef{Name: s, FormalArity: 0})
	}
	out = append(out,
		&BuiltinDef{Name: DateName, FormalArity: 0},
		&BuiltinDef{Name: VoidName, FormalArity: 0},
		&BuiltinDef{Name: AnyName, FormalArity: 0},
		&BuiltinDef{Name: Array, FormalArity: 1},
		&BuiltinDef{Name: Nullable, FormalArity: 1},
		&BuiltinDef{Name: Map, FormalArity: 2},
	)
	return out
}

// Builtin looks up a builtin definition by name (package-less).
func (r *Registry) Builtin(name string) (*BuiltinDef, bool) {
	d, ok := r.defs[key{"", name}]
	if !ok {
		return nil, false
	}
	bd, ok := d.(*BuiltinDef)
	return bd, ok
}

// Lookup finds a definition by its exact (packageID, name) pair.
func (r *Registry) Lookup(packageID, name string) (Def, bool) {
	d, ok := r.defs[key{packageID, name}]
	return d, ok
}

// Define installs a new definition, keyed by its own PackageID/DefName.
// Returns the previously installed definition (if any) so callers can
// report a redefinition diagnostic; it always overwrites.
func (r *Registry) Define(d Def) (previous Def, hadPrevious bool) {
	k := key{d.PackageID(), d.DefName()}
	prev, ok := r.defs[k]
	r.defs[k] = d
	return prev, ok
}

// Remove deletes a definition by (packageID, name). Used when a file is
// invalidated and its definitions must be torn down.
func (r *Registry) Remove(packageID, name string) {
	delete(r.defs, key{packageID, name})
}

// All returns every user-defined (non-builtin) definition in the registry,
// in no particular order.
func (r *Registry) All() []Def {
	out := make([]Def, 0, len(r.defs))
	for k, d := range r.defs {
		if k.packageID == "" {
			if _, isBuiltin := d.(*BuiltinDef); isBuiltin {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

// ForPackage returns every user-defined definition belonging to packageID.
func (r *Registry) ForPackage(packageID string) []Def {
	out := make([]Def, 0)
	for k, d := range r.defs {
		if k.packageID == packageID {
			out = append(out, d)
		}
	}
	return out
}
