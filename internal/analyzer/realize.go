package analyzer

import "github.com/DanielSharp01/eprotoc/internal/types"

// collectRealizations records, against every generic MessageDef, the set of
// concrete argument tuples reachable transitively from RPC signatures.
//
// The walk is a two-pass reachable-set traversal: first fan out over every
// RPC signature's type tree, recording a realization each time a Real
// instance names a generic message; then, because a realized message's own
// field list may reference further generic messages (parameterized by its
// own formals or by fixed types), keep fanning out over each
// newly-discovered realization's substituted fields until nothing new
// appears — a fixpoint, not a single pass.
func (a *Analyzer) collectRealizations() {
	for _, d := range a.registry.All() {
		if md, ok := d.(*types.MessageDef); ok {
			md.ResetRealizations()
		}
	}

	seen := map[string]bool{}
	var queue []*types.Instance

	visit := func(t *types.Instance) {
		var walk func(t *types.Instance)
		walk = func(t *types.Instance) {
			if t == nil || t.Kind != types.Real {
				return
			}
			if md, ok := t.Def.(*types.MessageDef); ok && md.Arity() > 0 {
				key := types.CanonicalKey(t)
				if !seen[key] {
					seen[key] = true
					md.AddRealization(t.Args)
					queue = append(queue, t)
				}
			}
			for _, arg := range t.Args {
				walk(arg)
			}
		}
		walk(t)
	}

	for _, d := range a.registry.All() {
		sd, ok := d.(*types.ServiceDef)
		if !ok {
			continue
		}
		for _, rpc := range sd.Rpcs {
			visit(rpc.ReqType)
			visit(rpc.RespType)
		}
	}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		md := t.Def.(*types.MessageDef)
		bindings := make(map[string]*types.Instance, len(md.Formals))
		for i, formal := range md.Formals {
			bindings[formal] = t.Args[i]
		}
		for _, fd := range md.Fields {
			visit(fd.Type.Substitute(bindings))
		}
	}
}
