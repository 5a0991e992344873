package callgraph

import (
	"sort"

	"ripple/internal/registry"
	"ripple/internal/scanner"
)

// SharedIndex resolves names explicitly declared as shared across
// repositories. Only names a repository declares in its metadata are
// indexed; everything else stays repository-local.
type SharedIndex struct {
	byName map[string][]registry.FunctionID
}

// NewSharedIndex creates an empty shared-symbol index.
func NewSharedIndex() *SharedIndex {
	return &SharedIndex{byName: make(map[string][]registry.FunctionID)}
}

// Declare indexes the definitions of a shared name from one repository's
// registry.
func (s *SharedIndex) Declare(name string, reg *registry.Registry) {
	ids := reg.ByName(name)
	if len(ids) == 0 {
		return
	}
	s.byName[name] = append(s.byName[name], ids...)
	sort.Slice(s.byName[name], func(i, j int) bool {
		return idLess(s.byName[name][i], s.byName[name][j])
	})
}

// Lookup returns the shared definitions for a name.
func (s *SharedIndex) Lookup(name string) []registry.FunctionID {
	if s == nil {
		return nil
	}
	return s.byName[name]
}

// Builder resolves call sites into a Graph.
type Builder struct {
	reg    *registry.Registry
	shared *SharedIndex
}

// NewBuilder creates a builder over one repository's registry. shared may
// be nil when no cross-repository names are declared.
func NewBuilder(reg *registry.Registry, shared *SharedIndex) *Builder {
	return &Builder{reg: reg, shared: shared}
}

// Build resolves every call site against the registry and returns the
// resulting graph. Calls outside any known function body are skipped;
// unresolvable callees become dangling edges.
//
// Resolution order: exact (type, name) match when the identifier is
// qualified; name-only match when unqualified; cross-repository shared
// lookup when the repository itself has no definition. Ambiguity between
// equally plausible candidates is broken deterministically: a definition
// in the same file as the call site wins, else the lexically smallest
// (file, line) definition.
func (b *Builder) Build(calls []scanner.CallRef) *Graph {
	g := NewGraph(b.reg.Repo())

	for _, call := range calls {
		caller, ok := b.reg.EnclosingFunction(call.File, call.Line)
		if !ok {
			continue // top-level call site, no owning function
		}

		callee, resolved := b.resolve(call)
		if !resolved {
			g.AddDangling(DanglingEdge{
				Caller: caller,
				Symbol: symbolOf(call),
				File:   call.File,
				Line:   call.Line,
			})
			continue
		}
		g.AddEdge(caller, callee)
	}

	return g
}

func (b *Builder) resolve(call scanner.CallRef) (registry.FunctionID, bool) {
	if call.Qualifier != "" {
		if ids := b.reg.Exact(call.Qualifier, call.Name); len(ids) > 0 {
			return pick(ids, call.File), true
		}
	} else {
		if ids := b.reg.ByName(call.Name); len(ids) > 0 {
			return pick(ids, call.File), true
		}
	}

	if ids := b.shared.Lookup(call.Name); len(ids) > 0 {
		return pick(ids, call.File), true
	}

	return registry.FunctionID{}, false
}

// pick breaks ties between candidate definitions: same-file wins, then
// lexically smallest. Candidates arrive pre-sorted by (file, line).
func pick(ids []registry.FunctionID, callFile string) registry.FunctionID {
	for _, id := range ids {
		if id.File == callFile {
			return id
		}
	}
	return ids[0]
}

func symbolOf(call scanner.CallRef) string {
	if call.Qualifier != "" {
		return call.Qualifier + "." + call.Name
	}
	return call.Name
}
