// Package callgraph resolves call-site identifiers against function
// registries into directed caller→callee edges and performs the bounded
// traversals the impact propagator needs.
package callgraph

import (
	"sort"

	"ripple/internal/registry"
)

// Edge is a resolved caller→callee relationship.
type Edge struct {
	Caller registry.FunctionID
	Callee registry.FunctionID
}

// DanglingEdge is a call-site identifier that resolved to no known
// function. Retained for diagnostics, excluded from propagation.
type DanglingEdge struct {
	Caller registry.FunctionID
	Symbol string // identifier as written, qualified form if present
	File   string
	Line   int
}

// Graph is the per-repository call graph.
type Graph struct {
	repo     string
	forward  map[registry.FunctionID][]registry.FunctionID
	reverse  map[registry.FunctionID][]registry.FunctionID
	seen     map[Edge]bool
	dangling []DanglingEdge
}

// NewGraph creates an empty call graph for a repository.
func NewGraph(repo string) *Graph {
	return &Graph{
		repo:    repo,
		forward: make(map[registry.FunctionID][]registry.FunctionID),
		reverse: make(map[registry.FunctionID][]registry.FunctionID),
		seen:    make(map[Edge]bool),
	}
}

// Repo returns the owning repository name.
func (g *Graph) Repo() string { return g.repo }

// AddEdge records a caller→callee edge. Duplicate edges and self-edges
// are dropped.
func (g *Graph) AddEdge(caller, callee registry.FunctionID) {
	if caller == callee {
		return
	}
	e := Edge{Caller: caller, Callee: callee}
	if g.seen[e] {
		return
	}
	g.seen[e] = true
	g.forward[caller] = append(g.forward[caller], callee)
	g.reverse[callee] = append(g.reverse[callee], caller)
}

// AddDangling records an unresolved call site.
func (g *Graph) AddDangling(d DanglingEdge) {
	g.dangling = append(g.dangling, d)
}

// Callees returns the functions called by f, ordered deterministically.
func (g *Graph) Callees(f registry.FunctionID) []registry.FunctionID {
	return sortedCopy(g.forward[f])
}

// Callers returns the functions that call f, ordered deterministically.
func (g *Graph) Callers(f registry.FunctionID) []registry.FunctionID {
	return sortedCopy(g.reverse[f])
}

// Dangling returns the unresolved call edges, ordered by (file, line,
// symbol).
func (g *Graph) Dangling() []DanglingEdge {
	out := append([]DanglingEdge(nil), g.dangling...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// NumEdges returns the resolved edge count.
func (g *Graph) NumEdges() int { return len(g.seen) }

func sortedCopy(ids []registry.FunctionID) []registry.FunctionID {
	out := append([]registry.FunctionID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return idLess(out[i], out[j]) })
	return out
}

func idLess(a, b registry.FunctionID) bool {
	if a.Repo != b.Repo {
		return a.Repo < b.Repo
	}
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Qualified() < b.Qualified()
}
