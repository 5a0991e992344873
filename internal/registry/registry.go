// Package registry aggregates scanner output per repository into an index
// from qualified function identity to definition metadata.
package registry

import (
	"sort"

	"ripple/internal/scanner"
)

// FunctionID is the identity of a function definition within a scan
// snapshot.
type FunctionID struct {
	Repo      string
	File      string
	Container string
	Name      string
	Line      int
}

// Qualified returns the container-qualified name.
func (id FunctionID) Qualified() string {
	if id.Container == "" {
		return id.Name
	}
	return id.Container + "." + id.Name
}

// FunctionNode is a recorded function definition. Immutable once recorded
// for a given scan snapshot; re-scanning a file replaces its nodes.
type FunctionNode struct {
	ID         FunctionID
	EndLine    int
	Params     int
	BodyLines  int
	Complexity int
	IsHelper   bool
}

// Registry indexes the functions of one repository.
type Registry struct {
	repo   string
	byID   map[FunctionID]FunctionNode
	byFile map[string][]FunctionID
	byName map[string][]FunctionID // unqualified name -> candidates
}

// New creates an empty registry for a repository.
func New(repo string) *Registry {
	return &Registry{
		repo:   repo,
		byID:   make(map[FunctionID]FunctionNode),
		byFile: make(map[string][]FunctionID),
		byName: make(map[string][]FunctionID),
	}
}

// Repo returns the owning repository name.
func (r *Registry) Repo() string { return r.repo }

// IndexFile records the functions of one file, fully replacing any entries
// from a previous scan of the same path. No stale nodes survive a rescan.
func (r *Registry) IndexFile(file string, defs []scanner.FunctionDef) {
	r.dropFile(file)

	ids := make([]FunctionID, 0, len(defs))
	for _, def := range defs {
		id := FunctionID{
			Repo:      r.repo,
			File:      file,
			Container: def.Container,
			Name:      def.Name,
			Line:      def.Line,
		}
		node := FunctionNode{
			ID:         id,
			EndLine:    def.EndLine,
			Params:     def.Params,
			BodyLines:  def.BodyLines,
			Complexity: def.Complexity(),
			IsHelper:   IsHelper(def),
		}
		r.byID[id] = node
		r.byName[def.Name] = append(r.byName[def.Name], id)
		ids = append(ids, id)
	}
	r.byFile[file] = ids

	// Keep candidate lists deterministic regardless of scan order.
	for _, def := range defs {
		sortIDs(r.byName[def.Name])
	}
}

func (r *Registry) dropFile(file string) {
	old, ok := r.byFile[file]
	if !ok {
		return
	}
	for _, id := range old {
		delete(r.byID, id)
		r.byName[id.Name] = removeID(r.byName[id.Name], id)
		if len(r.byName[id.Name]) == 0 {
			delete(r.byName, id.Name)
		}
	}
	delete(r.byFile, file)
}

// Get returns the node for an identity.
func (r *Registry) Get(id FunctionID) (FunctionNode, bool) {
	n, ok := r.byID[id]
	return n, ok
}

// ByName returns the candidates for an unqualified name, ordered by
// (file, line). The returned slice is the caller's to keep.
func (r *Registry) ByName(name string) []FunctionID {
	return append([]FunctionID(nil), r.byName[name]...)
}

// Exact returns the candidates matching a (container, name) pair, ordered
// by (file, line).
func (r *Registry) Exact(container, name string) []FunctionID {
	var out []FunctionID
	for _, id := range r.byName[name] {
		if id.Container == container {
			out = append(out, id)
		}
	}
	return out
}

// FunctionsInFile returns the identities recorded for a file, ordered by
// line.
func (r *Registry) FunctionsInFile(file string) []FunctionID {
	ids := append([]FunctionID(nil), r.byFile[file]...)
	sortIDs(ids)
	return ids
}

// EnclosingFunction returns the function whose extent contains the given
// line of a file, preferring the latest-starting (innermost) definition.
func (r *Registry) EnclosingFunction(file string, line int) (FunctionID, bool) {
	var best FunctionID
	found := false
	for _, id := range r.byFile[file] {
		node := r.byID[id]
		if id.Line <= line && line <= node.EndLine {
			if !found || id.Line > best.Line {
				best = id
				found = true
			}
		}
	}
	return best, found
}

// All returns every node, ordered by (file, line).
func (r *Registry) All() []FunctionNode {
	nodes := make([]FunctionNode, 0, len(r.byID))
	for _, n := range r.byID {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return idLess(nodes[i].ID, nodes[j].ID) })
	return nodes
}

// Len returns the number of recorded functions.
func (r *Registry) Len() int { return len(r.byID) }

func sortIDs(ids []FunctionID) {
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })
}

func idLess(a, b FunctionID) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Qualified() < b.Qualified()
}

func removeID(ids []FunctionID, id FunctionID) []FunctionID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
