// Package depgraph maintains the weighted inter-repository dependency
// graph. Edges run in impact-flow direction: an edge (core → api) exists
// when api depends on core, and its weight is the confidence that a change
// in core affects api.
package depgraph

import (
	"sort"
	"sync"

	"ripple/internal/errors"
)

// RepositoryNode identifies one repository in the ecosystem. Immutable
// after registration.
type RepositoryNode struct {
	Name       string
	URL        string
	Language   string
	Components []string
	Layer      string // optional architectural layer tag
}

// Signal identifies one kind of dependency evidence.
type Signal string

const (
	// SignalImport is scanned import-count evidence
	SignalImport Signal = "scanned-import-count"
	// SignalDeclared is explicit declared-config evidence (authoritative)
	SignalDeclared Signal = "declared-config"
	// SignalLayer is inferred architectural-layer evidence
	SignalLayer Signal = "layer-inference"
)

// Edge is a weighted dependency edge with its contributing evidence.
type Edge struct {
	Source   string
	Target   string
	Weight   float64
	Evidence map[Signal]float64
}

// edgeKey is the ordered repository pair.
type edgeKey struct {
	source string
	target string
}

// Graph is the shared mutable dependency graph. Dynamic updates can arrive
// from any repository's scan, so writes are serialized; readers take an
// immutable Snapshot instead of locking per read.
type Graph struct {
	mu    sync.Mutex
	nodes map[string]RepositoryNode
	edges map[edgeKey]*Edge
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]RepositoryNode),
		edges: make(map[edgeKey]*Edge),
	}
}

// AddRepository registers a repository node. Registering the same name
// twice keeps the first registration.
func (g *Graph) AddRepository(node RepositoryNode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[node.Name]; ok {
		return
	}
	g.nodes[node.Name] = node
}

// AddEvidence adds or strengthens one edge with a single signal's score.
// Monotone: an existing signal score is only ever raised, so repeated and
// weaker reports are idempotent and the combined weight never decreases.
// Self-edges and edges naming unregistered repositories are rejected.
func (g *Graph) AddEvidence(source, target string, signal Signal, score float64) error {
	if source == target {
		return errors.Newf(errors.InternalError, "self-edge %s -> %s rejected", source, target)
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[source]; !ok {
		return errors.Newf(errors.UnknownRepository, "repository %q not registered", source)
	}
	if _, ok := g.nodes[target]; !ok {
		return errors.Newf(errors.UnknownRepository, "repository %q not registered", target)
	}

	key := edgeKey{source: source, target: target}
	e, ok := g.edges[key]
	if !ok {
		e = &Edge{Source: source, Target: target, Evidence: make(map[Signal]float64)}
		g.edges[key] = e
	}
	if score > e.Evidence[signal] {
		e.Evidence[signal] = score
		e.Weight = combineEvidence(e.Evidence)
	}
	return nil
}

// combineEvidence folds independent signals with a probabilistic OR:
// weight = 1 − ∏(1 − s). Any strong signal dominates; weak signals
// reinforce.
func combineEvidence(evidence map[Signal]float64) float64 {
	miss := 1.0
	for _, s := range evidence {
		miss *= 1 - s
	}
	w := 1 - miss
	if w > 1 {
		w = 1
	}
	return w
}

// Snapshot returns an immutable copy of the graph for readers. No edge is
// ever observed half-updated.
func (g *Graph) Snapshot() *Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	nodes := make(map[string]RepositoryNode, len(g.nodes))
	for name, n := range g.nodes {
		nodes[name] = n
	}

	out := make(map[string][]Edge, len(g.nodes))
	for _, e := range g.edges {
		copied := Edge{
			Source:   e.Source,
			Target:   e.Target,
			Weight:   e.Weight,
			Evidence: make(map[Signal]float64, len(e.Evidence)),
		}
		for sig, s := range e.Evidence {
			copied.Evidence[sig] = s
		}
		out[e.Source] = append(out[e.Source], copied)
	}
	for _, edges := range out {
		sort.Slice(edges, func(i, j int) bool { return edges[i].Target < edges[j].Target })
	}

	return &Snapshot{nodes: nodes, out: out}
}

// Snapshot is an immutable view of the dependency graph.
type Snapshot struct {
	nodes map[string]RepositoryNode
	out   map[string][]Edge
}

// HasRepository reports whether a repository is registered.
func (s *Snapshot) HasRepository(name string) bool {
	_, ok := s.nodes[name]
	return ok
}

// Repository returns a registered node.
func (s *Snapshot) Repository(name string) (RepositoryNode, bool) {
	n, ok := s.nodes[name]
	return n, ok
}

// Repositories returns all registered names in ascending order.
func (s *Snapshot) Repositories() []string {
	names := make([]string, 0, len(s.nodes))
	for name := range s.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutEdges returns the impact-flow edges leaving a repository, ordered by
// target name.
func (s *Snapshot) OutEdges(source string) []Edge {
	return s.out[source]
}

// Edge returns the edge for an ordered pair, if present.
func (s *Snapshot) Edge(source, target string) (Edge, bool) {
	for _, e := range s.out[source] {
		if e.Target == target {
			return e, true
		}
	}
	return Edge{}, false
}

// NumEdges returns the edge count.
func (s *Snapshot) NumEdges() int {
	n := 0
	for _, edges := range s.out {
		n += len(edges)
	}
	return n
}
