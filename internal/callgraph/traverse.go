package callgraph

import (
	"math"
	"sort"

	"ripple/internal/registry"
)

// Forest is the union of per-repository call graphs. Cross-repository
// edges live in the caller's graph, so caller lookups consult every graph.
type Forest struct {
	graphs map[string]*Graph
}

// NewForest creates an empty forest.
func NewForest() *Forest {
	return &Forest{graphs: make(map[string]*Graph)}
}

// Add registers a repository's call graph, replacing any previous graph
// for the same repository.
func (f *Forest) Add(g *Graph) {
	f.graphs[g.Repo()] = g
}

// Graph returns the call graph for a repository.
func (f *Forest) Graph(repo string) (*Graph, bool) {
	g, ok := f.graphs[repo]
	return g, ok
}

// Callers returns every function calling f across all graphs, ordered
// deterministically.
func (f *Forest) Callers(id registry.FunctionID) []registry.FunctionID {
	var out []registry.FunctionID
	for _, g := range f.graphs {
		out = append(out, g.reverse[id]...)
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i], out[j]) })
	return out
}

// Dangling returns unresolved edges across all graphs, ordered by
// repository then (file, line).
func (f *Forest) Dangling() []DanglingEdge {
	repos := make([]string, 0, len(f.graphs))
	for repo := range f.graphs {
		repos = append(repos, repo)
	}
	sort.Strings(repos)

	var out []DanglingEdge
	for _, repo := range repos {
		out = append(out, f.graphs[repo].Dangling()...)
	}
	return out
}

// Impact is one function reached by propagation.
type Impact struct {
	ID           registry.FunctionID
	Depth        int     // 0 for the changed functions themselves
	Contribution float64 // decay^depth
}

// Impacted performs a bounded breadth-first traversal upward (callee to
// callers) from the changed set. Frontier-by-frontier processing plus a
// visited set keyed by shallowest depth guarantees termination on
// recursive and mutually recursive cycles: a function already reached at
// an equal or shallower depth is never re-enqueued.
func (f *Forest) Impacted(changed []registry.FunctionID, maxDepth int, decay float64) []Impact {
	visited := make(map[registry.FunctionID]int, len(changed))
	frontier := make([]registry.FunctionID, 0, len(changed))
	for _, id := range changed {
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = 0
		frontier = append(frontier, id)
	}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []registry.FunctionID
		for _, id := range frontier {
			for _, caller := range f.Callers(id) {
				if prev, ok := visited[caller]; ok && prev <= depth {
					continue
				}
				visited[caller] = depth
				next = append(next, caller)
			}
		}
		frontier = next
	}

	out := make([]Impact, 0, len(visited))
	for id, depth := range visited {
		out = append(out, Impact{
			ID:           id,
			Depth:        depth,
			Contribution: math.Pow(decay, float64(depth)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Depth != out[j].Depth {
			return out[i].Depth < out[j].Depth
		}
		return idLess(out[i].ID, out[j].ID)
	})
	return out
}

// HelperImpact summarizes the blast radius of one changed helper function.
type HelperImpact struct {
	Function    registry.FunctionID
	CallerCount int
	Callers     []registry.FunctionID // first callers, capped
	Level       string                // "high" above the caller threshold, else "medium"
}

// helperCallerThreshold is the caller count above which a helper change is
// summarized as high level; helperCallersListed caps the callers reported.
const (
	helperCallerThreshold = 5
	helperCallersListed   = 10
)

// HelperImpacts reports, for each helper function defined in the changed
// files, how many callers it has. Helpers with no callers are omitted.
func (f *Forest) HelperImpacts(reg *registry.Registry, changedFiles []string) []HelperImpact {
	var out []HelperImpact
	for _, file := range changedFiles {
		for _, id := range reg.FunctionsInFile(file) {
			node, ok := reg.Get(id)
			if !ok || !node.IsHelper {
				continue
			}
			callers := f.Callers(id)
			if len(callers) == 0 {
				continue
			}
			level := "medium"
			if len(callers) > helperCallerThreshold {
				level = "high"
			}
			listed := callers
			if len(listed) > helperCallersListed {
				listed = listed[:helperCallersListed]
			}
			out = append(out, HelperImpact{
				Function:    id,
				CallerCount: len(callers),
				Callers:     listed,
				Level:       level,
			})
		}
	}
	return out
}
