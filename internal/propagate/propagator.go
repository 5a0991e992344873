// Package propagate combines call-graph and dependency-graph traversal
// into per-repository impact scores, risk levels, and effort estimates.
package propagate

import (
	"math"
	"sort"

	"ripple/internal/callgraph"
	"ripple/internal/depgraph"
	"ripple/internal/errors"
	"ripple/internal/registry"
)

// ImpactScore is the result for one (commit, target repository) pair.
// Never mutated after creation; a new analysis produces a new score.
type ImpactScore struct {
	Repository          string
	Score               float64
	Risk                RiskLevel
	ImpactedFunctions   []registry.FunctionID
	HelperMethodChanged bool
	EstimatedHours      float64
}

// Options are the traversal tuning constants. Zero values fall back to
// the package defaults.
type Options struct {
	MaxDepth         int     // traversal bound for both passes (default 3)
	Decay            float64 // per-hop call-graph attenuation (default 0.7)
	BaseHoursPerRepo float64 // effort base (default 4.0)
}

const (
	defaultMaxDepth  = 3
	defaultDecay     = 0.7
	defaultBaseHours = 4.0
)

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaultMaxDepth
	}
	if o.Decay <= 0 || o.Decay >= 1 {
		o.Decay = defaultDecay
	}
	if o.BaseHoursPerRepo <= 0 {
		o.BaseHoursPerRepo = defaultBaseHours
	}
	return o
}

// Propagator runs impact propagation over materialized graphs. It holds
// an immutable dependency snapshot, so a propagation call never observes
// a half-updated edge and never blocks on I/O.
type Propagator struct {
	snap       *depgraph.Snapshot
	forest     *callgraph.Forest
	registries map[string]*registry.Registry
	opts       Options
}

// New creates a propagator over a dependency snapshot, call-graph forest,
// and per-repository registries.
func New(snap *depgraph.Snapshot, forest *callgraph.Forest, registries map[string]*registry.Registry, opts Options) *Propagator {
	return &Propagator{
		snap:       snap,
		forest:     forest,
		registries: registries,
		opts:       opts.withDefaults(),
	}
}

// Propagate produces an impact score for every repository reachable from
// the changed set in sourceRepo, via either the call graph or the
// dependency graph. A source repository absent from the dependency graph
// is a rejected request.
func (p *Propagator) Propagate(sourceRepo string, changed []registry.FunctionID) (map[string]ImpactScore, error) {
	if !p.snap.HasRepository(sourceRepo) {
		return nil, errors.Newf(errors.UnknownRepository, "repository %q not in dependency graph", sourceRepo)
	}

	helperChanged := p.anyHelper(changed)

	// Pass 1: bounded BFS over call edges from every changed function.
	// A repository's contribution is decay^(shallowest depth reached in
	// it): additional functions widen the impacted set, not the score.
	impacts := p.forest.Impacted(changed, p.opts.MaxDepth, p.opts.Decay)

	callContrib := make(map[string]float64)
	impactedBy := make(map[string][]registry.FunctionID)
	helperInRepo := make(map[string]bool)
	for _, imp := range impacts {
		repo := imp.ID.Repo
		if imp.Contribution > callContrib[repo] {
			callContrib[repo] = imp.Contribution
		}
		impactedBy[repo] = append(impactedBy[repo], imp.ID)
		if reg, ok := p.registries[repo]; ok {
			if node, ok := reg.Get(imp.ID); ok && node.IsHelper {
				helperInRepo[repo] = true
			}
		}
	}

	// Pass 2: bounded BFS over dependency edges; reachability strength is
	// the product of edge weights along the best path.
	depContrib := p.dependencyReach(sourceRepo)

	// Union of repositories reached by either pass.
	reached := make(map[string]bool)
	for repo := range callContrib {
		reached[repo] = true
	}
	for repo := range depContrib {
		reached[repo] = true
	}

	out := make(map[string]ImpactScore, len(reached))
	for repo := range reached {
		if !p.snap.HasRepository(repo) {
			continue // call edge into an unregistered repository
		}

		base := math.Max(callContrib[repo], depContrib[repo])
		helperInvolved := helperChanged || helperInRepo[repo]

		score := base
		if helperInvolved {
			score += HelperBump
		}
		if score > 1 {
			score = 1
		}

		funcs := impactedBy[repo]
		sort.Slice(funcs, func(i, j int) bool { return fnLess(funcs[i], funcs[j]) })

		out[repo] = ImpactScore{
			Repository:          repo,
			Score:               score,
			Risk:                RiskOf(score),
			ImpactedFunctions:   funcs,
			HelperMethodChanged: helperInvolved,
			EstimatedHours:      EstimateEffort(p.opts.BaseHoursPerRepo, len(funcs), helperInvolved),
		}
	}

	return out, nil
}

// dependencyReach performs the repository-level BFS: frontier-by-frontier
// up to MaxDepth hops, keeping the best strength per repository. A
// repository already reached at an equal or higher strength is not
// revisited, which also guards against dependency cycles.
func (p *Propagator) dependencyReach(source string) map[string]float64 {
	best := map[string]float64{source: 1.0}
	frontier := []string{source}

	for hop := 1; hop <= p.opts.MaxDepth && len(frontier) > 0; hop++ {
		var next []string
		for _, repo := range frontier {
			for _, e := range p.snap.OutEdges(repo) {
				strength := best[repo] * e.Weight
				if strength <= best[e.Target] {
					continue
				}
				best[e.Target] = strength
				next = append(next, e.Target)
			}
		}
		frontier = next
	}

	return best
}

func (p *Propagator) anyHelper(ids []registry.FunctionID) bool {
	for _, id := range ids {
		reg, ok := p.registries[id.Repo]
		if !ok {
			continue
		}
		if node, ok := reg.Get(id); ok && node.IsHelper {
			return true
		}
	}
	return false
}

// EstimateEffort estimates testing effort in hours for one repository:
// base × (1 + impactedCount/10), ×1.5 when helper code changed, rounded
// to one decimal.
func EstimateEffort(baseHours float64, impactedCount int, helperChanged bool) float64 {
	hours := baseHours * (1 + float64(impactedCount)/10)
	if helperChanged {
		hours *= 1.5
	}
	return math.Round(hours*10) / 10
}

func fnLess(a, b registry.FunctionID) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Qualified() < b.Qualified()
}
