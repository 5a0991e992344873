package callgraph

import (
	"math"
	"testing"

	"ripple/internal/registry"
	"ripple/internal/scanner"
)

func id(repo, name string, line int) registry.FunctionID {
	return registry.FunctionID{Repo: repo, File: "f.py", Name: name, Line: line}
}

func TestImpactedDepthsAndContributions(t *testing.T) {
	// c <- b <- a: changing a impacts b at depth 1 and c at depth 2.
	a, b, c := id("core", "a", 1), id("core", "b", 10), id("core", "c", 20)

	g := NewGraph("core")
	g.AddEdge(b, a)
	g.AddEdge(c, b)

	f := NewForest()
	f.Add(g)

	impacts := f.Impacted([]registry.FunctionID{a}, 3, 0.7)
	if len(impacts) != 3 {
		t.Fatalf("got %d impacts, want 3: %+v", len(impacts), impacts)
	}

	want := map[string]struct {
		depth        int
		contribution float64
	}{
		"a": {0, 1.0},
		"b": {1, 0.7},
		"c": {2, 0.49},
	}
	for _, imp := range impacts {
		w := want[imp.ID.Name]
		if imp.Depth != w.depth {
			t.Errorf("%s depth = %d, want %d", imp.ID.Name, imp.Depth, w.depth)
		}
		if math.Abs(imp.Contribution-w.contribution) > 1e-9 {
			t.Errorf("%s contribution = %f, want %f", imp.ID.Name, imp.Contribution, w.contribution)
		}
	}
}

func TestImpactedBoundedByMaxDepth(t *testing.T) {
	a, b, c, d := id("core", "a", 1), id("core", "b", 10), id("core", "c", 20), id("core", "d", 30)

	g := NewGraph("core")
	g.AddEdge(b, a)
	g.AddEdge(c, b)
	g.AddEdge(d, c)

	f := NewForest()
	f.Add(g)

	impacts := f.Impacted([]registry.FunctionID{a}, 2, 0.7)
	for _, imp := range impacts {
		if imp.ID.Name == "d" {
			t.Error("d reached beyond max depth")
		}
	}
	if len(impacts) != 3 {
		t.Errorf("got %d impacts, want 3", len(impacts))
	}
}

func TestImpactedTerminatesOnCycles(t *testing.T) {
	// a and b call each other; recursion on r.
	a, b, r := id("core", "a", 1), id("core", "b", 10), id("core", "r", 20)

	g := NewGraph("core")
	g.AddEdge(a, b)
	g.AddEdge(b, a)
	g.AddEdge(r, r) // dropped by AddEdge, but keep the intent explicit

	f := NewForest()
	f.Add(g)

	impacts := f.Impacted([]registry.FunctionID{a}, 100, 0.7)
	if len(impacts) != 2 {
		t.Fatalf("cycle produced %d impacts, want 2: %+v", len(impacts), impacts)
	}
	for _, imp := range impacts {
		if imp.ID == b && imp.Depth != 1 {
			t.Errorf("b depth = %d, want 1 (shallowest)", imp.Depth)
		}
	}
}

func TestImpactedAcrossGraphs(t *testing.T) {
	coreFn := id("core", "charge", 1)
	apiFn := registry.FunctionID{Repo: "api", File: "h.py", Name: "handle", Line: 1}

	apiGraph := NewGraph("api")
	apiGraph.AddEdge(apiFn, coreFn) // cross-repo edge lives in the caller's graph

	f := NewForest()
	f.Add(NewGraph("core"))
	f.Add(apiGraph)

	impacts := f.Impacted([]registry.FunctionID{coreFn}, 3, 0.7)
	found := false
	for _, imp := range impacts {
		if imp.ID == apiFn && imp.Depth == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("cross-repository caller not reached: %+v", impacts)
	}
}

func TestHelperImpacts(t *testing.T) {
	reg := registry.New("core")
	defs := []scanner.FunctionDef{
		{Name: "_shared", Private: true, Line: 1, EndLine: 5, BodyLines: 5, Params: 1},
		{Name: "Unused", Private: false, Line: 100, EndLine: 140, BodyLines: 41, Params: 4},
	}
	callers := make([]scanner.FunctionDef, 0, 7)
	for i := 0; i < 7; i++ {
		callers = append(callers, scanner.FunctionDef{
			Name: "caller", Container: "C", Line: 10 + i*10, EndLine: 15 + i*10,
			BodyLines: 6, Params: 4,
		})
	}
	reg.IndexFile("util.py", append(defs, callers...))

	helper := registry.FunctionID{Repo: "core", File: "util.py", Name: "_shared", Line: 1}
	g := NewGraph("core")
	for i := 0; i < 7; i++ {
		g.AddEdge(registry.FunctionID{
			Repo: "core", File: "util.py", Container: "C", Name: "caller", Line: 10 + i*10,
		}, helper)
	}
	f := NewForest()
	f.Add(g)

	impacts := f.HelperImpacts(reg, []string{"util.py"})
	if len(impacts) != 1 {
		t.Fatalf("got %d helper impacts, want 1 (uncalled helpers omitted): %+v", len(impacts), impacts)
	}
	hi := impacts[0]
	if hi.Function != helper {
		t.Errorf("helper = %+v", hi.Function)
	}
	if hi.CallerCount != 7 {
		t.Errorf("CallerCount = %d, want 7", hi.CallerCount)
	}
	if hi.Level != "high" {
		t.Errorf("Level = %q, want high above the caller threshold", hi.Level)
	}
}
