package callgraph

import (
	"testing"

	"ripple/internal/registry"
	"ripple/internal/scanner"
)

func indexed(repo string, files map[string][]scanner.FunctionDef) *registry.Registry {
	r := registry.New(repo)
	for file, defs := range files {
		r.IndexFile(file, defs)
	}
	return r
}

func fn(name, container string, line, endLine int) scanner.FunctionDef {
	return scanner.FunctionDef{
		Name:      name,
		Container: container,
		Line:      line,
		EndLine:   endLine,
		BodyLines: endLine - line + 1,
		Params:    3,
	}
}

func TestBuildResolvesByName(t *testing.T) {
	reg := indexed("core", map[string][]scanner.FunctionDef{
		"a.py": {fn("caller", "", 1, 10), fn("callee", "", 20, 30)},
	})
	g := NewBuilder(reg, nil).Build([]scanner.CallRef{
		{Name: "callee", File: "a.py", Line: 5},
	})

	caller, _ := reg.EnclosingFunction("a.py", 5)
	callees := g.Callees(caller)
	if len(callees) != 1 || callees[0].Name != "callee" {
		t.Fatalf("Callees = %+v, want [callee]", callees)
	}
	if g.NumEdges() != 1 {
		t.Errorf("NumEdges = %d, want 1", g.NumEdges())
	}
}

func TestBuildQualifiedResolution(t *testing.T) {
	reg := indexed("core", map[string][]scanner.FunctionDef{
		"a.py": {
			fn("run", "", 1, 10),
			fn("total", "Invoice", 20, 30),
			fn("total", "Receipt", 40, 50),
		},
	})
	g := NewBuilder(reg, nil).Build([]scanner.CallRef{
		{Name: "total", Qualifier: "Receipt", File: "a.py", Line: 5},
	})

	caller, _ := reg.EnclosingFunction("a.py", 5)
	callees := g.Callees(caller)
	if len(callees) != 1 || callees[0].Container != "Receipt" {
		t.Fatalf("qualified call resolved to %+v, want Receipt.total", callees)
	}
}

func TestBuildAmbiguityPrefersSameFile(t *testing.T) {
	reg := indexed("core", map[string][]scanner.FunctionDef{
		"a.py": {fn("run", "", 1, 10), fn("shared", "", 20, 30)},
		"b.py": {fn("shared", "", 1, 10)},
	})
	g := NewBuilder(reg, nil).Build([]scanner.CallRef{
		{Name: "shared", File: "a.py", Line: 5},
	})

	caller, _ := reg.EnclosingFunction("a.py", 5)
	callees := g.Callees(caller)
	if len(callees) != 1 || callees[0].File != "a.py" {
		t.Fatalf("ambiguous call resolved to %+v, want the a.py definition", callees)
	}
}

func TestBuildAmbiguityFallsBackToSmallest(t *testing.T) {
	reg := indexed("core", map[string][]scanner.FunctionDef{
		"a.py": {fn("run", "", 1, 10)},
		"m.py": {fn("shared", "", 7, 12)},
		"z.py": {fn("shared", "", 1, 6)},
	})
	g := NewBuilder(reg, nil).Build([]scanner.CallRef{
		{Name: "shared", File: "a.py", Line: 5},
	})

	caller, _ := reg.EnclosingFunction("a.py", 5)
	callees := g.Callees(caller)
	if len(callees) != 1 || callees[0].File != "m.py" {
		t.Fatalf("tie not broken lexically: %+v, want m.py", callees)
	}
}

func TestBuildDanglingAndTopLevel(t *testing.T) {
	reg := indexed("core", map[string][]scanner.FunctionDef{
		"a.py": {fn("run", "", 1, 10)},
	})
	g := NewBuilder(reg, nil).Build([]scanner.CallRef{
		{Name: "unknown_symbol", File: "a.py", Line: 5},
		{Name: "unknown_symbol", File: "a.py", Line: 50}, // outside any function
	})

	if g.NumEdges() != 0 {
		t.Errorf("NumEdges = %d, want 0", g.NumEdges())
	}
	dangling := g.Dangling()
	if len(dangling) != 1 {
		t.Fatalf("Dangling = %+v, want exactly the in-function site", dangling)
	}
	if dangling[0].Line != 5 || dangling[0].Symbol != "unknown_symbol" {
		t.Errorf("dangling edge = %+v", dangling[0])
	}
}

func TestBuildSharedIndexFallback(t *testing.T) {
	coreReg := indexed("core", map[string][]scanner.FunctionDef{
		"lib.py": {fn("charge", "", 1, 10)},
	})
	apiReg := indexed("api", map[string][]scanner.FunctionDef{
		"handler.py": {fn("handle", "", 1, 10)},
	})

	shared := NewSharedIndex()
	shared.Declare("charge", coreReg)

	g := NewBuilder(apiReg, shared).Build([]scanner.CallRef{
		{Name: "charge", File: "handler.py", Line: 5},
	})

	caller, _ := apiReg.EnclosingFunction("handler.py", 5)
	callees := g.Callees(caller)
	if len(callees) != 1 || callees[0].Repo != "core" {
		t.Fatalf("cross-repo call resolved to %+v, want core charge", callees)
	}
}

func TestBuildLocalDefinitionShadowsShared(t *testing.T) {
	coreReg := indexed("core", map[string][]scanner.FunctionDef{
		"lib.py": {fn("charge", "", 1, 10)},
	})
	apiReg := indexed("api", map[string][]scanner.FunctionDef{
		"handler.py": {fn("handle", "", 1, 10), fn("charge", "", 20, 30)},
	})

	shared := NewSharedIndex()
	shared.Declare("charge", coreReg)

	g := NewBuilder(apiReg, shared).Build([]scanner.CallRef{
		{Name: "charge", File: "handler.py", Line: 5},
	})

	caller, _ := apiReg.EnclosingFunction("handler.py", 5)
	callees := g.Callees(caller)
	if len(callees) != 1 || callees[0].Repo != "api" {
		t.Fatalf("local definition must win over shared: %+v", callees)
	}
}

func TestSelfAndDuplicateEdgesDropped(t *testing.T) {
	g := NewGraph("core")
	a := registry.FunctionID{Repo: "core", File: "a.py", Name: "a", Line: 1}
	b := registry.FunctionID{Repo: "core", File: "a.py", Name: "b", Line: 10}

	g.AddEdge(a, a)
	g.AddEdge(a, b)
	g.AddEdge(a, b)

	if g.NumEdges() != 1 {
		t.Errorf("NumEdges = %d, want 1", g.NumEdges())
	}
	if callers := g.Callers(b); len(callers) != 1 {
		t.Errorf("Callers(b) = %+v, want [a]", callers)
	}
}
