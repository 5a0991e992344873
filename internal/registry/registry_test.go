package registry

import (
	"testing"

	"ripple/internal/scanner"
)

func def(name, container string, line, endLine int) scanner.FunctionDef {
	return scanner.FunctionDef{
		Name:      name,
		Container: container,
		Line:      line,
		EndLine:   endLine,
		BodyLines: endLine - line + 1,
		Params:    3, // keep the short-utility rule out of these tests
	}
}

func TestIndexFileAndLookup(t *testing.T) {
	r := New("billing-core")
	r.IndexFile("src/charges.py", []scanner.FunctionDef{
		def("total", "Invoice", 10, 20),
		def("total", "Receipt", 30, 40),
		def("standalone", "", 50, 60),
	})

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}

	ids := r.ByName("total")
	if len(ids) != 2 {
		t.Fatalf("ByName(total) = %d candidates, want 2", len(ids))
	}
	if ids[0].Line != 10 || ids[1].Line != 30 {
		t.Errorf("candidates not ordered by line: %+v", ids)
	}

	exact := r.Exact("Receipt", "total")
	if len(exact) != 1 || exact[0].Container != "Receipt" {
		t.Errorf("Exact(Receipt, total) = %+v", exact)
	}

	if got := r.ByName("missing"); got != nil {
		t.Errorf("ByName(missing) = %+v, want nil", got)
	}
}

func TestByNameReturnsIndependentSlice(t *testing.T) {
	r := New("billing-core")
	r.IndexFile("src/charges.py", []scanner.FunctionDef{
		def("total", "Invoice", 10, 20),
		def("total", "Receipt", 30, 40),
	})

	ids := r.ByName("total")
	ids[0] = FunctionID{Name: "clobbered"}

	fresh := r.ByName("total")
	if fresh[0].Name != "total" || fresh[0].Container != "Invoice" {
		t.Errorf("caller mutation leaked into the index: %+v", fresh)
	}
}

func TestRescanReplacesFileEntries(t *testing.T) {
	r := New("billing-core")
	r.IndexFile("a.py", []scanner.FunctionDef{
		def("old_fn", "", 1, 5),
		def("kept_fn", "", 10, 15),
	})
	r.IndexFile("b.py", []scanner.FunctionDef{
		def("other", "", 1, 5),
	})

	// Rescan a.py: old_fn is gone, new_fn appears at a new line.
	r.IndexFile("a.py", []scanner.FunctionDef{
		def("kept_fn", "", 12, 17),
		def("new_fn", "", 20, 25),
	})

	if len(r.ByName("old_fn")) != 0 {
		t.Error("old_fn survived a rescan")
	}
	if len(r.ByName("new_fn")) != 1 {
		t.Error("new_fn not indexed")
	}
	kept := r.ByName("kept_fn")
	if len(kept) != 1 || kept[0].Line != 12 {
		t.Errorf("kept_fn stale after rescan: %+v", kept)
	}
	if len(r.ByName("other")) != 1 {
		t.Error("rescan of a.py disturbed b.py entries")
	}
	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
}

func TestRescanWithNilClearsFile(t *testing.T) {
	r := New("billing-core")
	r.IndexFile("a.py", []scanner.FunctionDef{def("fn", "", 1, 5)})
	r.IndexFile("a.py", nil)

	if r.Len() != 0 {
		t.Errorf("Len = %d after clearing rescan, want 0", r.Len())
	}
	if got := r.FunctionsInFile("a.py"); len(got) != 0 {
		t.Errorf("FunctionsInFile = %+v, want empty", got)
	}
}

func TestEnclosingFunction(t *testing.T) {
	r := New("billing-core")
	r.IndexFile("a.py", []scanner.FunctionDef{
		def("outer", "", 1, 30),
		def("inner", "", 10, 20),
		def("later", "", 40, 50),
	})

	tests := []struct {
		line     int
		wantName string
		wantOK   bool
	}{
		{5, "outer", true},
		{15, "inner", true}, // innermost wins
		{25, "outer", true},
		{35, "", false},
		{45, "later", true},
	}
	for _, tt := range tests {
		id, ok := r.EnclosingFunction("a.py", tt.line)
		if ok != tt.wantOK {
			t.Errorf("line %d: ok = %v, want %v", tt.line, ok, tt.wantOK)
			continue
		}
		if ok && id.Name != tt.wantName {
			t.Errorf("line %d: enclosing = %q, want %q", tt.line, id.Name, tt.wantName)
		}
	}
}

func TestHelperClassificationOnIndex(t *testing.T) {
	r := New("billing-core")
	r.IndexFile("a.py", []scanner.FunctionDef{
		{Name: "_round", Private: true, Line: 1, EndLine: 3, BodyLines: 3, Params: 2},
		{Name: "Process", Line: 10, EndLine: 60, BodyLines: 51, Params: 4},
	})

	for _, node := range r.All() {
		switch node.ID.Name {
		case "_round":
			if !node.IsHelper {
				t.Error("_round should be classified as helper")
			}
		case "Process":
			if node.IsHelper {
				t.Error("Process should not be a helper")
			}
		}
	}
}
