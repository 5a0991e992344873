package scanner

import (
	"testing"
)

func TestECMAScriptScanImports(t *testing.T) {
	src := `import { charge } from 'billing-core';
import fs from "fs";
export { helper } from './util';
const lib = require('payment_lib');
`
	s := NewECMAScriptScanner()
	refs := s.ScanImports("app.js", []byte(src))

	want := map[string]int{
		"billing-core": 1,
		"fs":           2,
		"./util":       3,
		"payment_lib":  4,
	}
	if len(refs) != len(want) {
		t.Fatalf("expected %d imports, got %d: %+v", len(want), len(refs), refs)
	}
	for _, ref := range refs {
		line, ok := want[ref.Path]
		if !ok {
			t.Errorf("unexpected import %q", ref.Path)
			continue
		}
		if ref.Line != line {
			t.Errorf("import %q on line %d, want %d", ref.Path, ref.Line, line)
		}
	}
}

func TestECMAScriptScanFunctions(t *testing.T) {
	src := `export function processOrder(order, options) {
  if (order.total > 0) {
    return charge(order);
  }
  return null;
}

const formatAmount = (cents) => cents / 100;

class OrderService {
  constructor(db) {
    this.db = db;
  }

  #validate(order) {
    if (!order.id) {
      throw new Error('missing id');
    }
  }

  async submit(order, user, opts) {
    this.#validate(order);
    return this.db.save(order);
  }
}
`
	s := NewECMAScriptScanner()
	defs := s.ScanFunctions("orders.js", []byte(src))

	byName := make(map[string]FunctionDef, len(defs))
	for _, d := range defs {
		byName[d.Qualified()] = d
	}

	po, ok := byName["processOrder"]
	if !ok {
		t.Fatalf("processOrder not found in %+v", defs)
	}
	if po.Params != 2 {
		t.Errorf("processOrder params = %d, want 2", po.Params)
	}
	if po.Line != 1 || po.EndLine != 6 {
		t.Errorf("processOrder extent = (%d,%d), want (1,6)", po.Line, po.EndLine)
	}
	if po.Branches != 1 {
		t.Errorf("processOrder branches = %d, want 1", po.Branches)
	}
	if po.Private {
		t.Error("processOrder should not be private")
	}

	fa, ok := byName["formatAmount"]
	if !ok {
		t.Fatal("formatAmount arrow function not found")
	}
	if fa.Params != 1 {
		t.Errorf("formatAmount params = %d, want 1", fa.Params)
	}

	val, ok := byName["OrderService.#validate"]
	if !ok {
		t.Fatalf("OrderService.#validate not found in %+v", defs)
	}
	if !val.Private {
		t.Error("#validate should be private")
	}
	if val.Container != "OrderService" {
		t.Errorf("container = %q, want OrderService", val.Container)
	}

	sub, ok := byName["OrderService.submit"]
	if !ok {
		t.Fatal("OrderService.submit not found")
	}
	if sub.Params != 3 {
		t.Errorf("submit params = %d, want 3", sub.Params)
	}

	if _, ok := byName["OrderService.constructor"]; ok {
		// constructor is a definition too; its presence is fine, but it must
		// carry the container
		c := byName["OrderService.constructor"]
		if c.Container != "OrderService" {
			t.Errorf("constructor container = %q", c.Container)
		}
	}
}

func TestECMAScriptScanCalls(t *testing.T) {
	src := `function run(order) {
  const total = computeTotal(order);
  logger.info(total);
  this.finish(order);
  if (total > 0) {
    return total;
  }
}
`
	s := NewECMAScriptScanner()
	calls := s.ScanCalls("run.js", []byte(src))

	type key struct {
		qualifier, name string
	}
	got := make(map[key]int, len(calls))
	for _, c := range calls {
		got[key{c.Qualifier, c.Name}] = c.Line
	}

	if line := got[key{"", "computeTotal"}]; line != 2 {
		t.Errorf("computeTotal line = %d, want 2", line)
	}
	if line := got[key{"logger", "info"}]; line != 3 {
		t.Errorf("logger.info line = %d, want 3", line)
	}
	// this-qualified calls resolve within the enclosing class, so the
	// qualifier is dropped
	if line := got[key{"", "finish"}]; line != 4 {
		t.Errorf("finish line = %d, want 4", line)
	}
	for k := range got {
		if k.name == "if" || k.name == "run" {
			t.Errorf("keyword or definition leaked into calls: %+v", k)
		}
	}
}

func TestCountParams(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a, b", 2},
		{"a, b = {x: 1, y: 2}", 2},
		{"cb: (a, b) => void, c", 2},
		{"  ", 0},
	}
	for _, tt := range tests {
		if got := countParams(tt.raw); got != tt.want {
			t.Errorf("countParams(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
