//go:build cgo

package scanner

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
)

// TreeSitterScanner is the precise-grammar variant: it parses a full syntax
// tree via tree-sitter and extracts imports, definitions, and call sites
// from typed nodes. Requires CGO; non-CGO builds get the fail-soft stub.
type TreeSitterScanner struct {
	lang Language
}

// Language selects a tree-sitter grammar.
type Language string

const (
	// LangPython selects the Python grammar
	LangPython Language = "python"
	// LangGo selects the Go grammar
	LangGo Language = "go"
)

// NewTreeSitterScanner creates a precise scanner for the given language.
func NewTreeSitterScanner(lang Language) *TreeSitterScanner {
	return &TreeSitterScanner{lang: lang}
}

// Available reports whether precise scanning is compiled in.
func Available() bool { return true }

func (s *TreeSitterScanner) parse(content []byte) *sitter.Node {
	parser := sitter.NewParser()
	switch s.lang {
	case LangPython:
		parser.SetLanguage(python.GetLanguage())
	case LangGo:
		parser.SetLanguage(golang.GetLanguage())
	default:
		return nil
	}
	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil {
		// Fail soft: a file the grammar rejects yields empty results.
		return nil
	}
	return tree.RootNode()
}

// ScanImports extracts import statements.
func (s *TreeSitterScanner) ScanImports(path string, content []byte) []ImportRef {
	root := s.parse(content)
	if root == nil {
		return nil
	}

	var refs []ImportRef
	walk(root, func(n *sitter.Node) {
		switch s.lang {
		case LangPython:
			switch n.Type() {
			case "import_statement":
				for i := 0; i < int(n.NamedChildCount()); i++ {
					child := n.NamedChild(i)
					if child.Type() == "dotted_name" || child.Type() == "aliased_import" {
						name := child
						if child.Type() == "aliased_import" {
							name = child.ChildByFieldName("name")
						}
						if name != nil {
							refs = append(refs, ImportRef{
								Path: name.Content(content),
								Line: int(n.StartPoint().Row) + 1,
							})
						}
					}
				}
			case "import_from_statement":
				if mod := n.ChildByFieldName("module_name"); mod != nil {
					refs = append(refs, ImportRef{
						Path: mod.Content(content),
						Line: int(n.StartPoint().Row) + 1,
					})
				}
			}
		case LangGo:
			if n.Type() == "import_spec" {
				if p := n.ChildByFieldName("path"); p != nil {
					refs = append(refs, ImportRef{
						Path: strings.Trim(p.Content(content), `"`),
						Line: int(p.StartPoint().Row) + 1,
					})
				}
			}
		}
	})
	return refs
}

// ScanFunctions extracts function and method definitions with parameter
// counts, body extents, and branch counts.
func (s *TreeSitterScanner) ScanFunctions(path string, content []byte) []FunctionDef {
	root := s.parse(content)
	if root == nil {
		return nil
	}

	var defs []FunctionDef
	walk(root, func(n *sitter.Node) {
		switch s.lang {
		case LangPython:
			if n.Type() == "function_definition" {
				defs = append(defs, s.pythonFunction(n, path, content))
			}
		case LangGo:
			if n.Type() == "function_declaration" || n.Type() == "method_declaration" {
				defs = append(defs, s.goFunction(n, path, content))
			}
		}
	})
	return defs
}

func (s *TreeSitterScanner) pythonFunction(n *sitter.Node, path string, content []byte) FunctionDef {
	name := ""
	if nn := n.ChildByFieldName("name"); nn != nil {
		name = nn.Content(content)
	}

	params := 0
	if pl := n.ChildByFieldName("parameters"); pl != nil {
		params = int(pl.NamedChildCount())
	}

	// Dunder names are protocol hooks, not private helpers.
	private := strings.HasPrefix(name, "_") && !strings.HasPrefix(name, "__")

	return FunctionDef{
		Name:      name,
		Container: enclosingPythonClass(n, content),
		File:      path,
		Line:      int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		Params:    params,
		BodyLines: int(n.EndPoint().Row) - int(n.StartPoint().Row) + 1,
		Branches:  countBranches(n, pythonBranchTypes),
		Private:   private,
	}
}

func (s *TreeSitterScanner) goFunction(n *sitter.Node, path string, content []byte) FunctionDef {
	name := ""
	if nn := n.ChildByFieldName("name"); nn != nil {
		name = nn.Content(content)
	}

	container := ""
	if n.Type() == "method_declaration" {
		if recv := n.ChildByFieldName("receiver"); recv != nil {
			container = goReceiverType(recv, content)
		}
	}

	params := 0
	if pl := n.ChildByFieldName("parameters"); pl != nil {
		for i := 0; i < int(pl.NamedChildCount()); i++ {
			decl := pl.NamedChild(i)
			names := 0
			for j := 0; j < int(decl.NamedChildCount()); j++ {
				if decl.NamedChild(j).Type() == "identifier" {
					names++
				}
			}
			if names == 0 {
				names = 1 // unnamed parameter
			}
			params += names
		}
	}

	private := name != "" && name[0] >= 'a' && name[0] <= 'z'

	return FunctionDef{
		Name:      name,
		Container: container,
		File:      path,
		Line:      int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
		Params:    params,
		BodyLines: int(n.EndPoint().Row) - int(n.StartPoint().Row) + 1,
		Branches:  countBranches(n, goBranchTypes),
		Private:   private,
	}
}

// ScanCalls extracts call-site identifiers. Attribute calls on self (Python)
// are qualified with the enclosing class so the resolver can prefer an
// exact (type, name) match.
func (s *TreeSitterScanner) ScanCalls(path string, content []byte) []CallRef {
	root := s.parse(content)
	if root == nil {
		return nil
	}

	var calls []CallRef
	walk(root, func(n *sitter.Node) {
		switch s.lang {
		case LangPython:
			if n.Type() != "call" {
				return
			}
			fn := n.ChildByFieldName("function")
			if fn == nil {
				return
			}
			switch fn.Type() {
			case "identifier":
				calls = append(calls, CallRef{
					Name: fn.Content(content),
					File: path,
					Line: int(n.StartPoint().Row) + 1,
				})
			case "attribute":
				attr := fn.ChildByFieldName("attribute")
				obj := fn.ChildByFieldName("object")
				if attr == nil {
					return
				}
				qualifier := ""
				if obj != nil && obj.Type() == "identifier" {
					qualifier = obj.Content(content)
					if qualifier == "self" || qualifier == "cls" {
						qualifier = enclosingPythonClass(n, content)
					}
				}
				calls = append(calls, CallRef{
					Name:      attr.Content(content),
					Qualifier: qualifier,
					File:      path,
					Line:      int(n.StartPoint().Row) + 1,
				})
			}
		case LangGo:
			if n.Type() != "call_expression" {
				return
			}
			fn := n.ChildByFieldName("function")
			if fn == nil {
				return
			}
			switch fn.Type() {
			case "identifier":
				calls = append(calls, CallRef{
					Name: fn.Content(content),
					File: path,
					Line: int(n.StartPoint().Row) + 1,
				})
			case "selector_expression":
				field := fn.ChildByFieldName("field")
				operand := fn.ChildByFieldName("operand")
				if field == nil {
					return
				}
				qualifier := ""
				if operand != nil && operand.Type() == "identifier" {
					qualifier = operand.Content(content)
				}
				calls = append(calls, CallRef{
					Name:      field.Content(content),
					Qualifier: qualifier,
					File:      path,
					Line:      int(n.StartPoint().Row) + 1,
				})
			}
		}
	})
	return calls
}

var pythonBranchTypes = map[string]bool{
	"if_statement":     true,
	"elif_clause":      true,
	"for_statement":    true,
	"while_statement":  true,
	"except_clause":    true,
	"boolean_operator": true,
	"case_clause":      true,
}

var goBranchTypes = map[string]bool{
	"if_statement":       true,
	"for_statement":      true,
	"expression_case":    true,
	"type_case":          true,
	"communication_case": true,
}

// countBranches counts branch-point nodes inside a definition, excluding
// nested function definitions.
func countBranches(fn *sitter.Node, branchTypes map[string]bool) int {
	count := 0
	var rec func(n *sitter.Node, top bool)
	rec = func(n *sitter.Node, top bool) {
		if !top {
			switch n.Type() {
			case "function_definition", "function_declaration", "method_declaration", "func_literal", "lambda":
				return
			}
			if branchTypes[n.Type()] {
				count++
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			rec(n.NamedChild(i), false)
		}
	}
	rec(fn, true)
	return count
}

// enclosingPythonClass walks up to the nearest class_definition.
func enclosingPythonClass(n *sitter.Node, content []byte) string {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "class_definition" {
			if name := p.ChildByFieldName("name"); name != nil {
				return name.Content(content)
			}
		}
	}
	return ""
}

// goReceiverType extracts the receiver type name from a method receiver,
// stripping pointer and generic decoration.
func goReceiverType(recv *sitter.Node, content []byte) string {
	text := recv.Content(content)
	text = strings.Trim(text, "()")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	typ := fields[len(fields)-1]
	typ = strings.TrimPrefix(typ, "*")
	if i := strings.Index(typ, "["); i > 0 {
		typ = typ[:i]
	}
	return typ
}

// walk visits every node in the tree in document order.
func walk(root *sitter.Node, visit func(*sitter.Node)) {
	if root == nil {
		return
	}
	visit(root)
	for i := 0; i < int(root.ChildCount()); i++ {
		walk(root.Child(i), visit)
	}
}
