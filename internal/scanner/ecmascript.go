package scanner

import (
	"regexp"
	"strings"
)

// ECMAScriptScanner is the pattern-based variant covering the
// JavaScript/TypeScript family (.js, .jsx, .ts, .tsx). It trades precision
// for speed and zero parsing dependencies: extraction is regular-expression
// driven with a brace-depth pass to recover function extents.
type ECMAScriptScanner struct{}

// NewECMAScriptScanner creates a scanner for the ECMAScript family.
func NewECMAScriptScanner() *ECMAScriptScanner {
	return &ECMAScriptScanner{}
}

var (
	esImportFrom = regexp.MustCompile(`import\s+(?:[\w${},*\s]+\s+from\s+)?['"]([^'"]+)['"]`)
	esExportFrom = regexp.MustCompile(`export\s+[\w${},*\s]+\s+from\s+['"]([^'"]+)['"]`)
	esRequire    = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)

	esFuncDecl  = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([\w$#]+)\s*\(([^)]*)\)`)
	esArrowDecl = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([\w$#]+)\s*(?::[^=]+)?=\s*(?:async\s+)?\(([^)]*)\)\s*(?::[^=]+)?=>`)
	esMethodDef = regexp.MustCompile(`^\s*(?:public\s+|private\s+|protected\s+|static\s+|async\s+)*([\w$#]+)\s*\(([^)]*)\)\s*(?::\s*[\w$<>,.\[\]\s|]+)?\s*\{`)
	esClassDecl = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([\w$]+)`)

	esCallSite = regexp.MustCompile(`(?:([\w$]+)\s*\.\s*)?([\w$#]+)\s*\(`)

	esBranchKeywords = regexp.MustCompile(`\b(if|for|while|case|catch)\b`)
)

// esReserved are identifiers that look like calls but are not.
var esReserved = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "function": true, "typeof": true, "new": true,
	"await": true, "async": true, "else": true, "do": true, "constructor": false,
	"import": true, "export": true, "super": true,
}

// ScanImports extracts ES module imports, re-exports, and CommonJS requires.
func (s *ECMAScriptScanner) ScanImports(path string, content []byte) []ImportRef {
	var refs []ImportRef
	for i, line := range strings.Split(string(content), "\n") {
		for _, re := range []*regexp.Regexp{esImportFrom, esExportFrom, esRequire} {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				refs = append(refs, ImportRef{Path: m[1], Line: i + 1})
			}
		}
	}
	return refs
}

// esOpenFunc tracks a function whose closing brace has not been seen yet.
type esOpenFunc struct {
	index int // index into the result slice
	depth int // brace depth at which the function body opened
}

// ScanFunctions extracts function declarations, arrow functions bound to
// const/let/var, and class methods. End lines are recovered by tracking
// brace depth; an arrow function with an expression body spans one line.
func (s *ECMAScriptScanner) ScanFunctions(path string, content []byte) []FunctionDef {
	var defs []FunctionDef
	var open []esOpenFunc

	depth := 0
	currentClass := ""
	classDepth := -1

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lineNum := i + 1

		if m := esClassDecl.FindStringSubmatch(line); m != nil {
			currentClass = m[1]
			classDepth = depth
		}

		var def *FunctionDef
		if m := esFuncDecl.FindStringSubmatch(line); m != nil {
			def = &FunctionDef{
				Name:   m[1],
				File:   path,
				Line:   lineNum,
				Params: countParams(m[2]),
			}
		} else if m := esArrowDecl.FindStringSubmatch(line); m != nil {
			def = &FunctionDef{
				Name:   m[1],
				File:   path,
				Line:   lineNum,
				Params: countParams(m[2]),
			}
		} else if currentClass != "" && depth == classDepth+1 {
			if m := esMethodDef.FindStringSubmatch(line); m != nil && !esReserved[m[1]] {
				def = &FunctionDef{
					Name:      m[1],
					Container: currentClass,
					File:      path,
					Line:      lineNum,
					Params:    countParams(m[2]),
				}
			}
		}

		if def != nil {
			def.EndLine = lineNum
			def.Private = strings.HasPrefix(def.Name, "_") || strings.HasPrefix(def.Name, "#")
			defs = append(defs, *def)
			if strings.Contains(line, "{") {
				open = append(open, esOpenFunc{index: len(defs) - 1, depth: depth})
			}
		}

		// Attribute branch points to the innermost open function.
		if len(open) > 0 {
			defs[open[len(open)-1].index].Branches += len(esBranchKeywords.FindAllString(line, -1))
		}

		depth += strings.Count(line, "{") - strings.Count(line, "}")

		// Close functions whose body depth has unwound.
		for len(open) > 0 && depth <= open[len(open)-1].depth {
			idx := open[len(open)-1].index
			defs[idx].EndLine = lineNum
			defs[idx].BodyLines = lineNum - defs[idx].Line + 1
			open = open[:len(open)-1]
		}
		if classDepth >= 0 && depth <= classDepth {
			currentClass = ""
			classDepth = -1
		}
	}

	// File ended with unterminated bodies; close them at EOF.
	for _, o := range open {
		defs[o.index].EndLine = len(lines)
		defs[o.index].BodyLines = len(lines) - defs[o.index].Line + 1
	}
	for i := range defs {
		if defs[i].BodyLines == 0 {
			defs[i].BodyLines = 1
		}
	}

	return defs
}

// ScanCalls extracts call-site identifiers, skipping keywords and
// definition sites.
func (s *ECMAScriptScanner) ScanCalls(path string, content []byte) []CallRef {
	var calls []CallRef
	for i, line := range strings.Split(string(content), "\n") {
		for _, m := range esCallSite.FindAllStringSubmatch(line, -1) {
			qualifier, name := m[1], m[2]
			if esReserved[name] || esReserved[qualifier] {
				continue
			}
			// Skip definitions: "function name(" and "name(...) {" method
			// headers are caught by the definition scan, but a call regex
			// cannot tell a method header from a call, so only the obvious
			// "function " prefix is filtered here. The resolver drops
			// self-edges.
			if strings.Contains(line, "function "+name) || strings.Contains(line, "function* "+name) {
				continue
			}
			if qualifier == "this" {
				qualifier = ""
			}
			calls = append(calls, CallRef{
				Name:      name,
				Qualifier: qualifier,
				File:      path,
				Line:      i + 1,
			})
		}
	}
	return calls
}

// countParams counts comma-separated parameters in a raw parameter list.
func countParams(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	depth := 0
	count := 1
	for _, r := range raw {
		switch r {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case ',':
			if depth == 0 {
				count++
			}
		}
	}
	return count
}
