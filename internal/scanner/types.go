// Package scanner extracts import references, function definitions, and
// call-site identifiers from source files. Each language variant implements
// the same three-operation contract; adding a language means adding a
// variant, never touching the callers.
package scanner

// ImportRef is a single import/module reference found in a file.
type ImportRef struct {
	Path string // imported module path as written in source
	Line int    // 1-indexed line of the import statement
}

// FunctionDef is a function or method definition found in a file.
type FunctionDef struct {
	Name      string // function name
	Container string // qualifying type/class name, empty for free functions
	File      string // file path as given to the scanner
	Line      int    // 1-indexed start line
	EndLine   int    // 1-indexed end line (best effort for pattern variants)
	Params    int    // parameter count
	BodyLines int    // body line count
	Branches  int    // branch point count (complexity proxy)
	Private   bool   // name carries the language's private-visibility marker
}

// Qualified returns the container-qualified name, e.g. "Type.method".
func (f FunctionDef) Qualified() string {
	if f.Container == "" {
		return f.Name
	}
	return f.Container + "." + f.Name
}

// Complexity returns a cyclomatic complexity estimate.
func (f FunctionDef) Complexity() int {
	return 1 + f.Branches
}

// CallRef is a call-site identifier found in a file.
type CallRef struct {
	Name      string // called identifier
	Qualifier string // receiver/type qualifier when resolvable, else empty
	File      string // file path as given to the scanner
	Line      int    // 1-indexed line of the call site
}

// LanguageScanner is the per-language extraction contract. A variant that
// cannot parse a file fails soft: it returns empty results, never an error
// that aborts the repository scan.
type LanguageScanner interface {
	// ScanImports extracts import/module references.
	ScanImports(path string, content []byte) []ImportRef
	// ScanFunctions extracts function and method definitions.
	ScanFunctions(path string, content []byte) []FunctionDef
	// ScanCalls extracts call-site identifiers.
	ScanCalls(path string, content []byte) []CallRef
}
