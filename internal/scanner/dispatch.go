package scanner

import (
	"path/filepath"
	"strings"
)

// Dispatcher selects a language variant by file extension, resolved once
// at scan time. Variants are registered at construction; adding a language
// is a registration, not a modification of existing variants or callers.
type Dispatcher struct {
	byExt map[string]LanguageScanner
}

// NewDispatcher creates a dispatcher with the default variant set:
// tree-sitter for Python and Go, pattern-based for the ECMAScript family.
func NewDispatcher() *Dispatcher {
	es := NewECMAScriptScanner()
	d := &Dispatcher{byExt: map[string]LanguageScanner{}}
	d.Register(NewTreeSitterScanner(LangPython), ".py")
	d.Register(NewTreeSitterScanner(LangGo), ".go")
	d.Register(es, ".js", ".jsx", ".mjs", ".ts", ".tsx")
	return d
}

// Register maps extensions to a variant. Later registrations win.
func (d *Dispatcher) Register(s LanguageScanner, exts ...string) {
	for _, ext := range exts {
		d.byExt[strings.ToLower(ext)] = s
	}
}

// ForFile returns the variant for a path, or false if the extension is
// not handled.
func (d *Dispatcher) ForFile(path string) (LanguageScanner, bool) {
	s, ok := d.byExt[strings.ToLower(filepath.Ext(path))]
	return s, ok
}

// Extensions returns the registered extensions (unordered).
func (d *Dispatcher) Extensions() []string {
	exts := make([]string, 0, len(d.byExt))
	for ext := range d.byExt {
		exts = append(exts, ext)
	}
	return exts
}
