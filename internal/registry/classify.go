package registry

import (
	"strings"

	"ripple/internal/scanner"
)

// helperKeywords are name fragments that mark widely reused utility code.
var helperKeywords = []string{
	"helper", "util", "internal", "validate", "parse", "format",
}

// helperMaxBodyLines and helperMaxParams bound the "short utility" rule:
// a function shorter than 10 body lines taking fewer than 3 parameters is
// classified as a helper regardless of its name.
const (
	helperMaxBodyLines = 10
	helperMaxParams    = 3
)

// IsHelper classifies a function definition as a helper: low-visibility
// utility code whose change is higher risk because its callers are numerous
// and untracked. Pure function of the definition; thresholds live here so
// they can be tuned and tested in isolation from graph traversal.
func IsHelper(def scanner.FunctionDef) bool {
	if def.Private {
		return true
	}

	lower := strings.ToLower(def.Name)
	for _, kw := range helperKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return def.BodyLines < helperMaxBodyLines && def.Params < helperMaxParams
}
