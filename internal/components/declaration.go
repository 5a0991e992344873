// Package components reads per-repository COMPONENTS.toml declarations:
// the ordered list of logical components a repository exposes, used to
// enrich repository nodes beyond what the manifest carries.
package components

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// DeclarationFile is the default filename for component declarations.
const DeclarationFile = "COMPONENTS.toml"

// Declaration represents one declared component.
type Declaration struct {
	// Name is the component identifier
	Name string `toml:"name"`

	// Path is the repo-relative path to the component root
	Path string `toml:"path,omitempty"`

	// Responsibility is a one-line description
	Responsibility string `toml:"responsibility,omitempty"`

	// Owner is an owner reference (e.g. @team-name)
	Owner string `toml:"owner,omitempty"`
}

// File is the parsed COMPONENTS.toml.
type File struct {
	Components []Declaration `toml:"components"`
}

// Load reads COMPONENTS.toml from a working copy root. A missing file
// yields an empty declaration set; a malformed file is an error the
// caller may downgrade to a diagnostic.
func Load(workingCopy string) (*File, error) {
	data, err := os.ReadFile(filepath.Join(workingCopy, DeclarationFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, err
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Names returns the declared component names in declaration order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Components))
	for _, c := range f.Components {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}
