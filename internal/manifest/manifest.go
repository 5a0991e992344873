// Package manifest is the declared-dependency source: it loads the
// multi-repository registry (ripple.toml) and per-repository metadata
// (.ripple.yml found inside a working copy).
package manifest

import (
	"os"

	"github.com/BurntSushi/toml"

	"ripple/internal/errors"
)

// Manifest is the multi-repository registry stored in ripple.toml.
type Manifest struct {
	// Name identifies the ecosystem
	Name string `toml:"name"`

	// Repos is the list of known repositories
	Repos []RepoEntry `toml:"repos"`
}

// RepoEntry describes one repository in the manifest.
type RepoEntry struct {
	// Name is the unique repository key
	Name string `toml:"name"`

	// URL is the source location
	URL string `toml:"url,omitempty"`

	// Language is the primary language
	Language string `toml:"language,omitempty"`

	// Path is the local working copy, when one is available to scan
	Path string `toml:"path,omitempty"`

	// Layer is the architectural layer tag used for inference
	Layer string `toml:"layer,omitempty"`

	// Components are the declared logical components, in order
	Components []string `toml:"components,omitempty"`

	// DependsOn lists repository names this repository depends on
	DependsOn []string `toml:"depends_on,omitempty"`

	// SharedSymbols are function names this repository exposes for
	// cross-repository call resolution
	SharedSymbols []string `toml:"shared_symbols,omitempty"`
}

// Load reads a manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ManifestInvalid, "cannot read manifest", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ManifestInvalid, "cannot parse manifest", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks structural invariants: unique names, dependencies that
// name known repositories, no self-dependencies.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Repos))
	for _, r := range m.Repos {
		if r.Name == "" {
			return errors.New(errors.ManifestInvalid, "repository with empty name")
		}
		if seen[r.Name] {
			return errors.Newf(errors.ManifestInvalid, "duplicate repository %q", r.Name)
		}
		seen[r.Name] = true
	}
	for _, r := range m.Repos {
		for _, dep := range r.DependsOn {
			if dep == r.Name {
				return errors.Newf(errors.ManifestInvalid, "repository %q depends on itself", r.Name)
			}
			if !seen[dep] {
				return errors.Newf(errors.ManifestInvalid, "repository %q depends on unknown %q", r.Name, dep)
			}
		}
	}
	return nil
}

// Repo returns the entry for a name.
func (m *Manifest) Repo(name string) (RepoEntry, bool) {
	for _, r := range m.Repos {
		if r.Name == name {
			return r, true
		}
	}
	return RepoEntry{}, false
}

// Save writes the manifest to path.
func (m *Manifest) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(m)
}
