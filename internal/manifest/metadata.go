package manifest

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MetadataFile is the repo-local metadata filename.
const MetadataFile = ".ripple.yml"

// Metadata is optional repo-local metadata checked into a working copy.
// Values here augment the manifest entry: layer and components override
// when set, shared symbols are unioned.
type Metadata struct {
	Layer         string   `yaml:"layer,omitempty"`
	Components    []string `yaml:"components,omitempty"`
	SharedSymbols []string `yaml:"shared_symbols,omitempty"`
}

// LoadMetadata reads .ripple.yml from a working copy root. A missing file
// yields empty metadata, not an error; a malformed file is treated the
// same way (metadata is advisory).
func LoadMetadata(workingCopy string) Metadata {
	data, err := os.ReadFile(filepath.Join(workingCopy, MetadataFile))
	if err != nil {
		return Metadata{}
	}

	var md Metadata
	if err := yaml.Unmarshal(data, &md); err != nil {
		return Metadata{}
	}
	return md
}

// Merge applies repo-local metadata onto a manifest entry.
func (e RepoEntry) Merge(md Metadata) RepoEntry {
	if md.Layer != "" {
		e.Layer = md.Layer
	}
	if len(md.Components) > 0 {
		e.Components = md.Components
	}
	if len(md.SharedSymbols) > 0 {
		merged := append([]string(nil), e.SharedSymbols...)
		known := make(map[string]bool, len(merged))
		for _, s := range merged {
			known[s] = true
		}
		for _, s := range md.SharedSymbols {
			if !known[s] {
				merged = append(merged, s)
			}
		}
		e.SharedSymbols = merged
	}
	return e
}
