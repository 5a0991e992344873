package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"ripple/internal/errors"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ripple.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
name = "payments"

[[repos]]
name = "billing-core"
url = "https://example.com/billing-core"
language = "python"
layer = "core"
components = ["charges", "refunds"]
shared_symbols = ["charge", "refund"]

[[repos]]
name = "billing-api"
language = "python"
layer = "api"
depends_on = ["billing-core"]
`)

	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "payments" {
		t.Errorf("name = %q", m.Name)
	}
	if len(m.Repos) != 2 {
		t.Fatalf("repos = %d, want 2", len(m.Repos))
	}

	core, ok := m.Repo("billing-core")
	if !ok {
		t.Fatal("billing-core missing")
	}
	if core.Layer != "core" {
		t.Errorf("layer = %q", core.Layer)
	}
	if !reflect.DeepEqual(core.Components, []string{"charges", "refunds"}) {
		t.Errorf("components = %v", core.Components)
	}

	api, _ := m.Repo("billing-api")
	if !reflect.DeepEqual(api.DependsOn, []string{"billing-core"}) {
		t.Errorf("depends_on = %v", api.DependsOn)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		wantErr  bool
	}{
		{
			name: "valid",
			manifest: Manifest{Repos: []RepoEntry{
				{Name: "a"}, {Name: "b", DependsOn: []string{"a"}},
			}},
		},
		{
			name: "duplicate name",
			manifest: Manifest{Repos: []RepoEntry{
				{Name: "a"}, {Name: "a"},
			}},
			wantErr: true,
		},
		{
			name: "empty name",
			manifest: Manifest{Repos: []RepoEntry{
				{Name: ""},
			}},
			wantErr: true,
		},
		{
			name: "unknown dependency",
			manifest: Manifest{Repos: []RepoEntry{
				{Name: "a", DependsOn: []string{"ghost"}},
			}},
			wantErr: true,
		},
		{
			name: "self dependency",
			manifest: Manifest{Repos: []RepoEntry{
				{Name: "a", DependsOn: []string{"a"}},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.manifest.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsCode(err, errors.ManifestInvalid) {
				t.Errorf("error code = %v, want ManifestInvalid", errors.CodeOf(err))
			}
		})
	}
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("missing manifest accepted")
	}
	if !errors.IsCode(err, errors.ManifestInvalid) {
		t.Errorf("error code = %v", errors.CodeOf(err))
	}
}

func TestSaveRoundTrip(t *testing.T) {
	m := &Manifest{
		Name: "payments",
		Repos: []RepoEntry{
			{Name: "core", Language: "python", Layer: "core"},
			{Name: "api", DependsOn: []string{"core"}},
		},
	}
	path := filepath.Join(t.TempDir(), "ripple.toml")
	if err := m.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, m) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", loaded, m)
	}
}

func TestMetadataMerge(t *testing.T) {
	dir := t.TempDir()
	yml := `layer: core
components:
  - charges
shared_symbols:
  - charge
  - refund
`
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	entry := RepoEntry{
		Name:          "billing-core",
		Layer:         "module",
		SharedSymbols: []string{"charge", "settle"},
	}
	merged := entry.Merge(LoadMetadata(dir))

	if merged.Layer != "core" {
		t.Errorf("layer = %q, want metadata override", merged.Layer)
	}
	if !reflect.DeepEqual(merged.Components, []string{"charges"}) {
		t.Errorf("components = %v", merged.Components)
	}
	if !reflect.DeepEqual(merged.SharedSymbols, []string{"charge", "settle", "refund"}) {
		t.Errorf("shared symbols = %v, want union preserving order", merged.SharedSymbols)
	}
}

func TestMetadataMissingOrMalformed(t *testing.T) {
	if md := LoadMetadata(t.TempDir()); !reflect.DeepEqual(md, Metadata{}) {
		t.Errorf("missing metadata = %+v, want zero", md)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, MetadataFile), []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if md := LoadMetadata(dir); !reflect.DeepEqual(md, Metadata{}) {
		t.Errorf("malformed metadata = %+v, want zero", md)
	}
}
