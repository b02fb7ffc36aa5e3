// Package bundle describes the distributable kdash directory and assembles it.
//
// The manifest names the binaries and the data payload (source -> destination)
// that must sit next to them. Assembly is a plain directory copy.
package bundle

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the default manifest name in the bundle root.
const ManifestFile = "bundle.yaml"

// Manifest describes a bundle.
type Manifest struct {
	Name       string `yaml:"name"`
	Identifier string `yaml:"identifier"`
	Icon       string `yaml:"icon,omitempty"`
	// Entry is the binary users start.
	Entry string `yaml:"entry"`
	// Server is the binary Entry starts.
	Server string    `yaml:"server"`
	Data   []Mapping `yaml:"data"`
}

// Mapping copies Source, relative to the bundle root, to Dest in the output.
type Mapping struct {
	Source string `yaml:"source"`
	Dest   string `yaml:"dest"`
}

// Default returns the manifest used when no bundle.yaml exists.
func Default() *Manifest {
	return &Manifest{
		Name:       "kdash",
		Identifier: "io.kdash.dashboard",
		Icon:       "assets/icon.png",
		Entry:      "kdash-launch",
		Server:     "kdash",
		Data: []Mapping{
			{Source: "corpus", Dest: "corpus"},
			{Source: "config", Dest: "config"},
			{Source: "assets", Dest: "assets"},
			{Source: "summary_cache.json", Dest: "summary_cache.json"},
			{Source: "manuals_index.json", Dest: "manuals_index.json"},
		},
	}
}

// Load reads a manifest. A missing file yields Default.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // User-specified manifest path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

// Validate checks that the manifest is usable.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return errors.New("name is required")
	}
	if m.Identifier == "" {
		return errors.New("identifier is required")
	}
	for field, p := range map[string]string{"entry": m.Entry, "server": m.Server} {
		if p == "" {
			return fmt.Errorf("%s is required", field)
		}
		if !filepath.IsLocal(p) {
			return fmt.Errorf("%s %q must be a relative path inside the bundle", field, p)
		}
	}
	if m.Icon != "" && !filepath.IsLocal(m.Icon) {
		return fmt.Errorf("icon %q must be a relative path inside the bundle", m.Icon)
	}
	seen := map[string]bool{
		filepath.Clean(m.Entry):  true,
		filepath.Clean(m.Server): true,
	}
	for i, d := range m.Data {
		if d.Source == "" || d.Dest == "" {
			return fmt.Errorf("data %d: source and dest are required", i)
		}
		if !filepath.IsLocal(d.Source) {
			return fmt.Errorf("data %d: source %q must be a relative path inside the root", i, d.Source)
		}
		if !filepath.IsLocal(d.Dest) {
			return fmt.Errorf("data %d: dest %q must be a relative path inside the bundle", i, d.Dest)
		}
		dest := filepath.Clean(d.Dest)
		if seen[dest] {
			return fmt.Errorf("data %d: duplicate dest %q", i, d.Dest)
		}
		seen[dest] = true
	}
	return nil
}

// Verify returns the data sources missing under root, in manifest order.
func (m *Manifest) Verify(root string) []string {
	var missing []string
	for _, d := range m.Data {
		if _, err := os.Stat(filepath.Join(root, d.Source)); err != nil {
			missing = append(missing, d.Source)
		}
	}
	return missing
}
