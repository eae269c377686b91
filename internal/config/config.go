// Package config loads the assembly search-path manifest that
// pkg/cilrun registers as candidates with the resolver's loader (the
// resolver itself does not call the loader while resolving a type
// reference). Grounded on the teacher's
// use of github.com/goccy/go-yaml for its own config file format.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Manifest is the on-disk cilrun.yaml shape: a map from assembly
// identity ("Name, Version=X.Y.Z.W") to a file path, plus host-bridge
// tuning knobs.
type Manifest struct {
	// AssemblyPaths maps "Name" or "Name, Version=X.Y.Z.W" to a path
	// on disk where that assembly image can be mmap-loaded.
	AssemblyPaths map[string]string `yaml:"assemblies"`

	// VerifySignatures enables the pkcs7-based Authenticode/strong-name
	// check in internal/resolver/signature.go. Advisory only: a failed
	// or absent signature never blocks loading.
	VerifySignatures bool `yaml:"verifySignatures"`

	// TraceInstructions, when true, makes the CLI print a per-
	// instruction trace line to stderr as it runs.
	TraceInstructions bool `yaml:"traceInstructions"`
}

// Load reads and parses a manifest file. A missing file is not an
// error — it yields an empty manifest, since the resolver can operate
// purely off host-bridged primitives with no manifest at all.
func Load(path string) (*Manifest, error) {
	m := &Manifest{AssemblyPaths: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if m.AssemblyPaths == nil {
		m.AssemblyPaths = map[string]string{}
	}
	return m, nil
}

// Save writes the manifest back out as YAML.
func Save(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
