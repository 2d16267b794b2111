package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/snow-ghost/planner/core"
)

// File is the on-disk layout of a catalog.
type File struct {
	Exercises []core.Exercise `yaml:"exercises"`
}

// Loader reads catalogs from YAML files.
type Loader struct {
	path string
}

// NewLoader creates a loader. An empty path falls back to $CATALOG_PATH, then catalog.yaml.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the file the loader reads and writes.
func (l *Loader) Path() string {
	if l.path != "" {
		return l.path
	}
	if p := os.Getenv("CATALOG_PATH"); p != "" {
		return p
	}
	return "catalog.yaml"
}

// Load reads the catalog file. A missing file yields the built-in catalog.
func (l *Loader) Load() (*Catalog, error) {
	path := l.Path()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses a YAML catalog.
func LoadBytes(data []byte) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if len(f.Exercises) == 0 {
		return nil, fmt.Errorf("catalog has no exercises")
	}
	return New(f.Exercises)
}

// Save writes c to the loader's path.
func (l *Loader) Save(c *Catalog) error {
	path := l.Path()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	data, err := yaml.Marshal(File{Exercises: c.Records()})
	if err != nil {
		return fmt.Errorf("failed to marshal catalog YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}
