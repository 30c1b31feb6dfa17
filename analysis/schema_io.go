package analysis

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// yamlSchema is the YAML representation of Schema.
type yamlSchema struct {
	Edges []Edge `yaml:"edges"`
}

// LoadSchema loads a Schema from a YAML file.
// The path can be absolute or relative to baseDir.
func LoadSchema(path, baseDir string) (*Schema, error) {
	if path == "" {
		return nil, nil
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	defer f.Close()

	return ReadSchema(f)
}

// ReadSchema decodes a YAML schema document.
func ReadSchema(r io.Reader) (*Schema, error) {
	var ys yamlSchema
	if err := yaml.NewDecoder(r).Decode(&ys); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}

	s := NewSchema(ys.Edges...)
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}

	return s, nil
}

// WriteSchema writes a Schema as YAML to the given writer.
func WriteSchema(w io.Writer, schema *Schema) (err error) {
	ys := &yamlSchema{Edges: schema.Edges()}
	if ys.Edges == nil {
		ys.Edges = []Edge{}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer func() {
		if cerr := encoder.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return encoder.Encode(ys)
}

// MergeSchemas concatenates the edges of every schema, in order.
func MergeSchemas(schemas ...*Schema) *Schema {
	var edges []Edge
	for _, s := range schemas {
		edges = append(edges, s.Edges()...)
	}

	return NewSchema(edges...)
}
