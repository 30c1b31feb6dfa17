package relcheck

import (
	"context"
	"fmt"
	"slices"

	"github.com/rlch/relcheck/analysis"
)

// SchemaSource supplies schema edges, e.g. from a file or a live database.
type SchemaSource interface {
	// Name returns the source identifier (e.g., "file", "neo4j").
	Name() string

	// Edges returns every allowed (source, relationship, target) triple.
	Edges(ctx context.Context) ([]analysis.Edge, error)

	// Close releases any resources held by the source.
	Close() error
}

// SourceFactory creates a SchemaSource from configuration.
type SourceFactory func(cfg any) (SchemaSource, error)

var sources = make(map[string]SourceFactory)

// RegisterSource registers a schema source factory by name.
func RegisterSource(name string, factory SourceFactory) {
	sources[name] = factory
}

// NewSource creates a schema source by name.
func NewSource(name string, cfg any) (SchemaSource, error) { //nolint:ireturn
	factory, ok := sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}

	return factory(cfg)
}

// RegisteredSources returns the names of all registered sources, sorted.
func RegisteredSources() []string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// LoadSchema reads every edge from src into a Schema.
func LoadSchema(ctx context.Context, src SchemaSource) (*analysis.Schema, error) {
	edges, err := src.Edges(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}

	schema := analysis.NewSchema(edges...)
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}

	return schema, nil
}

// SourceFile is the name of the built-in YAML file source.
const SourceFile = "file"

// FileSource reads edges from a YAML schema file.
type FileSource struct {
	Path string
}

// Name returns "file".
func (f *FileSource) Name() string {
	return SourceFile
}

// Edges loads the file on every call.
func (f *FileSource) Edges(ctx context.Context) ([]analysis.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema, err := analysis.LoadSchema(f.Path, "")
	if err != nil {
		return nil, err
	}

	return schema.Edges(), nil
}

// Close is a no-op.
func (f *FileSource) Close() error {
	return nil
}

//nolint:gochecknoinits // Source self-registration pattern
func init() {
	RegisterSource(SourceFile, func(cfg any) (SchemaSource, error) {
		switch c := cfg.(type) {
		case string:
			return &FileSource{Path: c}, nil
		case *Config:
			if c.SchemaPath() == "" {
				return nil, ErrNoSchema
			}

			return &FileSource{Path: c.SchemaPath()}, nil
		default:
			return nil, fmt.Errorf("file source: expected path or *Config, got %T", cfg)
		}
	})
}
