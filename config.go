package relcheck

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the .relcheck.yaml configuration file.
type Config struct {
	// Schema is the default schema file, relative to the config file.
	Schema string `yaml:"schema,omitempty"`

	// Rewrite selects how corrections are applied: "span" or "all-occurrences".
	Rewrite string `yaml:"rewrite,omitempty"`

	// Neo4j connection used by the neo4j schema source.
	Neo4j *Neo4jConfig `yaml:"neo4j,omitempty"`

	// Eval holds defaults for the eval command.
	Eval EvalConfig `yaml:"eval,omitempty"`

	// dir is the directory the config was loaded from.
	dir string
}

// Neo4jConfig holds Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Database string `yaml:"database,omitempty"`
}

// EvalConfig holds settings for the eval command.
type EvalConfig struct {
	// Workers bounds concurrent case evaluation. Zero means GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`

	// Format is the output format (dots, verbose, json, pretty, tui).
	Format string `yaml:"format,omitempty"`
}

// Dir returns the directory containing the loaded config file.
func (c *Config) Dir() string {
	return c.dir
}

// SchemaPath returns the configured schema file resolved against the config
// directory, or empty if none is configured.
func (c *Config) SchemaPath() string {
	if c.Schema == "" || filepath.IsAbs(c.Schema) {
		return c.Schema
	}

	return filepath.Join(c.dir, c.Schema)
}

// RewriteMode parses the configured rewrite mode. Empty means RewriteSpan.
func (c *Config) RewriteMode() (RewriteMode, error) {
	if c.Rewrite == "" {
		return RewriteSpan, nil
	}

	return ParseRewriteMode(c.Rewrite)
}

// DefaultConfigNames are the filenames we search for.
var DefaultConfigNames = []string{".relcheck.yaml", ".relcheck.yml", "relcheck.yaml", "relcheck.yml"}

// LoadConfig finds and loads the nearest .relcheck.yaml walking up from dir.
func LoadConfig(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}

	return LoadConfigFile(path)
}

// FindConfig walks up from dir looking for a config file.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range DefaultConfigNames {
			path := filepath.Join(dir, name)

			_, err := os.Stat(path)
			if err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}

		dir = parent
	}
}

// LoadConfigFile loads a config from a specific path.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.dir = filepath.Dir(path)

	if _, err := cfg.RewriteMode(); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return &cfg, nil
}
