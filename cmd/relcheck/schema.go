package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/relcheck"
	"github.com/rlch/relcheck/analysis"
	"github.com/rlch/relcheck/databases/neo4j"
)

// Schema command errors.
var (
	ErrNoConnectionURI = errors.New("no connection URI specified (use --uri or neo4j.uri in .relcheck.yaml)")
)

// schemaFlags select where a command reads its schema from.
func schemaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "schema",
			Aliases: []string{"s"},
			Usage:   "path to schema yaml file (default: schema in .relcheck.yaml)",
		},
		&cli.StringFlag{
			Name:    "edges",
			Aliases: []string{"e"},
			Usage:   `inline schema, e.g. "(Person,WORKS_AT,Organization),(Person,KNOWS,Person)"; added to --schema or --source when given`,
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: "schema source (file, neo4j)",
		},
	}
}

// neo4jFlags configure the neo4j schema source.
func neo4jFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "uri",
			Usage:   "neo4j connection URI",
			Sources: cli.EnvVars("RELCHECK_NEO4J_URI"),
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "neo4j username",
			Sources: cli.EnvVars("RELCHECK_NEO4J_USER"),
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "neo4j password",
			Sources: cli.EnvVars("RELCHECK_NEO4J_PASS"),
		},
		&cli.StringFlag{
			Name:    "database",
			Aliases: []string{"d"},
			Usage:   "neo4j database name",
		},
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Write a schema file, introspected from neo4j by default",
		Flags: append(append(schemaFlags(), neo4jFlags()...),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file (default: stdout)",
			},
		),
		Action: runSchema,
	}
}

func runSchema(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	schema, err := resolveSchema(ctx, cmd, cfg, neo4j.Name)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout

	if out := cmd.String("out"); out != "" {
		f, err := os.Create(filepath.Clean(out))
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()

		w = f
	}

	if err := analysis.WriteSchema(w, schema); err != nil {
		return fmt.Errorf("writing schema: %w", err)
	}

	logger.Info("wrote schema",
		zap.Int("edges", schema.Len()),
		zap.Int("classes", len(schema.Classes())),
		zap.Int("relationships", len(schema.Relationships())),
	)

	return nil
}

// resolveSchema loads the schema named by the flags. The source is
// --source, then defaultSource. Inline --edges alone are the whole schema;
// with --schema or --source they extend the loaded one.
func resolveSchema(ctx context.Context, cmd *cli.Command, cfg *relcheck.Config, defaultSource string) (*analysis.Schema, error) {
	var inline *analysis.Schema

	if edges := cmd.String("edges"); edges != "" {
		var err error

		inline, err = analysis.ParseSchemaString(edges)
		if err != nil {
			return nil, err
		}

		if cmd.String("schema") == "" && cmd.String("source") == "" {
			return inline, nil
		}
	}

	name := firstNonEmpty(cmd.String("source"), defaultSource)

	// An explicit --schema path always means the file source.
	if cmd.String("schema") != "" {
		name = relcheck.SourceFile
	}

	var srcCfg any

	switch name {
	case relcheck.SourceFile:
		path := firstNonEmpty(cmd.String("schema"), cfgString(cfg, (*relcheck.Config).SchemaPath))
		if path == "" {
			return nil, relcheck.ErrNoSchema
		}

		srcCfg = path
	case neo4j.Name:
		neo4jCfg, err := neo4jConfig(cmd, cfg)
		if err != nil {
			return nil, err
		}

		srcCfg = neo4jCfg
	default:
		srcCfg = cfg
	}

	src, err := relcheck.NewSource(name, srcCfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	schema, err := relcheck.LoadSchema(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	logger.Debug("loaded schema", zap.String("source", name), zap.Int("edges", schema.Len()))

	if inline != nil {
		schema = analysis.MergeSchemas(schema, inline)
	}

	return schema, nil
}

// neo4jConfig merges connection flags over the config's neo4j section.
func neo4jConfig(cmd *cli.Command, cfg *relcheck.Config) (*relcheck.Neo4jConfig, error) {
	neo4jCfg := &relcheck.Neo4jConfig{}
	if cfg != nil && cfg.Neo4j != nil {
		c := *cfg.Neo4j
		neo4jCfg = &c
	}

	if uri := cmd.String("uri"); uri != "" {
		neo4jCfg.URI = uri
	}

	if username := cmd.String("username"); username != "" {
		neo4jCfg.Username = username
	}

	if password := cmd.String("password"); password != "" {
		neo4jCfg.Password = password
	}

	if database := cmd.String("database"); database != "" {
		neo4jCfg.Database = database
	}

	if neo4jCfg.URI == "" {
		return nil, ErrNoConnectionURI
	}

	return neo4jCfg, nil
}
