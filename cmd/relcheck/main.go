// Command relcheck validates and corrects relationship directions in Cypher
// queries against a graph schema.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

func main() {
	cmd := &cli.Command{
		Name:  "relcheck",
		Usage: "Check Cypher relationship directions against a schema",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("RELCHECK_DEBUG"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "config file (default: nearest .relcheck.yaml)",
			},
		},
		Before: setupLogging,
		After: func(_ context.Context, _ *cli.Command) error {
			_ = logger.Sync()

			return nil
		},
		Commands: []*cli.Command{
			fixCommand(),
			evalCommand(),
			schemaCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "relcheck: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging logs to stderr, since stdout carries query and schema output.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if cmd.Bool("debug") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	l, err := config.Build()
	if err != nil {
		return ctx, fmt.Errorf("building logger: %w", err)
	}

	logger = l

	return ctx, nil
}
