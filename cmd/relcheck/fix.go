package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rlch/relcheck"
)

// Fix command errors.
var (
	ErrNoQuery = errors.New("no query given (pass it as an argument or on stdin)")
)

func fixCommand() *cli.Command {
	return &cli.Command{
		Name:      "fix",
		Usage:     "Correct relationship directions in a query",
		ArgsUsage: "[query]",
		Description: "Reads the query from the arguments, or stdin when none are given, " +
			"and prints it with every reversible direction corrected. " +
			"Exits 1 when a pattern cannot be reconciled with the schema.",
		Flags: append(append(schemaFlags(), neo4jFlags()...),
			&cli.StringFlag{
				Name:  "rewrite",
				Usage: "how corrections are applied (span, all-occurrences)",
			},
			&cli.BoolFlag{
				Name:  "explain",
				Usage: "print the verdict for every matched pattern to stderr",
			},
		),
		Action: runFix,
	}
}

func runFix(ctx context.Context, cmd *cli.Command) error {
	query, err := readQuery(cmd.Args().Slice(), os.Stdin)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	mode, err := rewriteMode(cmd, cfg)
	if err != nil {
		return err
	}

	schema, err := resolveSchema(ctx, cmd, cfg, relcheck.SourceFile)
	if err != nil {
		return err
	}

	engine := relcheck.NewEngine(schema,
		relcheck.WithLogger(logger),
		relcheck.WithRewriteMode(mode),
	)
	report := engine.Process(query)

	if cmd.Bool("explain") {
		for _, o := range report.Outcomes() {
			fmt.Fprintln(os.Stderr, o.String())
		}
	}

	if !report.OK() {
		for _, pass := range report.Passes {
			for _, o := range pass.Failures() {
				fmt.Fprintf(os.Stderr, "error: %v\n", o.Err())
			}
		}

		return cli.Exit("", 1)
	}

	fmt.Fprintln(os.Stdout, report.Query)

	return nil
}

// readQuery joins args into a query, or reads stdin when there are none.
// A single trailing newline from stdin is dropped.
func readQuery(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	query := strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
	if strings.TrimSpace(query) == "" {
		return "", ErrNoQuery
	}

	return query, nil
}
