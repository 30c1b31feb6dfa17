package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/relcheck"
	"github.com/rlch/relcheck/dataset"
	"github.com/rlch/relcheck/runner"
)

func evalCommand() *cli.Command {
	return &cli.Command{
		Name:      "eval",
		Usage:     "Run CSV datasets of queries and their expected corrections",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format (dots, verbose, json, pretty, tui; default: tui on a terminal, dots otherwise)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "cases evaluated at once (default: GOMAXPROCS)",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "stop on first failed or rejected case",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: `only run cases matching an expression, e.g. 'line > 10 && statement contains "KNOWS"'`,
			},
			&cli.StringFlag{
				Name:  "rewrite",
				Usage: "how corrections are applied (span, all-occurrences)",
			},
		},
		Action: runEval,
	}
}

func runEval(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		args = []string{"."}
	}

	cases, err := dataset.Load(args)
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

	format := firstNonEmpty(cmd.String("format"), cfgString(cfg, func(c *relcheck.Config) string { return c.Eval.Format }))
	if format == "" {
		format = runner.FormatDots
		if runner.IsTerminal(os.Stdout) {
			format = runner.FormatTUI
		}
	}

	workers := int(cmd.Int("workers"))
	if workers == 0 && cfg != nil {
		workers = cfg.Eval.Workers
	}

	// Filter up front so the TUI only lists cases that will run.
	cases, err = runner.Select(cmd.String("run"), cases)
	if err != nil {
		return err
	}

	var formatHandler runner.Handler

	if format == runner.FormatTUI {
		tuiHandler := runner.NewTUIHandler(os.Stdout, os.Stderr, cases)

		err := tuiHandler.Start()
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}

		formatHandler = tuiHandler
	} else {
		formatter, err := runner.NewFormatter(format, os.Stdout)
		if err != nil {
			return err
		}

		formatHandler = runner.NewFormatHandler(formatter, os.Stderr)
	}

	logger.Debug("evaluating",
		zap.Int("cases", len(cases)),
		zap.String("format", format),
		zap.Int("workers", workers),
		zap.Stringer("rewrite", mode),
	)

	r := runner.New(
		runner.WithHandler(formatHandler),
		runner.WithFailFast(cmd.Bool("fail-fast")),
		runner.WithWorkers(workers),
		runner.WithLogger(logger),
		runner.WithRewriteMode(mode),
	)

	result, runErr := r.RunByFile(ctx, cases)

	if summarizer, ok := formatHandler.(runner.Summarizer); ok {
		_ = summarizer.Summary(result)
	}

	if runErr != nil {
		return runErr
	}

	if !result.Ok() {
		return cli.Exit("", 1)
	}

	return nil
}
