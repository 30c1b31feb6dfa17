package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rlch/relcheck"
)

// loadConfig loads --config, or the nearest config above the working
// directory. A missing config is not an error; nil is returned.
func loadConfig(cmd *cli.Command) (*relcheck.Config, error) {
	if path := cmd.String("config"); path != "" {
		cfg, err := relcheck.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}

		return cfg, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}

	cfg, err := relcheck.LoadConfig(cwd)
	if errors.Is(err, relcheck.ErrConfigNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger.Debug("loaded config", zap.String("dir", cfg.Dir()))

	return cfg, nil
}

// rewriteMode resolves --rewrite, then the config, then span.
func rewriteMode(cmd *cli.Command, cfg *relcheck.Config) (relcheck.RewriteMode, error) {
	if name := cmd.String("rewrite"); name != "" {
		return relcheck.ParseRewriteMode(name)
	}

	if cfg != nil {
		return cfg.RewriteMode()
	}

	return relcheck.RewriteSpan, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func cfgString(cfg *relcheck.Config, getter func(*relcheck.Config) string) string {
	if cfg == nil {
		return ""
	}

	return getter(cfg)
}
