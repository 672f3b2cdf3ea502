package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/textops/config"
	"github.com/jonwraymond/textops/secret"
)

// readConfig reads --config, or returns the defaults when it is unset.
// Secret references are left unresolved.
func readConfig(cmd *cobra.Command) (config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), "", nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	return cfg, filepath.Dir(path), nil
}

// loadConfig is readConfig plus secret resolution relative to the config
// file's directory.
func loadConfig(ctx context.Context, cmd *cobra.Command) (config.Config, error) {
	cfg, dir, err := readConfig(cmd)
	if err != nil {
		return config.Config{}, err
	}

	resolver := secret.DefaultResolver(dir)
	defer func() { _ = resolver.Close() }()
	if err := cfg.Resolve(ctx, resolver); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
