// Package cli implements the docsight command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsight/docsight/internal/config"
	"github.com/docsight/docsight/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global CLI flags.
type rootOptions struct {
	configPath string
}

// NewRootCommand creates the root command with all global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "docsight",
		Short: "Annotation resolution and cross-view state synchronization engine",
		Long: "docsight indexes document analysis findings into positioned annotations,\n" +
			"coordinates highlight and card navigation across views, and persists\n" +
			"per-document view state including scroll positions.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file path (default: environment only)")

	cmd.AddCommand(
		newServeCommand(opts),
		newResolveCommand(),
		newSegmentCommand(),
		newStateCommand(opts),
		newVersionCommand(),
	)
	return cmd
}

// loadConfig resolves configuration from the given file, or from the
// environment when no file is named.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.Load(o.configPath)
	}
	return config.LoadFromEnv()
}

// buildLogger constructs the configured logger and installs it as the
// process default.
func buildLogger(cfg *config.Config) (logging.Logger, error) {
	log, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(log)
	return log, nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}
