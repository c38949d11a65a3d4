package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsight/docsight/internal/app"
)

// newStateCommand groups view state maintenance operations.
func newStateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Maintain persisted per-document view state",
	}
	cmd.AddCommand(newStateClearCommand(opts))
	return cmd
}

// newStateClearCommand removes every persisted view state record from the
// configured backend.
func newStateClearCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all persisted view state records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log, err := buildLogger(cfg)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			a.Store().Clear(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "view state cleared (backend: %s)\n", cfg.Store.Backend)
			return nil
		},
	}
}
