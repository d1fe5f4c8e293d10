// Package cli implements the boxsolver command-line interface.
//
// Commands:
//   - render: lay out a .box document and write PDF, PNG or layout JSON
//   - check: lay out a document and fail when conditions remain unsolved
//
// Settings come from boxsolver.toml (or --config) and are overridden by flags.
// A charmbracelet/log logger travels in the command context; -v switches it
// to debug level.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the boxsolver CLI.
func Execute() error {
	return newRootCmd(os.Stderr).ExecuteContext(context.Background())
}

// newRootCmd builds the command tree; logs go to logOut.
func newRootCmd(logOut io.Writer) *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "boxsolver",
		Short:        "Constraint-based box layout for documents",
		Long:         `boxsolver lays out boxes with alignment, float and fit conditions and renders the solved pages to PDF or PNG.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			logger := newLogger(logOut, cfg.logLevel(verbose))
			if configPath != "" {
				logger.Debug("已加载配置", "path", configPath)
			}
			ctx := withLogger(cmd.Context(), logger)
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./boxsolver.toml if present)")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newCheckCmd())
	return root
}
