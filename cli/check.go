package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ByLCY/boxsolver/layout"
)

// errUnsolved makes check exit non-zero.
var errUnsolved = errors.New("unsolved conditions")

func newCheckCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Solve a document and report unsatisfied conditions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.merge(cmd, configFromContext(cmd.Context()))
			return runCheck(cmd.Context(), cmd.OutOrStdout(), args[0], &opts)
		},
	}
	addLayoutFlags(cmd, &opts)
	return cmd
}

func runCheck(ctx context.Context, w io.Writer, input string, opts *renderOpts) error {
	result, _, err := build(ctx, input, opts)
	if err != nil {
		return err
	}
	writeReport(w, result)
	if n := result.Unsolved(); n > 0 {
		return fmt.Errorf("%s: %d %w", input, n, errUnsolved)
	}
	return nil
}

func writeReport(w io.Writer, result *layout.Result) {
	for i, p := range result.Pages {
		fmt.Fprintf(w, "page %d: %d/%d passed\n", i+1, p.Score.Passed, p.Score.Total)
		for _, f := range p.Score.Failures {
			fmt.Fprintf(w, "  FAIL %s\n", f)
		}
	}
}
