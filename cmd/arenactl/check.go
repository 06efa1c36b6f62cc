package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file|url>",
		Short: "Build a document with every driver and verify each tree",
		Long: `The check command builds the same document with each construction driver
and verifies the structural invariants of every resulting tree. It exits
with an error if any driver fails.

Example:
  arenactl check index.html
  arenactl check https://example.com --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
}

// CheckResult is the outcome of building with one driver.
type CheckResult struct {
	Driver      string `json:"driver"`
	OK          bool   `json:"ok"`
	Nodes       int    `json:"nodes"`
	ParseErrors int    `json:"parse_errors"`
	Error       string `json:"error,omitempty"`
}

func runCheck(ctx context.Context, w io.Writer, location string) error {
	res, err := load(ctx, location)
	if err != nil {
		return err
	}

	results := make([]CheckResult, 0, len(drivers))
	failed := 0
	for _, driver := range drivers {
		cr := CheckResult{Driver: driver}
		result, _, err := build(ctx, res, buildOptions{driver: driver, scripting: true})
		if err != nil {
			cr.Error = err.Error()
			failed++
		} else {
			cr.OK = true
			cr.Nodes = result.Arena.Len()
			cr.ParseErrors = len(result.Errors)
		}
		results = append(results, cr)
	}

	if jsonOut {
		if err := printJSON(w, results); err != nil {
			return err
		}
	} else {
		for _, cr := range results {
			if cr.OK {
				fmt.Fprintf(w, "%-8s ok      %d nodes, %d parse errors\n", cr.Driver, cr.Nodes, cr.ParseErrors)
			} else {
				fmt.Fprintf(w, "%-8s FAILED  %s\n", cr.Driver, cr.Error)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d drivers failed", failed, len(drivers))
	}
	return nil
}
