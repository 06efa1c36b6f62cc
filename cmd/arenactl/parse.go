package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var parseOpts buildOptions

func init() {
	cmd := newParseCmd()
	cmd.Flags().StringVar(&parseOpts.driver, "driver", "stream", "Construction driver: replay or stream")
	cmd.Flags().StringVar(&parseOpts.fragment, "fragment", "", "Parse as a fragment inside this context element (replay driver)")
	cmd.Flags().BoolVar(&parseOpts.scripting, "scripting", true, "Parse noscript as if scripting were enabled (replay driver)")
	rootCmd.AddCommand(cmd)
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file|url>",
		Short: "Build a document tree and summarize it",
		Long: `The parse command loads a document, builds it with the selected driver,
verifies the tree's structural invariants and prints a summary: node counts
by kind, maximum depth, detached roots, quirks mode and parse errors.

Example:
  arenactl parse index.html
  arenactl parse https://example.com --driver replay --json
  arenactl parse 'data:text/html,<td>x' --driver replay --fragment tr`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), cmd.OutOrStdout(), args[0], parseOpts)
		},
	}
}

func runParse(ctx context.Context, w io.Writer, location string, opts buildOptions) error {
	res, err := load(ctx, location)
	if err != nil {
		return err
	}
	result, encoding, err := build(ctx, res, opts)
	if err != nil {
		return err
	}
	summary, err := summarize(result)
	if err != nil {
		return err
	}
	summary.Location = location
	summary.Driver = opts.driver
	summary.Encoding = encoding

	if jsonOut {
		return printJSON(w, summary)
	}
	printSummary(w, summary)
	return nil
}

func printSummary(w io.Writer, s *Summary) {
	fmt.Fprintf(w, "Location:     %s\n", s.Location)
	fmt.Fprintf(w, "Driver:       %s\n", s.Driver)
	fmt.Fprintf(w, "Encoding:     %s\n", s.Encoding)
	fmt.Fprintf(w, "Quirks mode:  %s\n", s.Quirks)
	fmt.Fprintf(w, "Nodes:        %d\n", s.Nodes)
	for _, kind := range sortedKeys(s.Kinds) {
		fmt.Fprintf(w, "  %-24s %d\n", kind, s.Kinds[kind])
	}
	fmt.Fprintf(w, "Max depth:    %d\n", s.MaxDepth)
	fmt.Fprintf(w, "Orphans:      %d\n", s.Orphans)
	fmt.Fprintf(w, "Parse errors: %d\n", len(s.ParseErrors))
	if verbose {
		for _, msg := range s.ParseErrors {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
		fmt.Fprintf(w, "Session:      %s\n", s.Session)
	}
}
