package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrisuehlinger/domarena/internal/logger"
)

var (
	// Global flags
	verbose      bool
	jsonOut      bool
	logLevel     string
	charsetLabel string
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "arenactl",
	Short: "Build and inspect arena-backed HTML document trees",
	Long: `arenactl loads an HTML document from a file, a file://, http(s):// or data:
URL, builds it into a node arena with one of the construction drivers and
reports on the resulting tree and its structural invariants.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&charsetLabel, "charset", "", "Decode input with this encoding label instead of sniffing")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP request timeout")
}

func initLogging(out io.Writer) {
	level := logger.ParseLevel(logLevel)
	if verbose && logLevel == "" {
		level = slog.LevelDebug
	}
	logger.Init(logger.Options{
		Enabled: verbose || logLevel != "",
		Output:  out,
		Level:   level,
		JSON:    jsonOut,
	})
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// printJSON outputs data as indented JSON
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
