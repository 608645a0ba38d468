package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/docmark/internal/comment"
	"github.com/dgallion1/docmark/internal/editor"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	noColor bool

	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "docmark",
	Short: "Load, edit and serialize documents without losing HTML comments",
	Long: `docmark parses HTML, Markdown, text and CSV documents into an editable
model that keeps every HTML comment anchored where it was written.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		out := os.Stdout
		if noColor || !(isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())) {
			color.NoColor = true
		}
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// loadFile opens path in a new editor with comment preservation installed.
func loadFile(path string) (*editor.Editor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ed, err := editor.New(logger.With("file", path), &comment.Plugin{})
	if err != nil {
		return nil, err
	}
	if err := ed.LoadFile(f, path); err != nil {
		return nil, err
	}
	return ed, nil
}
