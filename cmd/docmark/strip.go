package main

import (
	"fmt"

	"github.com/dgallion1/docmark/internal/comment"
	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/spf13/cobra"
)

var stripCmd = &cobra.Command{
	Use:   "strip <file>",
	Short: "Print a document with every comment removed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := loadFile(args[0])
		if err != nil {
			return err
		}
		var n int
		err = ed.Document().Change(func(w *doctree.Writer) error {
			var err error
			n, err = comment.RemoveAll(w)
			return err
		})
		if err != nil {
			return fmt.Errorf("strip comments: %w", err)
		}
		if v := comment.CheckInvariant(ed.Document()); len(v) > 0 {
			return fmt.Errorf("strip left inconsistent comments: %v", v)
		}
		logger.Info("stripped comments", "file", args[0], "count", n)

		out, err := ed.Data()
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stripCmd)
}
