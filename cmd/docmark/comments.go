package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgallion1/docmark/internal/comment"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var commentsJSON bool

var commentsCmd = &cobra.Command{
	Use:   "comments <file>",
	Short: "List the comments preserved in a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := loadFile(args[0])
		if err != nil {
			return err
		}
		comments := comment.List(ed.Document())

		if commentsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(comments)
		}

		name := color.New(color.FgCyan).SprintFunc()
		for _, c := range comments {
			fmt.Printf("%s %v %q\n", name(c.Name), c.Path, c.Content)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commentsCmd)
	commentsCmd.Flags().BoolVar(&commentsJSON, "json", false, "Output in JSON format")
}
