package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dgallion1/docmark/internal/conversion"
	"github.com/dgallion1/docmark/internal/parser"
	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"
)

var errCommentsLost = errors.New("comments were lost")

var roundtripQuiet bool

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip <glob>...",
	Short: "Load and serialize documents, reporting any difference",
	Long: `roundtrip loads every file matching the given doublestar globs (for example
"docs/**/*.md"), serializes it again and prints a diff against the parsed
input. It fails if any comment did not survive.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandGlobs(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no supported files match %v", args)
		}

		ok := color.New(color.FgGreen).SprintFunc()
		bad := color.New(color.FgRed, color.Bold).SprintFunc()
		failed := 0
		for _, path := range files {
			res, err := roundtrip(path)
			if err != nil {
				fmt.Printf("%s %s: %v\n", bad("ERR "), path, err)
				failed++
				continue
			}
			if res.lost() {
				fmt.Printf("%s %s: %d of %d comments lost\n", bad("LOST"), path, len(res.before)-len(res.after), len(res.before))
				failed++
			} else {
				fmt.Printf("%s %s (%d comments)\n", ok("OK  "), path, len(res.before))
			}
			if !roundtripQuiet && res.input != res.output {
				fmt.Println(colorDiff(res.input, res.output))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files: %w", failed, len(files), errCommentsLost)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(roundtripCmd)
	roundtripCmd.Flags().BoolVarP(&roundtripQuiet, "quiet", "q", false, "Do not print diffs")
}

// expandGlobs resolves patterns to the sorted, de-duplicated list of
// supported files they match.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || !parser.IsSupportedExtension(m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	slices.Sort(files)
	return files, nil
}

type roundtripResult struct {
	input, output string
	before, after []string
}

func (r roundtripResult) lost() bool {
	return !slices.Equal(r.before, r.after)
}

// roundtrip renders the parsed file directly and through the editor.
func roundtrip(path string) (roundtripResult, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		return roundtripResult{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return roundtripResult{}, err
	}
	nodes, err := p.Parse(f, path)
	f.Close()
	if err != nil {
		return roundtripResult{}, err
	}
	input, err := conversion.Render(nodes)
	if err != nil {
		return roundtripResult{}, err
	}

	ed, err := loadFile(path)
	if err != nil {
		return roundtripResult{}, err
	}
	output, err := ed.Data()
	if err != nil {
		return roundtripResult{}, err
	}
	reparsed, err := parser.FragmentString(output)
	if err != nil {
		return roundtripResult{}, err
	}

	return roundtripResult{
		input:  input,
		output: output,
		before: commentData(nodes),
		after:  commentData(reparsed),
	}, nil
}

func commentData(nodes []*html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode {
			out = append(out, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

func colorDiff(a, b string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(a, b, false))

	del := color.New(color.FgRed).SprintFunc()
	ins := color.New(color.FgGreen).SprintFunc()
	var buf strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			buf.WriteString(del("[-" + d.Text + "-]"))
		case diffmatchpatch.DiffInsert:
			buf.WriteString(ins("{+" + d.Text + "+}"))
		default:
			buf.WriteString(d.Text)
		}
	}
	return buf.String()
}
