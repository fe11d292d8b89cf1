// Command treeflat converts "|"-indented decision-tree forests into flat
// BFS arrays for MiniZinc.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/dgallion1/treeflat/internal/condition"
	"github.com/dgallion1/treeflat/internal/dectree"
	"github.com/spf13/cobra"
)

// globalOptions holds flags shared by every command.
type globalOptions struct {
	vocabFile string
	marker    string
	verbose   bool

	log *slog.Logger
}

func (g *globalOptions) vocabulary() (*condition.Vocabulary, error) {
	return condition.LoadFile(g.vocabFile)
}

func (g *globalOptions) levelMarker() (rune, error) {
	if utf8.RuneCountInString(g.marker) != 1 {
		return 0, fmt.Errorf("--marker must be a single character, got %q", g.marker)
	}
	r, _ := utf8.DecodeRuneInString(g.marker)
	if r == ':' || r == ' ' {
		return 0, fmt.Errorf("--marker %q collides with the edge grammar", r)
	}
	return r, nil
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:           "treeflat",
		Short:         "Flatten decision-tree forests into MiniZinc arrays",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if g.verbose {
				level = slog.LevelDebug
			}
			g.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	root.PersistentFlags().StringVar(&g.vocabFile, "vocab", "", "Vocabulary YAML file (default: built-in CPI features)")
	root.PersistentFlags().StringVar(&g.marker, "marker", string(dectree.DefaultMarker), "Level marker character")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newConvertCmd(g))
	root.AddCommand(newInspectCmd(g))
	root.AddCommand(newVocabCmd(g))
	return root
}

func main() {
	root := newRootCmd(os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "treeflat:", err)
		os.Exit(1)
	}
}
