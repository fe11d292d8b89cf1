package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/treeflat/internal/flatten"
	"github.com/dgallion1/treeflat/internal/pipeline"
	"github.com/spf13/cobra"
)

type convertOptions struct {
	out     string
	prefix  string
	format  string
	workers int
}

func newConvertCmd(g *globalOptions) *cobra.Command {
	o := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a forest to feature_idx/feature_rel/feature_val/child/val arrays",
		Long: `Reads a forest (plain text, Markdown, HTML, PDF or DOCX) and writes the
five flattened arrays. With --prefix the given data file is copied ahead of
the arrays, so other solver inputs can share one .dzn.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, g, o, args)
		},
	}
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&o.prefix, "prefix", "", "Data file copied before the arrays (dzn only)")
	cmd.Flags().StringVarP(&o.format, "format", "f", string(flatten.FormatDZN), "Output format: dzn or json")
	cmd.Flags().IntVarP(&o.workers, "workers", "j", 1, "Trees converted in parallel")
	return cmd
}

func runConvert(cmd *cobra.Command, g *globalOptions, o *convertOptions, args []string) error {
	format, err := flatten.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if o.prefix != "" && format != flatten.FormatDZN {
		return fmt.Errorf("--prefix only applies to dzn output")
	}
	marker, err := g.levelMarker()
	if err != nil {
		return err
	}
	vocab, err := g.vocabulary()
	if err != nil {
		return err
	}

	text, err := readForest(cmd.InOrStdin(), args)
	if err != nil {
		return fmt.Errorf("read forest: %w", err)
	}

	conv := &pipeline.Converter{Vocab: vocab, Marker: marker, Concurrency: o.workers, Log: g.log}
	res, err := conv.Convert(cmd.Context(), text)
	if err != nil {
		return err
	}
	g.log.Info("converted", "trees", res.Arrays.NumTrees(), "width", res.Arrays.Width(), "duration", res.Duration)

	if o.out == "" {
		return writeOutput(cmd.OutOrStdout(), o.prefix, res.Arrays, format)
	}
	fh, err := os.Create(o.out)
	if err != nil {
		return err
	}
	if err := writeOutput(fh, o.prefix, res.Arrays, format); err != nil {
		fh.Close()
		return err
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("close %s: %w", o.out, err)
	}
	return nil
}

func writeOutput(w io.Writer, prefix string, a *flatten.Arrays, format flatten.Format) error {
	bw := bufio.NewWriter(w)
	if prefix != "" {
		if err := copyPrefix(bw, prefix); err != nil {
			return err
		}
	}
	if err := flatten.Write(bw, a, format); err != nil {
		return err
	}
	return bw.Flush()
}

// copyPrefix writes the prefix file followed by a blank line.
func copyPrefix(w *bufio.Writer, path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open prefix: %w", err)
	}
	defer fh.Close()
	if _, err := io.Copy(w, fh); err != nil {
		return fmt.Errorf("copy prefix: %w", err)
	}
	_, err = w.WriteString("\n")
	return err
}
