package main

import (
	"fmt"
	"io"

	"github.com/dgallion1/treeflat/internal/dectree"
	"github.com/spf13/cobra"
)

func newInspectCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show each tree's depth levels and BFS numbering",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			marker, err := g.levelMarker()
			if err != nil {
				return err
			}
			text, err := readForest(cmd.InOrStdin(), args)
			if err != nil {
				return fmt.Errorf("read forest: %w", err)
			}
			forest, err := dectree.ParseForest(text, marker)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d trees, %d edges\n", len(forest), forest.NumEdges())
			for _, t := range forest {
				writeTree(out, t)
			}
			return nil
		},
	}
}

func writeTree(out io.Writer, t dectree.Tree) {
	if t.IsConstant() {
		fmt.Fprintf(out, "\ntree %d: constant %d\n", t.Index+1, t.Edges[0].Value)
		return
	}
	levels := t.Levels()
	numbers := dectree.Number(levels)
	fmt.Fprintf(out, "\ntree %d: %d edges, %d levels, %d nodes\n", t.Index+1, len(t.Edges), len(levels), len(t.Edges)+1)
	for i, level := range levels {
		fmt.Fprintf(out, "  depth %d:\n", i)
		for j, e := range level {
			kind := "split"
			if e.Leaf {
				kind = fmt.Sprintf("leaf=%d", e.Value)
			}
			fmt.Fprintf(out, "    #%-3d line %-4d %-8s %s\n", numbers[i][j], e.Line, kind, e.Cond)
		}
	}
}
