package flatten

import (
	"context"
	"fmt"

	"github.com/dgallion1/treeflat/internal/condition"
	"github.com/dgallion1/treeflat/internal/dectree"
	"golang.org/x/sync/errgroup"
)

// ConvertTree flattens one tree. A constant predictor is emitted directly;
// everything else is reconstructed in BFS order and translated node by node.
func ConvertTree(t dectree.Tree, vocab *condition.Vocabulary) (TreeArrays, error) {
	switch {
	case t.IsConstant():
		return constantTree(t.Edges[0].Value), nil
	case len(t.Edges) == 1:
		e := t.Edges[0]
		return TreeArrays{}, dectree.Annotate(fmt.Errorf("single-edge tree must be a depth-0 leaf"), t.Index, e)
	}

	skel, err := dectree.Reconstruct(t)
	if err != nil {
		return TreeArrays{}, err
	}

	out := newTreeArrays(len(skel.Nodes))
	for i, n := range skel.Nodes {
		edge, _ := t.EdgeAt(n.Line)
		tr, err := vocab.Translate(n.Cond)
		if err != nil {
			return TreeArrays{}, dectree.Annotate(err, t.Index, edge)
		}
		if tr.IsLeaf() != n.Leaf {
			return TreeArrays{}, dectree.Annotate(fmt.Errorf("condition %q is reserved for leaves", n.Cond), t.Index, edge)
		}

		out.Feature[i] = tr.Feature
		out.Relation[i] = tr.Relation
		out.Threshold[i] = tr.Threshold
		if n.Leaf {
			out.Child[i] = LeafSentinel.Child
			out.Value[i] = n.Value
		} else {
			out.Child[i] = n.Child
			out.Value[i] = LeafSentinel.Value
		}
	}
	return out, nil
}

func constantTree(value int) TreeArrays {
	out := newTreeArrays(1)
	out.Feature[0] = LeafSentinel.Feature
	out.Relation[0] = LeafSentinel.Relation
	out.Threshold[0] = LeafSentinel.Threshold
	out.Child[0] = LeafSentinel.Child
	out.Value[0] = value
	return out
}

// Options controls forest conversion.
type Options struct {
	// Concurrency bounds how many trees convert at once. Values below 2
	// convert sequentially.
	Concurrency int
}

// ConvertForest converts every tree and assembles the padded arrays. Any
// failing tree fails the whole forest. A failure does not stop sibling
// trees, so the lowest-indexed failure is reported whatever the scheduling.
func ConvertForest(ctx context.Context, forest dectree.Forest, vocab *condition.Vocabulary, opts Options) (*Arrays, error) {
	if len(forest) == 0 {
		return nil, &dectree.Error{Kind: dectree.ErrEmptyForest, Tree: -1}
	}

	trees := make([]TreeArrays, len(forest))
	errs := make([]error, len(forest))

	var g errgroup.Group
	g.SetLimit(max(opts.Concurrency, 1))
	for i, t := range forest {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := ConvertTree(t, vocab)
			if err != nil {
				errs[i] = dectree.WithTree(err, t.Index)
				return errs[i]
			}
			trees[i] = out
			return nil
		})
	}
	waitErr := g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if waitErr != nil {
		return nil, waitErr
	}

	var asm Assembler
	for _, t := range trees {
		asm.Add(t)
	}
	return asm.Arrays(), nil
}
