package dectree

// Node is one entry of the flattened tree, stored at BFS index - 1.
type Node struct {
	Cond  string // left-branch condition, LeafCondition for leaves
	Child int    // BFS index of the left child, 0 for leaves
	Leaf  bool
	Value int // leaf output, meaningful only when Leaf
	Line  int // source line Cond came from
}

// Skeleton is a reconstructed tree in BFS order. Node 0 is the root.
type Skeleton struct {
	Tree  int
	Nodes []Node
}

// Reconstruct rebuilds a branching tree (two or more edges) in BFS order.
// Constant predictors must be handled by the caller before reaching here.
func Reconstruct(t Tree) (Skeleton, error) {
	if len(t.Edges) < 2 {
		return Skeleton{}, &Error{
			Kind: ErrStructuralMismatch,
			Tree: t.Index,
			Msg:  "tree has no branches",
		}
	}
	if first := t.Edges[0]; first.Depth != 0 {
		return Skeleton{}, edgeError(ErrStructuralMismatch, t.Index, first, "first edge must be at depth 0, found %d", first.Depth)
	}
	for _, e := range t.Edges {
		if e.Cond == "" {
			return Skeleton{}, edgeError(ErrMalformedEdge, t.Index, e, "leaf without condition in a branching tree")
		}
	}

	if err := checkNesting(t); err != nil {
		return Skeleton{}, err
	}

	levels := t.Levels()
	cur := newLevelCursor(levels)
	nodes := make([]Node, len(t.Edges)+1)

	left, child, _ := cur.claimPair(0)
	nodes[0] = Node{Cond: left.Cond, Child: child, Line: left.Line}

	for i, level := range levels {
		for j, e := range level {
			idx := cur.bfs(i, j) - 1
			if e.Leaf {
				nodes[idx] = Node{Cond: LeafCondition, Leaf: true, Value: e.Value, Line: e.Line}
				continue
			}
			left, child, ok := cur.claimPair(i + 1)
			if !ok {
				return Skeleton{}, edgeError(ErrStructuralMismatch, t.Index, e, "internal edge at depth %d lacks two children", i)
			}
			nodes[idx] = Node{Cond: left.Cond, Child: child, Line: left.Line}
		}
	}

	for i := range levels {
		if n := cur.unclaimed(i); n > 0 {
			orphan := levels[i][len(levels[i])-n]
			return Skeleton{}, edgeError(ErrStructuralMismatch, t.Index, orphan, "%d edge(s) at depth %d have no parent", n, i)
		}
	}

	return Skeleton{Tree: t.Index, Nodes: nodes}, nil
}

// checkNesting walks the edges in document order. Every internal edge must be
// followed directly by its two branches one level deeper, each branch
// trailed by its own subtree. Per-level counts alone cannot see branches that
// sit under the wrong parent.
func checkNesting(t Tree) error {
	type open struct {
		edge     Edge
		branches int
	}
	// stack[d] is the open parent of depth-d edges; stack[0] is the root.
	stack := []open{{edge: t.Edges[0]}}

	closeTop := func() error {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.branches == 2 {
			return nil
		}
		if len(stack) == 0 {
			return edgeError(ErrStructuralMismatch, t.Index, top.edge, "root must have exactly two branches at depth 0, found %d", top.branches)
		}
		return edgeError(ErrStructuralMismatch, t.Index, top.edge, "internal edge at depth %d has %d branch(es), expected 2", top.edge.Depth, top.branches)
	}

	for _, e := range t.Edges {
		for len(stack) > e.Depth+1 {
			if err := closeTop(); err != nil {
				return err
			}
		}
		if len(stack) < e.Depth+1 {
			return edgeError(ErrStructuralMismatch, t.Index, e, "edge at depth %d does not follow an internal edge at depth %d", e.Depth, e.Depth-1)
		}
		parent := &stack[len(stack)-1]
		parent.branches++
		if parent.branches > 2 {
			return edgeError(ErrStructuralMismatch, t.Index, e, "more than two branches at depth %d", e.Depth)
		}
		if !e.Leaf {
			stack = append(stack, open{edge: e})
		}
	}
	for len(stack) > 0 {
		if err := closeTop(); err != nil {
			return err
		}
	}
	return nil
}
