package dectree

// Levels buckets the tree's edges by depth, 0..max depth. Order within a
// level is document order, which is what BFS numbering relies on.
func (t Tree) Levels() [][]Edge {
	maxDepth := 0
	for _, e := range t.Edges {
		if e.Depth > maxDepth {
			maxDepth = e.Depth
		}
	}

	levels := make([][]Edge, maxDepth+1)
	for _, e := range t.Edges {
		levels[e.Depth] = append(levels[e.Depth], e)
	}
	return levels
}

// IsConstant reports whether the tree is a single depth-0 leaf, i.e. a
// predictor with no decision at all.
func (t Tree) IsConstant() bool {
	return len(t.Edges) == 1 && t.Edges[0].Depth == 0 && t.Edges[0].Leaf
}

// levelCursor owns BFS numbering and child claiming for one tree. The root
// is index 1 and is never numbered; the first edge of level 0 is index 2.
type levelCursor struct {
	levels [][]Edge
	first  []int // BFS index of each level's first edge
	next   []int // next unclaimed position within each level
}

func newLevelCursor(levels [][]Edge) *levelCursor {
	c := &levelCursor{
		levels: levels,
		first:  make([]int, len(levels)),
		next:   make([]int, len(levels)),
	}
	bfs := 2
	for i, level := range levels {
		c.first[i] = bfs
		bfs += len(level)
	}
	return c
}

func (c *levelCursor) bfs(level, pos int) int {
	return c.first[level] + pos
}

// claimPair consumes the next two unclaimed edges at level and returns the
// first (the true branch) together with its BFS index.
func (c *levelCursor) claimPair(level int) (Edge, int, bool) {
	if level >= len(c.levels) {
		return Edge{}, 0, false
	}
	pos := c.next[level]
	if pos+2 > len(c.levels[level]) {
		return Edge{}, 0, false
	}
	c.next[level] += 2
	return c.levels[level][pos], c.bfs(level, pos), true
}

func (c *levelCursor) unclaimed(level int) int {
	return len(c.levels[level]) - c.next[level]
}

// Number returns the BFS index of every edge, laid out like levels.
func Number(levels [][]Edge) [][]int {
	c := newLevelCursor(levels)
	out := make([][]int, len(levels))
	for i, level := range levels {
		out[i] = make([]int, len(level))
		for j := range level {
			out[i][j] = c.bfs(i, j)
		}
	}
	return out
}
