package flatten

import "github.com/dgallion1/treeflat/internal/condition"

// Array names, in output order.
const (
	NameFeature   = "feature_idx"
	NameRelation  = "feature_rel"
	NameThreshold = "feature_val"
	NameChild     = "child"
	NameValue     = "val"
)

// Sentinel is the fill value for each of the five arrays.
type Sentinel struct {
	Feature   int
	Relation  condition.Relation
	Threshold string
	Child     int
	Value     int
}

var (
	// LeafSentinel fills the branch fields of real leaves and the value
	// field of internal nodes.
	LeafSentinel = Sentinel{
		Feature:   condition.LeafTriple.Feature,
		Relation:  condition.LeafTriple.Relation,
		Threshold: condition.LeafTriple.Threshold,
		Child:     -1,
		Value:     -1,
	}
	// DummySentinel fills positions past the end of a shorter tree.
	DummySentinel = Sentinel{
		Feature:   -2,
		Relation:  condition.Dummy,
		Threshold: "-2",
		Child:     -2,
		Value:     -2,
	}
)

// TreeArrays is one tree flattened into five parallel arrays indexed by
// BFS index - 1.
type TreeArrays struct {
	Feature   []int
	Relation  []condition.Relation
	Threshold []string
	Child     []int
	Value     []int
}

func newTreeArrays(n int) TreeArrays {
	return TreeArrays{
		Feature:   make([]int, n),
		Relation:  make([]condition.Relation, n),
		Threshold: make([]string, n),
		Child:     make([]int, n),
		Value:     make([]int, n),
	}
}

// Len returns the node count.
func (t TreeArrays) Len() int { return len(t.Feature) }

// Arrays is the rectangular forest output, one row per tree.
type Arrays struct {
	Feature   [][]int                `json:"feature_idx"`
	Relation  [][]condition.Relation `json:"feature_rel"`
	Threshold [][]string             `json:"feature_val"`
	Child     [][]int                `json:"child"`
	Value     [][]int                `json:"val"`

	// Nodes holds each tree's real node count before padding.
	Nodes []int `json:"nodes"`
}

// NumTrees returns the row count.
func (a *Arrays) NumTrees() int { return len(a.Nodes) }

// Width returns the padded row length, 0 for an empty forest.
func (a *Arrays) Width() int {
	if len(a.Feature) == 0 {
		return 0
	}
	return len(a.Feature[0])
}
