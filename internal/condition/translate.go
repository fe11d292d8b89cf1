package condition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/treeflat/internal/dectree"
)

// Triple is a translated condition. Threshold keeps the learner's decimal
// text verbatim so no precision is lost on the way to the solver.
type Triple struct {
	Feature   int
	Relation  Relation
	Threshold string
}

// IsLeaf reports whether t is the leaf sentinel triple.
func (t Triple) IsLeaf() bool { return t.Relation == Leaf }

// LeafTriple is what a leaf condition translates to.
var LeafTriple = Triple{Feature: -1, Relation: Leaf, Threshold: "-1"}

// Translate maps condition text to a triple. Unknown names or operators are
// errors; they mean the learner and the vocabulary disagree.
func (v *Vocabulary) Translate(cond string) (Triple, error) {
	fields := strings.Fields(cond)
	if len(fields) == 1 && fields[0] == dectree.LeafCondition {
		return LeafTriple, nil
	}
	if len(fields) != 3 {
		return Triple{}, fmt.Errorf("%w: expected \"<feature> <op> <threshold>\", got %q", dectree.ErrMalformedEdge, cond)
	}

	feature, ok := v.Feature(fields[0])
	if !ok {
		return Triple{}, fmt.Errorf("%w: %q", dectree.ErrUnknownFeature, fields[0])
	}
	rel, ok := v.Relation(fields[1])
	if !ok {
		return Triple{}, fmt.Errorf("%w: %q", dectree.ErrUnknownRelation, fields[1])
	}
	if _, err := strconv.ParseFloat(fields[2], 64); err != nil {
		return Triple{}, fmt.Errorf("%w: threshold %q is not a number", dectree.ErrMalformedEdge, fields[2])
	}

	return Triple{Feature: feature, Relation: rel, Threshold: fields[2]}, nil
}

// Render turns a triple back into condition text with canonical spacing.
func (v *Vocabulary) Render(t Triple) (string, error) {
	if t.IsLeaf() {
		return dectree.LeafCondition, nil
	}
	name, ok := v.FeatureName(t.Feature)
	if !ok {
		return "", fmt.Errorf("%w: id %d", dectree.ErrUnknownFeature, t.Feature)
	}
	if !t.Relation.Valid() {
		return "", fmt.Errorf("%w: %q", dectree.ErrUnknownRelation, t.Relation)
	}
	return name + " " + t.Relation.Op() + " " + t.Threshold, nil
}
