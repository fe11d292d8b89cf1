package condition

// Relation is the comparison tag the solver model branches on.
type Relation string

const (
	LT Relation = "LT"
	LE Relation = "LE"
	GT Relation = "GT"
	GE Relation = "GE"
	EQ Relation = "EQ"

	// Leaf marks a leaf node's relation slot.
	Leaf Relation = "LEAF"
	// Dummy marks a slot that only exists because of forest padding.
	Dummy Relation = "DUM"
)

// Op returns the canonical operator token for r, or "" for the sentinels.
func (r Relation) Op() string {
	switch r {
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	case EQ:
		return "="
	}
	return ""
}

// Valid reports whether r is a real comparison (not a sentinel).
func (r Relation) Valid() bool {
	return r.Op() != ""
}
