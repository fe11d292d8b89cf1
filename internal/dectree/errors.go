package dectree

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every conversion failure unwraps to exactly one of these.
var (
	ErrMalformedEdge      = errors.New("malformed edge")
	ErrUnknownFeature     = errors.New("unknown feature")
	ErrUnknownRelation    = errors.New("unknown relation")
	ErrStructuralMismatch = errors.New("structural mismatch")
	ErrEmptyForest        = errors.New("empty forest")
)

// Error identifies the tree and edge a failure came from.
type Error struct {
	Kind error
	Tree int    // 0-based tree index within the forest, -1 if unknown
	Line int    // 1-based source line, 0 if not tied to one edge
	Text string // offending edge text
	Msg  string
}

func (e *Error) Error() string {
	s := e.Kind.Error()
	if e.Tree >= 0 {
		s = fmt.Sprintf("tree %d: %s", e.Tree+1, s)
	}
	if e.Line > 0 {
		s += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Text != "" {
		s += fmt.Sprintf(" (%q)", e.Text)
	}
	return s
}

func (e *Error) Unwrap() error { return e.Kind }

func edgeError(kind error, tree int, edge Edge, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Tree: tree,
		Line: edge.Line,
		Text: edge.Raw,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// WithTree returns err tagged with a tree index if it is an *Error that has
// none yet. Other errors are returned unchanged.
func WithTree(err error, tree int) error {
	var e *Error
	if errors.As(err, &e) && e.Tree < 0 {
		cp := *e
		cp.Tree = tree
		return &cp
	}
	return err
}

// Annotate attaches tree and edge position to an error that wraps one of the
// kinds above. Errors of no known kind are reported as malformed edges.
func Annotate(err error, tree int, edge Edge) error {
	kind := ErrMalformedEdge
	for _, k := range []error{ErrUnknownFeature, ErrUnknownRelation, ErrStructuralMismatch} {
		if errors.Is(err, k) {
			kind = k
			break
		}
	}
	return &Error{
		Kind: kind,
		Tree: tree,
		Line: edge.Line,
		Text: edge.Raw,
		Msg:  strings.TrimPrefix(err.Error(), kind.Error()+": "),
	}
}
