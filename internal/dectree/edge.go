package dectree

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMarker is the level-marker character the learner indents with.
const DefaultMarker = '|'

// LeafCondition is the condition text recorded for leaf nodes.
const LeafCondition = "true"

// Edge is one source line of a tree.
type Edge struct {
	Raw   string // line as written, without trailing newline
	Line  int    // 1-based line number in the source text
	Depth int    // number of leading level markers
	Cond  string // condition with markers and leaf suffix stripped
	Leaf  bool   // line ends in ": <value>"
	Value int    // leaf output, meaningful only when Leaf
}

// HasChild reports whether the edge continues into the next level.
func (e Edge) HasChild() bool { return !e.Leaf }

// ParseEdge decodes a single line. tree is used only to label errors.
func ParseEdge(raw string, line int, marker rune, tree int) (Edge, error) {
	depth, body := splitMarkers(raw, marker)
	e := Edge{Raw: raw, Line: line, Depth: depth}
	body = strings.TrimSpace(body)
	if body == "" {
		return Edge{}, edgeError(ErrMalformedEdge, tree, e, "no condition")
	}

	colon := strings.LastIndexByte(body, ':')
	if colon < 0 {
		e.Cond = body
		return e, nil
	}

	e.Leaf = true
	e.Cond = strings.TrimSpace(body[:colon])
	v, err := parseLeafValue(body[colon+1:])
	if err != nil {
		return Edge{}, edgeError(ErrMalformedEdge, tree, e, "leaf value: %v", err)
	}
	e.Value = v
	return e, nil
}

// splitMarkers consumes the leading run of level markers, which may be
// separated by spaces or tabs as in "|   |   ". Markers after the first other
// character belong to the condition.
func splitMarkers(raw string, marker rune) (int, string) {
	depth := 0
	rest := raw
	for {
		trimmed := strings.TrimLeft(rest, " \t")
		r, size := utf8.DecodeRuneInString(trimmed)
		if size == 0 || r != marker {
			return depth, trimmed
		}
		depth++
		rest = trimmed[size:]
	}
}

// parseLeafValue reads the class label after the colon, dropping a J48
// instance annotation like "(12.0/3.0)" if present. Labels are single digits;
// anything else could collide with the array sentinels.
func parseLeafValue(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '('); i >= 0 && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[:i])
	}
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return 0, fmt.Errorf("expected a single digit, got %q", s)
	}
	return int(s[0] - '0'), nil
}
