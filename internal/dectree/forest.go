package dectree

import (
	"bufio"
	"strings"
)

// Tree is the ordered edge list of one blank-line-delimited block.
type Tree struct {
	Index int
	Edges []Edge
}

// EdgeAt returns the edge that starts on the given source line.
func (t Tree) EdgeAt(line int) (Edge, bool) {
	for _, e := range t.Edges {
		if e.Line == line {
			return e, true
		}
	}
	return Edge{}, false
}

// Forest is an ordered sequence of trees.
type Forest []Tree

// NumEdges returns the total edge count across all trees.
func (f Forest) NumEdges() int {
	n := 0
	for _, t := range f {
		n += len(t.Edges)
	}
	return n
}

// ParseForest splits text into trees and each tree into edges. Runs of blank
// or whitespace-only lines separate trees.
func ParseForest(text string, marker rune) (Forest, error) {
	if marker == 0 {
		marker = DefaultMarker
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var forest Forest
	var current []Edge
	flush := func() {
		if len(current) > 0 {
			forest = append(forest, Tree{Index: len(forest), Edges: current})
			current = nil
		}
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(raw) == "" {
			flush()
			continue
		}
		e, err := ParseEdge(raw, lineNo, marker, len(forest))
		if err != nil {
			return nil, err
		}
		current = append(current, e)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(forest) == 0 {
		return nil, &Error{Kind: ErrEmptyForest, Tree: -1}
	}
	return forest, nil
}
