package flatten

// Assembler collects converted trees and pads them into rectangular arrays.
// Padding needs every tree's length, so Arrays must only be called once all
// trees have been added.
type Assembler struct {
	trees []TreeArrays
}

// Add appends one converted tree as the next row.
func (a *Assembler) Add(t TreeArrays) {
	a.trees = append(a.trees, t)
}

// Arrays returns the padded forest arrays. Each array type is padded to the
// longest row of that type with DummySentinel.
func (a *Assembler) Arrays() *Arrays {
	out := &Arrays{Nodes: make([]int, 0, len(a.trees))}
	for _, t := range a.trees {
		out.Feature = append(out.Feature, t.Feature)
		out.Relation = append(out.Relation, t.Relation)
		out.Threshold = append(out.Threshold, t.Threshold)
		out.Child = append(out.Child, t.Child)
		out.Value = append(out.Value, t.Value)
		out.Nodes = append(out.Nodes, t.Len())
	}

	out.Feature = pad(out.Feature, DummySentinel.Feature)
	out.Relation = pad(out.Relation, DummySentinel.Relation)
	out.Threshold = pad(out.Threshold, DummySentinel.Threshold)
	out.Child = pad(out.Child, DummySentinel.Child)
	out.Value = pad(out.Value, DummySentinel.Value)
	return out
}

// pad right-fills every row to the longest row's length. Rows are copied so
// the caller's tree arrays are never aliased.
func pad[T any](rows [][]T, fill T) [][]T {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	out := make([][]T, len(rows))
	for i, r := range rows {
		row := make([]T, width)
		n := copy(row, r)
		for j := n; j < width; j++ {
			row[j] = fill
		}
		out[i] = row
	}
	return out
}
