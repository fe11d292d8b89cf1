package flatten

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/treeflat/internal/condition"
)

// WriteDZN renders the arrays as MiniZinc 2-D array literals, one block per
// array in the fixed output order:
//
//	feature_idx = [|
//	1, 3, -1,|
//	-1, -2, -2 |];
func WriteDZN(w io.Writer, a *Arrays) error {
	bw := bufio.NewWriter(w)
	writeBlock(bw, NameFeature, a.Feature, strconv.Itoa)
	writeBlock(bw, NameRelation, a.Relation, func(r condition.Relation) string { return string(r) })
	writeBlock(bw, NameThreshold, a.Threshold, func(s string) string { return s })
	writeBlock(bw, NameChild, a.Child, strconv.Itoa)
	writeBlock(bw, NameValue, a.Value, strconv.Itoa)
	return bw.Flush()
}

func writeBlock[T any](w *bufio.Writer, name string, rows [][]T, format func(T) string) {
	fmt.Fprintf(w, "%s = [|\n", name)
	var cells []string
	for i, row := range rows {
		cells = cells[:0]
		for _, v := range row {
			cells = append(cells, format(v))
		}
		w.WriteString(strings.Join(cells, ", "))
		if i < len(rows)-1 {
			w.WriteString(",|\n")
		}
	}
	w.WriteString(" |];\n\n")
}

// WriteJSON renders the arrays as a single JSON object keyed by array name.
func WriteJSON(w io.Writer, a *Arrays) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

// Format selects an output rendering.
type Format string

const (
	FormatDZN  Format = "dzn"
	FormatJSON Format = "json"
)

// ParseFormat accepts "dzn" and "json"; the empty string means dzn.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatDZN:
		return FormatDZN, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Write renders a in the given format.
func Write(w io.Writer, a *Arrays, f Format) error {
	if f == FormatJSON {
		return WriteJSON(w, a)
	}
	return WriteDZN(w, a)
}

// ContentType returns the HTTP content type for f.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}
