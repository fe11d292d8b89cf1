package source

import (
	"bufio"
	"io"
	"strings"
)

// TextExtractor handles plain text tree dumps.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, filename string) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sb strings.Builder
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

const (
	j48Header  = "J48 pruned tree"
	j48Trailer = "Number of Leaves"
)

// StripReport keeps only the tree bodies of full J48 classifier reports. A
// report looks like
//
//	J48 pruned tree
//	------------------
//	<tree>
//	Number of Leaves  : 11
//
// Text without a J48 header is returned unchanged. Everything outside a tree
// body is blanked rather than removed so line numbers still match the report,
// and the blank framing keeps consecutive trees apart.
func StripReport(text string) string {
	if !strings.Contains(text, j48Header) {
		return text
	}

	const (
		outside = iota
		header
		body
	)
	state := outside
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch state {
		case outside:
			if trimmed == j48Header {
				state = header
			}
		case header:
			if trimmed != "" && strings.Trim(trimmed, "-") == "" {
				state = body
			}
		case body:
			if strings.HasPrefix(trimmed, j48Trailer) {
				state = outside
				continue
			}
			out[i] = line
		}
	}
	return strings.Join(out, "\n")
}
