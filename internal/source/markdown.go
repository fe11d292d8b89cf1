package source

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// treeFenceLangs are info strings that mark a fenced block as tree text.
var treeFenceLangs = map[string]bool{
	"tree": true,
	"j48":  true,
	"weka": true,
}

// MarkdownExtractor reads trees from code blocks. If any fenced block is
// tagged with a tree language only tagged blocks are used; otherwise every
// code block is.
type MarkdownExtractor struct{}

func (p *MarkdownExtractor) Extract(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var tagged, untagged []string
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			body := blockLines(node, src)
			if treeFenceLangs[strings.ToLower(string(node.Language(src)))] {
				tagged = append(tagged, body)
			} else {
				untagged = append(untagged, body)
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			untagged = append(untagged, blockLines(node, src))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	blocks := untagged
	if len(tagged) > 0 {
		blocks = tagged
	}
	if len(blocks) == 0 {
		return "", ErrNoForest
	}
	return strings.Join(blocks, "\n\n"), nil
}

// blockLines returns a code block's raw lines.
func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}
