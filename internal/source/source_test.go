package source

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

const tree = `self_cpi_min <= 0.695117
|   all_cpi_mean <= 9.148936
|   |   self_cpi_mean <= 2.000000: 0
|   |   self_cpi_mean > 2.000000: 1
|   all_cpi_mean > 9.148936: 1
self_cpi_min > 0.695117: 1`

func TestForFile(t *testing.T) {
	tests := []struct {
		name string
		want any
	}{
		{"trees.txt", &TextExtractor{}},
		{"core.TREE", &TextExtractor{}},
		{"report.md", &MarkdownExtractor{}},
		{"report.htm", &HTMLExtractor{}},
		{"report.pdf", &PDFExtractor{FallbackPdftotext: true}},
		{"report.docx", &DOCXExtractor{}},
	}
	for _, tt := range tests {
		got, err := ForFile(tt.name, Options{PDFFallbackPdftotext: true})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if !sameType(got, tt.want) {
			t.Errorf("%s: expected %T, got %T", tt.name, tt.want, got)
		}
	}
	if _, err := ForFile("trees.csv", Options{}); err == nil {
		t.Error("expected error for csv")
	}
	if IsSupportedExtension("x.csv") || !IsSupportedExtension("X.TXT") {
		t.Error("IsSupportedExtension mismatch")
	}
}

func sameType(a, b any) bool {
	switch a.(type) {
	case *TextExtractor:
		_, ok := b.(*TextExtractor)
		return ok
	case *MarkdownExtractor:
		_, ok := b.(*MarkdownExtractor)
		return ok
	case *HTMLExtractor:
		_, ok := b.(*HTMLExtractor)
		return ok
	case *PDFExtractor:
		p, ok := b.(*PDFExtractor)
		return ok && p.FallbackPdftotext == a.(*PDFExtractor).FallbackPdftotext
	case *DOCXExtractor:
		_, ok := b.(*DOCXExtractor)
		return ok
	}
	return false
}

func TestExtract_Text(t *testing.T) {
	input := tree + "\r\n\r\n\r\n\n: 1   \n\n"
	got, err := Extract(strings.NewReader(input), "trees.txt", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := tree + "\n\n\n\n: 1"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExtract_TextKeepsLineNumbers(t *testing.T) {
	input := "\n\n" + tree + "\n\n\n: 1\n"
	got, err := Extract(strings.NewReader(input), "trees.txt", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := strings.Split(input, "\n")
	out := strings.Split(got, "\n")
	for i, line := range out {
		if line != in[i] {
			t.Errorf("line %d: expected %q, got %q", i+1, in[i], line)
		}
	}
	if out[2] != "self_cpi_min <= 0.695117" || out[10] != ": 1" {
		t.Errorf("trees moved: %q", out)
	}
}

func TestExtract_EmptyText(t *testing.T) {
	_, err := Extract(strings.NewReader("\n  \n"), "trees.txt", Options{})
	if !errors.Is(err, ErrNoForest) {
		t.Fatalf("expected ErrNoForest, got %v", err)
	}
}

func TestStripReport(t *testing.T) {
	report := `=== Classifier model (full training set) ===

J48 pruned tree
------------------

` + tree + `

Number of Leaves  : 	4

Size of the tree : 	7

J48 pruned tree
------------------

: 1

Number of Leaves  : 	1
`
	got := strings.Split(normalize(StripReport(report)), "\n")
	if len(got) != 20 {
		t.Fatalf("expected 20 lines, got %d: %q", len(got), got)
	}
	if body := strings.Join(got[5:11], "\n"); body != tree {
		t.Errorf("expected tree on report lines 6-11, got %q", body)
	}
	if got[19] != ": 1" {
		t.Errorf("expected constant tree on report line 20, got %q", got[19])
	}
	for i, line := range append(got[:5:5], got[11:19]...) {
		if line != "" {
			t.Errorf("framing line %d not blanked: %q", i, line)
		}
	}
}

func TestStripReport_PassThrough(t *testing.T) {
	if got := StripReport(tree); got != tree {
		t.Errorf("text without a report header must be unchanged, got %q", got)
	}
}

func TestExtract_MarkdownTaggedBlocks(t *testing.T) {
	doc := "# Core 0\n\nSome prose.\n\n```sh\njava weka.classifiers.trees.J48\n```\n\n```tree\n" +
		tree + "\n```\n\n## Core 1\n\n```j48\n: 0\n```\n"
	got, err := Extract(strings.NewReader(doc), "models.md", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := tree + "\n\n: 0"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExtract_MarkdownUntaggedBlocks(t *testing.T) {
	doc := "Model:\n\n```\n" + tree + "\n```\n\nConstant:\n\n    : 1\n"
	got, err := Extract(strings.NewReader(doc), "models.markdown", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := tree + "\n\n: 1"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExtract_MarkdownWithoutCode(t *testing.T) {
	_, err := Extract(strings.NewReader("# Nothing here\n\nJust prose."), "x.md", Options{})
	if !errors.Is(err, ErrNoForest) {
		t.Fatalf("expected ErrNoForest, got %v", err)
	}
}

func TestExtract_HTMLPreBlocks(t *testing.T) {
	page := `<html><head><title>Models</title><style>pre{}</style></head><body>
<h1>Core 0</h1><p>Trained on 48 cores.</p>
<pre>` + tree + `</pre>
<nav><pre>: 9</pre></nav>
<pre>: 1</pre>
</body></html>`
	got, err := Extract(strings.NewReader(page), "models.html", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := tree + "\n\n: 1"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestExtract_HTMLEscapedOperators(t *testing.T) {
	page := "<pre>x &lt;= 1: 0\nx &gt; 1: 1</pre>"
	got, err := Extract(strings.NewReader(page), "m.html", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "x <= 1: 0\nx > 1: 1" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestExtract_DOCX(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	for _, line := range strings.Split(tree, "\n") {
		doc.AddParagraph().AddText(line)
	}
	doc.AddParagraph()
	doc.AddParagraph().AddText(": 0")

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	got, err := Extract(bytes.NewReader(buf.Bytes()), "models.docx", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d: %q", len(lines), got)
	}
	if lines[6] != "" || lines[7] != ": 0" {
		t.Errorf("expected blank separator then constant tree, got %q", lines[6:])
	}
	if strings.Count(lines[2], "|") != 2 {
		t.Errorf("expected depth markers to survive, got %q", lines[2])
	}
}

func TestExtract_PDFInvalid(t *testing.T) {
	_, err := Extract(strings.NewReader("not a pdf"), "report.pdf", Options{})
	if err == nil {
		t.Fatal("expected error for invalid pdf")
	}
	if !strings.Contains(err.Error(), "extract pdf text") {
		t.Errorf("unexpected error: %v", err)
	}
}
