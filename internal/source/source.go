package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrNoForest is returned when a document holds no tree text.
var ErrNoForest = errors.New("no decision tree text found")

// Extractor pulls forest text out of a document.
type Extractor interface {
	Extract(r io.Reader, filename string) (string, error)
}

// SupportedExtensions lists file extensions this service can read trees from.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".tree":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt", ".tree":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Options tunes extraction.
type Options struct {
	PDFFallbackPdftotext bool
}

// Extract reads forest text from r using the extractor for filename and
// strips J48 report framing. Line n of the result is line n of the text the
// extractor produced, so for plain text uploads error line numbers point at
// the uploaded file.
func Extract(r io.Reader, filename string, opts Options) (string, error) {
	ex, err := ForFile(filename, opts)
	if err != nil {
		return "", err
	}
	text, err := ex.Extract(r, filename)
	if err != nil {
		return "", err
	}
	text = normalize(StripReport(text))
	if text == "" {
		return "", ErrNoForest
	}
	return text, nil
}

// normalize drops CRs and trailing whitespace. Lines are never removed or
// merged except for blank lines at the very end.
func normalize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}
