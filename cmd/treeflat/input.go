package main

import (
	"io"
	"os"

	"github.com/dgallion1/treeflat/internal/source"
)

// readForest extracts forest text from the named file, or stdin when the
// name is empty or "-". Stdin is read as plain text.
func readForest(in io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		return source.Extract(in, "stdin.txt", source.Options{})
	}
	fh, err := os.Open(args[0])
	if err != nil {
		return "", err
	}
	defer fh.Close()
	return source.Extract(fh, args[0], source.Options{PDFFallbackPdftotext: true})
}
