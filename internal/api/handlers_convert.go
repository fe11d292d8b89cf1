package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/treeflat/internal/dectree"
	"github.com/dgallion1/treeflat/internal/flatten"
	"github.com/dgallion1/treeflat/internal/metrics"
	"github.com/dgallion1/treeflat/internal/source"
)

// handleConvert converts the request body synchronously. The optional
// filename query parameter selects the source format, plain text by default.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	format, err := flatten.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	filename := sanitizeFilename(r.URL.Query().Get("filename"))
	if filename == "unnamed" {
		filename = "forest.txt"
	}
	if !source.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	text, err := source.Extract(bytes.NewReader(data), filename, source.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		if errors.Is(err, source.ErrNoForest) {
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, "extract: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.orchestrator.Converter().Convert(r.Context(), text)
	if err != nil {
		conversionError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := flatten.Write(&buf, res.Arrays, format); err != nil {
		jsonError(w, "render: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Treeflat-Trees", fmt.Sprint(res.Arrays.NumTrees()))
	w.Header().Set("X-Treeflat-Width", fmt.Sprint(res.Arrays.Width()))
	w.Write(buf.Bytes())
}

// conversionError reports a rejected forest with the tree and line at fault.
func conversionError(w http.ResponseWriter, err error) {
	var de *dectree.Error
	if !errors.As(err, &de) {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	body := map[string]any{
		"error": err.Error(),
		"kind":  metrics.Kind(err),
	}
	if de.Tree >= 0 {
		body["tree"] = de.Tree + 1
	}
	if de.Line > 0 {
		body["line"] = de.Line
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(body)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
