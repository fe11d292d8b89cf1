package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dgallion1/treeflat/internal/flatten"
	"github.com/go-chi/chi/v5"
)

// handleListForests lists archived forests.
func (s *Server) handleListForests(w http.ResponseWriter, r *http.Request) {
	if s.forests == nil {
		jsonError(w, "archive disabled", http.StatusServiceUnavailable)
		return
	}
	limit := 200
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	nodes, err := s.forests.ListForests(r.Context(), limit)
	if err != nil {
		jsonError(w, "failed to list forests: "+err.Error(), http.StatusBadGateway)
		return
	}
	forests := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		forests = append(forests, map[string]any{
			"key":   n.Key,
			"value": n.Value,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"forests": forests})
}

// handleGetForest returns an archived forest, as its JSON record or rendered
// arrays when format is given.
func (s *Server) handleGetForest(w http.ResponseWriter, r *http.Request) {
	if s.forests == nil {
		jsonError(w, "archive disabled", http.StatusServiceUnavailable)
		return
	}
	name := chi.URLParam(r, "name")
	f, err := s.forests.GetForest(r.Context(), name)
	if err != nil {
		jsonError(w, "failed to read forest: "+err.Error(), http.StatusBadGateway)
		return
	}
	if f == nil {
		jsonError(w, "forest not found", http.StatusNotFound)
		return
	}

	if q := r.URL.Query().Get("format"); q != "" {
		format, err := flatten.ParseFormat(q)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if f.Arrays == nil {
			jsonError(w, "forest has no arrays", http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		flatten.Write(w, f.Arrays, format)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(f)
}

// handleDeleteForest removes an archived forest.
func (s *Server) handleDeleteForest(w http.ResponseWriter, r *http.Request) {
	if s.forests == nil {
		jsonError(w, "archive disabled", http.StatusServiceUnavailable)
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.forests.DeleteForest(r.Context(), name); err != nil {
		jsonError(w, "failed to delete forest: "+err.Error(), http.StatusBadGateway)
		return
	}
	s.log.Info("forest deleted", "name", name)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": name})
}
