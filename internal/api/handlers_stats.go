package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleConversionStats(w http.ResponseWriter, r *http.Request) {
	conv := s.orchestrator.Converter()
	if conv == nil || conv.Stats == nil {
		jsonError(w, "conversion stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"stats":       conv.Stats.Snapshot(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
