package api

import (
	"net/http"
)

func (s *Server) handleCommandStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "command stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": s.store.Len(),
		"commands": s.stats.Snapshot(),
	})
}
