package handlers

import "net/http"

// Health handles the health check endpoint. It reports the roster size so
// operators can tell a degraded (empty roster) instance from a healthy one.
func (h *RecognitionHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"roster_size": h.roster.Len(),
	})
}
