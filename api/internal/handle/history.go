package handle

import (
	"net/http"

	"neuron-be/api/internal/store"
)

func (h *Handle) HistoryList(w http.ResponseWriter, r *http.Request, username string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET only")
		return
	}
	if h.History == nil {
		writeJSON(w, http.StatusOK, map[string]any{"history": []store.HistoryRecord{}})
		return
	}
	records, err := h.History.ListByUser(r.Context(), username, 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": records})
}
