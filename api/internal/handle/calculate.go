package handle

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"neuron-be/api/internal/solve"
)

type calculateRequest struct {
	Text         string         `json:"text"`
	Image        string         `json:"image"`
	Audio        string         `json:"audio"`
	DictOfVars   map[string]any `json:"dict_of_vars"`
	Language     string         `json:"language"`
	LanguageCode string         `json:"language_code"`
}

func (c *calculateRequest) language() string {
	if l := strings.TrimSpace(c.Language); l != "" {
		return l
	}
	return strings.TrimSpace(c.LanguageCode)
}

func (h *Handle) Calculate(w http.ResponseWriter, r *http.Request, username string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}

	answers, err := h.Solver.Solve(r.Context(), solve.Request{
		Text:     req.Text,
		Image:    req.Image,
		Audio:    req.Audio,
		Vars:     req.DictOfVars,
		Language: req.language(),
		Username: username,
		ID:       uuid.NewString(),
	})
	switch {
	case errors.Is(err, solve.ErrNoInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, solve.ErrBadImage):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, solve.ErrAudioDisabled):
		// a valid terminal state for audio input, surfaced the way the
		// clients expect it
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": answers})
}

type ragQueryRequest struct {
	Query        string `json:"query"`
	LanguageCode string `json:"language_code"`
}

func (h *Handle) RAGQuery(w http.ResponseWriter, r *http.Request, username string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}
	var req ragQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	answers, err := h.Solver.RAGQuery(r.Context(), req.Query, solve.Request{
		Language: strings.TrimSpace(req.LanguageCode),
		Username: username,
		ID:       uuid.NewString(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": answers})
}
