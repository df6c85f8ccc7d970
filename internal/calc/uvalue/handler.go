package uvalue

import (
	"encoding/json"
	"net/http"

	"Envolvente/internal/diag"
	"Envolvente/internal/model"
)

type Handler struct {
	Log diag.Observer
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	m, err := model.Decode(r.Body, model.JSON)
	if err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(m, h.Log)
	if err != nil {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
