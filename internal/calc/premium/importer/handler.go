package importer

import (
	"encoding/json"
	"net/http"

	"Envolvente/internal/calc/indicators"
	"Envolvente/internal/calc/uvalue"
	"Envolvente/internal/diag"
)

type Handler struct {
	Log diag.Observer
}

type ImportResult struct {
	Count   int                `json:"count"`
	Walls   []uvalue.Row       `json:"walls"`
	Summary indicators.Summary `json:"summary"`
}

func (h *Handler) Model(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	m, err := ReadModel(file)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	rows := uvalue.Table(m, h.Log)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ImportResult{
		Count:   len(rows),
		Walls:   rows,
		Summary: indicators.Summarize(m, nil, h.Log),
	})
}
