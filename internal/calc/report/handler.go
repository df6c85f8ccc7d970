package report

import (
	"bytes"
	"encoding/json"
	"net/http"

	"Envolvente/internal/calc/indicators"
	"Envolvente/internal/calc/uvalue"
	"Envolvente/internal/diag"
	"Envolvente/internal/model"
)

type Input struct {
	Header
	Model         model.Model           `json:"model"`
	IrradianceJul indicators.Irradiance `json:"irradiance_jul,omitempty"`
}

type Handler struct {
	Log diag.Observer
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	input.Model.Meta = model.DefaultMeta()
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(input.Model.Walls) == 0 {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	m := model.Build(input.Model)

	var buf bytes.Buffer
	err := Write(&buf, input.Header, uvalue.Table(m, h.Log), indicators.Summarize(m, input.IrradianceJul, h.Log))
	if err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"envelope-report.pdf\"")
	w.Write(buf.Bytes())
}
