// Package project stores envelope models per user and evaluates them.
package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"Envolvente/internal/auth"
	"Envolvente/internal/calc/indicators"
	"Envolvente/internal/calc/uvalue"
	"Envolvente/internal/diag"
	"Envolvente/internal/model"
	"Envolvente/internal/repo"
)

const MaxModelSize = 10 << 20 // 10MB

type ProjectHandler struct {
	Repo repo.ProjectRepository
	Log  diag.Observer
}

type SaveRequest struct {
	Name  string          `json:"name"`
	Model json.RawMessage `json:"model"`
}

func (h *ProjectHandler) decodeSave(w http.ResponseWriter, r *http.Request) (SaveRequest, bool) {
	var req SaveRequest
	r.Body = http.MaxBytesReader(w, r.Body, MaxModelSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Model) == 0 {
		http.Error(w, "Name and model required", http.StatusBadRequest)
		return req, false
	}
	if _, err := model.Decode(bytes.NewReader(req.Model), model.JSON); err != nil {
		http.Error(w, "Invalid model", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}

func projectID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid project id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProjectHandler) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, repo.ErrNotFound) {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}
	diag.OrNop(h.Log).Warnw("project store", "err", err)
	http.Error(w, "DB error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	projects, err := h.Repo.ListProjects(r.Context(), uid)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeSave(w, r)
	if !ok {
		return
	}
	p, err := h.Repo.CreateProject(r.Context(), uid, req.Name, req.Model)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	p, err := h.Repo.GetProject(r.Context(), uid, id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodeSave(w, r)
	if !ok {
		return
	}
	if err := h.Repo.UpdateProject(r.Context(), uid, id, req.Name, req.Model); err != nil {
		h.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	if err := h.Repo.DeleteProject(r.Context(), uid, id); err != nil {
		h.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// load fetches a stored project and decodes its model.
func (h *ProjectHandler) load(w http.ResponseWriter, r *http.Request) (*model.Model, bool) {
	uid, ok := userID(w, r)
	if !ok {
		return nil, false
	}
	id, ok := projectID(w, r)
	if !ok {
		return nil, false
	}
	p, err := h.Repo.GetProject(r.Context(), uid, id)
	if err != nil {
		h.storeError(w, err)
		return nil, false
	}
	m, err := model.Decode(bytes.NewReader(p.Model), model.JSON)
	if err != nil {
		http.Error(w, "Stored model is invalid", http.StatusUnprocessableEntity)
		return nil, false
	}
	return m, true
}

// Indicators evaluates the stored model without solar irradiance.
func (h *ProjectHandler) Indicators(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, indicators.Summarize(m, nil, h.Log))
}

func (h *ProjectHandler) UValues(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	res, err := uvalue.Calculate(m, h.Log)
	if err != nil {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
