package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/studypal-api/internal/application/study"
	"github.com/studypal-api/internal/domain"
	"github.com/studypal-api/internal/pkg/validate"
	"github.com/studypal-api/internal/transport/http/middleware"
)

// StudyHandler handles study history endpoints.
type StudyHandler struct {
	svc study.Service
}

func NewStudyHandler(svc study.Service) *StudyHandler { return &StudyHandler{svc: svc} }

func (h *StudyHandler) Record(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateStudyRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.svc.Record(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *StudyHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.svc.List(r.Context(), claims.UserID, limit)
	if err != nil {
		httpError(w, err)
		return
	}
	if records == nil {
		records = []domain.StudyRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": records})
}

func (h *StudyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "record deleted"})
}
