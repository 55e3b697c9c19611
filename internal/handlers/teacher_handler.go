package handlers

import (
	"net/http"

	"khamboran/internal/aggregate"
	"khamboran/internal/security"
	"khamboran/internal/service"
	"khamboran/internal/validation"
)

// TeacherHandler serves the dashboard API: rollup rows, per-student history,
// edit/delete and the emailed report.
type TeacherHandler struct {
	aggregator *aggregate.Aggregator
	email      *service.EmailService
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(aggregator *aggregate.Aggregator, email *service.EmailService) *TeacherHandler {
	return &TeacherHandler{
		aggregator: aggregator,
		email:      email,
	}
}

// Dashboard rebuilds and returns the full rollup snapshot.
func (h *TeacherHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.aggregator.Refresh(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "refresh dashboard", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

// History returns one learner's session timeline, newest first.
func (h *TeacherHandler) History(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}
	sessions, err := h.aggregator.History(r.Context(), learnerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "load history", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

type editStudentRequest struct {
	Name   string `json:"name"`
	Grade  string `json:"grade"`
	Room   string `json:"room"`
	Number string `json:"number"`
}

// EditStudent merges updated identity fields into the learner record.
func (h *TeacherHandler) EditStudent(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	var req editStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	if req.Name != "" {
		if err := validation.ValidateName(req.Name); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
			return
		}
	}

	updates := map[string]any{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Grade != "" {
		updates["grade"] = req.Grade
	}
	if req.Room != "" {
		updates["room"] = req.Room
	}
	if req.Number != "" {
		updates["number"] = req.Number
	}

	profile, err := h.aggregator.EditStudent(r.Context(), learnerID, updates)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "edit student", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"profile": profileView(profile)})
}

// DeleteStudent removes the learner and every one of their sessions.
func (h *TeacherHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}
	if err := h.aggregator.DeleteStudent(r.Context(), learnerID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "delete student", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Ranking returns the 1-based position of a score among known totals.
func (h *TeacherHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Score float64 `json:"score"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	position, total, err := h.aggregator.Ranking(r.Context(), req.Score)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "compute ranking", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"position": position, "total": total})
}

// EmailReport sends the current rollup to the signed-in teacher.
func (h *TeacherHandler) EmailReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(TeacherContextKey).(*security.DashboardClaims)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}
	rows, err := h.aggregator.Rows(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "load rows", err)
		return
	}
	if err := h.email.SendDashboardReport(r.Context(), claims.Email, claims.Name, rows); err != nil {
		respondWithError(w, http.StatusBadGateway, "ส่งอีเมลไม่สำเร็จ", "send report", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"sent": h.email.IsEnabled()})
}
