package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"martshift/internal/apperr"
	"martshift/internal/model"
	"martshift/internal/service"
)

type ScheduleHandler struct {
	svc    *service.ScheduleService
	mw     *Middleware
	logger *zap.Logger
}

func NewScheduleHandler(svc *service.ScheduleService, mw *Middleware, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{svc: svc, mw: mw, logger: logger}
}

type createScheduleRequest struct {
	StaffID   string `json:"staffId"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type setScheduleStatusRequest struct {
	Status model.ScheduleStatus `json:"status"`
}

// HandleCreate adds a shift for a staff member. Administrator only.
func (h *ScheduleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperr.Validation("error.bad_request"))
		return
	}

	schedule, err := h.svc.Create(r.Context(), identityFrom(r.Context()),
		req.StaffID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, schedule)
}

// HandleWeek returns the weekly rota with staff names populated. The
// optional ?date= query selects the week; today's week otherwise.
func (h *ScheduleHandler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.svc.Week(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if schedules == nil {
		schedules = []*model.ScheduleWithStaff{}
	}
	writeJSON(w, http.StatusOK, schedules)
}

// HandleSetStatus completes or cancels a shift. Administrator only.
func (h *ScheduleHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req setScheduleStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperr.Validation("error.bad_request"))
		return
	}

	schedule, err := h.svc.SetStatus(r.Context(), identityFrom(r.Context()),
		r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// RegisterRoutes registers all schedule routes on the given mux.
func (h *ScheduleHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/schedules", h.mw.RequireAuth(h.HandleCreate))
	mux.HandleFunc("GET /api/schedules/week", h.mw.RequireAuth(h.HandleWeek))
	mux.HandleFunc("PATCH /api/schedules/{id}/status", h.mw.RequireAuth(h.HandleSetStatus))
}
