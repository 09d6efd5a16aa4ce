package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"martshift/internal/apperr"
	"martshift/internal/model"
	"martshift/internal/service"
)

type SubstituteHandler struct {
	svc    *service.SubstituteService
	mw     *Middleware
	logger *zap.Logger
}

func NewSubstituteHandler(svc *service.SubstituteService, mw *Middleware, logger *zap.Logger) *SubstituteHandler {
	return &SubstituteHandler{svc: svc, mw: mw, logger: logger}
}

type requestSubRequest struct {
	Reason string `json:"reason"`
}

// HandleRequest lets a staff member ask for a substitute on their own shift.
func (h *SubstituteHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	var req requestSubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.logger, apperr.Validation("error.bad_request"))
		return
	}

	created, err := h.svc.Request(r.Context(), identityFrom(r.Context()),
		r.PathValue("scheduleId"), req.Reason)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleOpenRecruiting authorizes recruiting. Administrator only.
func (h *SubstituteHandler) HandleOpenRecruiting(w http.ResponseWriter, r *http.Request) {
	req, err := h.svc.OpenRecruiting(r.Context(), identityFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// HandleAccept records the caller as the substitute.
func (h *SubstituteHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	req, err := h.svc.Accept(r.Context(), identityFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// HandleReject declines recruiting for a pending request. Administrator only.
func (h *SubstituteHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	req, err := h.svc.Reject(r.Context(), identityFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// HandleFinalize approves an accepted request and reassigns the shift.
// Administrator only.
func (h *SubstituteHandler) HandleFinalize(w http.ResponseWriter, r *http.Request) {
	req, err := h.svc.Finalize(r.Context(), identityFrom(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// HandleOwnerList returns the administrator's split recruiting/approved view.
func (h *SubstituteHandler) HandleOwnerList(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.ListForOwner(r.Context(), identityFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// HandleOpenList returns requests the caller could accept.
func (h *SubstituteHandler) HandleOpenList(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.ListOpen(r.Context(), identityFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if reqs == nil {
		reqs = []*model.SubstituteRequest{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// HandleMine returns the caller's own requests.
func (h *SubstituteHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.svc.ListMine(r.Context(), identityFrom(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if reqs == nil {
		reqs = []*model.SubstituteRequest{}
	}
	writeJSON(w, http.StatusOK, reqs)
}

// RegisterRoutes registers all substitute workflow routes on the given mux.
func (h *SubstituteHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/subs/{scheduleId}/request", h.mw.RequireAuth(h.HandleRequest))
	mux.HandleFunc("GET /api/subs/open", h.mw.RequireAuth(h.HandleOpenList))
	mux.HandleFunc("GET /api/subs/mine", h.mw.RequireAuth(h.HandleMine))
	mux.HandleFunc("PATCH /api/subs/{id}/approve-recruit", h.mw.RequireAuth(h.HandleOpenRecruiting))
	mux.HandleFunc("PATCH /api/subs/{id}/accept", h.mw.RequireAuth(h.HandleAccept))
	mux.HandleFunc("PATCH /api/subs/{id}/reject", h.mw.RequireAuth(h.HandleReject))
	mux.HandleFunc("PATCH /api/subs/{id}/final", h.mw.RequireAuth(h.HandleFinalize))
	mux.HandleFunc("GET /api/subs/owner", h.mw.RequireAuth(h.HandleOwnerList))
}
