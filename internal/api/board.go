package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/patchline/verdict/internal/decision"
	"github.com/patchline/verdict/internal/model"
	"github.com/patchline/verdict/internal/scoring"
)

type BoardHandler struct {
	svc *decision.Service
}

func NewBoardHandler(svc *decision.Service) *BoardHandler {
	return &BoardHandler{svc: svc}
}

type boardResponse struct {
	Board  *model.Payload  `json:"board"`
	Report *scoring.Report `json:"report"`
}

func snapshotResponse(snap *decision.Snapshot) boardResponse {
	return boardResponse{Board: snap.Board.Serialize(), Report: snap.Report}
}

// respond writes the post-mutation board+report, or maps a rejected mutation
// to its status code: capacity (section) errors conflict with the current
// collection state, field errors are bad input.
func (h *BoardHandler) respond(w http.ResponseWriter, op string, snap *decision.Snapshot, opErr *decision.Error) {
	if opErr != nil {
		MutationsRejected.WithLabelValues(string(opErr.Scope)).Inc()
		status := http.StatusBadRequest
		if opErr.Scope == decision.ScopeSection {
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{
			Error:    opErr.Message,
			Scope:    string(opErr.Scope),
			Section:  opErr.Section,
			EntityID: opErr.EntityID,
		})
		return
	}
	MutationsTotal.WithLabelValues(op).Inc()
	writeJSON(w, http.StatusOK, snapshotResponse(snap))
}

type errorResponse struct {
	Error    string `json:"error"`
	Scope    string `json:"scope,omitempty"`
	Section  string `json:"section,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
}

// Get handles GET /api/v1/board
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, snapshotResponse(h.svc.Snapshot()))
}

// Report handles GET /api/v1/board/report
func (h *BoardHandler) Report(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Snapshot().Report)
}

// Status handles GET /api/v1/board/status
func (h *BoardHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// WeightLabels handles GET /api/v1/board/weights
func (h *BoardHandler) WeightLabels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.WeightLabels)
}

// SetTitle handles PUT /api/v1/board/title
func (h *BoardHandler) SetTitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	snap, opErr := h.svc.SetTitle(req.Title)
	h.respond(w, "set_title", snap, opErr)
}

type nameRequest struct {
	Name string `json:"name"`
}

// AddOption handles POST /api/v1/board/options
func (h *BoardHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}
	snap, opErr := h.svc.AddOption(req.Name)
	h.respond(w, "add_option", snap, opErr)
}

// RenameOption handles PUT /api/v1/board/options/{id}/name
func (h *BoardHandler) RenameOption(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	snap, opErr := h.svc.RenameOption(chi.URLParam(r, "id"), req.Name)
	h.respond(w, "rename_option", snap, opErr)
}

// SetOptionNote handles PUT /api/v1/board/options/{id}/note
func (h *BoardHandler) SetOptionNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	snap, opErr := h.svc.SetOptionNote(chi.URLParam(r, "id"), req.Note)
	h.respond(w, "set_option_note", snap, opErr)
}

// DeleteOption handles DELETE /api/v1/board/options/{id}
func (h *BoardHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	snap, opErr := h.svc.DeleteOption(chi.URLParam(r, "id"))
	h.respond(w, "delete_option", snap, opErr)
}

// AddCriterion handles POST /api/v1/board/criteria
func (h *BoardHandler) AddCriterion(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}
	snap, opErr := h.svc.AddCriterion(req.Name)
	h.respond(w, "add_criterion", snap, opErr)
}

// RenameCriterion handles PUT /api/v1/board/criteria/{id}/name
func (h *BoardHandler) RenameCriterion(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	snap, opErr := h.svc.RenameCriterion(chi.URLParam(r, "id"), req.Name)
	h.respond(w, "rename_criterion", snap, opErr)
}

// SetCriterionWeight handles PUT /api/v1/board/criteria/{id}/weight
func (h *BoardHandler) SetCriterionWeight(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight int `json:"weight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	snap, opErr := h.svc.SetCriterionWeight(chi.URLParam(r, "id"), req.Weight)
	h.respond(w, "set_criterion_weight", snap, opErr)
}

// DeleteCriterion handles DELETE /api/v1/board/criteria/{id}
func (h *BoardHandler) DeleteCriterion(w http.ResponseWriter, r *http.Request) {
	snap, opErr := h.svc.DeleteCriterion(chi.URLParam(r, "id"))
	h.respond(w, "delete_criterion", snap, opErr)
}

// SetRating handles PUT /api/v1/board/ratings/{optionID}/{criterionID}
func (h *BoardHandler) SetRating(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value int `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	snap, opErr := h.svc.SetRating(chi.URLParam(r, "optionID"), chi.URLParam(r, "criterionID"), req.Value)
	h.respond(w, "set_rating", snap, opErr)
}

// ClearRating handles DELETE /api/v1/board/ratings/{optionID}/{criterionID}
func (h *BoardHandler) ClearRating(w http.ResponseWriter, r *http.Request) {
	snap, opErr := h.svc.ClearRating(chi.URLParam(r, "optionID"), chi.URLParam(r, "criterionID"))
	h.respond(w, "clear_rating", snap, opErr)
}

// Reset handles POST /api/v1/board/reset
func (h *BoardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Reset(r.Context())
	MutationsTotal.WithLabelValues("reset").Inc()
	writeJSON(w, http.StatusOK, snapshotResponse(snap))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
