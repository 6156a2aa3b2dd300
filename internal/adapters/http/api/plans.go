package api

import (
	"net/http"

	"github.com/okian/reelplan/internal/domain/types"
)

// PlansHandler serves synchronous planning.
type PlansHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewPlansHandler creates a new plans handler.
func NewPlansHandler(deps Dependencies, maxBodyBytes int64) *PlansHandler {
	return &PlansHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

type batchRequest struct {
	Items []types.PlanInput `json:"items"`
}

type batchResponse struct {
	Results []types.BatchResult `json:"results"`
}

// HandlePostPlan handles POST /plans.
func (h *PlansHandler) HandlePostPlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_plan"
	var in types.PlanInput
	if err := decodeJSON(w, r, h.maxBodyBytes, &in); err != nil {
		fail(w, op, WrapKind("decode", ErrBadRequest, err))
		return
	}
	plan, err := h.deps.Plan(r.Context(), in)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// HandlePostBatch handles POST /plans/batch.
func (h *PlansHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_batch"
	var req batchRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		fail(w, op, WrapKind("decode", ErrBadRequest, err))
		return
	}
	if len(req.Items) == 0 {
		fail(w, op, NewKind("items", ErrBadRequest))
		return
	}
	results, err := h.deps.PlanBatch(r.Context(), req.Items)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}
