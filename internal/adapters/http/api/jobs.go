package api

import (
	"net/http"
	"strings"

	"github.com/okian/reelplan/internal/domain/types"
)

// JobsHandler serves asynchronous planning jobs.
type JobsHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps Dependencies, maxBodyBytes int64) *JobsHandler {
	return &JobsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

type acceptedResponse struct {
	ID     string          `json:"id"`
	Status types.JobStatus `json:"status"`
}

// HandlePostJob handles POST /jobs. The job is planned in the background;
// poll GET /jobs/{id} for the result.
func (h *JobsHandler) HandlePostJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_job"
	var in types.PlanInput
	if err := decodeJSON(w, r, h.maxBodyBytes, &in); err != nil {
		fail(w, op, WrapKind("decode", ErrBadRequest, err))
		return
	}
	job, err := h.deps.Submit(r.Context(), in)
	if err != nil {
		fail(w, op, err)
		return
	}
	w.Header().Set("Location", "/jobs/"+job.ID)
	writeJSON(w, http.StatusAccepted, acceptedResponse{ID: job.ID, Status: job.Status})
}

// HandleGetJob handles GET /jobs/{id}.
func (h *JobsHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		fail(w, op, NewKind("id", ErrBadRequest))
		return
	}
	job, err := h.deps.Job(r.Context(), id)
	if err != nil {
		fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
