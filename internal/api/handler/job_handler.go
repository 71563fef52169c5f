package handler

import (
	"context"
	"net/http"

	"contest_judge/internal/api/middleware"
	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type JobReader interface {
	GetJob(ctx context.Context, jobID, requesterID string, isAdmin bool) (*model.ExecutionJob, error)
}

type JobHandler struct {
	jobs JobReader
}

func NewJobHandler(jobs JobReader) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (h *JobHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/{jobID}", h.getJob)
}

func (h *JobHandler) getJob(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, ok := caller(w, r)
	if !ok {
		return
	}

	job, err := h.jobs.GetJob(r.Context(), chi.URLParam(r, "jobID"), userID, isAdmin)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, job)
}
