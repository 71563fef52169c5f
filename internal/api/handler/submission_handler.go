package handler

import (
	"context"
	"net/http"
	"time"

	"contest_judge/internal/api/middleware"
	"contest_judge/internal/app/service"
	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type SubmissionService interface {
	ValidateSubmission(ctx context.Context, req service.SubmitRequest, at time.Time) (*model.Question, error)
	JudgeAndRecord(ctx context.Context, userID string, req service.SubmitRequest, submittedAt time.Time) (*service.SubmitResult, error)
	Rejudge(ctx context.Context, submissionID string) (*service.SubmitResult, error)
	GetSubmission(ctx context.Context, submissionID, requesterID string, isAdmin bool) (*model.Submission, error)
	MySubmissions(ctx context.Context, contestID, userID string) (*model.MySubmissionsSummary, error)
}

type JobQueue interface {
	EnqueueSubmission(ctx context.Context, userID string, req service.SubmitRequest, submittedAt time.Time) (*model.ExecutionJob, error)
	EnqueueRejudge(ctx context.Context, sub *model.Submission) (*model.ExecutionJob, error)
}

type SubmissionHandler struct {
	submissionService SubmissionService
	jobs              JobQueue
	now               func() time.Time
}

func NewSubmissionHandler(ss SubmissionService, jobs JobQueue) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss, jobs: jobs, now: time.Now}
}

type jobAccepted struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// RegisterRoutes mounts /submissions. All submission routes require auth.
func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.createSubmission)
	r.Get("/{submissionID}", h.getSubmission)
	r.With(middleware.AdminOnly).Post("/{submissionID}/rejudge", h.rejudge)
}

// RegisterContestRoutes mounts the per-user contest view under /contests.
func (h *SubmissionHandler) RegisterContestRoutes(r chi.Router) {
	r.With(middleware.Authenticator).Get("/{contestID}/submissions/me", h.mySubmissions)
}

// createSubmission queues the code for the worker and answers 202 with the job id.
// With ?wait=true it judges inline and answers with the stored submission.
func (h *SubmissionHandler) createSubmission(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(w, r)
	if !ok {
		return
	}

	var req service.SubmitRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	submittedAt := h.now()
	if wantsWait(r) {
		res, err := h.submissionService.JudgeAndRecord(r.Context(), userID, req, submittedAt)
		if err != nil {
			common.RespondWithErr(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusCreated, res.Redacted())
		return
	}

	if _, err := h.submissionService.ValidateSubmission(r.Context(), req, submittedAt); err != nil {
		common.RespondWithErr(w, err)
		return
	}
	job, err := h.jobs.EnqueueSubmission(r.Context(), userID, req, submittedAt)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, jobAccepted{JobID: job.ID, Status: job.Status})
}

func (h *SubmissionHandler) getSubmission(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, ok := caller(w, r)
	if !ok {
		return
	}

	sub, err := h.submissionService.GetSubmission(r.Context(), chi.URLParam(r, "submissionID"), userID, isAdmin)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}

func (h *SubmissionHandler) rejudge(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, ok := caller(w, r)
	if !ok {
		return
	}
	submissionID := chi.URLParam(r, "submissionID")

	if wantsWait(r) {
		res, err := h.submissionService.Rejudge(r.Context(), submissionID)
		if err != nil {
			common.RespondWithErr(w, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, res)
		return
	}

	sub, err := h.submissionService.GetSubmission(r.Context(), submissionID, userID, isAdmin)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	job, err := h.jobs.EnqueueRejudge(r.Context(), sub)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, jobAccepted{JobID: job.ID, Status: job.Status})
}

func (h *SubmissionHandler) mySubmissions(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(w, r)
	if !ok {
		return
	}

	summary, err := h.submissionService.MySubmissions(r.Context(), chi.URLParam(r, "contestID"), userID)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, summary)
}
