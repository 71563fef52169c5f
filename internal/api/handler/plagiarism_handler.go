package handler

import (
	"context"
	"net/http"

	"contest_judge/internal/api/middleware"
	"contest_judge/internal/app/service"
	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type PlagiarismService interface {
	ScanContest(ctx context.Context, contestID string, threshold *float64) (*model.PlagiarismReport, error)
	CompareSubmissions(ctx context.Context, id1, id2 string) (*model.PairComparison, error)
}

type PlagiarismHandler struct {
	plagiarism PlagiarismService
}

func NewPlagiarismHandler(ps PlagiarismService) *PlagiarismHandler {
	return &PlagiarismHandler{plagiarism: ps}
}

// RegisterRoutes mounts /admin/plagiarism. Admin only.
func (h *PlagiarismHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Post("/", h.scan)
	r.Get("/compare", h.compare)
}

func (h *PlagiarismHandler) scan(w http.ResponseWriter, r *http.Request) {
	var req service.ScanRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	report, err := h.plagiarism.ScanContest(r.Context(), req.ContestID, req.Threshold)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, report)
}

func (h *PlagiarismHandler) compare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cmp, err := h.plagiarism.CompareSubmissions(r.Context(), q.Get("submission1"), q.Get("submission2"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, cmp)
}
