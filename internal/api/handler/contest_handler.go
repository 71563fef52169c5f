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

type ContestService interface {
	CreateContest(ctx context.Context, userID string, req service.CreateContestRequest) (*model.Contest, error)
	GetContest(ctx context.Context, contestID string) (*model.Contest, error)
	CreateQuestion(ctx context.Context, contestID string, req service.CreateQuestionRequest) (*model.Question, error)
	GetQuestion(ctx context.Context, contestID, questionID string, isAdmin bool) (*model.Question, error)
}

type ContestHandler struct {
	contestService ContestService
}

func NewContestHandler(cs ContestService) *ContestHandler {
	return &ContestHandler{contestService: cs}
}

// RegisterRoutes mounts contest reads and admin-only authoring. Mounted under /contests.
func (h *ContestHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Get("/{contestID}", h.getContest)
		authed.Get("/{contestID}/questions/{questionID}", h.getQuestion)

		authed.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminOnly)
			admin.Post("/", h.createContest)
			admin.Post("/{contestID}/questions", h.createQuestion)
		})
	})
}

func (h *ContestHandler) createContest(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(w, r)
	if !ok {
		return
	}

	var req service.CreateContestRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	contest, err := h.contestService.CreateContest(r.Context(), userID, req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, contest)
}

func (h *ContestHandler) getContest(w http.ResponseWriter, r *http.Request) {
	contest, err := h.contestService.GetContest(r.Context(), chi.URLParam(r, "contestID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contest)
}

func (h *ContestHandler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req service.CreateQuestionRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	question, err := h.contestService.CreateQuestion(r.Context(), chi.URLParam(r, "contestID"), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, question)
}

func (h *ContestHandler) getQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.contestService.GetQuestion(r.Context(),
		chi.URLParam(r, "contestID"), chi.URLParam(r, "questionID"), middleware.IsAdmin(r.Context()))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, question)
}
