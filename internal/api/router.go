package api

import (
	"net/http"
	"time"

	"contest_judge/internal/api/handler"
	"contest_judge/internal/common"
	"contest_judge/internal/common/security"
	"contest_judge/internal/judge"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type Services struct {
	Auth        handler.AuthService
	Contests    handler.ContestService
	Leaderboard handler.LeaderboardReader
	Submissions handler.SubmissionService
	Jobs        interface {
		handler.JobQueue
		handler.JobReader
	}
	Plagiarism handler.PlagiarismService
}

// NewRouter wires every handler under /api/v1. requestTimeout bounds a request,
// including a ?wait=true submission that judges inline.
func NewRouter(svc Services, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(requestTimeout))

	// Looks for "Authorization: Bearer T" and leaves the result in the context for middleware.Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(svc.Auth)
	contestHandler := handler.NewContestHandler(svc.Contests)
	leaderboardHandler := handler.NewLeaderboardHandler(svc.Leaderboard)
	submissionHandler := handler.NewSubmissionHandler(svc.Submissions, svc.Jobs)
	jobHandler := handler.NewJobHandler(svc.Jobs)
	plagiarismHandler := handler.NewPlagiarismHandler(svc.Plagiarism)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/auth", authHandler.RegisterRoutes)
		v1.Get("/languages", func(w http.ResponseWriter, r *http.Request) {
			common.RespondWithJSON(w, http.StatusOK, judge.SupportedLanguages())
		})

		v1.Route("/contests", func(cr chi.Router) {
			contestHandler.RegisterRoutes(cr)
			leaderboardHandler.RegisterRoutes(cr)
			submissionHandler.RegisterContestRoutes(cr)
		})

		v1.Route("/submissions", submissionHandler.RegisterRoutes)
		v1.Route("/jobs", jobHandler.RegisterRoutes)
		v1.Route("/admin/plagiarism", plagiarismHandler.RegisterRoutes)
	})

	return r
}
