package mockjudge

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"contest_judge/internal/common"
	"contest_judge/internal/judge"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Server is a stand-in for the Judge0 REST API used in tests and local runs.
type Server struct {
	store           *Store
	processingDelay time.Duration
}

func NewServer(store *Store, processingDelay time.Duration) *Server {
	return &Server{store: store, processingDelay: processingDelay}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/submissions", s.createSubmission)
	r.Get("/submissions/{token}", s.getSubmission)
	return r
}

func (s *Server) createSubmission(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if !judge.KnownLanguageID(sub.LanguageID) {
		common.RespondWithJSON(w, http.StatusUnprocessableEntity, map[string][]string{
			"language_id": {"language with id " + strconv.Itoa(sub.LanguageID) + " doesn't exist"},
		})
		return
	}

	token := uuid.NewString()
	s.store.Put(token, sub)
	log.Printf("INFO: mock judge accepted token %s (language %d)", token, sub.LanguageID)
	common.RespondWithJSON(w, http.StatusCreated, map[string]string{"token": token})
}

type wireStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type wireResult struct {
	Token         string     `json:"token"`
	Stdout        *string    `json:"stdout"`
	Stderr        *string    `json:"stderr"`
	CompileOutput *string    `json:"compile_output"`
	Message       *string    `json:"message"`
	Time          *string    `json:"time"`
	Memory        *int       `json:"memory"`
	Status        wireStatus `json:"status"`
}

func (s *Server) getSubmission(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	sub, age, ok := s.store.Get(token)
	if !ok {
		common.RespondWithError(w, http.StatusNotFound, "Not found")
		return
	}

	if age < s.processingDelay {
		common.RespondWithJSON(w, http.StatusOK, wireResult{
			Token:  token,
			Status: wireStatus{ID: judge.StatusInQueue, Description: "In Queue"},
		})
		return
	}

	common.RespondWithJSON(w, http.StatusOK, toWire(Simulate(token, sub)))
}

func toWire(res *judge.ExecutionResult) wireResult {
	out := wireResult{
		Token:         res.Token,
		Stdout:        optional(res.Stdout),
		Stderr:        optional(res.Stderr),
		CompileOutput: optional(res.CompileOutput),
		Message:       optional(res.Message),
		Status:        wireStatus{ID: res.StatusID, Description: res.StatusDescription},
	}
	if res.Time != nil {
		t := strconv.FormatFloat(*res.Time, 'f', 3, 64)
		out.Time = &t
	}
	if res.Memory != nil {
		m := int(*res.Memory)
		out.Memory = &m
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
