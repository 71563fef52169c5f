package model

import "time"

type SubmissionStatus string

const (
	StatusPending           SubmissionStatus = "PENDING"
	StatusAccepted          SubmissionStatus = "ACCEPTED"
	StatusWrongAnswer       SubmissionStatus = "WRONG_ANSWER"
	StatusTimeLimitExceeded SubmissionStatus = "TIME_LIMIT_EXCEEDED"
	StatusCompilationError  SubmissionStatus = "COMPILATION_ERROR"
	StatusRuntimeError      SubmissionStatus = "RUNTIME_ERROR"
	StatusError             SubmissionStatus = "ERROR" // judge or infrastructure failure, rejudgeable
)

type Submission struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	ContestID   string           `json:"contest_id"`
	QuestionID  string           `json:"question_id"`
	Code        string           `json:"code,omitempty"` // Omitted from listings
	Language    Language         `json:"language"`
	Status      SubmissionStatus `json:"status"`
	Score       int              `json:"score"`
	TotalTests  int              `json:"total_tests"`
	PassedTests int              `json:"passed_tests"`
	Runtime     float64          `json:"runtime"` // seconds, mean over executed tests
	Memory      float64          `json:"memory"`  // KB
	SubmittedAt time.Time        `json:"submitted_at"`
	RejudgedAt  *time.Time       `json:"rejudged_at,omitempty"`

	Username      string `json:"username,omitempty"` // For display
	Name          string `json:"name,omitempty"`
	QuestionTitle string `json:"question_title,omitempty"`
}

// MySubmissionsSummary is the per-user view of one contest.
type MySubmissionsSummary struct {
	Submissions []Submission `json:"submissions"`
	TotalScore  int          `json:"total_score"`
	Rank        *int         `json:"rank,omitempty"`
}
