package model

import (
	"encoding/json"
	"time"
)

const (
	JobTypeSubmissionEvaluation = "submission_evaluation"
	JobTypeRejudge              = "rejudge"

	JobStatusQueued     = "Queued"
	JobStatusProcessing = "Processing" // Worker picked it up and holds the judge lock
	JobStatusCompleted  = "Completed"
	JobStatusFailed     = "Failed" // Unrecoverable error before a verdict could be stored
)

type ExecutionJob struct {
	ID           string          `json:"id"`
	JobType      string          `json:"job_type"`
	Status       string          `json:"status"`
	Payload      json.RawMessage `json:"-"` // Not directly exposed; internal use
	Result       json.RawMessage `json:"result,omitempty"`
	UserID       string          `json:"user_id"`
	ContestID    string          `json:"contest_id"`
	SubmissionID *string         `json:"submission_id,omitempty"`
	Attempts     int             `json:"attempts"`
	LastError    *string         `json:"last_error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Payloads for different job types (stored in ExecutionJob.Payload)
type SubmissionEvaluationPayload struct {
	QuestionID  string    `json:"question_id"`
	Code        string    `json:"code"`
	Language    Language  `json:"language"`
	SubmittedAt time.Time `json:"submitted_at"` // when the API accepted it; the contest window is judged against this
}

type RejudgePayload struct {
	SubmissionID string `json:"submission_id"`
}
