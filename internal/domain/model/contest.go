package model

import (
	"time"
)

type Contest struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	CreatedByID *string    `json:"created_by_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Questions   []Question `json:"questions,omitempty"`
}

// IsOpen reports whether submissions are accepted at t.
func (c *Contest) IsOpen(t time.Time) bool {
	return !t.Before(c.StartTime) && t.Before(c.EndTime)
}

type Question struct {
	ID           string     `json:"id"`
	ContestID    string     `json:"contest_id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description"`
	Points       int        `json:"points"`
	SampleInput  *string    `json:"sample_input,omitempty"`
	SampleOutput *string    `json:"sample_output,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	TestCases    []TestCase `json:"test_cases,omitempty"` // Hidden ones only for admins
}

// HasSample is true when both halves of the sample are present.
func (q *Question) HasSample() bool {
	return q.SampleInput != nil && q.SampleOutput != nil
}

type TestCase struct {
	ID             string    `json:"id"`
	QuestionID     string    `json:"question_id"`
	Input          string    `json:"input"`
	ExpectedOutput string    `json:"expected_output"`
	IsHidden       bool      `json:"is_hidden"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}
