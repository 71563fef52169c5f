package model

import "time"

type PlagiarismUser struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	SubmissionID string    `json:"submissionId"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

type PlagiarismResult struct {
	Similarity int               `json:"similarity"` // rounded percent
	Method     string            `json:"method"`
	Question   string            `json:"question"`
	Users      [2]PlagiarismUser `json:"users"`
}

type PlagiarismReport struct {
	TotalSubmissions int                `json:"totalSubmissions"`
	SuspiciousPairs  int                `json:"suspiciousPairs"`
	Threshold        float64            `json:"threshold"`
	Results          []PlagiarismResult `json:"results"`
}

type ComparedSubmission struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	Question    string    `json:"question"`
	Code        string    `json:"code"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type SimilarityPercentages struct {
	Jaccard     int    `json:"jaccard"`
	Levenshtein int    `json:"levenshtein"`
	Overall     int    `json:"overall"`
	Method      string `json:"method"`
}

type PairComparison struct {
	Submission1 ComparedSubmission    `json:"submission1"`
	Submission2 ComparedSubmission    `json:"submission2"`
	Similarity  SimilarityPercentages `json:"similarity"`
}
