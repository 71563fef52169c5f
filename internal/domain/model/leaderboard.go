package model

import "time"

type LeaderboardEntry struct {
	Rank               int        `json:"rank"`
	ContestID          string     `json:"contest_id"`
	UserID             string     `json:"user_id"`
	Username           string     `json:"username"`
	TotalScore         int        `json:"total_score"`
	LastSubmissionTime *time.Time `json:"last_submission_time,omitempty"` // earliest best time, tiebreak
	UpdatedAt          time.Time  `json:"updated_at"`
}
