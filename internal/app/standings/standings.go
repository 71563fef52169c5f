// Package standings holds the pure leaderboard math: per-user totals and ranking.
package standings

import (
	"sort"
	"time"

	"contest_judge/internal/domain/model"
)

type Totals struct {
	TotalScore         int
	LastSubmissionTime *time.Time
	BestPerQuestion    map[string]model.Submission
}

// Compute folds one user's history in one contest. Only ACCEPTED submissions count;
// among equal best scores for a question the earliest submission wins.
func Compute(subs []model.Submission) Totals {
	best := make(map[string]model.Submission)
	for _, s := range subs {
		if s.Status != model.StatusAccepted {
			continue
		}
		cur, ok := best[s.QuestionID]
		if !ok || s.Score > cur.Score || (s.Score == cur.Score && s.SubmittedAt.Before(cur.SubmittedAt)) {
			best[s.QuestionID] = s
		}
	}

	t := Totals{BestPerQuestion: best}
	for _, s := range best {
		t.TotalScore += s.Score
		if t.LastSubmissionTime == nil || s.SubmittedAt.Before(*t.LastSubmissionTime) {
			at := s.SubmittedAt
			t.LastSubmissionTime = &at
		}
	}
	return t
}

// Rank sorts by score desc then earliest best time, nil times last, and assigns 1..N.
func Rank(entries []model.LeaderboardEntry) []model.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		switch {
		case a.LastSubmissionTime == nil:
			return false
		case b.LastSubmissionTime == nil:
			return true
		}
		return a.LastSubmissionTime.Before(*b.LastSubmissionTime)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// RankOf returns the 1-based position of userID, or nil when absent.
func RankOf(entries []model.LeaderboardEntry, userID string) *int {
	for _, e := range entries {
		if e.UserID == userID {
			r := e.Rank
			return &r
		}
	}
	return nil
}
