package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"contest_judge/internal/app/standings"
	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"
	"contest_judge/internal/domain/repository"
	"contest_judge/internal/platform/queue"

	"github.com/redis/go-redis/v9"
)

type LeaderboardService struct {
	db              *sql.DB
	submissionRepo  repository.SubmissionRepository
	leaderboardRepo repository.LeaderboardRepository
	userRepo        repository.UserRepository
	rdb             *redis.Client // optional read cache
	cacheTTL        time.Duration
}

func NewLeaderboardService(
	db *sql.DB,
	subRepo repository.SubmissionRepository,
	lbRepo repository.LeaderboardRepository,
	userRepo repository.UserRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) *LeaderboardService {
	return &LeaderboardService{
		db:              db,
		submissionRepo:  subRepo,
		leaderboardRepo: lbRepo,
		userRepo:        userRepo,
		rdb:             rdb,
		cacheTTL:        cacheTTL,
	}
}

// UpdateLeaderboard recomputes the user's row from their whole contest history.
// The advisory lock makes concurrent recomputes for the same user apply one after another,
// so the last commit always reflects every submission stored before it.
func (s *LeaderboardService) UpdateLeaderboard(ctx context.Context, userID, contestID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.leaderboardRepo.LockUser(ctx, tx, contestID, userID); err != nil {
		return err
	}

	subs, err := s.submissionRepo.ListForUserInContest(ctx, tx, contestID, userID)
	if err != nil {
		return err
	}
	totals := standings.Compute(subs)

	entry := &model.LeaderboardEntry{
		ContestID:          contestID,
		UserID:             userID,
		TotalScore:         totals.TotalScore,
		LastSubmissionTime: totals.LastSubmissionTime,
	}
	if len(subs) > 0 {
		entry.Username = subs[0].Username
	} else {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		entry.Username = user.Username
	}

	if err := s.leaderboardRepo.Upsert(ctx, tx, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return common.Errorf("failed to commit leaderboard update: %w", err)
	}

	s.invalidate(ctx, contestID)
	return nil
}

// GetLeaderboard serves the ranked board, from cache when fresh.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error) {
	key := queue.LeaderboardCacheKey(contestID)
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var entries []model.LeaderboardEntry
			if jsonErr := json.Unmarshal(cached, &entries); jsonErr == nil {
				return entries, nil
			}
			log.Printf("WARN: dropping unreadable leaderboard cache for contest %s", contestID)
		case !errors.Is(err, redis.Nil):
			log.Printf("WARN: leaderboard cache read failed for contest %s: %v", contestID, err)
		}
	}

	entries, err := s.leaderboardRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	entries = standings.Rank(entries)

	if s.rdb != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.rdb.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				log.Printf("WARN: leaderboard cache write failed for contest %s: %v", contestID, err)
			}
		}
	}
	return entries, nil
}

func (s *LeaderboardService) invalidate(ctx context.Context, contestID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, queue.LeaderboardCacheKey(contestID)).Err(); err != nil {
		log.Printf("WARN: failed to invalidate leaderboard cache for contest %s: %v", contestID, err)
	}
}
