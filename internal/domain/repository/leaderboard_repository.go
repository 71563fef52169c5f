package repository

import (
	"context"
	"database/sql"
	"fmt"

	"contest_judge/internal/domain/model"
)

type LeaderboardRepository interface {
	// LockUser serializes recomputes of one (contest, user) row until tx ends.
	LockUser(ctx context.Context, tx *sql.Tx, contestID, userID string) error
	Upsert(ctx context.Context, tx *sql.Tx, entry *model.LeaderboardEntry) error
	ListByContest(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error)
}

type pgLeaderboardRepository struct {
	db *sql.DB
}

func NewPgLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &pgLeaderboardRepository{db: db}
}

func (r *pgLeaderboardRepository) LockUser(ctx context.Context, tx *sql.Tx, contestID, userID string) error {
	if tx == nil {
		return fmt.Errorf("pgLeaderboardRepository.LockUser: transaction required")
	}
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2::text))`, contestID, userID)
	if err != nil {
		return fmt.Errorf("pgLeaderboardRepository.LockUser: %w", err)
	}
	return nil
}

func (r *pgLeaderboardRepository) Upsert(ctx context.Context, tx *sql.Tx, e *model.LeaderboardEntry) error {
	query := `INSERT INTO leaderboard (contest_id, user_id, username, total_score, last_submission_time, updated_at)
	          VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
	          ON CONFLICT (contest_id, user_id) DO UPDATE SET
	              username = EXCLUDED.username,
	              total_score = EXCLUDED.total_score,
	              last_submission_time = EXCLUDED.last_submission_time,
	              updated_at = CURRENT_TIMESTAMP
	          RETURNING updated_at`
	err := on(r.db, tx).QueryRowContext(ctx, query, e.ContestID, e.UserID, e.Username, e.TotalScore, e.LastSubmissionTime).
		Scan(&e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgLeaderboardRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgLeaderboardRepository) ListByContest(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error) {
	query := `SELECT contest_id, user_id, username, total_score, last_submission_time, updated_at
	          FROM leaderboard WHERE contest_id = $1
	          ORDER BY total_score DESC, last_submission_time ASC NULLS LAST`
	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgLeaderboardRepository.ListByContest: %w", err)
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		var last sql.NullTime
		if err := rows.Scan(&e.ContestID, &e.UserID, &e.Username, &e.TotalScore, &last, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgLeaderboardRepository.ListByContest scan: %w", err)
		}
		if last.Valid {
			e.LastSubmissionTime = &last.Time
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
