package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	// UpdateVerdict is the rejudge path; nothing else mutates a stored submission.
	UpdateVerdict(ctx context.Context, tx *sql.Tx, sub *model.Submission) error

	// ListForUserInContest returns the full history, oldest first. Pass the leaderboard tx to read under its lock.
	ListForUserInContest(ctx context.Context, tx *sql.Tx, contestID, userID string) ([]model.Submission, error)
	// ListByContest returns every submission with user and question joins, oldest first.
	ListByContest(ctx context.Context, contestID string) ([]model.Submission, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, s *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, contest_id, question_id, code, language, status, score,
	                                   total_tests, passed_tests, runtime, memory, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := on(r.db, tx).ExecContext(ctx, query, s.ID, s.UserID, s.ContestID, s.QuestionID, s.Code, s.Language, s.Status, s.Score,
		s.TotalTests, s.PassedTests, s.Runtime, s.Memory, s.SubmittedAt)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

const submissionJoinColumns = `s.id, s.user_id, s.contest_id, s.question_id, s.code, s.language, s.status, s.score,
	s.total_tests, s.passed_tests, s.runtime, s.memory, s.submitted_at, s.rejudged_at,
	u.username, u.name, q.title`

const submissionJoins = `FROM submissions s
	JOIN users u ON u.id = s.user_id
	JOIN questions q ON q.id = s.question_id`

func scanSubmission(row interface{ Scan(...any) error }) (*model.Submission, error) {
	s := &model.Submission{}
	var rejudgedAt sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.ContestID, &s.QuestionID, &s.Code, &s.Language, &s.Status, &s.Score,
		&s.TotalTests, &s.PassedTests, &s.Runtime, &s.Memory, &s.SubmittedAt, &rejudgedAt,
		&s.Username, &s.Name, &s.QuestionTitle)
	if err != nil {
		return nil, err
	}
	if rejudgedAt.Valid {
		s.RejudgedAt = &rejudgedAt.Time
	}
	return s, nil
}

func (r *pgSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, `SELECT `+submissionJoinColumns+` `+submissionJoins+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("submission %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID: %w", err)
	}
	return s, nil
}

func (r *pgSubmissionRepository) UpdateVerdict(ctx context.Context, tx *sql.Tx, s *model.Submission) error {
	if s.RejudgedAt == nil {
		now := time.Now().UTC()
		s.RejudgedAt = &now
	}
	query := `UPDATE submissions SET status = $1, score = $2, total_tests = $3, passed_tests = $4,
	                                 runtime = $5, memory = $6, rejudged_at = $7
	          WHERE id = $8`
	res, err := on(r.db, tx).ExecContext(ctx, query, s.Status, s.Score, s.TotalTests, s.PassedTests, s.Runtime, s.Memory, s.RejudgedAt, s.ID)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.UpdateVerdict: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("submission %s: %w", s.ID, common.ErrNotFound)
	}
	return nil
}

func (r *pgSubmissionRepository) query(ctx context.Context, q querier, query string, args ...any) ([]model.Submission, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

func (r *pgSubmissionRepository) ListForUserInContest(ctx context.Context, tx *sql.Tx, contestID, userID string) ([]model.Submission, error) {
	subs, err := r.query(ctx, on(r.db, tx),
		`SELECT `+submissionJoinColumns+` `+submissionJoins+`
		 WHERE s.contest_id = $1 AND s.user_id = $2
		 ORDER BY s.submitted_at ASC`, contestID, userID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListForUserInContest: %w", err)
	}
	return subs, nil
}

func (r *pgSubmissionRepository) ListByContest(ctx context.Context, contestID string) ([]model.Submission, error) {
	subs, err := r.query(ctx, r.db,
		`SELECT `+submissionJoinColumns+` `+submissionJoins+`
		 WHERE s.contest_id = $1
		 ORDER BY s.submitted_at ASC`, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListByContest: %w", err)
	}
	return subs, nil
}
