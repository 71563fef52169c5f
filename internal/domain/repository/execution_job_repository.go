package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"
)

type ExecutionJobRepository interface {
	CreateJob(ctx context.Context, tx *sql.Tx, job *model.ExecutionJob) error
	GetJobByID(ctx context.Context, id string) (*model.ExecutionJob, error)
	UpdateJobStatus(ctx context.Context, tx *sql.Tx, jobID string, status string, lastError *string) error
	IncrementJobAttempts(ctx context.Context, tx *sql.Tx, jobID string) error
	CompleteJob(ctx context.Context, tx *sql.Tx, jobID string, submissionID *string, result json.RawMessage) error
}

type pgExecutionJobRepository struct {
	db *sql.DB
}

func NewPgExecutionJobRepository(db *sql.DB) ExecutionJobRepository {
	return &pgExecutionJobRepository{db: db}
}

func (r *pgExecutionJobRepository) CreateJob(ctx context.Context, tx *sql.Tx, job *model.ExecutionJob) error {
	query := `INSERT INTO execution_jobs (id, job_type, status, payload, user_id, contest_id, submission_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`
	err := on(r.db, tx).QueryRowContext(ctx, query, job.ID, job.JobType, job.Status, []byte(job.Payload), job.UserID, job.ContestID, job.SubmissionID).
		Scan(&job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgExecutionJobRepository.CreateJob: %w", err)
	}
	return nil
}

func (r *pgExecutionJobRepository) GetJobByID(ctx context.Context, id string) (*model.ExecutionJob, error) {
	query := `SELECT id, job_type, status, payload, result, user_id, contest_id, submission_id, attempts, last_error, created_at, updated_at
	          FROM execution_jobs WHERE id = $1`
	job := &model.ExecutionJob{}
	var payload, result []byte
	var submissionID, lastError sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.JobType, &job.Status, &payload, &result, &job.UserID, &job.ContestID, &submissionID,
		&job.Attempts, &lastError, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgExecutionJobRepository.GetJobByID: %w", err)
	}
	job.Payload = payload
	if len(result) > 0 {
		job.Result = result
	}
	if submissionID.Valid {
		job.SubmissionID = &submissionID.String
	}
	if lastError.Valid {
		job.LastError = &lastError.String
	}
	return job, nil
}

func (r *pgExecutionJobRepository) UpdateJobStatus(ctx context.Context, tx *sql.Tx, jobID string, status string, lastError *string) error {
	query := `UPDATE execution_jobs SET status = $1, last_error = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`
	if _, err := on(r.db, tx).ExecContext(ctx, query, status, lastError, jobID); err != nil {
		return fmt.Errorf("pgExecutionJobRepository.UpdateJobStatus: %w", err)
	}
	return nil
}

func (r *pgExecutionJobRepository) IncrementJobAttempts(ctx context.Context, tx *sql.Tx, jobID string) error {
	query := `UPDATE execution_jobs SET attempts = attempts + 1, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := on(r.db, tx).ExecContext(ctx, query, jobID); err != nil {
		return fmt.Errorf("pgExecutionJobRepository.IncrementJobAttempts: %w", err)
	}
	return nil
}

func (r *pgExecutionJobRepository) CompleteJob(ctx context.Context, tx *sql.Tx, jobID string, submissionID *string, result json.RawMessage) error {
	query := `UPDATE execution_jobs
	          SET status = $1, submission_id = COALESCE($2, submission_id), result = $3, last_error = NULL, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $4`
	if _, err := on(r.db, tx).ExecContext(ctx, query, model.JobStatusCompleted, submissionID, []byte(result), jobID); err != nil {
		return fmt.Errorf("pgExecutionJobRepository.CompleteJob: %w", err)
	}
	return nil
}
