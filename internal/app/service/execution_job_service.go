package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"contest_judge/internal/app/judging"
	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"
	"contest_judge/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type ExecutionJobService struct {
	jobRepo   repository.ExecutionJobRepository
	rdb       *redis.Client
	queueName string
}

func NewExecutionJobService(jobRepo repository.ExecutionJobRepository, rdb *redis.Client, queueName string) *ExecutionJobService {
	return &ExecutionJobService{jobRepo: jobRepo, rdb: rdb, queueName: queueName}
}

// EnqueueSubmission creates a job record for an already validated request and pushes its ID to Redis.
func (s *ExecutionJobService) EnqueueSubmission(ctx context.Context, userID string, req SubmitRequest, submittedAt time.Time) (*model.ExecutionJob, error) {
	payloadBytes, err := json.Marshal(model.SubmissionEvaluationPayload{
		QuestionID:  req.QuestionID,
		Code:        req.Code,
		Language:    req.Language,
		SubmittedAt: submittedAt.UTC(),
	})
	if err != nil {
		return nil, common.Errorf("failed to marshal submission payload: %w", err)
	}

	job := &model.ExecutionJob{
		ID:        uuid.NewString(),
		JobType:   model.JobTypeSubmissionEvaluation,
		Status:    model.JobStatusQueued,
		Payload:   payloadBytes,
		UserID:    userID,
		ContestID: req.ContestID,
	}
	if err := s.enqueue(ctx, job); err != nil {
		return nil, err
	}
	log.Printf("INFO: submission job %s for user %s enqueued", job.ID, userID)
	return job, nil
}

// EnqueueRejudge queues a rejudge. The lock scope is the submission owner, not the admin.
func (s *ExecutionJobService) EnqueueRejudge(ctx context.Context, sub *model.Submission) (*model.ExecutionJob, error) {
	payloadBytes, err := json.Marshal(model.RejudgePayload{SubmissionID: sub.ID})
	if err != nil {
		return nil, common.Errorf("failed to marshal rejudge payload: %w", err)
	}

	job := &model.ExecutionJob{
		ID:           uuid.NewString(),
		JobType:      model.JobTypeRejudge,
		Status:       model.JobStatusQueued,
		Payload:      payloadBytes,
		UserID:       sub.UserID,
		ContestID:    sub.ContestID,
		SubmissionID: &sub.ID,
	}
	if err := s.enqueue(ctx, job); err != nil {
		return nil, err
	}
	log.Printf("INFO: rejudge job %s for submission %s enqueued", job.ID, sub.ID)
	return job, nil
}

func (s *ExecutionJobService) enqueue(ctx context.Context, job *model.ExecutionJob) error {
	if err := s.jobRepo.CreateJob(ctx, nil, job); err != nil {
		return common.Errorf("failed to create execution job in DB: %w", err)
	}

	if err := s.rdb.LPush(ctx, s.queueName, job.ID).Err(); err != nil {
		msg := "queue unavailable: " + err.Error()
		if uErr := s.jobRepo.UpdateJobStatus(context.WithoutCancel(ctx), nil, job.ID, model.JobStatusFailed, &msg); uErr != nil {
			log.Printf("ERROR: failed to mark job %s as failed: %v", job.ID, uErr)
		}
		return fmt.Errorf("failed to push job %s to Redis queue: %w", job.ID, common.ErrServiceUnavailable)
	}
	return nil
}

// Requeue puts a job back at the far end of the queue.
func (s *ExecutionJobService) Requeue(ctx context.Context, jobID string) error {
	if err := s.rdb.LPush(ctx, s.queueName, jobID).Err(); err != nil {
		return fmt.Errorf("failed to re-queue job %s: %w", jobID, err)
	}
	return nil
}

func (s *ExecutionJobService) GetJobByID(ctx context.Context, jobID string) (*model.ExecutionJob, error) {
	return s.jobRepo.GetJobByID(ctx, jobID)
}

// GetJob returns the job for its owner or an admin. Non-admins see the redacted verdict.
func (s *ExecutionJobService) GetJob(ctx context.Context, jobID, requesterID string, isAdmin bool) (*model.ExecutionJob, error) {
	job, err := s.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		return job, nil
	}
	if job.UserID != requesterID || job.JobType == model.JobTypeRejudge {
		return nil, common.ErrForbidden
	}

	if len(job.Result) > 0 {
		var v judging.Verdict
		if err := json.Unmarshal(job.Result, &v); err != nil {
			return nil, common.Errorf("failed to decode job result: %w", err)
		}
		redacted, err := json.Marshal(v.Redacted())
		if err != nil {
			return nil, common.Errorf("failed to encode job result: %w", err)
		}
		job.Result = redacted
	}
	return job, nil
}

func (s *ExecutionJobService) MarkProcessing(ctx context.Context, jobID string) error {
	if err := s.jobRepo.IncrementJobAttempts(ctx, nil, jobID); err != nil {
		return err
	}
	return s.jobRepo.UpdateJobStatus(ctx, nil, jobID, model.JobStatusProcessing, nil)
}

// Complete stores the full verdict; redaction happens on read.
func (s *ExecutionJobService) Complete(ctx context.Context, jobID string, res *SubmitResult) error {
	result, err := json.Marshal(res.Verdict)
	if err != nil {
		return common.Errorf("failed to marshal verdict: %w", err)
	}
	return s.jobRepo.CompleteJob(ctx, nil, jobID, &res.Submission.ID, result)
}

func (s *ExecutionJobService) Fail(ctx context.Context, jobID string, cause error) error {
	msg := cause.Error()
	return s.jobRepo.UpdateJobStatus(ctx, nil, jobID, model.JobStatusFailed, &msg)
}
