package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"contest_judge/internal/app/service"
	"contest_judge/internal/domain/model"
	"contest_judge/internal/platform/queue"

	"github.com/redis/go-redis/v9"
)

// JobStore is the slice of ExecutionJobService the worker needs.
type JobStore interface {
	GetJobByID(ctx context.Context, jobID string) (*model.ExecutionJob, error)
	MarkProcessing(ctx context.Context, jobID string) error
	Complete(ctx context.Context, jobID string, res *service.SubmitResult) error
	Fail(ctx context.Context, jobID string, cause error) error
	Requeue(ctx context.Context, jobID string) error
}

type SubmissionJudge interface {
	JudgeAndRecord(ctx context.Context, userID string, req service.SubmitRequest, submittedAt time.Time) (*service.SubmitResult, error)
	Rejudge(ctx context.Context, submissionID string) (*service.SubmitResult, error)
}

type Config struct {
	QueueName    string
	LockPrefix   string
	LockTTL      time.Duration
	Concurrency  int
	RequeueDelay time.Duration
}

type ExecutionWorker struct {
	rdb         *redis.Client
	jobs        JobStore
	submissions SubmissionJudge
	cfg         Config
}

func NewExecutionWorker(rdb *redis.Client, jobs JobStore, submissions SubmissionJudge, cfg Config) *ExecutionWorker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.RequeueDelay <= 0 {
		cfg.RequeueDelay = 200 * time.Millisecond
	}
	return &ExecutionWorker{rdb: rdb, jobs: jobs, submissions: submissions, cfg: cfg}
}

// Start runs Concurrency consumers until ctx is cancelled.
func (w *ExecutionWorker) Start(ctx context.Context) {
	log.Printf("Execution worker started with %d consumers, listening to queue: %s", w.cfg.Concurrency, w.cfg.QueueName)
	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.consume(ctx, id)
		}(i)
	}
	wg.Wait()
	log.Println("Execution worker stopped.")
}

func (w *ExecutionWorker) consume(ctx context.Context, consumerID int) {
	for {
		if ctx.Err() != nil {
			return
		}

		// A bounded timeout lets the loop notice shutdown.
		res, err := w.rdb.BRPop(ctx, 5*time.Second, w.cfg.QueueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Printf("ERROR: consumer %d failed to BRPop from Redis queue '%s': %v", consumerID, w.cfg.QueueName, err)
			sleep(ctx, 5*time.Second)
			continue
		}

		// res is [queueName, value]
		if len(res) < 2 || res[1] == "" {
			log.Println("WARN: BRPop returned empty job ID.")
			continue
		}
		w.processJobWithLock(ctx, res[1])
	}
}

func (w *ExecutionWorker) processJobWithLock(ctx context.Context, jobID string) {
	job, err := w.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		// Without the record there is nothing to judge; the ID is dropped.
		log.Printf("ERROR: Failed to fetch job %s from DB: %v", jobID, err)
		return
	}
	if job.Status == model.JobStatusCompleted || job.Status == model.JobStatusFailed {
		log.Printf("WARN: job %s already %s, skipping", job.ID, job.Status)
		return
	}

	key := queue.JudgeLockKey(w.cfg.LockPrefix, job.ContestID, job.UserID)
	lock, err := queue.AcquireLock(ctx, w.rdb, key, w.cfg.LockTTL)
	if err != nil {
		log.Printf("ERROR: Failed to attempt lock acquisition for job %s: %v", job.ID, err)
		w.requeue(ctx, job.ID)
		return
	}
	if lock == nil {
		log.Printf("INFO: %s is busy, re-queueing job %s", key, job.ID)
		w.requeue(ctx, job.ID)
		return
	}

	defer func() {
		released, err := lock.Release(context.WithoutCancel(ctx))
		if err != nil {
			log.Printf("ERROR: %v (job %s)", err, job.ID)
		} else if !released {
			log.Printf("WARN: Did not release lock %s for job %s; it expired or was taken by another.", key, job.ID)
		}
	}()

	w.handleJob(ctx, job)
}

func (w *ExecutionWorker) requeue(ctx context.Context, jobID string) {
	sleep(ctx, w.cfg.RequeueDelay)
	if err := w.jobs.Requeue(context.WithoutCancel(ctx), jobID); err != nil {
		log.Printf("ERROR: %v", err)
	}
}

// handleJob runs one job while the caller holds its lock.
func (w *ExecutionWorker) handleJob(ctx context.Context, job *model.ExecutionJob) {
	if err := w.jobs.MarkProcessing(ctx, job.ID); err != nil {
		log.Printf("ERROR: Failed to update job %s status to Processing: %v", job.ID, err)
	}

	var res *service.SubmitResult
	var err error
	switch job.JobType {
	case model.JobTypeSubmissionEvaluation:
		var payload model.SubmissionEvaluationPayload
		if err = json.Unmarshal(job.Payload, &payload); err != nil {
			err = fmt.Errorf("bad submission payload: %w", err)
			break
		}
		req := service.SubmitRequest{
			ContestID:  job.ContestID,
			QuestionID: payload.QuestionID,
			Code:       payload.Code,
			Language:   payload.Language,
		}
		submittedAt := payload.SubmittedAt
		if submittedAt.IsZero() {
			submittedAt = job.CreatedAt
		}
		res, err = w.submissions.JudgeAndRecord(ctx, job.UserID, req, submittedAt)

	case model.JobTypeRejudge:
		var payload model.RejudgePayload
		if err = json.Unmarshal(job.Payload, &payload); err != nil {
			err = fmt.Errorf("bad rejudge payload: %w", err)
			break
		}
		res, err = w.submissions.Rejudge(ctx, payload.SubmissionID)

	default:
		err = fmt.Errorf("unknown job type '%s'", job.JobType)
	}

	// Job bookkeeping must land even during shutdown.
	bg := context.WithoutCancel(ctx)
	if err != nil && ctx.Err() != nil {
		// Shutdown cut the judge run short; nothing was stored, so run it again later.
		log.Printf("WARN: job %s interrupted (%v), re-queueing", job.ID, err)
		if qErr := w.jobs.Requeue(bg, job.ID); qErr != nil {
			log.Printf("ERROR: %v", qErr)
		}
		return
	}
	if err != nil {
		log.Printf("ERROR: job %s (type: %s) failed: %v", job.ID, job.JobType, err)
		if fErr := w.jobs.Fail(bg, job.ID, err); fErr != nil {
			log.Printf("ERROR: Failed to mark job %s failed: %v", job.ID, fErr)
		}
		return
	}
	if cErr := w.jobs.Complete(bg, job.ID, res); cErr != nil {
		log.Printf("ERROR: Failed to complete job %s: %v", job.ID, cErr)
		return
	}
	log.Printf("INFO: Job %s (type: %s) completed with %s.", job.ID, job.JobType, res.Submission.Status)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
