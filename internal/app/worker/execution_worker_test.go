package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"contest_judge/internal/app/judging"
	"contest_judge/internal/app/service"
	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockJobStore struct {
	mock.Mock
}

func (m *mockJobStore) GetJobByID(ctx context.Context, jobID string) (*model.ExecutionJob, error) {
	args := m.Called(ctx, jobID)
	job, _ := args.Get(0).(*model.ExecutionJob)
	return job, args.Error(1)
}

func (m *mockJobStore) MarkProcessing(ctx context.Context, jobID string) error {
	return m.Called(ctx, jobID).Error(0)
}

func (m *mockJobStore) Complete(ctx context.Context, jobID string, res *service.SubmitResult) error {
	return m.Called(ctx, jobID, res).Error(0)
}

func (m *mockJobStore) Fail(ctx context.Context, jobID string, cause error) error {
	return m.Called(ctx, jobID, cause).Error(0)
}

func (m *mockJobStore) Requeue(ctx context.Context, jobID string) error {
	return m.Called(ctx, jobID).Error(0)
}

type mockJudge struct {
	mock.Mock
}

func (m *mockJudge) JudgeAndRecord(ctx context.Context, userID string, req service.SubmitRequest, submittedAt time.Time) (*service.SubmitResult, error) {
	args := m.Called(ctx, userID, req, submittedAt)
	res, _ := args.Get(0).(*service.SubmitResult)
	return res, args.Error(1)
}

func (m *mockJudge) Rejudge(ctx context.Context, submissionID string) (*service.SubmitResult, error) {
	args := m.Called(ctx, submissionID)
	res, _ := args.Get(0).(*service.SubmitResult)
	return res, args.Error(1)
}

func newWorker(jobs JobStore, judge SubmissionJudge) *ExecutionWorker {
	return NewExecutionWorker(nil, jobs, judge, Config{QueueName: "q", LockPrefix: "judge_lock", LockTTL: time.Minute})
}

func result(status model.SubmissionStatus) *service.SubmitResult {
	return &service.SubmitResult{
		Submission: &model.Submission{ID: "sub-1", Status: status},
		Verdict:    &judging.Verdict{Status: status},
	}
}

func TestHandleSubmissionJob(t *testing.T) {
	created := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	accepted := created.Add(-2 * time.Second)
	payload, _ := json.Marshal(model.SubmissionEvaluationPayload{QuestionID: "q1", Code: "print(1)", Language: model.LangPython, SubmittedAt: accepted})
	job := &model.ExecutionJob{ID: "job-1", JobType: model.JobTypeSubmissionEvaluation, UserID: "u1", ContestID: "c1", Payload: payload, CreatedAt: created}

	jobs, judge := &mockJobStore{}, &mockJudge{}
	res := result(model.StatusAccepted)
	jobs.On("MarkProcessing", mock.Anything, "job-1").Return(nil)
	judge.On("JudgeAndRecord", mock.Anything, "u1", service.SubmitRequest{ContestID: "c1", QuestionID: "q1", Code: "print(1)", Language: model.LangPython}, accepted).
		Return(res, nil)
	jobs.On("Complete", mock.Anything, "job-1", res).Return(nil)

	newWorker(jobs, judge).handleJob(context.Background(), job)

	jobs.AssertExpectations(t)
	judge.AssertExpectations(t)
	jobs.AssertNotCalled(t, "Fail", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleSubmissionJobWithoutAcceptTime(t *testing.T) {
	created := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	payload, _ := json.Marshal(model.SubmissionEvaluationPayload{QuestionID: "q1", Code: "x", Language: model.LangC})
	job := &model.ExecutionJob{ID: "job-3", JobType: model.JobTypeSubmissionEvaluation, UserID: "u1", ContestID: "c1", Payload: payload, CreatedAt: created}

	jobs, judge := &mockJobStore{}, &mockJudge{}
	res := result(model.StatusAccepted)
	jobs.On("MarkProcessing", mock.Anything, "job-3").Return(nil)
	judge.On("JudgeAndRecord", mock.Anything, "u1", mock.Anything, created).Return(res, nil)
	jobs.On("Complete", mock.Anything, "job-3", res).Return(nil)

	newWorker(jobs, judge).handleJob(context.Background(), job)

	judge.AssertExpectations(t)
}

func TestHandleRejudgeJob(t *testing.T) {
	payload, _ := json.Marshal(model.RejudgePayload{SubmissionID: "sub-9"})
	job := &model.ExecutionJob{ID: "job-2", JobType: model.JobTypeRejudge, UserID: "u1", ContestID: "c1", Payload: payload}

	jobs, judge := &mockJobStore{}, &mockJudge{}
	res := result(model.StatusWrongAnswer)
	jobs.On("MarkProcessing", mock.Anything, "job-2").Return(nil)
	judge.On("Rejudge", mock.Anything, "sub-9").Return(res, nil)
	jobs.On("Complete", mock.Anything, "job-2", res).Return(nil)

	newWorker(jobs, judge).handleJob(context.Background(), job)

	jobs.AssertExpectations(t)
	judge.AssertExpectations(t)
}

func TestHandleJobFailures(t *testing.T) {
	cases := map[string]struct {
		job   *model.ExecutionJob
		setup func(*mockJudge)
	}{
		"unknown type": {
			job:   &model.ExecutionJob{ID: "j", JobType: "run_code"},
			setup: func(*mockJudge) {},
		},
		"bad payload": {
			job:   &model.ExecutionJob{ID: "j", JobType: model.JobTypeSubmissionEvaluation, Payload: []byte("{")},
			setup: func(*mockJudge) {},
		},
		"validation": {
			job: &model.ExecutionJob{ID: "j", JobType: model.JobTypeSubmissionEvaluation, Payload: []byte(`{"question_id":"q"}`)},
			setup: func(m *mockJudge) {
				m.On("JudgeAndRecord", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, common.ErrContestClosed)
			},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			jobs, judge := &mockJobStore{}, &mockJudge{}
			tc.setup(judge)
			jobs.On("MarkProcessing", mock.Anything, "j").Return(errors.New("db down"))
			jobs.On("Fail", mock.Anything, "j", mock.Anything).Return(nil)

			newWorker(jobs, judge).handleJob(context.Background(), tc.job)

			jobs.AssertCalled(t, "Fail", mock.Anything, "j", mock.Anything)
			jobs.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandleJobInterruptedByShutdownIsRequeued(t *testing.T) {
	payload, _ := json.Marshal(model.RejudgePayload{SubmissionID: "sub-9"})
	job := &model.ExecutionJob{ID: "job-4", JobType: model.JobTypeRejudge, UserID: "u1", ContestID: "c1", Payload: payload}

	ctx, cancel := context.WithCancel(context.Background())
	jobs, judge := &mockJobStore{}, &mockJudge{}
	jobs.On("MarkProcessing", mock.Anything, "job-4").Return(nil)
	judge.On("Rejudge", mock.Anything, "sub-9").
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)
	jobs.On("Requeue", mock.Anything, "job-4").Return(nil)

	newWorker(jobs, judge).handleJob(ctx, job)

	jobs.AssertCalled(t, "Requeue", mock.Anything, "job-4")
	jobs.AssertNotCalled(t, "Fail", mock.Anything, mock.Anything, mock.Anything)
	jobs.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessSkipsFinishedJobs(t *testing.T) {
	jobs := &mockJobStore{}
	jobs.On("GetJobByID", mock.Anything, "done").Return(&model.ExecutionJob{ID: "done", Status: model.JobStatusCompleted}, nil)

	// A nil Redis client would panic if the lock were attempted.
	newWorker(jobs, &mockJudge{}).processJobWithLock(context.Background(), "done")
	jobs.AssertExpectations(t)
}

func TestNewExecutionWorkerDefaults(t *testing.T) {
	w := NewExecutionWorker(nil, nil, nil, Config{})
	require.Equal(t, 1, w.cfg.Concurrency)
	assert.Positive(t, w.cfg.RequeueDelay)
}
