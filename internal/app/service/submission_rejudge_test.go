package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contest_judge/internal/app/judging"
	"contest_judge/internal/domain/model"
	"contest_judge/internal/judge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stuckJudge accepts every submission and never finishes it.
func stuckJudge(t *testing.T) *judge.HTTPClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":  "tok-1",
			"status": map[string]any{"id": judge.StatusProcessing, "description": "Processing"},
		})
	}))
	t.Cleanup(srv.Close)
	return judge.NewHTTPClient(judge.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

// fixedJudge answers each stdin with a fixed stdout.
type fixedJudge struct {
	stdout map[string]string
}

func (f *fixedJudge) Submit(ctx context.Context, sourceCode string, languageID int, stdin string) (string, error) {
	return stdin, nil
}

func (f *fixedJudge) Poll(ctx context.Context, token string) (*judge.ExecutionResult, error) {
	rt, mem := 0.1, 512.0
	return &judge.ExecutionResult{
		Token: token, StatusID: judge.StatusAccepted, StatusDescription: "Accepted",
		Stdout: f.stdout[token], Time: &rt, Memory: &mem,
	}, nil
}

func (f *fixedJudge) Execute(ctx context.Context, sourceCode string, languageID int, stdin string, maxAttempts int, interval time.Duration) (*judge.ExecutionResult, error) {
	return f.Poll(ctx, stdin)
}

func newJudgingFixture(client judge.Client) *submissionFixture {
	f := newSubmissionFixture()
	f.svc = NewSubmissionService(f.subs, f.contests, judging.NewAggregator(client, 1000, 10*time.Millisecond), f.leaderboard)
	f.svc.now = func() time.Time { return inContest }
	return f
}

func TestRejudgeInterruptedKeepsStoredVerdict(t *testing.T) {
	f := newJudgingFixture(stuckJudge(t))
	stored := &model.Submission{ID: "s1", UserID: "u1", ContestID: "c1", QuestionID: "q1", Code: "x", Language: model.LangCPP,
		Status: model.StatusAccepted, Score: 100, PassedTests: 2, TotalTests: 2}
	q := &model.Question{ID: "q1", ContestID: "c1", Points: 100}
	tcs := []model.TestCase{{ID: "t1", Input: "1", ExpectedOutput: "1", IsHidden: true}}

	f.subs.On("GetSubmissionByID", mock.Anything, "s1").Return(stored, nil)
	f.contests.On("FindQuestionByID", mock.Anything, "q1").Return(q, nil)
	f.contests.On("GetTestCasesByQuestionID", mock.Anything, "q1").Return(tcs, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := f.svc.Rejudge(ctx, "s1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, res)

	f.subs.AssertNotCalled(t, "UpdateVerdict", mock.Anything, mock.Anything, mock.Anything)
	f.leaderboard.AssertNotCalled(t, "UpdateLeaderboard", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, model.StatusAccepted, stored.Status)
	assert.Equal(t, 100, stored.Score)
	assert.Nil(t, stored.RejudgedAt)
}

func TestJudgeAndRecordCancelledStoresNothing(t *testing.T) {
	f := newJudgingFixture(stuckJudge(t))
	q := &model.Question{ID: "q1", ContestID: "c1", Points: 100}
	f.contests.On("FindContestByID", mock.Anything, "c1").Return(openContest, nil)
	f.contests.On("FindQuestionByID", mock.Anything, "q1").Return(q, nil)
	f.contests.On("GetTestCasesByQuestionID", mock.Anything, "q1").Return([]model.TestCase{{ID: "t1", Input: "1", ExpectedOutput: "1"}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := f.svc.JudgeAndRecord(ctx, "u1", validRequest(), inContest)
	assert.ErrorIs(t, err, context.Canceled)
	f.subs.AssertNotCalled(t, "CreateSubmission", mock.Anything, mock.Anything, mock.Anything)
	f.leaderboard.AssertNotCalled(t, "UpdateLeaderboard", mock.Anything, mock.Anything, mock.Anything)
}

func TestRejudgeTwiceStoresSameVerdict(t *testing.T) {
	f := newJudgingFixture(&fixedJudge{stdout: map[string]string{"1": "2", "2": "4", "3": "6"}})
	row := model.Submission{ID: "s1", UserID: "u1", ContestID: "c1", QuestionID: "q1", Code: "x", Language: model.LangCPP,
		Status: model.StatusAccepted, Score: 100, PassedTests: 4, TotalTests: 4}
	q := &model.Question{ID: "q1", ContestID: "c1", Points: 100}
	tcs := []model.TestCase{
		{ID: "t0", Input: "0", ExpectedOutput: "0"},
		{ID: "t1", Input: "1", ExpectedOutput: "2", IsHidden: true},
		{ID: "t2", Input: "2", ExpectedOutput: "4", IsHidden: true},
		{ID: "t3", Input: "3", ExpectedOutput: "9", IsHidden: true},
	}

	first, second := row, row
	f.subs.On("GetSubmissionByID", mock.Anything, "s1").Return(&first, nil).Once()
	f.subs.On("GetSubmissionByID", mock.Anything, "s1").Return(&second, nil).Once()
	f.contests.On("FindQuestionByID", mock.Anything, "q1").Return(q, nil)
	f.contests.On("GetTestCasesByQuestionID", mock.Anything, "q1").Return(tcs, nil)
	f.leaderboard.On("UpdateLeaderboard", mock.Anything, "u1", "c1").Return(nil)

	var persisted []model.Submission
	f.subs.On("UpdateVerdict", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { persisted = append(persisted, *args.Get(2).(*model.Submission)) }).
		Return(nil)

	for range 2 {
		_, err := f.svc.Rejudge(context.Background(), "s1")
		require.NoError(t, err)
	}

	require.Len(t, persisted, 2)
	assert.Equal(t, model.StatusWrongAnswer, persisted[0].Status)
	assert.Equal(t, 67, persisted[0].Score)
	assert.Equal(t, 2, persisted[0].PassedTests)
	assert.Equal(t, 3, persisted[0].TotalTests)
	assert.Equal(t, persisted[0].Status, persisted[1].Status)
	assert.Equal(t, persisted[0].Score, persisted[1].Score)
	assert.Equal(t, persisted[0].PassedTests, persisted[1].PassedTests)
	assert.Equal(t, persisted[0].TotalTests, persisted[1].TotalTests)

