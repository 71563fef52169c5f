package service

import (
	"context"
	"database/sql"

	"contest_judge/internal/app/judging"
	"contest_judge/internal/domain/model"

	"github.com/stretchr/testify/mock"
)

type mockSubmissionRepo struct {
	mock.Mock
}

func (m *mockSubmissionRepo) CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	return m.Called(ctx, tx, sub).Error(0)
}

func (m *mockSubmissionRepo) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	args := m.Called(ctx, id)
	sub, _ := args.Get(0).(*model.Submission)
	return sub, args.Error(1)
}

func (m *mockSubmissionRepo) UpdateVerdict(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	return m.Called(ctx, tx, sub).Error(0)
}

func (m *mockSubmissionRepo) ListForUserInContest(ctx context.Context, tx *sql.Tx, contestID, userID string) ([]model.Submission, error) {
	args := m.Called(ctx, tx, contestID, userID)
	subs, _ := args.Get(0).([]model.Submission)
	return subs, args.Error(1)
}

func (m *mockSubmissionRepo) ListByContest(ctx context.Context, contestID string) ([]model.Submission, error) {
	args := m.Called(ctx, contestID)
	subs, _ := args.Get(0).([]model.Submission)
	return subs, args.Error(1)
}

type mockContestRepo struct {
	mock.Mock
}

func (m *mockContestRepo) CreateContest(ctx context.Context, tx *sql.Tx, contest *model.Contest) error {
	return m.Called(ctx, tx, contest).Error(0)
}

func (m *mockContestRepo) FindContestByID(ctx context.Context, id string) (*model.Contest, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Contest)
	return c, args.Error(1)
}

func (m *mockContestRepo) CreateQuestion(ctx context.Context, tx *sql.Tx, question *model.Question) error {
	return m.Called(ctx, tx, question).Error(0)
}

func (m *mockContestRepo) FindQuestionByID(ctx context.Context, id string) (*model.Question, error) {
	args := m.Called(ctx, id)
	q, _ := args.Get(0).(*model.Question)
	return q, args.Error(1)
}

func (m *mockContestRepo) ListQuestionsByContest(ctx context.Context, contestID string) ([]model.Question, error) {
	args := m.Called(ctx, contestID)
	qs, _ := args.Get(0).([]model.Question)
	return qs, args.Error(1)
}

func (m *mockContestRepo) AddTestCases(ctx context.Context, tx *sql.Tx, questionID string, testCases []model.TestCase) error {
	return m.Called(ctx, tx, questionID, testCases).Error(0)
}

func (m *mockContestRepo) GetTestCasesByQuestionID(ctx context.Context, questionID string) ([]model.TestCase, error) {
	args := m.Called(ctx, questionID)
	tcs, _ := args.Get(0).([]model.TestCase)
	return tcs, args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

type mockJudger struct {
	mock.Mock
}

func (m *mockJudger) Judge(ctx context.Context, source string, lang model.Language, question *model.Question, cases []model.TestCase) (*judging.Verdict, error) {
	args := m.Called(ctx, source, lang, question, cases)
	v, _ := args.Get(0).(*judging.Verdict)
	return v, args.Error(1)
}

func (m *mockJudger) Rejudge(ctx context.Context, source string, lang model.Language, question *model.Question, cases []model.TestCase) (*judging.Verdict, error) {
	args := m.Called(ctx, source, lang, question, cases)
	v, _ := args.Get(0).(*judging.Verdict)
	return v, args.Error(1)
}

type mockLeaderboard struct {
	mock.Mock
}

func (m *mockLeaderboard) UpdateLeaderboard(ctx context.Context, userID, contestID string) error {
	return m.Called(ctx, userID, contestID).Error(0)
}

func (m *mockLeaderboard) GetLeaderboard(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error) {
	args := m.Called(ctx, contestID)
	e, _ := args.Get(0).([]model.LeaderboardEntry)
	return e, args.Error(1)
}
