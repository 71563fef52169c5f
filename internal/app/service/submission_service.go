package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"contest_judge/internal/app/judging"
	"contest_judge/internal/app/standings"
	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"
	"contest_judge/internal/domain/repository"
	"contest_judge/internal/judge"

	"github.com/google/uuid"
)

// Judger runs code against a question's test cases.
type Judger interface {
	Judge(ctx context.Context, source string, lang model.Language, question *model.Question, cases []model.TestCase) (*judging.Verdict, error)
	Rejudge(ctx context.Context, source string, lang model.Language, question *model.Question, cases []model.TestCase) (*judging.Verdict, error)
}

type Leaderboard interface {
	UpdateLeaderboard(ctx context.Context, userID, contestID string) error
	GetLeaderboard(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error)
}

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	contestRepo    repository.ContestRepository
	judger         Judger
	leaderboard    Leaderboard
	now            func() time.Time
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	contestRepo repository.ContestRepository,
	judger Judger,
	leaderboard Leaderboard,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		contestRepo:    contestRepo,
		judger:         judger,
		leaderboard:    leaderboard,
		now:            time.Now,
	}
}

type SubmitRequest struct {
	ContestID  string         `json:"contest_id" validate:"required"`
	QuestionID string         `json:"question_id" validate:"required"`
	Code       string         `json:"code" validate:"required"`
	Language   model.Language `json:"language" validate:"required"`
}

type SubmitResult struct {
	Submission *model.Submission `json:"submission"`
	Verdict    *judging.Verdict  `json:"verdict"`
}

// Redacted hides hidden test data and source code.
func (r *SubmitResult) Redacted() *SubmitResult {
	sub := *r.Submission
	sub.Code = ""
	return &SubmitResult{Submission: &sub, Verdict: r.Verdict.Redacted()}
}

// ValidateSubmission rejects a request before anything is queued or judged.
// at is the moment the user submitted; the contest must be open then.
func (s *SubmissionService) ValidateSubmission(ctx context.Context, req SubmitRequest, at time.Time) (*model.Question, error) {
	if err := common.Validate(&req); err != nil {
		return nil, err
	}
	if _, err := judge.LanguageID(req.Language); err != nil {
		return nil, err
	}

	contest, err := s.contestRepo.FindContestByID(ctx, req.ContestID)
	if err != nil {
		return nil, err
	}
	if !contest.IsOpen(at) {
		return nil, fmt.Errorf("contest %s: %w", contest.ID, common.ErrContestClosed)
	}

	question, err := s.contestRepo.FindQuestionByID(ctx, req.QuestionID)
	if err != nil {
		return nil, err
	}
	if question.ContestID != contest.ID {
		return nil, fmt.Errorf("question %s is not part of contest %s: %w", question.ID, contest.ID, common.ErrValidation)
	}
	return question, nil
}

// JudgeAndRecord judges the code, stores exactly one submission and refreshes the user's leaderboard row.
func (s *SubmissionService) JudgeAndRecord(ctx context.Context, userID string, req SubmitRequest, submittedAt time.Time) (*SubmitResult, error) {
	question, err := s.ValidateSubmission(ctx, req, submittedAt)
	if err != nil {
		return nil, err
	}
	cases, err := s.contestRepo.GetTestCasesByQuestionID(ctx, question.ID)
	if err != nil {
		return nil, common.Errorf("failed to load test cases: %w", err)
	}

	verdict, err := s.judger.Judge(ctx, req.Code, req.Language, question, cases)
	if err != nil {
		return nil, err
	}

	sub := &model.Submission{
		ID:          uuid.NewString(),
		UserID:      userID,
		ContestID:   req.ContestID,
		QuestionID:  question.ID,
		Code:        req.Code,
		Language:    req.Language,
		Status:      verdict.Status,
		Score:       verdict.Score,
		TotalTests:  verdict.TotalTests,
		PassedTests: verdict.PassedTests,
		Runtime:     verdict.Runtime,
		Memory:      verdict.Memory,
		SubmittedAt: submittedAt.UTC(),
	}

	// The verdict is final; keep it even if the caller goes away.
	persistCtx := context.WithoutCancel(ctx)
	if err := s.submissionRepo.CreateSubmission(persistCtx, nil, sub); err != nil {
		return nil, common.Errorf("failed to store submission: %w", err)
	}
	s.refreshLeaderboard(persistCtx, userID, req.ContestID)

	log.Printf("INFO: submission %s by %s on question %s judged %s (%d/%d, score %d)",
		sub.ID, userID, question.ID, sub.Status, sub.PassedTests, sub.TotalTests, sub.Score)
	return &SubmitResult{Submission: sub, Verdict: verdict}, nil
}

// Rejudge reruns a stored submission on hidden cases only and updates it in place.
func (s *SubmissionService) Rejudge(ctx context.Context, submissionID string) (*SubmitResult, error) {
	sub, err := s.submissionRepo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	question, err := s.contestRepo.FindQuestionByID(ctx, sub.QuestionID)
	if err != nil {
		return nil, err
	}
	cases, err := s.contestRepo.GetTestCasesByQuestionID(ctx, question.ID)
	if err != nil {
		return nil, common.Errorf("failed to load test cases: %w", err)
	}

	verdict, err := s.judger.Rejudge(ctx, sub.Code, sub.Language, question, cases)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sub.Status = verdict.Status
	sub.Score = verdict.Score
	sub.TotalTests = verdict.TotalTests
	sub.PassedTests = verdict.PassedTests
	sub.Runtime = verdict.Runtime
	sub.Memory = verdict.Memory
	sub.RejudgedAt = &now

	persistCtx := context.WithoutCancel(ctx)
	if err := s.submissionRepo.UpdateVerdict(persistCtx, nil, sub); err != nil {
		return nil, common.Errorf("failed to update submission: %w", err)
	}
	s.refreshLeaderboard(persistCtx, sub.UserID, sub.ContestID)

	log.Printf("INFO: submission %s rejudged %s (%d/%d hidden, score %d)", sub.ID, sub.Status, sub.PassedTests, sub.TotalTests, sub.Score)
	return &SubmitResult{Submission: sub, Verdict: verdict}, nil
}

// A failed recompute leaves the previous row in place; the next submission or rejudge fixes it.
func (s *SubmissionService) refreshLeaderboard(ctx context.Context, userID, contestID string) {
	if err := s.leaderboard.UpdateLeaderboard(ctx, userID, contestID); err != nil {
		log.Printf("ERROR: leaderboard update failed for user %s in contest %s: %v", userID, contestID, err)
	}
}

func (s *SubmissionService) GetSubmission(ctx context.Context, submissionID, requesterID string, isAdmin bool) (*model.Submission, error) {
	sub, err := s.submissionRepo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && sub.UserID != requesterID {
		return nil, common.ErrForbidden
	}
	return sub, nil
}

// MySubmissions lists the user's contest submissions newest first, without code,
// with the same total the leaderboard uses.
func (s *SubmissionService) MySubmissions(ctx context.Context, contestID, userID string) (*model.MySubmissionsSummary, error) {
	subs, err := s.submissionRepo.ListForUserInContest(ctx, nil, contestID, userID)
	if err != nil {
		return nil, err
	}
	totals := standings.Compute(subs)

	sort.SliceStable(subs, func(i, j int) bool { return subs[i].SubmittedAt.After(subs[j].SubmittedAt) })
	for i := range subs {
		subs[i].Code = ""
	}
	if subs == nil {
		subs = []model.Submission{}
	}

	summary := &model.MySubmissionsSummary{Submissions: subs, TotalScore: totals.TotalScore}
	board, err := s.leaderboard.GetLeaderboard(ctx, contestID)
	if err != nil {
		log.Printf("WARN: rank unavailable for user %s in contest %s: %v", userID, contestID, err)
	} else {
		summary.Rank = standings.RankOf(board, userID)
	}
	return summary, nil
}
