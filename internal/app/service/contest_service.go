package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"
	"contest_judge/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ContestService struct {
	contestRepo repository.ContestRepository
	db          *sql.DB // For transactions
}

func NewContestService(contestRepo repository.ContestRepository, db *sql.DB) *ContestService {
	return &ContestService{contestRepo: contestRepo, db: db}
}

type CreateContestRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

type TestCaseInput struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	IsHidden       bool   `json:"is_hidden"`
}

type CreateQuestionRequest struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Description  string          `json:"description"`
	Points       int             `json:"points" validate:"gte=0"`
	SampleInput  *string         `json:"sample_input,omitempty"`
	SampleOutput *string         `json:"sample_output,omitempty"`
	TestCases    []TestCaseInput `json:"test_cases" validate:"dive"`
}

func (s *ContestService) CreateContest(ctx context.Context, userID string, req CreateContestRequest) (*model.Contest, error) {
	if err := common.Validate(&req); err != nil {
		return nil, err
	}

	contest := &model.Contest{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		CreatedByID: &userID,
	}
	if err := s.contestRepo.CreateContest(ctx, nil, contest); err != nil {
		return nil, common.Errorf("failed to create contest: %w", err)
	}
	log.Printf("INFO: contest %s (%s) created by %s", contest.ID, contest.Slug, userID)
	return contest, nil
}

func (s *ContestService) GetContest(ctx context.Context, contestID string) (*model.Contest, error) {
	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return nil, err
	}
	questions, err := s.contestRepo.ListQuestionsByContest(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("failed to list questions: %w", err)
	}
	contest.Questions = questions
	return contest, nil
}

// CreateQuestion stores the question and its test cases atomically. Case order is preserved.
func (s *ContestService) CreateQuestion(ctx context.Context, contestID string, req CreateQuestionRequest) (*model.Question, error) {
	if err := common.Validate(&req); err != nil {
		return nil, err
	}
	if (req.SampleInput == nil) != (req.SampleOutput == nil) {
		return nil, common.Errorf("sample_input and sample_output must be given together: %w", common.ErrValidation)
	}
	if len(req.TestCases) == 0 && req.SampleInput == nil {
		return nil, common.Errorf("a question needs at least one test case: %w", common.ErrValidation)
	}
	if _, err := s.contestRepo.FindContestByID(ctx, contestID); err != nil {
		return nil, err
	}

	question := &model.Question{
		ID:           uuid.NewString(),
		ContestID:    contestID,
		Title:        req.Title,
		Slug:         slug.Make(req.Title),
		Description:  req.Description,
		Points:       req.Points,
		SampleInput:  req.SampleInput,
		SampleOutput: req.SampleOutput,
	}
	cases := make([]model.TestCase, len(req.TestCases))
	for i, tc := range req.TestCases {
		cases[i] = model.TestCase{ID: uuid.NewString(), Input: tc.Input, ExpectedOutput: tc.ExpectedOutput, IsHidden: tc.IsHidden}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.contestRepo.CreateQuestion(ctx, tx, question); err != nil {
		return nil, common.Errorf("failed to create question: %w", err)
	}
	if err := s.contestRepo.AddTestCases(ctx, tx, question.ID, cases); err != nil {
		return nil, common.Errorf("failed to add test cases: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	question.TestCases = cases
	return question, nil
}

// GetQuestion returns the question with its test cases. Hidden cases are only included for admins.
func (s *ContestService) GetQuestion(ctx context.Context, contestID, questionID string, isAdmin bool) (*model.Question, error) {
	question, err := s.contestRepo.FindQuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if question.ContestID != contestID {
		return nil, fmt.Errorf("question %s in contest %s: %w", questionID, contestID, common.ErrNotFound)
	}

	cases, err := s.contestRepo.GetTestCasesByQuestionID(ctx, questionID)
	if err != nil {
		return nil, common.Errorf("failed to load test cases: %w", err)
	}
	for _, tc := range cases {
		if isAdmin || !tc.IsHidden {
			question.TestCases = append(question.TestCases, tc)
		}
	}
	return question, nil
}
