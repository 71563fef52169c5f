package service

import (
	"context"
	"fmt"
	"math"

	"contest_judge/internal/app/similarity"
	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"
	"contest_judge/internal/domain/repository"

	"golang.org/x/sync/errgroup"
)

type PlagiarismService struct {
	submissionRepo   repository.SubmissionRepository
	contestRepo      repository.ContestRepository
	defaultThreshold float64
	parallelism      int
}

func NewPlagiarismService(subRepo repository.SubmissionRepository, contestRepo repository.ContestRepository, defaultThreshold float64, parallelism int) *PlagiarismService {
	return &PlagiarismService{
		submissionRepo:   subRepo,
		contestRepo:      contestRepo,
		defaultThreshold: defaultThreshold,
		parallelism:      parallelism,
	}
}

type ScanRequest struct {
	ContestID string   `json:"contestId" validate:"required"`
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}

// ScanContest reports suspicious pairs for a contest. The report never carries source code.
func (s *PlagiarismService) ScanContest(ctx context.Context, contestID string, threshold *float64) (*model.PlagiarismReport, error) {
	t := s.defaultThreshold
	if threshold != nil {
		t = *threshold
	}
	if t < 0 || t > 1 || math.IsNaN(t) {
		return nil, fmt.Errorf("threshold %v outside [0,1]: %w", t, common.ErrValidation)
	}
	if _, err := s.contestRepo.FindContestByID(ctx, contestID); err != nil {
		return nil, err
	}

	subs, err := s.submissionRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, common.Errorf("failed to load submissions: %w", err)
	}

	pairs, err := similarity.Scan(ctx, subs, t, s.parallelism)
	if err != nil {
		return nil, err
	}

	report := &model.PlagiarismReport{
		TotalSubmissions: len(subs),
		SuspiciousPairs:  len(pairs),
		Threshold:        t,
		Results:          make([]model.PlagiarismResult, 0, len(pairs)),
	}
	for _, p := range pairs {
		report.Results = append(report.Results, model.PlagiarismResult{
			Similarity: percent(p.Result.Overall),
			Method:     p.Result.Method,
			Question:   p.A.QuestionTitle,
			Users:      [2]model.PlagiarismUser{plagiarismUser(p.A), plagiarismUser(p.B)},
		})
	}
	return report, nil
}

func plagiarismUser(s model.Submission) model.PlagiarismUser {
	return model.PlagiarismUser{
		ID:           s.UserID,
		Username:     s.Username,
		Name:         s.Name,
		SubmissionID: s.ID,
		SubmittedAt:  s.SubmittedAt,
	}
}

// CompareSubmissions recomputes similarity for exactly two stored submissions.
func (s *PlagiarismService) CompareSubmissions(ctx context.Context, id1, id2 string) (*model.PairComparison, error) {
	if id1 == "" || id2 == "" {
		return nil, fmt.Errorf("two submission ids are required: %w", common.ErrValidation)
	}
	if id1 == id2 {
		return nil, fmt.Errorf("cannot compare a submission with itself: %w", common.ErrValidation)
	}

	var a, b *model.Submission
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		a, err = s.submissionRepo.GetSubmissionByID(gctx, id1)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = s.submissionRepo.GetSubmissionByID(gctx, id2)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := similarity.Compare(a.Code, b.Code)
	return &model.PairComparison{
		Submission1: compared(a),
		Submission2: compared(b),
		Similarity: model.SimilarityPercentages{
			Jaccard:     percent(r.Jaccard),
			Levenshtein: percent(r.Levenshtein),
			Overall:     percent(r.Overall),
			Method:      r.Method,
		},
	}, nil
}

func compared(s *model.Submission) model.ComparedSubmission {
	return model.ComparedSubmission{
		ID:          s.ID,
		User:        s.Username,
		Question:    s.QuestionTitle,
		Code:        s.Code,
		SubmittedAt: s.SubmittedAt,
	}
}
