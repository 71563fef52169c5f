package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"
)

type ContestRepository interface {
	CreateContest(ctx context.Context, tx *sql.Tx, contest *model.Contest) error
	FindContestByID(ctx context.Context, id string) (*model.Contest, error)

	CreateQuestion(ctx context.Context, tx *sql.Tx, question *model.Question) error
	FindQuestionByID(ctx context.Context, id string) (*model.Question, error)
	ListQuestionsByContest(ctx context.Context, contestID string) ([]model.Question, error)

	AddTestCases(ctx context.Context, tx *sql.Tx, questionID string, testCases []model.TestCase) error
	GetTestCasesByQuestionID(ctx context.Context, questionID string) ([]model.TestCase, error) // creation order
}

type pgContestRepository struct {
	db *sql.DB
}

func NewPgContestRepository(db *sql.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

func (r *pgContestRepository) CreateContest(ctx context.Context, tx *sql.Tx, c *model.Contest) error {
	query := `INSERT INTO contests (id, title, slug, description, start_time, end_time, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`
	err := on(r.db, tx).QueryRowContext(ctx, query, c.ID, c.Title, c.Slug, c.Description, c.StartTime, c.EndTime, c.CreatedByID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("contest with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgContestRepository.CreateContest: %w", err)
	}
	return nil
}

func (r *pgContestRepository) FindContestByID(ctx context.Context, id string) (*model.Contest, error) {
	query := `SELECT id, title, slug, description, start_time, end_time, created_by, created_at, updated_at
	          FROM contests WHERE id = $1`
	c := &model.Contest{}
	var createdBy sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Slug, &c.Description, &c.StartTime, &c.EndTime, &createdBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contest %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgContestRepository.FindContestByID: %w", err)
	}
	if createdBy.Valid {
		c.CreatedByID = &createdBy.String
	}
	return c, nil
}

func (r *pgContestRepository) CreateQuestion(ctx context.Context, tx *sql.Tx, q *model.Question) error {
	query := `INSERT INTO questions (id, contest_id, title, slug, description, points, sample_input, sample_output)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING created_at, updated_at`
	err := on(r.db, tx).QueryRowContext(ctx, query, q.ID, q.ContestID, q.Title, q.Slug, q.Description, q.Points, q.SampleInput, q.SampleOutput).
		Scan(&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("question with this slug already exists in the contest: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgContestRepository.CreateQuestion: %w", err)
	}
	return nil
}

const questionColumns = `id, contest_id, title, slug, description, points, sample_input, sample_output, created_at, updated_at`

func scanQuestion(row interface{ Scan(...any) error }) (*model.Question, error) {
	q := &model.Question{}
	var sampleIn, sampleOut sql.NullString
	if err := row.Scan(&q.ID, &q.ContestID, &q.Title, &q.Slug, &q.Description, &q.Points, &sampleIn, &sampleOut, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	if sampleIn.Valid {
		q.SampleInput = &sampleIn.String
	}
	if sampleOut.Valid {
		q.SampleOutput = &sampleOut.String
	}
	return q, nil
}

func (r *pgContestRepository) FindQuestionByID(ctx context.Context, id string) (*model.Question, error) {
	q, err := scanQuestion(r.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("question %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("pgContestRepository.FindQuestionByID: %w", err)
	}
	return q, nil
}

func (r *pgContestRepository) ListQuestionsByContest(ctx context.Context, contestID string) ([]model.Question, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE contest_id = $1 ORDER BY created_at ASC`, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.ListQuestionsByContest: %w", err)
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("pgContestRepository.ListQuestionsByContest scan: %w", err)
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func (r *pgContestRepository) AddTestCases(ctx context.Context, tx *sql.Tx, questionID string, testCases []model.TestCase) error {
	if len(testCases) == 0 {
		return nil
	}
	query := `INSERT INTO test_cases (id, question_id, input, expected_output, is_hidden, sort_order)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`
	q := on(r.db, tx)
	for i := range testCases {
		tc := &testCases[i]
		tc.QuestionID = questionID
		tc.SortOrder = i
		if err := q.QueryRowContext(ctx, query, tc.ID, questionID, tc.Input, tc.ExpectedOutput, tc.IsHidden, tc.SortOrder).Scan(&tc.CreatedAt); err != nil {
			return fmt.Errorf("pgContestRepository.AddTestCases (case %d): %w", i, err)
		}
	}
	return nil
}

func (r *pgContestRepository) GetTestCasesByQuestionID(ctx context.Context, questionID string) ([]model.TestCase, error) {
	query := `SELECT id, question_id, input, expected_output, is_hidden, sort_order, created_at
	          FROM test_cases WHERE question_id = $1
	          ORDER BY sort_order ASC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, questionID)
	if err != nil {
		return nil, fmt.Errorf("pgContestRepository.GetTestCasesByQuestionID: %w", err)
	}
	defer rows.Close()

	var cases []model.TestCase
	for rows.Next() {
		var tc model.TestCase
		if err := rows.Scan(&tc.ID, &tc.QuestionID, &tc.Input, &tc.ExpectedOutput, &tc.IsHidden, &tc.SortOrder, &tc.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgContestRepository.GetTestCasesByQuestionID scan: %w", err)
		}
		cases = append(cases, tc)
	}
	return cases, rows.Err()
}
