package judging

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"contest_judge/internal/common"
	"contest_judge/internal/domain/model"
	"contest_judge/internal/judge"
)

type Outcome string

const (
	OutcomePassed     Outcome = "PASSED"
	OutcomeFailed     Outcome = "FAILED"
	OutcomeInfraError Outcome = "INFRA_ERROR"
)

type TestResult struct {
	Index       int      `json:"index"`
	TestCaseID  string   `json:"test_case_id,omitempty"` // empty for the question sample
	IsHidden    bool     `json:"is_hidden"`
	Passed      bool     `json:"passed"`
	Outcome     Outcome  `json:"outcome"`
	Input       string   `json:"input,omitempty"`
	Expected    string   `json:"expected,omitempty"`
	Actual      string   `json:"actual,omitempty"`
	Runtime     *float64 `json:"runtime,omitempty"`
	Memory      *float64 `json:"memory,omitempty"`
	JudgeStatus string   `json:"judge_status,omitempty"`
	Error       string   `json:"error,omitempty"`
}

type Verdict struct {
	Status         model.SubmissionStatus `json:"status"`
	Score          int                    `json:"score"`
	PassedTests    int                    `json:"passed_tests"`
	TotalTests     int                    `json:"total_tests"`
	ProcessedTests int                    `json:"processed_tests"`
	Runtime        float64                `json:"runtime"`
	Memory         float64                `json:"memory"`
	Results        []TestResult           `json:"results"`
}

// Redacted returns a copy in which hidden cases carry no input or output.
func (v *Verdict) Redacted() *Verdict {
	out := *v
	out.Results = make([]TestResult, len(v.Results))
	for i, r := range v.Results {
		if r.IsHidden {
			r.Input, r.Expected, r.Actual = "", "", ""
		}
		out.Results[i] = r
	}
	return &out
}

// Aggregator runs a program against an ordered list of test cases and folds the outcomes.
type Aggregator struct {
	client       judge.Client
	maxAttempts  int
	pollInterval time.Duration
}

func NewAggregator(client judge.Client, maxAttempts int, pollInterval time.Duration) *Aggregator {
	return &Aggregator{client: client, maxAttempts: maxAttempts, pollInterval: pollInterval}
}

type testCase struct {
	id       string
	input    string
	expected string
	hidden   bool
}

// Judge runs the question sample first (when complete) and then every stored case in creation order.
func (a *Aggregator) Judge(ctx context.Context, source string, lang model.Language, question *model.Question, cases []model.TestCase) (*Verdict, error) {
	var ordered []testCase
	if question.HasSample() {
		ordered = append(ordered, testCase{input: *question.SampleInput, expected: *question.SampleOutput})
	}
	for _, tc := range cases {
		ordered = append(ordered, testCase{id: tc.ID, input: tc.Input, expected: tc.ExpectedOutput, hidden: tc.IsHidden})
	}
	return a.run(ctx, source, lang, question, ordered)
}

// Rejudge is Judge restricted to hidden cases.
func (a *Aggregator) Rejudge(ctx context.Context, source string, lang model.Language, question *model.Question, cases []model.TestCase) (*Verdict, error) {
	var ordered []testCase
	for _, tc := range cases {
		if tc.IsHidden {
			ordered = append(ordered, testCase{id: tc.ID, input: tc.Input, expected: tc.ExpectedOutput, hidden: true})
		}
	}
	return a.run(ctx, source, lang, question, ordered)
}

func (a *Aggregator) run(ctx context.Context, source string, lang model.Language, question *model.Question, ordered []testCase) (*Verdict, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("source code is empty: %w", common.ErrValidation)
	}
	langID, err := judge.LanguageID(lang)
	if err != nil {
		return nil, err
	}
	if len(ordered) == 0 {
		return nil, fmt.Errorf("question %s has no test cases to judge: %w", question.ID, common.ErrValidation)
	}

	v := &Verdict{TotalTests: len(ordered)}
	var aborted model.SubmissionStatus
	var runtimeSum, memorySum float64
	var runtimeN, memoryN int

	for i, tc := range ordered {
		tr := TestResult{Index: i, TestCaseID: tc.id, IsHidden: tc.hidden, Input: tc.input, Expected: tc.expected}

		res, err := a.client.Execute(ctx, source, langID, tc.input, a.maxAttempts, a.pollInterval)
		if err != nil && interrupted(ctx, err) {
			// No verdict: the caller keeps whatever was stored before.
			return nil, fmt.Errorf("judging question %s stopped at case %d: %w", question.ID, i, err)
		}
		if err != nil {
			log.Printf("ERROR: judge call failed for question %s case %d: %v", question.ID, i, err)
			tr.Outcome = OutcomeInfraError
			tr.Error = err.Error()
			v.Results = append(v.Results, tr)
			aborted = model.StatusError
			break
		}

		tr.Actual = res.Stdout
		tr.Runtime, tr.Memory = res.Time, res.Memory
		tr.JudgeStatus = res.StatusDescription
		if res.Time != nil {
			runtimeSum += *res.Time
			runtimeN++
		}
		if res.Memory != nil {
			memorySum += *res.Memory
			memoryN++
		}

		if status, abort := abortStatus(res.StatusID); abort {
			tr.Outcome = OutcomeFailed
			tr.Error = firstNonEmpty(res.CompileOutput, res.Stderr, res.Message, res.StatusDescription)
			v.Results = append(v.Results, tr)
			aborted = status
			break
		}

		if strings.TrimSpace(res.Stdout) == strings.TrimSpace(tc.expected) {
			tr.Passed, tr.Outcome = true, OutcomePassed
			v.PassedTests++
		} else {
			tr.Outcome = OutcomeFailed
		}
		v.Results = append(v.Results, tr)
	}

	v.ProcessedTests = len(v.Results)
	switch {
	case aborted != "":
		v.Status = aborted
	case v.PassedTests == v.TotalTests:
		v.Status = model.StatusAccepted
	default:
		v.Status = model.StatusWrongAnswer
	}

	v.Score = score(question, v.PassedTests, v.TotalTests)
	if runtimeN > 0 {
		v.Runtime = runtimeSum / float64(runtimeN)
	}
	if memoryN > 0 {
		v.Memory = memorySum / float64(memoryN)
	}
	return v, nil
}

func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// abortStatus maps a terminal Judge0 status to the submission status that stops further cases.
func abortStatus(statusID int) (model.SubmissionStatus, bool) {
	switch {
	case statusID == judge.StatusTimeLimitExceeded:
		return model.StatusTimeLimitExceeded, true
	case statusID == judge.StatusCompilationError:
		return model.StatusCompilationError, true
	case statusID >= judge.StatusRuntimeErrorSIGSEGV && statusID <= judge.StatusRuntimeErrorOther,
		statusID == judge.StatusExecFormatError:
		return model.StatusRuntimeError, true
	case statusID == judge.StatusInternalError:
		return model.StatusError, true
	}
	return "", false
}

func score(question *model.Question, passed, total int) int {
	if total == 0 {
		log.Printf("ERROR: question %s judged with zero test cases, scoring 0", question.ID)
		return 0
	}
	return int(math.Round(float64(question.Points) * float64(passed) / float64(total)))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
