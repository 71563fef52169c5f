package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"contest_judge/internal/common"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sethvargo/go-retry"
)

var (
	ErrSubmission          = fmt.Errorf("judge submission failed: %w", common.ErrServiceUnavailable)
	ErrTimeout             = fmt.Errorf("judge did not finish in time: %w", common.ErrServiceUnavailable)
	ErrUnsupportedLanguage = fmt.Errorf("unsupported language: %w", common.ErrValidation)
)

// Judge0 status ids.
const (
	StatusInQueue             = 1
	StatusProcessing          = 2
	StatusAccepted            = 3
	StatusWrongAnswer         = 4
	StatusTimeLimitExceeded   = 5
	StatusCompilationError    = 6
	StatusRuntimeErrorSIGSEGV = 7
	StatusRuntimeErrorOther   = 12
	StatusInternalError       = 13
	StatusExecFormatError     = 14
)

type ExecutionResult struct {
	Token             string   `json:"token"`
	Stdout            string   `json:"stdout"`
	Stderr            string   `json:"stderr"`
	CompileOutput     string   `json:"compile_output"`
	Message           string   `json:"message"`
	StatusID          int      `json:"status_id"`
	StatusDescription string   `json:"status_description"`
	Time              *float64 `json:"time,omitempty"`   // seconds
	Memory            *float64 `json:"memory,omitempty"` // KB
}

func (r *ExecutionResult) IsTerminal() bool {
	return r.StatusID >= StatusAccepted
}

// Client talks to a Judge0-compatible service.
type Client interface {
	Submit(ctx context.Context, sourceCode string, languageID int, stdin string) (string, error)
	Poll(ctx context.Context, token string) (*ExecutionResult, error)
	Execute(ctx context.Context, sourceCode string, languageID int, stdin string, maxAttempts int, interval time.Duration) (*ExecutionResult, error)
}

type Config struct {
	BaseURL      string
	AuthToken    string // X-Auth-Token for self-hosted Judge0
	RapidAPIKey  string
	RapidAPIHost string
	RetryMax     int
	Timeout      time.Duration
}

type HTTPClient struct {
	cfg  Config
	http *http.Client
}

func NewHTTPClient(cfg Config) *HTTPClient {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = cfg.Timeout

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPClient{cfg: cfg, http: retryClient.StandardClient()}
}

type submitRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

type submitResponse struct {
	Token string `json:"token"`
}

func (c *HTTPClient) Submit(ctx context.Context, sourceCode string, languageID int, stdin string) (string, error) {
	body, err := json.Marshal(submitRequest{SourceCode: sourceCode, LanguageID: languageID, Stdin: stdin})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/submissions?base64_encoded=false&wait=false", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Join(ErrSubmission, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: HTTP %d: %s", ErrSubmission, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrSubmission, err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrSubmission)
	}
	return out.Token, nil
}

// rawResult is the Judge0 wire shape. time arrives as a string, memory as a number.
type rawResult struct {
	Token         string    `json:"token"`
	Stdout        *string   `json:"stdout"`
	Stderr        *string   `json:"stderr"`
	CompileOutput *string   `json:"compile_output"`
	Message       *string   `json:"message"`
	Time          flexFloat `json:"time"`
	Memory        flexFloat `json:"memory"`
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

func (c *HTTPClient) Poll(ctx context.Context, token string) (*ExecutionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/submissions/"+token+"?base64_encoded=false", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll judge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("poll judge: HTTP %d", resp.StatusCode)
	}

	var raw rawResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode judge response: %w", err)
	}

	res := &ExecutionResult{
		Token:             raw.Token,
		Stdout:            deref(raw.Stdout),
		Stderr:            deref(raw.Stderr),
		CompileOutput:     deref(raw.CompileOutput),
		Message:           deref(raw.Message),
		StatusID:          raw.Status.ID,
		StatusDescription: raw.Status.Description,
		Time:              raw.Time.v,
		Memory:            raw.Memory.v,
	}
	if res.Token == "" {
		res.Token = token
	}
	return res, nil
}

// Execute submits once and polls until a terminal status or maxAttempts polls.
// The interval is waited before every poll.
func (c *HTTPClient) Execute(ctx context.Context, sourceCode string, languageID int, stdin string, maxAttempts int, interval time.Duration) (*ExecutionResult, error) {
	token, err := c.Submit(ctx, sourceCode, languageID, stdin)
	if err != nil {
		return nil, err
	}
	return pollUntilTerminal(ctx, c, token, maxAttempts, interval)
}

type poller interface {
	Poll(ctx context.Context, token string) (*ExecutionResult, error)
}

func pollUntilTerminal(ctx context.Context, p poller, token string, maxAttempts int, interval time.Duration) (*ExecutionResult, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	if err := sleepCtx(ctx, interval); err != nil {
		return nil, err
	}

	var last *ExecutionResult
	var lastErr error
	b := retry.WithMaxRetries(uint64(maxAttempts-1), retry.NewConstant(nonZero(interval)))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		res, err := p.Poll(ctx, token)
		if err != nil {
			lastErr = err
			return retry.RetryableError(err)
		}
		last = res
		if !res.IsTerminal() {
			return retry.RetryableError(fmt.Errorf("token %s still in status %d", token, res.StatusID))
		}
		return nil
	})
	if err == nil {
		return last, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if lastErr != nil && last == nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrTimeout, maxAttempts, lastErr)
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrTimeout, maxAttempts)
}

func (c *HTTPClient) setAuth(req *http.Request) {
	if c.cfg.AuthToken != "" {
		req.Header.Set("X-Auth-Token", c.cfg.AuthToken)
	}
	if c.cfg.RapidAPIKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.cfg.RapidAPIKey)
		req.Header.Set("X-RapidAPI-Host", c.cfg.RapidAPIHost)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// go-retry rejects a zero constant backoff.
func nonZero(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Millisecond
	}
	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// flexFloat accepts a JSON number, a numeric string or null.
type flexFloat struct {
	v *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		f.v = nil
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unparseable metrics are treated as absent.
		f.v = nil
		return nil
	}
	f.v = &v
	return nil
}
