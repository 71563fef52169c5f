package mockjudge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contest_judge/internal/judge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreExpiresAndEvicts(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(time.Minute)
	s.now = func() time.Time { return now }

	s.Put("a", Submission{SourceCode: "x"})
	now = now.Add(30 * time.Second)
	s.Put("b", Submission{SourceCode: "y"})

	sub, age, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "x", sub.SourceCode)
	assert.Equal(t, 30*time.Second, age)

	now = now.Add(45 * time.Second)
	_, _, ok = s.Get("a")
	assert.False(t, ok, "expired token must be reported missing")

	assert.Equal(t, 1, s.Evict())
	assert.Equal(t, 1, s.Len())
	_, _, ok = s.Get("b")
	assert.True(t, ok)
}

func TestJanitorStopsWithContext(t *testing.T) {
	s := NewStore(time.Nanosecond)
	s.Put("a", Submission{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

func TestSimulate(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		stdin  string
		status int
		stdout string
	}{
		{"python print", `print("hi")`, "", judge.StatusAccepted, "hi\n"},
		{"single quotes", `print('a')` + "\n" + `print('b')`, "", judge.StatusAccepted, "a\nb\n"},
		{"java", `System.out.println("Hello");`, "", judge.StatusAccepted, "Hello\n"},
		{"js", `console.log("x")`, "", judge.StatusAccepted, "x\n"},
		{"cpp", `cout << "ok";`, "", judge.StatusAccepted, "ok\n"},
		{"no output", `x = 1`, "", judge.StatusAccepted, ""},
		{"echo", "# #echo_stdin", "5 6", judge.StatusAccepted, "5 6"},
		{"compile", "#compile_error", "", judge.StatusCompilationError, ""},
		{"runtime", "#runtime_error", "", judge.StatusRuntimeErrorSIGSEGV, ""},
		{"tle", "#time_limit", "", judge.StatusTimeLimitExceeded, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Simulate("tok", Submission{SourceCode: tc.src, Stdin: tc.stdin})
			assert.Equal(t, tc.status, res.StatusID)
			assert.Equal(t, tc.stdout, res.Stdout)
			assert.True(t, res.IsTerminal())
		})
	}
}

func TestServerLifecycle(t *testing.T) {
	srv := httptest.NewServer(NewServer(NewStore(time.Minute), time.Hour).Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/submissions", "application/json", strings.NewReader(`{"source_code":"print('x')","language_id":71}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/submissions", "application/json", strings.NewReader(`{"source_code":"x","language_id":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/submissions/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerReportsQueuedBeforeDelay(t *testing.T) {
	srv := httptest.NewServer(NewServer(NewStore(time.Minute), time.Hour).Routes())
	defer srv.Close()
	client := judge.NewHTTPClient(judge.Config{BaseURL: srv.URL, Timeout: time.Second})

	token, err := client.Submit(context.Background(), `print("x")`, 71, "")
	require.NoError(t, err)
	res, err := client.Poll(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, judge.StatusInQueue, res.StatusID)
	assert.False(t, res.IsTerminal())
}
