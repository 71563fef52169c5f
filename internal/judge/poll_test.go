package judge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPoller struct {
	results []*ExecutionResult
	errs    []error
	calls   int
}

func (p *scriptedPoller) Poll(ctx context.Context, token string) (*ExecutionResult, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	if i >= len(p.results) {
		return p.results[len(p.results)-1], nil
	}
	return p.results[i], nil
}

func TestPollStopsAtTerminal(t *testing.T) {
	p := &scriptedPoller{results: []*ExecutionResult{
		{StatusID: StatusInQueue}, {StatusID: StatusProcessing}, {StatusID: StatusWrongAnswer},
	}}
	res, err := pollUntilTerminal(context.Background(), p, "t", 10, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, StatusWrongAnswer, res.StatusID)
	assert.Equal(t, 3, p.calls)
}

func TestPollRespectsMaxAttempts(t *testing.T) {
	p := &scriptedPoller{results: []*ExecutionResult{{StatusID: StatusProcessing}}}
	_, err := pollUntilTerminal(context.Background(), p, "t", 4, time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 4, p.calls)
}

func TestPollRetriesTransientErrors(t *testing.T) {
	p := &scriptedPoller{
		errs:    []error{errors.New("connection reset")},
		results: []*ExecutionResult{nil, {StatusID: StatusAccepted, Stdout: "ok"}},
	}
	res, err := pollUntilTerminal(context.Background(), p, "t", 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Stdout)
}

func TestPollHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &scriptedPoller{results: []*ExecutionResult{{StatusID: StatusInQueue}}}
	_, err := pollUntilTerminal(ctx, p, "t", 5, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.calls)
}

func TestFlexFloat(t *testing.T) {
	var f flexFloat
	require.NoError(t, f.UnmarshalJSON([]byte(`"0.5"`)))
	assert.Equal(t, 0.5, *f.v)
	require.NoError(t, f.UnmarshalJSON([]byte(`128`)))
	assert.Equal(t, 128.0, *f.v)
	require.NoError(t, f.UnmarshalJSON([]byte(`null`)))
	assert.Nil(t, f.v)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, (&ExecutionResult{StatusID: 1}).IsTerminal())
	assert.False(t, (&ExecutionResult{StatusID: 2}).IsTerminal())
	assert.True(t, (&ExecutionResult{StatusID: 3}).IsTerminal())
	assert.True(t, (&ExecutionResult{StatusID: 13}).IsTerminal())
}
