package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContestIsOpen(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c := &Contest{StartTime: start, EndTime: start.Add(2 * time.Hour)}

	assert.False(t, c.IsOpen(start.Add(-time.Second)))
	assert.True(t, c.IsOpen(start))
	assert.True(t, c.IsOpen(start.Add(time.Hour)))
	assert.False(t, c.IsOpen(start.Add(2*time.Hour)))
}

func TestQuestionHasSample(t *testing.T) {
	in, out := "1", "2"
	assert.False(t, (&Question{}).HasSample())
	assert.False(t, (&Question{SampleInput: &in}).HasSample())
	assert.True(t, (&Question{SampleInput: &in, SampleOutput: &out}).HasSample())
}
