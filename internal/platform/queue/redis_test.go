package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "judge_lock:c1:u1", JudgeLockKey("judge_lock", "c1", "u1"))
	assert.Equal(t, "leaderboard:c1", LeaderboardCacheKey("c1"))
}
