package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"contest_judge/internal/common"
	"contest_judge/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
		PoolSize: 100,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RDB.Ping(ctx).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	fmt.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		fmt.Println("Redis connection closed.")
	}
}

// JudgeLockKey scopes the worker lock to one user's submissions in one contest.
func JudgeLockKey(prefix, contestID, userID string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, contestID, userID)
}

func LeaderboardCacheKey(contestID string) string {
	return "leaderboard:" + contestID
}

var releaseScript = redis.NewScript(`
    if redis.call("get", KEYS[1]) == ARGV[1] then
        return redis.call("del", KEYS[1])
    else
        return 0
    end
`)

// Lock is a single-holder Redis lock identified by a random value.
type Lock struct {
	rdb   *redis.Client
	key   string
	value string
}

// AcquireLock tries SET NX PX once. A nil lock with a nil error means someone else holds it.
func AcquireLock(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (*Lock, error) {
	value := uuid.NewString()
	ok, err := rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", common.ErrJobLockFailed, key, err)
	}
	if !ok {
		return nil, nil
	}
	return &Lock{rdb: rdb, key: key, value: value}, nil
}

// Release deletes the key only if this holder still owns it.
func (l *Lock) Release(ctx context.Context) (bool, error) {
	deleted, err := releaseScript.Run(ctx, l.rdb, []string{l.key}, l.value).Int64()
	if err != nil {
		return false, fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return deleted == 1, nil
}
