package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort           string
	APIRequestTimeout time.Duration
	JWTKey            []byte
	JWTExp            time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ExecutionQueueName      string
	ExecutionLockPrefix     string
	ExecutionLockTTLSeconds int
	WorkerConcurrency       int

	JudgeBaseURL         string
	JudgeAuthToken       string
	JudgeRapidAPIKey     string
	JudgeRapidAPIHost    string
	JudgePollMaxAttempts int
	JudgePollInterval    time.Duration
	JudgeHTTPRetryMax    int
	JudgeHTTPTimeout     time.Duration

	LeaderboardCacheTTL time.Duration

	PlagiarismDefaultThreshold float64
	PlagiarismScanParallelism  int

	MockJudgePort  string
	MockJudgeDelay time.Duration
	MockJudgeTTL   time.Duration
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:                 getEnv("API_PORT", "8080"),
		APIRequestTimeout:       time.Duration(getEnvAsInt("API_REQUEST_TIMEOUT_SECONDS", 120)) * time.Second,
		JWTKey:                  []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:                  time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:                  getEnv("DB_HOST", "localhost"),
		DBPort:                  getEnv("DB_PORT", "5432"),
		DBUser:                  getEnv("DB_USER", "user"),
		DBPassword:              getEnv("DB_PASSWORD", "password"),
		DBName:                  getEnv("DB_NAME", "contest_judge_db"),
		DBSslMode:               getEnv("DB_SSLMODE", "disable"),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getEnvAsInt("REDIS_DB", 0),
		ExecutionQueueName:      getEnv("EXECUTION_QUEUE_NAME", "execution_jobs_queue"),
		ExecutionLockPrefix:     getEnv("EXECUTION_LOCK_PREFIX", "judge_lock"),
		ExecutionLockTTLSeconds: getEnvAsInt("EXECUTION_LOCK_TTL_SECONDS", 300),
		WorkerConcurrency:       getEnvAsInt("WORKER_CONCURRENCY", 4),

		JudgeBaseURL:         getEnv("JUDGE_BASE_URL", "http://localhost:2358"),
		JudgeAuthToken:       getEnv("JUDGE_AUTH_TOKEN", ""),
		JudgeRapidAPIKey:     getEnv("JUDGE_RAPIDAPI_KEY", ""),
		JudgeRapidAPIHost:    getEnv("JUDGE_RAPIDAPI_HOST", ""),
		JudgePollMaxAttempts: getEnvAsInt("JUDGE_POLL_MAX_ATTEMPTS", 15),
		JudgePollInterval:    time.Duration(getEnvAsInt("JUDGE_POLL_INTERVAL_MS", 1000)) * time.Millisecond,
		JudgeHTTPRetryMax:    getEnvAsInt("JUDGE_HTTP_RETRY_MAX", 2),
		JudgeHTTPTimeout:     time.Duration(getEnvAsInt("JUDGE_HTTP_TIMEOUT_SECONDS", 30)) * time.Second,

		LeaderboardCacheTTL: time.Duration(getEnvAsInt("LEADERBOARD_CACHE_TTL_SECONDS", 30)) * time.Second,

		PlagiarismDefaultThreshold: getEnvAsFloat("PLAGIARISM_DEFAULT_THRESHOLD", 0.7),
		PlagiarismScanParallelism:  getEnvAsInt("PLAGIARISM_SCAN_PARALLELISM", 0),

		MockJudgePort:  getEnv("MOCK_JUDGE_PORT", "2358"),
		MockJudgeDelay: time.Duration(getEnvAsInt("MOCK_JUDGE_DELAY_MS", 1500)) * time.Millisecond,
		MockJudgeTTL:   time.Duration(getEnvAsInt("MOCK_JUDGE_TTL_SECONDS", 600)) * time.Second,
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return fallback
}
