package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// DefaultUserID addresses single-user deployments; there is no auth.
	DefaultUserID string

	// Static level scheme.
	StaticLevels int
	BundleDir    string

	// Generated topics.
	Generator          string // mock|openai
	ModulesPerTopic    int
	QuestionsPerModule int
	QuestionWriteDelay time.Duration

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	QuestionBudget time.Duration

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:      addr,
		DBDriver:      envOr("DB_DRIVER", "sqlite"),
		DBDSN:         envOr("DB_DSN", ""),
		DefaultUserID: envOr("DEFAULT_USER_ID", "1"),

		StaticLevels: envInt("STATIC_LEVELS", 20),
		BundleDir:    envOr("BUNDLE_DIR", "./assets"),

		Generator:          envOr("GENERATOR", "mock"),
		ModulesPerTopic:    envInt("MODULES_PER_TOPIC", 5),
		QuestionsPerModule: envInt("QUESTIONS_PER_MODULE", 10),
		QuestionWriteDelay: envDuration("QUESTION_WRITE_DELAY", 50*time.Millisecond),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4-turbo"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		QuestionBudget: envDuration("QUESTION_BUDGET", 30*time.Second),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:4200"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
