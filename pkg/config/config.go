package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	CORS       CORSConfig
	Log        LogConfig
	Genetic    GeneticConfig
	Policy     PolicyConfig
	AI         AIConfig
	Generation GenerationConfig
	Notify     NotifyConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GeneticConfig tunes the evolutionary search. Every value here is a
// hyperparameter exposed for tuning and tests, not a constant.
type GeneticConfig struct {
	PopulationSize  int
	MaxGenerations  int
	MutationRate    float64
	ElitismCount    int
	TournamentSize  int
	StagnationLimit int
	RetryLimit      int
	Parallelism     int
	Seed            int64
}

// PolicyConfig carries institution-wide scheduling policy.
type PolicyConfig struct {
	MaxCoursesPerDay int
	DayStart         string
	DayEnd           string
}

// AIConfig points at the external text-generation collaborator.
type AIConfig struct {
	Enabled  bool
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// GenerationConfig governs orchestrator behaviour around a run.
type GenerationConfig struct {
	LockTTL        time.Duration
	FailureWindow  time.Duration
	MinAIAttempts  int
	MinSuccessRate float64
}

// NotifyConfig tunes the asynchronous conflict notification queue.
type NotifyConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Genetic = GeneticConfig{
		PopulationSize:  v.GetInt("GA_POPULATION_SIZE"),
		MaxGenerations:  v.GetInt("GA_MAX_GENERATIONS"),
		MutationRate:    v.GetFloat64("GA_MUTATION_RATE"),
		ElitismCount:    v.GetInt("GA_ELITISM_COUNT"),
		TournamentSize:  v.GetInt("GA_TOURNAMENT_SIZE"),
		StagnationLimit: v.GetInt("GA_STAGNATION_LIMIT"),
		RetryLimit:      v.GetInt("GA_RETRY_LIMIT"),
		Parallelism:     v.GetInt("GA_PARALLELISM"),
		Seed:            v.GetInt64("GA_SEED"),
	}

	cfg.Policy = PolicyConfig{
		MaxCoursesPerDay: v.GetInt("POLICY_MAX_COURSES_PER_DAY"),
		DayStart:         v.GetString("POLICY_DAY_START"),
		DayEnd:           v.GetString("POLICY_DAY_END"),
	}

	cfg.AI = AIConfig{
		Enabled:  v.GetBool("AI_ENABLED"),
		Endpoint: v.GetString("AI_ENDPOINT"),
		APIKey:   v.GetString("AI_API_KEY"),
		Model:    v.GetString("AI_MODEL"),
		Timeout:  parseDuration(v.GetString("AI_TIMEOUT"), 30*time.Second),
	}

	cfg.Generation = GenerationConfig{
		LockTTL:        parseDuration(v.GetString("GENERATION_LOCK_TTL"), 5*time.Minute),
		FailureWindow:  parseDuration(v.GetString("GENERATION_FAILURE_WINDOW"), 24*time.Hour),
		MinAIAttempts:  v.GetInt("GENERATION_MIN_AI_ATTEMPTS"),
		MinSuccessRate: v.GetFloat64("GENERATION_MIN_AI_SUCCESS_RATE"),
	}

	cfg.Notify = NotifyConfig{
		Workers:    v.GetInt("NOTIFY_WORKERS"),
		BufferSize: v.GetInt("NOTIFY_BUFFER_SIZE"),
		MaxRetries: v.GetInt("NOTIFY_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFY_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GA_POPULATION_SIZE", 100)
	v.SetDefault("GA_MAX_GENERATIONS", 150)
	v.SetDefault("GA_MUTATION_RATE", 0.15)
	v.SetDefault("GA_ELITISM_COUNT", 10)
	v.SetDefault("GA_TOURNAMENT_SIZE", 5)
	v.SetDefault("GA_STAGNATION_LIMIT", 20)
	v.SetDefault("GA_RETRY_LIMIT", 50)
	v.SetDefault("GA_PARALLELISM", 0)
	v.SetDefault("GA_SEED", 0)

	v.SetDefault("POLICY_MAX_COURSES_PER_DAY", 3)
	v.SetDefault("POLICY_DAY_START", "08:00")
	v.SetDefault("POLICY_DAY_END", "18:00")

	v.SetDefault("AI_ENABLED", false)
	v.SetDefault("AI_ENDPOINT", "")
	v.SetDefault("AI_API_KEY", "")
	v.SetDefault("AI_MODEL", "gpt-4o-mini")
	v.SetDefault("AI_TIMEOUT", "30s")

	v.SetDefault("GENERATION_LOCK_TTL", "5m")
	v.SetDefault("GENERATION_FAILURE_WINDOW", "24h")
	v.SetDefault("GENERATION_MIN_AI_ATTEMPTS", 5)
	v.SetDefault("GENERATION_MIN_AI_SUCCESS_RATE", 0.3)

	v.SetDefault("NOTIFY_WORKERS", 1)
	v.SetDefault("NOTIFY_BUFFER_SIZE", 64)
	v.SetDefault("NOTIFY_MAX_RETRIES", 3)
	v.SetDefault("NOTIFY_RETRY_DELAY", "1s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
