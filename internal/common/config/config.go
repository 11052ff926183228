// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Matching MatchingConfig `mapstructure:"matching"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the poll-loop and reaper settings.
type WorkerConfig struct {
	PollInterval     int `mapstructure:"poll_interval"`      // milliseconds
	ReapInterval     int `mapstructure:"reap_interval"`      // milliseconds
	StaleAfter       int `mapstructure:"stale_after"`        // milliseconds
	PersistBatchSize int `mapstructure:"persist_batch_size"` // result rows per upsert
	PersistRetries   int `mapstructure:"persist_retries"`    // per-batch retries before the job fails
	HTTPPort         int `mapstructure:"http_port"`          // health/metrics listener
}

// MatchingConfig holds the scoring-policy knobs: caps, thresholds, verdict
// bands and dosha cancellation cutoffs.
type MatchingConfig struct {
	ChunkSize     int `mapstructure:"chunk_size"`
	MaxCandidates int `mapstructure:"max_candidates"`
	MaxResults    int `mapstructure:"max_results"`
	MinScore      int `mapstructure:"min_score"`

	NadiCancelMinTotal    int  `mapstructure:"nadi_cancel_min_total"`
	ManglikBothCancel     bool `mapstructure:"manglik_both_cancel"`
	ManglikCancelMinTotal int  `mapstructure:"manglik_cancel_min_total"`

	VerdictAverage   int `mapstructure:"verdict_average"`
	VerdictGood      int `mapstructure:"verdict_good"`
	VerdictExcellent int `mapstructure:"verdict_excellent"`

	VectorCacheTTL int `mapstructure:"vector_cache_ttl"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
