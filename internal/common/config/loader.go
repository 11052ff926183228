// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_POSTGRES_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries the usual relative locations plus the project root so
// tests running from package directories still pick up .env.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in yaml values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "match-worker"
	}
	if cfg.Database.Postgres.Host == "" {
		cfg.Database.Postgres.Host = "localhost"
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}

	if cfg.Worker.PollInterval == 0 {
		cfg.Worker.PollInterval = 2000
	}
	if cfg.Worker.ReapInterval == 0 {
		cfg.Worker.ReapInterval = 60000
	}
	if cfg.Worker.StaleAfter == 0 {
		cfg.Worker.StaleAfter = 600000 // 10 minutes
	}
	if cfg.Worker.PersistBatchSize == 0 {
		cfg.Worker.PersistBatchSize = 100
	}
	if cfg.Worker.PersistRetries == 0 {
		cfg.Worker.PersistRetries = 3
	}
	if cfg.Worker.HTTPPort == 0 {
		cfg.Worker.HTTPPort = 8080
	}

	if cfg.Matching.ChunkSize == 0 {
		cfg.Matching.ChunkSize = 50
	}
	if cfg.Matching.MaxCandidates == 0 {
		cfg.Matching.MaxCandidates = 10000
	}
	if cfg.Matching.MaxResults == 0 {
		cfg.Matching.MaxResults = 500
	}
	if cfg.Matching.MinScore == 0 {
		cfg.Matching.MinScore = 18
	}
	if cfg.Matching.NadiCancelMinTotal == 0 {
		cfg.Matching.NadiCancelMinTotal = 28
		cfg.Matching.ManglikBothCancel = true
	}
	if cfg.Matching.VerdictAverage == 0 {
		cfg.Matching.VerdictAverage = 18
	}
	if cfg.Matching.VerdictGood == 0 {
		cfg.Matching.VerdictGood = 24
	}
	if cfg.Matching.VerdictExcellent == 0 {
		cfg.Matching.VerdictExcellent = 30
	}
	if cfg.Matching.VectorCacheTTL == 0 {
		cfg.Matching.VectorCacheTTL = 600
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if cfg.Matching.ChunkSize < 1 {
		return fmt.Errorf("matching.chunk_size must be positive")
	}
	if cfg.Matching.MaxCandidates < 1 {
		return fmt.Errorf("matching.max_candidates must be positive")
	}
	if cfg.Matching.MinScore < 0 || cfg.Matching.MinScore > 36 {
		return fmt.Errorf("matching.min_score must lie in [0,36]")
	}
	if !(cfg.Matching.VerdictAverage < cfg.Matching.VerdictGood &&
		cfg.Matching.VerdictGood < cfg.Matching.VerdictExcellent) {
		return fmt.Errorf("verdict bands must be strictly ascending")
	}
	if cfg.Worker.PersistBatchSize < 1 {
		return fmt.Errorf("worker.persist_batch_size must be positive")
	}
	return nil
}
