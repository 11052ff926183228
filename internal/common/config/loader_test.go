// internal/common/config/loader_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func minimalConfig() *Config {
	cfg := &Config{}
	cfg.Database.Postgres.Database = "kundali"
	cfg.Database.Postgres.User = "kundali"
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := minimalConfig()
	applyDefaults(cfg)

	assert.Equal(t, "match-worker", cfg.App.Name)
	assert.Equal(t, 2000, cfg.Worker.PollInterval)
	assert.Equal(t, 60000, cfg.Worker.ReapInterval)
	assert.Equal(t, 600000, cfg.Worker.StaleAfter)
	assert.Equal(t, 100, cfg.Worker.PersistBatchSize)
	assert.Equal(t, 8080, cfg.Worker.HTTPPort)

	assert.Equal(t, 50, cfg.Matching.ChunkSize)
	assert.Equal(t, 10000, cfg.Matching.MaxCandidates)
	assert.Equal(t, 18, cfg.Matching.MinScore)
	assert.Equal(t, 28, cfg.Matching.NadiCancelMinTotal)
	assert.True(t, cfg.Matching.ManglikBothCancel)
	assert.Equal(t, 18, cfg.Matching.VerdictAverage)
	assert.Equal(t, 24, cfg.Matching.VerdictGood)
	assert.Equal(t, 30, cfg.Matching.VerdictExcellent)

	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := minimalConfig()
	cfg.Worker.PollInterval = 500
	cfg.Matching.MinScore = 24
	applyDefaults(cfg)

	assert.Equal(t, 500, cfg.Worker.PollInterval)
	assert.Equal(t, 24, cfg.Matching.MinScore)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults are valid", func(cfg *Config) {}, true},
		{"missing database name", func(cfg *Config) { cfg.Database.Postgres.Database = "" }, false},
		{"missing database user", func(cfg *Config) { cfg.Database.Postgres.User = "" }, false},
		{"min score above ceiling", func(cfg *Config) { cfg.Matching.MinScore = 37 }, false},
		{"negative min score", func(cfg *Config) { cfg.Matching.MinScore = -1 }, false},
		{"verdict bands not ascending", func(cfg *Config) { cfg.Matching.VerdictGood = 30; cfg.Matching.VerdictExcellent = 24 }, false},
		{"zero chunk size", func(cfg *Config) { cfg.Matching.ChunkSize = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := minimalConfig()
			applyDefaults(cfg)
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db.internal", Port: 5433, Database: "kundali",
		User: "svc", Password: "secret", SSLMode: "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=svc password=secret dbname=kundali sslmode=require",
		p.GetDSN(),
	)
}
