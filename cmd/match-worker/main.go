// cmd/match-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kundali-workers/internal/common/config"
	"kundali-workers/internal/common/database"
	"kundali-workers/internal/common/logger"
	"kundali-workers/internal/kundali"
	"kundali-workers/internal/matcher"
	"kundali-workers/internal/store"
	"kundali-workers/internal/worker"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting match worker...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry (optional vector cache) ---
	var cache *store.VectorCache
	if cfg.Database.Redis.Enabled {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")

		cache = store.NewVectorCache(
			redisClient.Client,
			time.Duration(cfg.Matching.VectorCacheTTL)*time.Second,
			log,
		)
	} else {
		zapLog.Info("Redis disabled, vector cache off")
	}

	// --- Wire the pipeline ---
	st := store.NewPostgres(pg.DB, cache, log)

	engine := matcher.New(
		matcher.Config{
			ChunkSize:     cfg.Matching.ChunkSize,
			MaxCandidates: cfg.Matching.MaxCandidates,
			MaxResults:    cfg.Matching.MaxResults,
			MinScore:      cfg.Matching.MinScore,
		},
		kundali.DoshaPolicy{
			NadiCancelMinTotal:    cfg.Matching.NadiCancelMinTotal,
			ManglikBothCancel:     cfg.Matching.ManglikBothCancel,
			ManglikCancelMinTotal: cfg.Matching.ManglikCancelMinTotal,
		},
		kundali.VerdictBands{
			Average:   cfg.Matching.VerdictAverage,
			Good:      cfg.Matching.VerdictGood,
			Excellent: cfg.Matching.VerdictExcellent,
		},
		log,
	)

	w := worker.New(
		worker.Config{
			PollInterval:        time.Duration(cfg.Worker.PollInterval) * time.Millisecond,
			PersistBatchSize:    cfg.Worker.PersistBatchSize,
			PersistRetries:      cfg.Worker.PersistRetries,
			PersistRetryBackoff: 500 * time.Millisecond,
		},
		st, engine, log,
	)

	reaper := worker.NewReaper(
		worker.ReaperConfig{
			Interval:   time.Duration(cfg.Worker.ReapInterval) * time.Millisecond,
			StaleAfter: time.Duration(cfg.Worker.StaleAfter) * time.Millisecond,
		},
		st, log,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return w.Run(gctx) })
	g.Go(func() error { return reaper.Run(gctx) })

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status := "ready"
		code := http.StatusOK
		if err := pg.Ping(r.Context()); err != nil {
			status = "unavailable"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	if cfg.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Worker.HTTPPort),
		Handler: mux,
	}
	g.Go(func() error {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		zapLog.Fatal("match worker exited with error", zap.Error(err))
	}
	zapLog.Info("Match worker stopped gracefully")
}
