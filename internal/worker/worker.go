// internal/worker/worker.go

// Package worker runs the background match pipeline: it polls the job queue,
// claims one job at a time, executes the matching scan and persists results
// with incremental progress. A companion reaper returns jobs abandoned by
// crashed workers to the queue.
package worker

import (
	"context"
	"errors"
	"time"

	joberrors "kundali-workers/internal/common/errors"
	"kundali-workers/internal/common/logger"
	"kundali-workers/internal/common/metrics"
	"kundali-workers/internal/common/validation"
	"kundali-workers/internal/matcher"
	"kundali-workers/internal/models"
)

// Store is the persistence contract the worker needs. *store.Postgres
// satisfies it; tests supply an in-memory fake.
type Store interface {
	ClaimNextJob(ctx context.Context) (*models.MatchJob, error)
	UpdateJobProgress(ctx context.Context, jobID string, progress int) error
	CompleteJob(ctx context.Context, jobID string) error
	FailJob(ctx context.Context, jobID, message string) error
	LoadPersonVectors(ctx context.Context, userID string) ([]models.PersonVector, error)
	UpsertResults(ctx context.Context, userID string, results []models.MatchResult) error
}

// Config controls the polling loop and the persist phase.
type Config struct {
	PollInterval        time.Duration
	PersistBatchSize    int
	PersistRetries      int
	PersistRetryBackoff time.Duration
}

// DefaultConfig returns the default worker configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:        2 * time.Second,
		PersistBatchSize:    100,
		PersistRetries:      3,
		PersistRetryBackoff: 500 * time.Millisecond,
	}
}

// Worker processes match jobs one at a time. Run one Worker per process;
// horizontal scale comes from running more processes against the same
// queue table.
type Worker struct {
	cfg    Config
	store  Store
	engine *matcher.Engine
	logger logger.Logger
}

func New(cfg Config, st Store, engine *matcher.Engine, log logger.Logger) *Worker {
	return &Worker{
		cfg:    cfg,
		store:  st,
		engine: engine,
		logger: log.WithFields(map[string]interface{}{"component": "worker"}),
	}
}

// Run polls the queue until ctx is cancelled. Each tick drains the queue:
// jobs are claimed and processed back to back until a poll comes up empty.
// A claimed job is always driven to a terminal state; cancellation is only
// honored between jobs, so shutdown never strands a job in processing.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Match worker started", map[string]interface{}{
		"poll_interval": w.cfg.PollInterval.String(),
	})

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		w.drain(ctx)

		select {
		case <-ctx.Done():
			w.logger.Info("Match worker stopping", nil)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// drain claims and processes jobs until the queue is empty or ctx is
// cancelled. Claim errors are logged and end the drain; the next tick
// retries, so a flaky database never crashes the loop.
func (w *Worker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		job, err := w.store.ClaimNextJob(ctx)
		if err != nil {
			w.logger.WithError(err).Error("Failed to claim job", nil)
			return
		}
		if job == nil {
			return
		}
		// The claimed job runs on a detached context so an in-flight job
		// finishes cleanly during shutdown.
		w.processJob(context.WithoutCancel(ctx), job)
	}
}

// processJob executes one claimed job and records its terminal state. Any
// error is written to the job row; nothing escapes to the polling loop.
func (w *Worker) processJob(ctx context.Context, job *models.MatchJob) {
	log := w.logger.WithFields(map[string]interface{}{
		"job_id":   job.ID,
		"job_type": string(job.Type),
		"user_id":  job.UserID,
	})
	log.Info("Processing match job", nil)

	jobType := string(job.Type)
	metrics.JobsActive.WithLabelValues(jobType).Inc()
	defer metrics.JobsActive.WithLabelValues(jobType).Dec()

	start := time.Now()
	err := w.execute(ctx, job)
	metrics.JobDuration.WithLabelValues(jobType).Observe(time.Since(start).Seconds())

	if err != nil {
		code := errorCode(err)
		log.WithError(err).Error("Match job failed", map[string]interface{}{"error_code": code})
		metrics.JobsFailed.WithLabelValues(jobType, code).Inc()
		if ferr := w.store.FailJob(ctx, job.ID, err.Error()); ferr != nil {
			log.WithError(ferr).Error("Failed to record job failure", nil)
		}
		return
	}

	if cerr := w.store.CompleteJob(ctx, job.ID); cerr != nil {
		log.WithError(cerr).Error("Failed to record job completion", nil)
		return
	}
	metrics.JobsCompleted.WithLabelValues(jobType).Inc()
	log.Info("Match job complete", map[string]interface{}{
		"duration": time.Since(start).String(),
	})
}

// Progress phases. Loading vectors covers 0-25, scoring 25-75, persisting
// 75-95; completion jumps to 100.
const (
	progressLoaded      = 25
	progressScoringSpan = 50
	progressScored      = 75
	progressPersistSpan = 20
	progressPersisted   = 95
)

// execute runs the job body: params, vectors, scan, persist. The returned
// error, if any, becomes the job's recorded failure.
func (w *Worker) execute(ctx context.Context, job *models.MatchJob) error {
	params, err := validation.ParseJobParams(job.Params)
	if err != nil {
		return err
	}
	engine := w.engine.WithOverrides(params.MinScore, params.MaxResults, params.ChunkSize)

	vectors, err := w.store.LoadPersonVectors(ctx, job.UserID)
	if err != nil {
		return err
	}

	report := w.progressReporter(ctx, job.ID)
	report(progressLoaded)

	onProgress := func(processed, total int) {
		report(progressLoaded + processed*progressScoringSpan/total)
	}

	var results []models.MatchResult
	switch job.Type {
	case models.JobTypeOneToMany:
		source, candidates, err := splitPrimary(vectors)
		if err != nil {
			return err
		}
		results, err = engine.OneToMany(source, candidates, onProgress)
		if err != nil {
			return err
		}
	case models.JobTypeManyToMany:
		results, err = engine.ManyToMany(vectors, nil, onProgress)
		if err != nil {
			return err
		}
	default:
		return joberrors.NewUnknownJobTypeError(string(job.Type))
	}

	report(progressScored)

	if err := w.persist(ctx, job.UserID, results, report); err != nil {
		return err
	}
	report(progressPersisted)
	return nil
}

// splitPrimary separates the owner's single primary vector from the
// candidate pool. Exactly one primary is required for a one-to-many job.
func splitPrimary(vectors []models.PersonVector) (models.PersonVector, []models.PersonVector, error) {
	var source models.PersonVector
	found := 0
	candidates := make([]models.PersonVector, 0, len(vectors))
	for _, v := range vectors {
		if v.IsPrimary {
			source = v
			found++
			continue
		}
		candidates = append(candidates, v)
	}
	if found != 1 {
		return models.PersonVector{}, nil, joberrors.NewMissingPrimaryError(found)
	}
	return source, candidates, nil
}

// persist writes results in bounded batches. Each batch is retried with
// backoff before the job fails; a retried batch is idempotent because the
// upsert is keyed on the pair.
func (w *Worker) persist(ctx context.Context, userID string, results []models.MatchResult, report func(int)) error {
	if len(results) == 0 {
		return nil
	}

	batches := (len(results) + w.cfg.PersistBatchSize - 1) / w.cfg.PersistBatchSize
	done := 0
	for start := 0; start < len(results); start += w.cfg.PersistBatchSize {
		end := min(start+w.cfg.PersistBatchSize, len(results))
		if err := w.persistBatch(ctx, userID, results[start:end]); err != nil {
			return err
		}
		done++
		report(progressScored + done*progressPersistSpan/batches)
	}
	return nil
}

func (w *Worker) persistBatch(ctx context.Context, userID string, batch []models.MatchResult) error {
	var lastErr error
	for attempt := 0; attempt <= w.cfg.PersistRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(w.cfg.PersistRetryBackoff * time.Duration(attempt))
		}
		lastErr = w.store.UpsertResults(ctx, userID, batch)
		if lastErr == nil {
			return nil
		}
		if !joberrors.IsRetryable(lastErr) {
			return lastErr
		}
		w.logger.WithError(lastErr).Warn("Result batch persist failed, retrying", map[string]interface{}{
			"attempt": attempt + 1,
		})
	}
	return lastErr
}

// progressReporter returns a monotonic progress sink. Progress update
// failures are logged and swallowed; losing a progress tick must not fail
// an otherwise healthy job.
func (w *Worker) progressReporter(ctx context.Context, jobID string) func(int) {
	last := 0
	return func(p int) {
		if p <= last {
			return
		}
		if p > 100 {
			p = 100
		}
		last = p
		if err := w.store.UpdateJobProgress(ctx, jobID, p); err != nil {
			w.logger.WithError(err).Warn("Failed to update job progress", nil)
		}
	}
}

// errorCode extracts the taxonomy code for metrics labels.
func errorCode(err error) string {
	var je *joberrors.JobError
	if errors.As(err, &je) {
		return string(je.Code)
	}
	return "INTERNAL"
}
