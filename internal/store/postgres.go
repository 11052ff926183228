// internal/store/postgres.go

// Package store is the persistence boundary of the match pipeline: the job
// queue table, the read-only person vector source and the match result sink.
// Rows are mapped into the strict structs of internal/models and validated
// before they can reach the scorer.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	joberrors "kundali-workers/internal/common/errors"
	"kundali-workers/internal/common/logger"
	"kundali-workers/internal/models"
)

// Postgres implements the worker's store contract on top of database/sql.
// The handle is injected at construction so tests can swap in a mock.
type Postgres struct {
	db     *sql.DB
	cache  *VectorCache
	logger logger.Logger
}

// NewPostgres creates a store. cache may be nil to disable vector caching.
func NewPostgres(db *sql.DB, cache *VectorCache, log logger.Logger) *Postgres {
	return &Postgres{
		db:     db,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

const claimJobSQL = `
UPDATE match_jobs SET status = 'processing', updated_at = NOW()
WHERE id = (
	SELECT id FROM match_jobs
	WHERE status = 'queued'
	ORDER BY created_at
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
RETURNING id, user_id, job_type, status, progress, COALESCE(error, ''), COALESCE(params, 'null'), created_at, updated_at`

// ClaimNextJob atomically moves one queued job to processing and returns
// it. The conditional update with SKIP LOCKED guarantees at most one worker
// owns a job even with many processes polling the same queue. Returns
// (nil, nil) when the queue is empty.
func (s *Postgres) ClaimNextJob(ctx context.Context) (*models.MatchJob, error) {
	var job models.MatchJob
	var params []byte
	err := s.db.QueryRowContext(ctx, claimJobSQL).Scan(
		&job.ID, &job.UserID, &job.Type, &job.Status, &job.Progress,
		&job.Error, &params, &job.CreatedAt, &job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	job.Params = json.RawMessage(params)
	return &job, nil
}

// EnqueueJob inserts a new queued job and returns its id. Producers (the
// request handler) call this; the worker only consumes.
func (s *Postgres) EnqueueJob(ctx context.Context, userID string, jobType models.JobType, params json.RawMessage) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_jobs (id, user_id, job_type, status, progress, params, created_at, updated_at)
		VALUES ($1, $2, $3, 'queued', 0, $4, NOW(), NOW())`,
		id, userID, string(jobType), nullableJSON(params),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return id, nil
}

// UpdateJobProgress advances the progress counter of a processing job.
func (s *Postgres) UpdateJobProgress(ctx context.Context, jobID string, progress int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE match_jobs SET progress = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'processing'`,
		jobID, progress,
	)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	return nil
}

// CompleteJob marks a job done.
func (s *Postgres) CompleteJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE match_jobs
		SET status = 'complete', progress = 100, error = NULL, updated_at = NOW(), completed_at = NOW()
		WHERE id = $1`,
		jobID,
	)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

// FailJob records the terminal failed state with a human-readable message.
func (s *Postgres) FailJob(ctx context.Context, jobID, message string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE match_jobs SET status = 'failed', error = $2, updated_at = NOW()
		WHERE id = $1`,
		jobID, message,
	)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return nil
}

// RequeueStale resets processing jobs whose updated_at is older than the
// cutoff back to queued, annotated so the reset is visible. The update
// bumps updated_at, so a job is reset at most once per staleness window.
func (s *Postgres) RequeueStale(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE match_jobs
		SET status = 'queued', progress = 0, error = 'reset by stale-job reaper', updated_at = NOW()
		WHERE status = 'processing' AND updated_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("requeue stale jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("requeue stale jobs: %w", err)
	}
	return int(n), nil
}

const loadVectorsSQL = `
SELECT person_id, user_id, gender, is_primary, moon_rashi, moon_nakshatra, pada,
       gana, yoni, nadi, varna, mars_house, dasha_lord
FROM person_vectors
WHERE user_id = $1
ORDER BY created_at, person_id`

// LoadPersonVectors fetches every vector belonging to a user, in a stable
// order so sorting tie-breaks are reproducible across runs. Rows are
// validated at this boundary; a malformed vector fails the load rather
// than flowing into the scorer. Reads go through the Redis cache when one
// is configured (vectors are immutable, so a TTL is the only invalidation
// needed).
func (s *Postgres) LoadPersonVectors(ctx context.Context, userID string) ([]models.PersonVector, error) {
	if vectors, ok := s.cache.Get(ctx, userID); ok {
		return vectors, nil
	}

	rows, err := s.db.QueryContext(ctx, loadVectorsSQL, userID)
	if err != nil {
		return nil, joberrors.NewVectorLoadError(err)
	}
	defer rows.Close()

	var vectors []models.PersonVector
	for rows.Next() {
		var v models.PersonVector
		if err := rows.Scan(
			&v.PersonID, &v.UserID, &v.Gender, &v.IsPrimary, &v.Rashi, &v.Nakshatra,
			&v.Pada, &v.Gana, &v.Yoni, &v.Nadi, &v.Varna, &v.MarsHouse, &v.DashaLord,
		); err != nil {
			return nil, joberrors.NewVectorLoadError(err)
		}
		if err := v.Validate(); err != nil {
			return nil, joberrors.NewMalformedVectorError(err)
		}
		vectors = append(vectors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, joberrors.NewVectorLoadError(err)
	}

	s.cache.Set(ctx, userID, vectors)
	s.logger.Debug("loaded person vectors", map[string]interface{}{
		"user_id": userID,
		"count":   len(vectors),
	})
	return vectors, nil
}

const resultColumns = 21

// UpsertResults writes one bounded batch of result rows in a single
// statement, keyed by (user_id, person_a, person_b) so a retried batch
// after a partial failure overwrites instead of duplicating.
func (s *Postgres) UpsertResults(ctx context.Context, userID string, results []models.MatchResult) error {
	if len(results) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO match_results (
		user_id, person_a, person_b,
		varna, vashya, tara, yoni, graha_maitri, gana, bhakoot, nadi, total,
		nadi_dosha, nadi_cancelled, bhakoot_dosha, bhakoot_dosha_type, bhakoot_cancelled,
		manglik_dosha, manglik_cancelled, dasha_score, verdict
	) VALUES `)

	args := make([]interface{}, 0, len(results)*resultColumns)
	for i, r := range results {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * resultColumns
		sb.WriteByte('(')
		for c := 0; c < resultColumns; c++ {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", base+c+1)
		}
		sb.WriteByte(')')

		args = append(args,
			userID, r.PersonA, r.PersonB,
			r.Scores.Varna, r.Scores.Vashya, r.Scores.Tara, r.Scores.Yoni,
			r.Scores.GrahaMaitri, r.Scores.Gana, r.Scores.Bhakoot, r.Scores.Nadi, r.Total,
			r.Doshas.Nadi, r.Doshas.NadiCancelled, r.Doshas.Bhakoot, r.Doshas.BhakootType,
			r.Doshas.BhakootCancelled, r.Doshas.Manglik, r.Doshas.ManglikCancelled,
			r.DashaScore, string(r.Verdict),
		)
	}

	sb.WriteString(` ON CONFLICT (user_id, person_a, person_b) DO UPDATE SET
		varna = EXCLUDED.varna, vashya = EXCLUDED.vashya, tara = EXCLUDED.tara,
		yoni = EXCLUDED.yoni, graha_maitri = EXCLUDED.graha_maitri, gana = EXCLUDED.gana,
		bhakoot = EXCLUDED.bhakoot, nadi = EXCLUDED.nadi, total = EXCLUDED.total,
		nadi_dosha = EXCLUDED.nadi_dosha, nadi_cancelled = EXCLUDED.nadi_cancelled,
		bhakoot_dosha = EXCLUDED.bhakoot_dosha, bhakoot_dosha_type = EXCLUDED.bhakoot_dosha_type,
		bhakoot_cancelled = EXCLUDED.bhakoot_cancelled, manglik_dosha = EXCLUDED.manglik_dosha,
		manglik_cancelled = EXCLUDED.manglik_cancelled, dasha_score = EXCLUDED.dasha_score,
		verdict = EXCLUDED.verdict, updated_at = NOW()`)

	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return joberrors.NewPersistError(err)
	}
	return nil
}

func nullableJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
