// internal/matcher/batch.go

// Package matcher runs the Koota scoring engine over candidate pools in
// bounded chunks. All entry points share one scoring path, so chunked,
// cross-product and streaming scans agree on every pair.
package matcher

import (
	"sort"

	joberrors "kundali-workers/internal/common/errors"
	"kundali-workers/internal/common/logger"
	"kundali-workers/internal/common/metrics"
	"kundali-workers/internal/kundali"
	"kundali-workers/internal/models"
)

// Config bounds a scan: chunking granularity, the hard candidate cap, the
// kept-result cap and the minimum total a pair must reach.
type Config struct {
	ChunkSize     int
	MaxCandidates int
	MaxResults    int
	MinScore      int
}

// DefaultConfig returns the default matcher configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize:     50,
		MaxCandidates: 10000,
		MaxResults:    500,
		MinScore:      18,
	}
}

// ProgressFunc receives (processed, total) after each chunk.
type ProgressFunc func(processed, total int)

// Engine scores candidate pools. It is stateless between calls and safe to
// share across jobs of one worker.
type Engine struct {
	cfg    Config
	policy kundali.DoshaPolicy
	bands  kundali.VerdictBands
	logger logger.Logger
}

func New(cfg Config, policy kundali.DoshaPolicy, bands kundali.VerdictBands, log logger.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		policy: policy,
		bands:  bands,
		logger: log.WithFields(map[string]interface{}{"component": "matcher"}),
	}
}

// WithOverrides returns a copy of the engine with per-job policy overrides
// applied. Nil fields keep the configured value.
func (e *Engine) WithOverrides(minScore, maxResults, chunkSize *int) *Engine {
	out := *e
	if minScore != nil {
		out.cfg.MinScore = *minScore
	}
	if maxResults != nil {
		out.cfg.MaxResults = *maxResults
	}
	if chunkSize != nil {
		out.cfg.ChunkSize = *chunkSize
	}
	return &out
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// OneToMany scores one source vector against a candidate pool. Candidates
// are processed in fixed-size chunks, fast-rejected before full scoring,
// thresholded on MinScore, sorted descending by total (ties keep input
// order) and truncated to MaxResults. onProgress fires after every chunk.
//
// Chunked scans run to completion once started; the resource guard is the
// candidate cap and chunk size, not live cancellation.
func (e *Engine) OneToMany(source models.PersonVector, candidates []models.PersonVector, onProgress ProgressFunc) ([]models.MatchResult, error) {
	if len(candidates) == 0 {
		return nil, joberrors.NewEmptyCandidateSetError()
	}
	if len(candidates) > e.cfg.MaxCandidates {
		return nil, joberrors.NewCandidateCapError(len(candidates), e.cfg.MaxCandidates)
	}

	total := len(candidates)
	results := make([]models.MatchResult, 0, min(total, e.cfg.MaxResults))

	for start := 0; start < total; start += e.cfg.ChunkSize {
		end := min(start+e.cfg.ChunkSize, total)
		for i := start; i < end; i++ {
			if candidates[i].PersonID == source.PersonID {
				continue
			}
			res, ok, err := e.scorePair(&source, &candidates[i])
			if err != nil {
				return nil, err
			}
			if ok {
				results = append(results, res)
			}
		}
		if onProgress != nil {
			onProgress(end, total)
		}
	}

	e.logger.Debug("one-to-many scan complete", map[string]interface{}{
		"candidates": total,
		"kept":       len(results),
	})
	return e.finalize(results), nil
}

// ManyToMany scores the cross product of two groups. With a nil groupB it
// scans the upper triangle of groupA against itself, so each unordered pair
// is scored once. Progress fires on a fixed cadence (one chunk's worth of
// pairs) rather than per pair.
func (e *Engine) ManyToMany(groupA, groupB []models.PersonVector, onProgress ProgressFunc) ([]models.MatchResult, error) {
	selfScan := groupB == nil

	if len(groupA) > e.cfg.MaxCandidates || len(groupB) > e.cfg.MaxCandidates {
		n := max(len(groupA), len(groupB))
		return nil, joberrors.NewCandidateCapError(n, e.cfg.MaxCandidates)
	}

	var total int
	if selfScan {
		if len(groupA) < 2 {
			return nil, joberrors.NewEmptyCandidateSetError()
		}
		total = len(groupA) * (len(groupA) - 1) / 2
	} else {
		if len(groupA) == 0 || len(groupB) == 0 {
			return nil, joberrors.NewEmptyCandidateSetError()
		}
		total = len(groupA) * len(groupB)
	}

	results := make([]models.MatchResult, 0, min(total, e.cfg.MaxResults))
	processed := 0

	score := func(a, b *models.PersonVector) error {
		processed++
		if a.PersonID != b.PersonID {
			res, ok, err := e.scorePair(a, b)
			if err != nil {
				return err
			}
			if ok {
				results = append(results, res)
			}
		}
		if onProgress != nil && (processed%e.cfg.ChunkSize == 0 || processed == total) {
			onProgress(processed, total)
		}
		return nil
	}

	if selfScan {
		for i := range groupA {
			for j := i + 1; j < len(groupA); j++ {
				if err := score(&groupA[i], &groupA[j]); err != nil {
					return nil, err
				}
			}
		}
	} else {
		for i := range groupA {
			for j := range groupB {
				if err := score(&groupA[i], &groupB[j]); err != nil {
					return nil, err
				}
			}
		}
	}

	return e.finalize(results), nil
}

// scorePair is the single scoring path shared by every scan variant.
func (e *Engine) scorePair(a, b *models.PersonVector) (models.MatchResult, bool, error) {
	if kundali.FastReject(a, b, e.cfg.MinScore) {
		metrics.PairsFastRejected.Inc()
		return models.MatchResult{}, false, nil
	}

	res, err := kundali.Evaluate(a, b, e.policy, e.bands)
	if err != nil {
		return models.MatchResult{}, false, err
	}
	metrics.PairsScored.Inc()

	if res.Total < e.cfg.MinScore {
		return models.MatchResult{}, false, nil
	}
	return res, true, nil
}

// finalize sorts descending by total and truncates. The stable sort keeps
// equal totals in input order, so repeated runs on identical input produce
// identical output.
func (e *Engine) finalize(results []models.MatchResult) []models.MatchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Total > results[j].Total
	})
	if len(results) > e.cfg.MaxResults {
		results = results[:e.cfg.MaxResults]
	}
	return results
}
