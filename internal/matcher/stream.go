// internal/matcher/stream.go
package matcher

import (
	"context"
	"iter"

	joberrors "kundali-workers/internal/common/errors"
	"kundali-workers/internal/models"
)

// Stream is the lazy variant of OneToMany. Results that pass the
// fast-reject filter and the minimum-score threshold are yielded in
// candidate order as they are computed; nothing is materialized up front
// and no sorting or result-cap truncation is applied. The consumer may
// stop pulling after any number of results, and the context is checked
// between candidates so an abandoned iteration stops promptly.
//
// Example:
//
//	for res, err := range engine.Stream(ctx, source, candidates) {
//	    if err != nil {
//	        return err
//	    }
//	    if enough(res) {
//	        break // no obligation to drain
//	    }
//	}
func (e *Engine) Stream(ctx context.Context, source models.PersonVector, candidates []models.PersonVector) iter.Seq2[models.MatchResult, error] {
	return func(yield func(models.MatchResult, error) bool) {
		if len(candidates) == 0 {
			yield(models.MatchResult{}, joberrors.NewEmptyCandidateSetError())
			return
		}
		if len(candidates) > e.cfg.MaxCandidates {
			yield(models.MatchResult{}, joberrors.NewCandidateCapError(len(candidates), e.cfg.MaxCandidates))
			return
		}

		for i := range candidates {
			if err := ctx.Err(); err != nil {
				yield(models.MatchResult{}, err)
				return
			}
			if candidates[i].PersonID == source.PersonID {
				continue
			}
			res, ok, err := e.scorePair(&source, &candidates[i])
			if err != nil {
				yield(models.MatchResult{}, err)
				return
			}
			if !ok {
				continue
			}
			if !yield(res, nil) {
				return
			}
		}
	}
}
