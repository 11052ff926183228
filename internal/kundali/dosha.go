// internal/kundali/dosha.go
package kundali

import "kundali-workers/internal/models"

// manglikHouses are the Mars placements that raise Kuja dosha.
var manglikHouses = map[int]bool{1: true, 4: true, 7: true, 8: true, 12: true}

// DoshaPolicy holds the configurable cancellation thresholds. The exact
// cutoffs are deployment policy, not scorer logic, so they are supplied
// here rather than hard-coded in the detection path.
type DoshaPolicy struct {
	// NadiCancelMinTotal cancels nadi dosha when the pair total reaches
	// this value. Zero disables the threshold rule.
	NadiCancelMinTotal int
	// ManglikBothCancel cancels manglik dosha when both people carry it.
	ManglikBothCancel bool
	// ManglikCancelMinTotal cancels manglik dosha above this total.
	// Zero disables the threshold rule.
	ManglikCancelMinTotal int
}

// DefaultDoshaPolicy mirrors the commonly applied rules: nadi cancels at a
// strong total, manglik cancels when mutual.
func DefaultDoshaPolicy() DoshaPolicy {
	return DoshaPolicy{
		NadiCancelMinTotal: 28,
		ManglikBothCancel:  true,
	}
}

// VerdictBands are the classification cutoffs: totals below Average are
// poor, below Good average, below Excellent good, and at or above Excellent
// excellent.
type VerdictBands struct {
	Average   int
	Good      int
	Excellent int
}

func DefaultVerdictBands() VerdictBands {
	return VerdictBands{Average: 18, Good: 24, Excellent: 30}
}

// Classify maps a total score onto its verdict band.
func (v VerdictBands) Classify(total int) models.Verdict {
	switch {
	case total >= v.Excellent:
		return models.VerdictExcellent
	case total >= v.Good:
		return models.VerdictGood
	case total >= v.Average:
		return models.VerdictAverage
	default:
		return models.VerdictPoor
	}
}

// IsManglik reports whether a single chart carries Kuja dosha.
func IsManglik(p *models.PersonVector) bool {
	return manglikHouses[p.MarsHouse]
}

// DetectDoshas derives the raw dosha flags from the sub-scores and the two
// charts. No cancellation is applied here.
func DetectDoshas(a, b *models.PersonVector, scores models.KootaScores) models.Doshas {
	d := models.Doshas{
		Nadi:    scores.Nadi == 0,
		Bhakoot: scores.Bhakoot == 0,
		Manglik: IsManglik(a) || IsManglik(b),
	}
	if d.Bhakoot {
		d.BhakootType = BhakootTypeShadashtak
	}
	return d
}

// ApplyCancellations evaluates the policy's cancellation predicates over the
// raw flags. The raw flags themselves are left untouched so both states stay
// independently inspectable.
func ApplyCancellations(a, b *models.PersonVector, scores models.KootaScores, raw models.Doshas, policy DoshaPolicy) models.Doshas {
	d := raw
	total := scores.Total()

	if d.Nadi {
		sameRashiDifferentNak := a.Rashi == b.Rashi && a.Nakshatra != b.Nakshatra
		sameNakDifferentPada := a.Nakshatra == b.Nakshatra && a.Pada != b.Pada
		overThreshold := policy.NadiCancelMinTotal > 0 && total >= policy.NadiCancelMinTotal
		d.NadiCancelled = sameRashiDifferentNak || sameNakDifferentPada || overThreshold
	}

	if d.Bhakoot {
		// Same or mutually friendly rashi lords soften the shadashtak axis.
		la, lb := rashiLord[a.Rashi], rashiLord[b.Rashi]
		friendly := la == lb ||
			(grahaRelation[la][lb] == relFriend && grahaRelation[lb][la] == relFriend)
		d.BhakootCancelled = friendly
	}

	if d.Manglik {
		both := IsManglik(a) && IsManglik(b)
		overThreshold := policy.ManglikCancelMinTotal > 0 && total >= policy.ManglikCancelMinTotal
		d.ManglikCancelled = (policy.ManglikBothCancel && both) || overThreshold
	}

	return d
}

// DashaAlignment scores the friendship of the two current mahadasha lords
// on a coarse 0-10 scale.
func DashaAlignment(a, b *models.PersonVector) int {
	ab, ba := dashaRelation(a.DashaLord, b.DashaLord), dashaRelation(b.DashaLord, a.DashaLord)
	lo, hi := ab, ba
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case lo == relFriend:
		return 10
	case lo == relNeutral && hi == relFriend:
		return 7
	case lo == relNeutral && hi == relNeutral:
		return 5
	case lo == relEnemy && hi == relFriend:
		return 3
	case lo == relEnemy && hi == relNeutral:
		return 2
	default:
		return 0
	}
}

// Evaluate runs the full pipeline for one pair: scores, raw doshas,
// cancellations, timing alignment and verdict.
func Evaluate(a, b *models.PersonVector, policy DoshaPolicy, bands VerdictBands) (models.MatchResult, error) {
	scores, err := ScorePair(a, b)
	if err != nil {
		return models.MatchResult{}, err
	}
	raw := DetectDoshas(a, b, scores)
	total := scores.Total()
	return models.MatchResult{
		UserID:     a.UserID,
		PersonA:    a.PersonID,
		PersonB:    b.PersonID,
		Scores:     scores,
		Total:      total,
		Doshas:     ApplyCancellations(a, b, scores, raw, policy),
		DashaScore: DashaAlignment(a, b),
		Verdict:    bands.Classify(total),
	}, nil
}
