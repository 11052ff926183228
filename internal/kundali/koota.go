// internal/kundali/koota.go
package kundali

import (
	"fmt"

	"kundali-workers/internal/models"
)

// MaxTotal is the Ashtakoota ceiling: 1+2+3+4+5+6+7+8.
const MaxTotal = 36

// BhakootTypeShadashtak is recorded when the rashi distance is the
// dosha-triggering 6/8. The field is a string so the other classical
// variants (2/12, 5/9) can be added without a schema change.
const BhakootTypeShadashtak = "shadashtak"

// ScorePair computes the eight Koota sub-scores for a pair of validated
// person vectors. It is pure and deterministic: identical inputs always
// produce bit-identical output.
//
// All kootas are swap-invariant. Varna and Vashya are directional by
// classical convention (groom compared against bride); direction is
// resolved from the gender flags, falling back to person-id order when the
// flags do not disambiguate, so swapping the arguments never changes the
// result.
func ScorePair(a, b *models.PersonVector) (models.KootaScores, error) {
	if err := a.Validate(); err != nil {
		return models.KootaScores{}, fmt.Errorf("invalid person vector: %w", err)
	}
	if err := b.Validate(); err != nil {
		return models.KootaScores{}, fmt.Errorf("invalid person vector: %w", err)
	}

	groom, bride := orient(a, b)

	scores := models.KootaScores{
		Varna:       varnaScore(groom, bride),
		Vashya:      vashyaScore(groom, bride),
		Tara:        taraScore(a.Nakshatra, b.Nakshatra),
		Yoni:        yoniMatrix[a.Yoni][b.Yoni],
		GrahaMaitri: maitriScore(a.Rashi, b.Rashi),
		Gana:        ganaMatrix[a.Gana][b.Gana],
		Bhakoot:     bhakootScore(a.Rashi, b.Rashi),
		Nadi:        nadiScore(a.Nadi, b.Nadi),
	}
	return scores, nil
}

// orient resolves the groom/bride direction for the directional kootas.
// With one male and one female vector the male side is the groom; otherwise
// the lexicographically smaller person id takes the groom slot so the
// resolution is stable under argument swap.
func orient(a, b *models.PersonVector) (groom, bride *models.PersonVector) {
	switch {
	case a.Gender == models.GenderMale && b.Gender == models.GenderFemale:
		return a, b
	case a.Gender == models.GenderFemale && b.Gender == models.GenderMale:
		return b, a
	case a.PersonID <= b.PersonID:
		return a, b
	default:
		return b, a
	}
}

// varnaScore awards the point when the groom's varna tier is the same as or
// higher than the bride's (lower value = higher tier).
func varnaScore(groom, bride *models.PersonVector) int {
	if groom.Varna <= bride.Varna {
		return 1
	}
	return 0
}

func vashyaScore(groom, bride *models.PersonVector) int {
	return vashyaMatrix[rashiVashya[groom.Rashi]][rashiVashya[bride.Rashi]]
}

// taraScore classifies the nakshatra distance in both directions. Counts
// whose remainder mod 9 is 3, 5 or 7 (Vipat, Pratyari, Naidhana) are
// inauspicious. Both auspicious scores 3, one scores 2, neither 0 — the
// classical 1.5 midpoint is integerized as a fixed policy value.
func taraScore(nakA, nakB int) int {
	inauspicious := func(from, to int) bool {
		count := ((to-from+27)%27 + 1) % 9
		return count == 3 || count == 5 || count == 7
	}
	badAB := inauspicious(nakA, nakB)
	badBA := inauspicious(nakB, nakA)
	switch {
	case !badAB && !badBA:
		return 3
	case badAB && badBA:
		return 0
	default:
		return 2
	}
}

// maitriScore looks up the mutual disposition of the two moon-rashi lords.
func maitriScore(rashiA, rashiB int) int {
	la, lb := rashiLord[rashiA], rashiLord[rashiB]
	ab, ba := grahaRelation[la][lb], grahaRelation[lb][la]
	lo, hi := ab, ba
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case lo == relFriend: // friend both ways
		return 5
	case lo == relNeutral && hi == relFriend:
		return 4
	case lo == relNeutral && hi == relNeutral:
		return 3
	case lo == relEnemy && hi == relEnemy:
		return 0
	default: // enemy one way, friend or neutral the other
		return 1
	}
}

// bhakootScore is 0 exactly when the rashi distance is 6 or 8 positions
// (counted inclusively; the pairing is symmetric since the two directions
// sum to 14), else the full 7 points.
func bhakootScore(rashiA, rashiB int) int {
	if bhakootDosha(rashiA, rashiB) {
		return 0
	}
	return 7
}

func bhakootDosha(rashiA, rashiB int) bool {
	d := (rashiB-rashiA+12)%12 + 1
	return d == 6 || d == 8
}

func nadiScore(a, b models.Nadi) int {
	if a == b {
		return 0
	}
	return 8
}

// VectorFromChart fills the class attributes of a person vector from chart
// primitives using the static lookup tables. The production pipeline
// computes these upstream; this helper exists for callers (and tests) that
// only have the raw chart values.
func VectorFromChart(personID string, gender models.Gender, rashi, nakshatra, pada, marsHouse, dashaLord int) models.PersonVector {
	return models.PersonVector{
		PersonID:  personID,
		Gender:    gender,
		Rashi:     rashi,
		Nakshatra: nakshatra,
		Pada:      pada,
		Gana:      nakshatraGana[nakshatra],
		Yoni:      nakshatraYoni[nakshatra],
		Nadi:      nakshatraNadi[nakshatra],
		Varna:     rashiVarna[rashi],
		MarsHouse: marsHouse,
		DashaLord: dashaLord,
	}
}
