// internal/kundali/dosha_test.go
package kundali

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kundali-workers/internal/models"
)

// ==========================
// Dosha Detection Tests
// ==========================

func TestIsManglik_Houses(t *testing.T) {
	manglik := map[int]bool{1: true, 4: true, 7: true, 8: true, 12: true}
	for house := 1; house <= 12; house++ {
		p := chartVector("p1", models.GenderMale, 0, 0, 1)
		p.MarsHouse = house
		assert.Equal(t, manglik[house], IsManglik(&p), "mars in house %d", house)
	}
}

func TestDetectDoshas_RawFlags(t *testing.T) {
	// Same nadi class raises nadi dosha, the 6/8 rashi axis raises bhakoot
	// dosha, and either chart's mars placement raises manglik dosha.
	a := chartVector("p1", models.GenderMale, 0, 0, 1)
	b := chartVector("p2", models.GenderFemale, 5, 13, 1)
	b.MarsHouse = 7

	scores, err := ScorePair(&a, &b)
	require.NoError(t, err)
	d := DetectDoshas(&a, &b, scores)

	assert.Equal(t, NadiOf(0) == NadiOf(13), d.Nadi)
	assert.True(t, d.Bhakoot)
	assert.Equal(t, BhakootTypeShadashtak, d.BhakootType)
	assert.True(t, d.Manglik, "one manglik chart is enough to raise the flag")
}

// ==========================
// Cancellation Tests
// ==========================

func TestApplyCancellations_NadiSameNakshatraDifferentPada(t *testing.T) {
	a := chartVector("p1", models.GenderMale, 0, 0, 1)
	b := chartVector("p2", models.GenderFemale, 0, 0, 2)

	scores, err := ScorePair(&a, &b)
	require.NoError(t, err)
	raw := DetectDoshas(&a, &b, scores)
	require.True(t, raw.Nadi)

	// The pada rule applies even with every policy threshold disabled.
	d := ApplyCancellations(&a, &b, scores, raw, DoshaPolicy{})
	assert.True(t, d.Nadi, "raw flag stays set")
	assert.True(t, d.NadiCancelled)
}

func TestApplyCancellations_NadiSameRashiDifferentNakshatra(t *testing.T) {
	// Ardra and Punarvasu both carry Adi nadi and both sit in Gemini.
	a := chartVector("p1", models.GenderMale, 2, 5, 1)
	b := chartVector("p2", models.GenderFemale, 2, 6, 1)

	scores, err := ScorePair(&a, &b)
	require.NoError(t, err)
	raw := DetectDoshas(&a, &b, scores)
	require.True(t, raw.Nadi)

	d := ApplyCancellations(&a, &b, scores, raw, DoshaPolicy{})
	assert.True(t, d.NadiCancelled)
}

func TestApplyCancellations_NadiTotalThreshold(t *testing.T) {
	// Different rashi and nakshatra, so only the threshold rule can cancel.
	a := chartVector("p1", models.GenderMale, 0, 0, 1)
	b := chartVector("p2", models.GenderFemale, 2, 5, 1)

	scores, err := ScorePair(&a, &b)
	require.NoError(t, err)
	raw := DetectDoshas(&a, &b, scores)
	require.True(t, raw.Nadi)

	d := ApplyCancellations(&a, &b, scores, raw, DefaultDoshaPolicy())
	assert.False(t, d.NadiCancelled, "total %d sits below the default threshold", scores.Total())

	d = ApplyCancellations(&a, &b, scores, raw, DoshaPolicy{NadiCancelMinTotal: scores.Total()})
	assert.True(t, d.NadiCancelled)
}

func TestApplyCancellations_BhakootFriendlyLords(t *testing.T) {
	// Taurus and Libra sit on the 6/8 axis but share Venus as lord, which
	// softens the dosha.
	a := chartVector("p1", models.GenderMale, 1, 3, 1)
	b := chartVector("p2", models.GenderFemale, 6, 14, 1)

	scores, err := ScorePair(&a, &b)
	require.NoError(t, err)
	raw := DetectDoshas(&a, &b, scores)
	require.True(t, raw.Bhakoot)

	d := ApplyCancellations(&a, &b, scores, raw, DoshaPolicy{})
	assert.True(t, d.Bhakoot)
	assert.True(t, d.BhakootCancelled)

	// Aries against Virgo: Mars and Mercury are not mutual friends, so the
	// dosha stands.
	c := chartVector("p3", models.GenderMale, 0, 0, 1)
	e := chartVector("p4", models.GenderFemale, 5, 13, 1)
	scores, err = ScorePair(&c, &e)
	require.NoError(t, err)
	raw = DetectDoshas(&c, &e, scores)
	require.True(t, raw.Bhakoot)

	d = ApplyCancellations(&c, &e, scores, raw, DoshaPolicy{})
	assert.False(t, d.BhakootCancelled)
}

func TestApplyCancellations_Manglik(t *testing.T) {
	a := chartVector("p1", models.GenderMale, 0, 0, 1)
	b := chartVector("p2", models.GenderFemale, 2, 5, 1)
	a.MarsHouse = 7

	scores, err := ScorePair(&a, &b)
	require.NoError(t, err)

	// Single manglik chart: flag raised, mutual-cancellation inapplicable.
	raw := DetectDoshas(&a, &b, scores)
	require.True(t, raw.Manglik)
	d := ApplyCancellations(&a, &b, scores, raw, DefaultDoshaPolicy())
	assert.False(t, d.ManglikCancelled)

	// Both manglik: cancelled under the default policy, kept when the
	// mutual rule is switched off.
	b.MarsHouse = 12
	raw = DetectDoshas(&a, &b, scores)
	d = ApplyCancellations(&a, &b, scores, raw, DefaultDoshaPolicy())
	assert.True(t, d.ManglikCancelled)

	d = ApplyCancellations(&a, &b, scores, raw, DoshaPolicy{ManglikBothCancel: false})
	assert.False(t, d.ManglikCancelled)

	// Threshold rule works independently of the mutual rule.
	b.MarsHouse = 2
	raw = DetectDoshas(&a, &b, scores)
	d = ApplyCancellations(&a, &b, scores, raw, DoshaPolicy{ManglikCancelMinTotal: scores.Total()})
	assert.True(t, d.ManglikCancelled)
}

// ==========================
// Verdict & Dasha Tests
// ==========================

func TestVerdictBands_Classify(t *testing.T) {
	bands := DefaultVerdictBands()
	tests := []struct {
		total int
		want  models.Verdict
	}{
		{0, models.VerdictPoor},
		{17, models.VerdictPoor},
		{18, models.VerdictAverage},
		{23, models.VerdictAverage},
		{24, models.VerdictGood},
		{29, models.VerdictGood},
		{30, models.VerdictExcellent},
		{36, models.VerdictExcellent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bands.Classify(tt.total), "total %d", tt.total)
	}
}

func TestDashaAlignment(t *testing.T) {
	tests := []struct {
		name         string
		lordA, lordB int
		want         int
	}{
		{"mutual friends", GrahaSun, GrahaSun, 10},
		{"rahu folds to saturn", GrahaRahu, GrahaRahu, 10},
		{"neutral and friend", GrahaSun, GrahaMercury, 7},
		{"neutral both ways", GrahaJupiter, GrahaSaturn, 5},
		{"enemy and friend", GrahaMoon, GrahaMercury, 3},
		{"enemy and neutral", GrahaMars, GrahaMercury, 2},
		{"ketu folds to mars", GrahaKetu, GrahaMercury, 2},
		{"mutual enemies", GrahaVenus, GrahaSun, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := chartVector("p1", models.GenderMale, 0, 0, 1)
			b := chartVector("p2", models.GenderFemale, 2, 5, 1)
			a.DashaLord = tt.lordA
			b.DashaLord = tt.lordB
			assert.Equal(t, tt.want, DashaAlignment(&a, &b))
			assert.Equal(t, tt.want, DashaAlignment(&b, &a), "alignment is symmetric")
		})
	}
}

// ==========================
// Full Pipeline Tests
// ==========================

func TestEvaluate_FullPipeline(t *testing.T) {
	a := chartVector("p1", models.GenderMale, 0, 0, 1)
	b := chartVector("p2", models.GenderFemale, 0, 0, 2)

	res, err := Evaluate(&a, &b, DefaultDoshaPolicy(), DefaultVerdictBands())
	require.NoError(t, err)

	assert.Equal(t, "user-1", res.UserID)
	assert.Equal(t, "p1", res.PersonA)
	assert.Equal(t, "p2", res.PersonB)
	assert.Equal(t, 28, res.Total)
	assert.Equal(t, res.Scores.Total(), res.Total)
	assert.Equal(t, models.VerdictGood, res.Verdict)
	assert.True(t, res.Doshas.Nadi)
	assert.True(t, res.Doshas.NadiCancelled)
	assert.False(t, res.Doshas.Bhakoot)
	assert.False(t, res.Doshas.Manglik)
	assert.Equal(t, 10, res.DashaScore)
}

func TestEvaluate_PropagatesValidationError(t *testing.T) {
	a := chartVector("p1", models.GenderMale, 0, 0, 1)
	bad := chartVector("p2", models.GenderFemale, 0, 0, 1)
	bad.MarsHouse = 0

	_, err := Evaluate(&a, &bad, DefaultDoshaPolicy(), DefaultVerdictBands())
	assert.Error(t, err)
}
