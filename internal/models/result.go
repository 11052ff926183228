// internal/models/result.go
package models

type Verdict string

const (
	VerdictPoor      Verdict = "poor"
	VerdictAverage   Verdict = "average"
	VerdictGood      Verdict = "good"
	VerdictExcellent Verdict = "excellent"
)

// KootaScores is the structured eight-field sub-score breakdown.
type KootaScores struct {
	Varna       int `json:"varna"`       // max 1
	Vashya      int `json:"vashya"`      // max 2
	Tara        int `json:"tara"`        // max 3
	Yoni        int `json:"yoni"`        // max 4
	GrahaMaitri int `json:"grahaMaitri"` // max 5
	Gana        int `json:"gana"`        // max 6
	Bhakoot     int `json:"bhakoot"`     // max 7
	Nadi        int `json:"nadi"`        // max 8
}

// Total is always the plain sum of the eight sub-scores.
func (k KootaScores) Total() int {
	return k.Varna + k.Vashya + k.Tara + k.Yoni + k.GrahaMaitri + k.Gana + k.Bhakoot + k.Nadi
}

// Doshas carries both the raw detection flags and the adjusted
// (post-cancellation) state, so either can be inspected independently.
type Doshas struct {
	Nadi             bool   `json:"nadiDosha"`
	NadiCancelled    bool   `json:"nadiCancelled"`
	Bhakoot          bool   `json:"bhakootDosha"`
	BhakootType      string `json:"bhakootDoshaType,omitempty"`
	BhakootCancelled bool   `json:"bhakootCancelled"`
	Manglik          bool   `json:"manglikDosha"`
	ManglikCancelled bool   `json:"manglikCancelled"`
}

// MatchResult is one scored pair. Persisted rows are keyed by
// (user, person A, person B) and upserted, never duplicated.
type MatchResult struct {
	UserID     string      `json:"userId"`
	PersonA    string      `json:"personA"`
	PersonB    string      `json:"personB"`
	Scores     KootaScores `json:"scores"`
	Total      int         `json:"total"` // 0-36
	Doshas     Doshas      `json:"doshas"`
	DashaScore int         `json:"dashaScore"` // 0-10 timing alignment
	Verdict    Verdict     `json:"verdict"`
}
