// internal/kundali/filter.go
package kundali

import "kundali-workers/internal/models"

// FastReject is the O(1), allocation-free pre-screen run before full
// scoring. It subtracts the losses that are already certain from two cheap
// checks — a shared nadi class forfeits all 8 nadi points and a 6/8 rashi
// distance forfeits all 7 bhakoot points — and rejects only when even the
// remaining ceiling cannot reach minScore. A pair that full scoring would
// accept is therefore never rejected.
func FastReject(a, b *models.PersonVector, minScore int) bool {
	ceiling := MaxTotal
	if a.Nadi == b.Nadi {
		ceiling -= 8
	}
	if bhakootDosha(a.Rashi, b.Rashi) {
		ceiling -= 7
	}
	return ceiling < minScore
}
