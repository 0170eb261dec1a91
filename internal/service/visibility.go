package service

import "github.com/operacoevilla-web/avalia-o-desempenho/internal/rubric"

const lowRatingThreshold = 3

// ShowAdvancedSession reports whether the follow-up section applies: at
// least one Ruim, or three or more ratings at Regular or below.
func ShowAdvancedSession(ratings map[string]rubric.Rating) bool {
	if len(ratings) == 0 {
		return false
	}
	low := 0
	for _, r := range ratings {
		if r == rubric.Ruim {
			return true
		}
		if r.IsLow() {
			low++
		}
	}
	return low >= lowRatingThreshold
}
