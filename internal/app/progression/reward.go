package progression

import (
	"math"

	"github.com/lingvolab/lingvo/internal/domain"
)

// RewardResult holds the amounts granted for one lesson attempt. Both
// are non-negative and added to the user's cumulative totals.
type RewardResult struct {
	XP    int `json:"xp"`
	Coins int `json:"coins"`
}

// CoinValue is the total coin worth of a score: ceil(20 * s/100).
func CoinValue(score int) int {
	return int(math.Ceil(float64(domain.MaxLessonCoins) * float64(score) / 100.0))
}

// RewardFor computes the grant for an attempt with the given score,
// against the best score recorded before this attempt (0 if none).
//
// Coins pay only the marginal improvement over the previous best, so
// replaying a mastered lesson farms nothing. XP is effort-based and paid
// in full every attempt regardless of history.
func RewardFor(score, oldScore int) RewardResult {
	coins := CoinValue(score) - CoinValue(oldScore)
	if coins < 0 {
		coins = 0
	}
	xp := int(math.Ceil(float64(domain.MaxLessonXP) * float64(score) / 100.0))
	return RewardResult{XP: xp, Coins: coins}
}
