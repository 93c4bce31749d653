package progression

import (
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
)

// HeartUpdate is the heart regenerator's result.
type HeartUpdate struct {
	Hearts    int
	LastReset time.Time
	Changed   bool
}

// RegenerateHearts applies lazy daily heart refill: +2 per whole elapsed
// day since the last reset, capped at MaxHearts. Triggered by reads
// (login, session validation), never by a background timer.
func RegenerateHearts(hearts int, lastReset, now time.Time) HeartUpdate {
	elapsed := ElapsedDays(lastReset, now)
	if elapsed <= 0 {
		return HeartUpdate{Hearts: hearts, LastReset: lastReset}
	}

	refilled := hearts + elapsed*domain.HeartsPerDay
	if refilled > domain.MaxHearts {
		refilled = domain.MaxHearts
	}
	return HeartUpdate{Hearts: refilled, LastReset: now, Changed: true}
}
