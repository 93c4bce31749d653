// Package progression implements the Lingvo progression engine: streaks,
// hearts, rewards, the best-score ledger, level promotion, and the shop
// actions that mutate the same state.
//
// The engine is split in two layers. Pure transition functions
// (ResolveStreak, RegenerateHearts, RewardFor) take a prior snapshot and
// a clock reading and return explicit result structs. The Service wraps
// them in a read-compute-write cycle against storage, serialized per user.
package progression

import "time"

const dayMillis = 24 * 60 * 60 * 1000

// DayBucket truncates t to its local midnight. All streak comparisons run
// on day buckets, never raw timestamps.
func DayBucket(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DiffDays returns the whole-day distance from bucket b to bucket a,
// rounded. DST shifts make midnight-to-midnight spans 23 or 25 hours;
// rounding keeps those counting as one day.
func DiffDays(a, b time.Time) int {
	ms := DayBucket(a).Sub(DayBucket(b)).Milliseconds()
	if ms >= 0 {
		return int((ms + dayMillis/2) / dayMillis)
	}
	return -int((-ms + dayMillis/2) / dayMillis)
}

// ElapsedDays returns the whole days elapsed between two raw timestamps,
// floored. Heart regeneration counts full 24-hour periods, not calendar
// days.
func ElapsedDays(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
