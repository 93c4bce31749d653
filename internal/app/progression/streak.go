package progression

import "time"

// StreakState is the slice of user state the streak resolver reads.
type StreakState struct {
	Streak     int
	OldStreak  int
	Freezes    int
	LastUpdate time.Time
	LostAt     *time.Time
}

// StreakUpdate is the resolver's verdict. Changed reports whether any
// field moved; callers skip the write entirely on a same-day no-op.
type StreakUpdate struct {
	Streak          int
	OldStreak       int
	Freezes         int
	LastUpdate      time.Time
	LostAt          *time.Time
	FreezesConsumed int
	Broken          bool
	Changed         bool
}

// ResolveStreak computes the streak transition for one activity event
// (login or lesson completion) at time now. Pure function; the same
// implementation backs both call sites.
func ResolveStreak(prev StreakState, now time.Time) StreakUpdate {
	up := StreakUpdate{
		Streak:     prev.Streak,
		OldStreak:  prev.OldStreak,
		Freezes:    prev.Freezes,
		LastUpdate: prev.LastUpdate,
		LostAt:     prev.LostAt,
	}

	diff := DiffDays(now, prev.LastUpdate)

	switch {
	case diff < 0:
		// Clock skew or stale data. Deliberate no-op: never punish the
		// user for a clock that appears to regress.
		return up

	case diff == 0:
		if prev.Streak == 0 {
			// First-ever activity on a brand-new account.
			up.Streak = 1
			up.LastUpdate = now
			up.Changed = true
		}
		// Same-day repeat activity: streak unchanged.
		return up

	case diff == 1:
		up.Streak = prev.Streak + 1
		up.LastUpdate = now
		up.Changed = true
		return up

	default:
		missed := diff - 1
		if prev.Freezes >= missed {
			// Freezes cover every missed day: consume them and continue
			// as if the days were consecutive.
			up.Freezes = prev.Freezes - missed
			up.FreezesConsumed = missed
			up.Streak = prev.Streak + 1
			up.LastUpdate = now
			up.Changed = true
			return up
		}

		// Streak breaks. Snapshot the lost value so a shop repair can
		// restore it within the window; today starts a new streak.
		up.Broken = true
		if prev.Streak > 0 {
			up.OldStreak = prev.Streak
			lost := now
			up.LostAt = &lost
		}
		up.Streak = 1
		up.LastUpdate = now
		up.Changed = true
		return up
	}
}
