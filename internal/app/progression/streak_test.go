package progression

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

// ─── Day arithmetic ─────────────────────────────────────────────────────────

func TestDiffDays(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day different hours", day(0).Add(9 * time.Hour), day(0), 0},
		{"next day", day(1), day(0), 1},
		{"three days", day(3), day(0), 3},
		{"negative", day(0), day(2), -2},
		{"just before midnight vs just after", time.Date(2026, 3, 2, 0, 0, 1, 0, time.UTC), time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiffDays(tt.a, tt.b); got != tt.want {
				t.Errorf("DiffDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestElapsedDays(t *testing.T) {
	base := day(0)
	if got := ElapsedDays(base, base.Add(23*time.Hour)); got != 0 {
		t.Errorf("23h elapsed = %d, want 0", got)
	}
	if got := ElapsedDays(base, base.Add(25*time.Hour)); got != 1 {
		t.Errorf("25h elapsed = %d, want 1", got)
	}
	if got := ElapsedDays(base, base.Add(3*24*time.Hour)); got != 3 {
		t.Errorf("72h elapsed = %d, want 3", got)
	}
	if got := ElapsedDays(base, base.Add(-time.Hour)); got != 0 {
		t.Errorf("negative elapsed = %d, want 0", got)
	}
}

// ─── Streak resolution ──────────────────────────────────────────────────────

func TestResolveStreak_FirstEverActivity(t *testing.T) {
	up := ResolveStreak(StreakState{Streak: 0, LastUpdate: day(0)}, day(0).Add(time.Hour))
	if up.Streak != 1 {
		t.Errorf("Streak = %d, want 1", up.Streak)
	}
	if !up.Changed {
		t.Error("first activity should mark Changed")
	}
}

func TestResolveStreak_SameDayNoOp(t *testing.T) {
	up := ResolveStreak(StreakState{Streak: 4, LastUpdate: day(0)}, day(0).Add(6*time.Hour))
	if up.Streak != 4 {
		t.Errorf("Streak = %d, want 4", up.Streak)
	}
	if up.Changed {
		t.Error("same-day repeat should not mark Changed")
	}
}

func TestResolveStreak_ConsecutiveDay(t *testing.T) {
	up := ResolveStreak(StreakState{Streak: 4, LastUpdate: day(0)}, day(1))
	if up.Streak != 5 {
		t.Errorf("Streak = %d, want 5", up.Streak)
	}
	if up.Broken || up.FreezesConsumed != 0 {
		t.Error("consecutive day must not break or consume freezes")
	}
}

func TestResolveStreak_FreezesCoverGap(t *testing.T) {
	// Streak 5, last active day 0, returns day 3: two missed days,
	// two freezes banked. Both burn; the streak continues to 6.
	up := ResolveStreak(StreakState{Streak: 5, Freezes: 2, LastUpdate: day(0)}, day(3))
	if up.Streak != 6 {
		t.Errorf("Streak = %d, want 6", up.Streak)
	}
	if up.Freezes != 0 {
		t.Errorf("Freezes = %d, want 0", up.Freezes)
	}
	if up.FreezesConsumed != 2 {
		t.Errorf("FreezesConsumed = %d, want 2", up.FreezesConsumed)
	}
	if up.Broken {
		t.Error("covered gap must not report Broken")
	}
}

func TestResolveStreak_NotEnoughFreezes(t *testing.T) {
	now := day(4)
	up := ResolveStreak(StreakState{Streak: 7, Freezes: 1, LastUpdate: day(0)}, now)
	if !up.Broken {
		t.Fatal("gap beyond freezes should break the streak")
	}
	if up.Streak != 1 {
		t.Errorf("Streak = %d, want 1", up.Streak)
	}
	if up.OldStreak != 7 {
		t.Errorf("OldStreak = %d, want 7", up.OldStreak)
	}
	// Freezes are not partially consumed on a break.
	if up.Freezes != 1 {
		t.Errorf("Freezes = %d, want 1", up.Freezes)
	}
	if up.LostAt == nil || !up.LostAt.Equal(now) {
		t.Errorf("LostAt = %v, want %v", up.LostAt, now)
	}
}

func TestResolveStreak_BreakWithZeroStreak(t *testing.T) {
	// Nothing to snapshot when the streak was already zero.
	up := ResolveStreak(StreakState{Streak: 0, LastUpdate: day(0)}, day(5))
	if up.Streak != 1 {
		t.Errorf("Streak = %d, want 1", up.Streak)
	}
	if up.OldStreak != 0 || up.LostAt != nil {
		t.Error("zero streak break must not record a loss snapshot")
	}
}

func TestResolveStreak_ClockRegression(t *testing.T) {
	prev := StreakState{Streak: 3, Freezes: 1, LastUpdate: day(5)}
	up := ResolveStreak(prev, day(2))
	if up.Changed || up.Streak != 3 || up.Freezes != 1 {
		t.Error("a regressed clock must be a strict no-op")
	}
}
