// Package domain holds the persisted entities and business constants of
// Lingvo. Types here are pure — no infrastructure dependency.
package domain

import "time"

// Economy and progression constants. These are product rules, not tunables:
// changing them changes what existing users have already earned.
const (
	MaxHearts    = 5
	MaxFreezes   = 2
	HeartsPerDay = 2

	// Completion threshold: a lesson counts toward roadmap unlocking and
	// level completion only at 80% or better.
	CompletionThreshold = 80

	// Reward ceilings per lesson. Coins pay only the marginal improvement
	// over the previous best score; XP is granted in full every attempt.
	MaxLessonCoins = 20
	MaxLessonXP    = 50

	PromotionBonus = 100

	// Shop prices.
	PriceHeart  = 50
	PriceFreeze = 70
	PriceRepair = 150
	PricePro    = 300

	// Streak repair gating.
	RepairWindow   = 7 * 24 * time.Hour
	RepairCooldown = 14 * 24 * time.Hour
)

// Level is an ordinal course tier. Promotion moves exactly one step
// forward along Levels.
type Level string

const (
	LevelBeginner          Level = "Beginner"
	LevelElementary        Level = "Elementary"
	LevelPreIntermediate   Level = "Pre-Intermediate"
	LevelIntermediate      Level = "Intermediate"
	LevelUpperIntermediate Level = "Upper-Intermediate"
	LevelAdvanced          Level = "Advanced"
)

// Levels is the fixed promotion ladder, lowest first.
var Levels = []Level{
	LevelBeginner,
	LevelElementary,
	LevelPreIntermediate,
	LevelIntermediate,
	LevelUpperIntermediate,
	LevelAdvanced,
}

// ValidLevel reports whether l is one of the ladder tiers.
func ValidLevel(l Level) bool {
	for _, v := range Levels {
		if v == l {
			return true
		}
	}
	return false
}

// NextLevel returns the tier one step above l, or ErrTerminalLevel when l
// is already Advanced (or not on the ladder at all).
func NextLevel(l Level) (Level, error) {
	for i, v := range Levels {
		if v == l {
			if i == len(Levels)-1 {
				return "", ErrTerminalLevel
			}
			return Levels[i+1], nil
		}
	}
	return "", ErrTerminalLevel
}

// User is the mutable subject of the progression engine. One row per
// account; mutated in place by every engine invocation.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Level        Level     `json:"level"`
	XP           int       `json:"xp"`
	Coins        int       `json:"coins"`
	Age          int       `json:"age,omitempty"`
	Goal         string    `json:"goal,omitempty"`
	IsPro        bool      `json:"isPro"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`

	// Streak state. OldStreak and LastStreakLostAt are non-zero only while
	// a repair is available.
	Streak           int        `json:"streak"`
	OldStreak        int        `json:"oldStreak"`
	StreakFreezes    int        `json:"streakFreezes"`
	LastStreakUpdate time.Time  `json:"lastStreakUpdate"`
	LastStreakLostAt *time.Time `json:"lastStreakLostAt"`
	LastRepairUsedAt *time.Time `json:"lastRepairUsedAt"`

	// Heart state, regenerated lazily on reads.
	Hearts         int       `json:"hearts"`
	LastHeartReset time.Time `json:"lastHeartReset"`

	LastLogin time.Time `json:"lastLogin"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser returns the registration-default progression state.
func NewUser(email, name, passwordHash string, now time.Time) User {
	return User{
		Email:            email,
		Name:             name,
		PasswordHash:     passwordHash,
		Level:            LevelBeginner,
		Hearts:           MaxHearts,
		LastStreakUpdate: now,
		LastHeartReset:   now,
		CreatedAt:        now,
	}
}

// ProgressRecord is the best-attempt ledger: exactly one row per
// (user, lesson) pair, overwritten only by a strictly higher score.
type ProgressRecord struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	LessonID    string    `json:"lessonId"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// Completed reports whether this record meets the completion threshold.
func (p ProgressRecord) Completed() bool {
	return p.Score >= CompletionThreshold
}

// LeaderboardEntry is a public projection of a user for ranking views.
type LeaderboardEntry struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	XP        int    `json:"xp"`
	Level     Level  `json:"level"`
	Coins     int    `json:"coins"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
