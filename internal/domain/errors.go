package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Every precondition failure gets its own sentinel so callers can surface a
// distinct, user-facing reason. No mutation happens after any of these.

var (
	// Auth errors
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid or expired token")

	// Validation errors
	ErrScoreOutOfRange = errors.New("score must be between 0 and 100")
	ErrUnknownItem     = errors.New("unknown shop item")
	ErrInvalidLevel    = errors.New("unknown level")

	// Catalog errors
	ErrLessonNotFound = errors.New("lesson not found")
	ErrCourseNotFound = errors.New("no course for this level")

	// Economy preconditions
	ErrInsufficientCoins = errors.New("not enough coins")
	ErrHeartsFull        = errors.New("hearts are already full")
	ErrNoHeartsLeft      = errors.New("no hearts left")
	ErrFreezesFull       = errors.New("maximum of 2 streak freezes")
	ErrAlreadyPro        = errors.New("already a Pro account")

	// Streak repair preconditions, checked in this order.
	ErrNothingToRepair  = errors.New("no lost streak to repair")
	ErrRepairExpired    = errors.New("repair window expired (7 days)")
	ErrRepairOnCooldown = errors.New("streak repair available once per 14 days")

	// Level promotion
	ErrTerminalLevel = errors.New("cannot promote further")

	// Groups
	ErrGroupNotFound = errors.New("group not found")
	ErrGroupFull     = errors.New("group is full")

	// AI tutor
	ErrProOnly        = errors.New("available for Pro accounts only")
	ErrAdviceQuota    = errors.New("daily AI limit exhausted")
	ErrAdviceDisabled = errors.New("AI tutor is not configured")
)
