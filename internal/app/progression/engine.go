package progression

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/lingvolab/lingvo/internal/app/economy"
	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/infra/metrics"
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

// Service runs the progression engine's read-compute-write cycles.
// All mutations of one user's state are serialized through a per-user
// lock: the hearts/freezes/coins invariants only hold under serialized
// read-modify-write.
type Service struct {
	db     *sqlite.DB
	ledger *economy.Service

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a progression service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db, ledger: economy.NewService(db), locks: make(map[int64]*sync.Mutex)}
}

// Ledger exposes the coin audit trail.
func (s *Service) Ledger() *economy.Service { return s.ledger }

// userLock returns the mutex serializing writes for one user.
func (s *Service) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// LessonResult describes everything that changed on a lesson completion.
type LessonResult struct {
	User             domain.User             `json:"user"`
	Reward           RewardResult            `json:"gained"`
	Streak           StreakUpdate            `json:"-"`
	NewBest          bool                    `json:"newBest"`
	FirstAttempt     bool                    `json:"-"`
	IsLevelComplete  bool                    `json:"isLevelComplete"`
	CompletedLessons []string                `json:"completedLessons"`
	Progress         []domain.ProgressRecord `json:"progress"`
}

// Touch applies one daily-activity event (a login) to the user: streak
// resolution, lazy heart refill, last-login stamp. Returns the updated
// snapshot and the streak verdict.
func (s *Service) Touch(userID int64, now time.Time) (domain.User, StreakUpdate, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.db.UserByID(userID)
	if err != nil {
		return domain.User{}, StreakUpdate{}, err
	}

	up := ResolveStreak(streakStateOf(u), now)
	applyStreak(&u, up)

	hearts := RegenerateHearts(u.Hearts, u.LastHeartReset, now)
	u.Hearts = hearts.Hearts
	u.LastHeartReset = hearts.LastReset

	u.LastLogin = now

	if err := s.db.UpdateUserState(u); err != nil {
		return domain.User{}, StreakUpdate{}, err
	}

	if up.Broken {
		metrics.StreaksBroken.Inc()
	}
	if up.FreezesConsumed > 0 {
		metrics.FreezesConsumed.Add(float64(up.FreezesConsumed))
	}
	return u, up, nil
}

// RefreshHearts applies the lazy heart refill only. Used by session
// re-validation reads, which must not count as streak activity.
func (s *Service) RefreshHearts(userID int64, now time.Time) (domain.User, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.db.UserByID(userID)
	if err != nil {
		return domain.User{}, err
	}

	hearts := RegenerateHearts(u.Hearts, u.LastHeartReset, now)
	if !hearts.Changed {
		return u, nil
	}
	u.Hearts = hearts.Hearts
	u.LastHeartReset = hearts.LastReset

	if err := s.db.UpdateUserState(u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// CompleteLesson applies one lesson-completion event: streak activity,
// reward computation against the previous best, best-score ledger upsert,
// and the level-completion check. Everything is computed from one read
// and committed in one transaction; the level check only signals
// eligibility, it never promotes.
func (s *Service) CompleteLesson(userID int64, lessonID string, score int, now time.Time) (LessonResult, error) {
	if score < 0 || score > 100 {
		return LessonResult{}, domain.ErrScoreOutOfRange
	}
	if _, err := s.db.LessonByID(lessonID); err != nil {
		return LessonResult{}, err
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.db.UserByID(userID)
	if err != nil {
		return LessonResult{}, err
	}

	up := ResolveStreak(streakStateOf(u), now)
	applyStreak(&u, up)

	prev, had, err := s.db.ProgressFor(userID, lessonID)
	if err != nil {
		return LessonResult{}, err
	}
	oldScore := 0
	if had {
		oldScore = prev.Score
	}

	reward := RewardFor(score, oldScore)
	u.XP += reward.XP
	u.Coins += reward.Coins

	rec := domain.ProgressRecord{
		UserID:      userID,
		LessonID:    lessonID,
		Score:       score,
		CompletedAt: now,
	}
	if err := s.db.ApplyLessonResult(u, rec); err != nil {
		return LessonResult{}, err
	}
	if reward.Coins > 0 {
		economy.Note(s.ledger.RecordEarn(userID, reward.Coins, economy.ReasonLessonReward, u.Coins, now))
	}

	result := LessonResult{
		User:         u,
		Reward:       reward,
		Streak:       up,
		NewBest:      score > oldScore,
		FirstAttempt: !had,
	}

	result.Progress, err = s.db.ProgressForUser(userID)
	if err != nil {
		return LessonResult{}, err
	}
	result.CompletedLessons, err = s.db.CompletedLessonIDs(userID)
	if err != nil {
		return LessonResult{}, err
	}

	complete, err := s.IsLevelComplete(userID, u.Level)
	if err != nil {
		// The reward is already committed; a gate failure must not fail
		// the completion response.
		log.Printf("[progression] level check for user %d: %v", userID, err)
	}
	result.IsLevelComplete = complete

	metrics.LessonsCompleted.Inc()
	metrics.XPAwarded.Add(float64(reward.XP))
	metrics.CoinsAwarded.Add(float64(reward.Coins))
	if up.Broken {
		metrics.StreaksBroken.Inc()
	}
	if up.FreezesConsumed > 0 {
		metrics.FreezesConsumed.Add(float64(up.FreezesConsumed))
	}
	return result, nil
}

// IsLevelComplete reports whether every lesson under the course for the
// given level has a ledger entry at or above the completion threshold.
// A level with no lessons is never complete.
func (s *Service) IsLevelComplete(userID int64, level domain.Level) (bool, error) {
	ids, err := s.db.LessonIDsForLevel(level)
	if err != nil {
		if errors.Is(err, domain.ErrCourseNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(ids) == 0 {
		return false, nil
	}
	done, err := s.db.CompletedCountIn(userID, ids)
	if err != nil {
		return false, err
	}
	return done == len(ids), nil
}

// Promote advances the user exactly one step along the level ladder and
// grants the flat promotion bonus. Fails on the terminal level with no
// mutation. Promotion is caller-initiated: the engine only ever signals
// eligibility.
func (s *Service) Promote(userID int64) (domain.User, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	u, err := s.db.UserByID(userID)
	if err != nil {
		return domain.User{}, err
	}

	next, err := domain.NextLevel(u.Level)
	if err != nil {
		return domain.User{}, err
	}

	u.Level = next
	u.Coins += domain.PromotionBonus

	if err := s.db.UpdateUserState(u); err != nil {
		return domain.User{}, err
	}
	economy.Note(s.ledger.RecordEarn(userID, domain.PromotionBonus, economy.ReasonPromotionBonus, u.Coins, time.Now()))
	metrics.Promotions.Inc()
	return u, nil
}

func streakStateOf(u domain.User) StreakState {
	return StreakState{
		Streak:     u.Streak,
		OldStreak:  u.OldStreak,
		Freezes:    u.StreakFreezes,
		LastUpdate: u.LastStreakUpdate,
		LostAt:     u.LastStreakLostAt,
	}
}

func applyStreak(u *domain.User, up StreakUpdate) {
	u.Streak = up.Streak
	u.OldStreak = up.OldStreak
	u.StreakFreezes = up.Freezes
	u.LastStreakUpdate = up.LastUpdate
	u.LastStreakLostAt = up.LostAt
}
