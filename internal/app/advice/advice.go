// Package advice generates AI tutoring notes: post-lesson analysis,
// free-form tutor chat, and performance reviews. All generation is
// best-effort — the learning flow never blocks on it.
package advice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/infra/metrics"
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

// FallbackMessage is stored when generation fails: the lesson reward is
// already committed by then, so the user gets encouragement, not an error.
const FallbackMessage = "Отличная работа! Продолжай в том же духе — подробный разбор я подготовлю позже."

// How many recent attempts feed the analysis prompts.
const analysisWindow = 5

// Service owns AI tutoring. A nil generator disables it cleanly.
type Service struct {
	db      *sqlite.DB
	gen     Generator
	timeout time.Duration
}

// NewService creates an advice service. gen may be nil (AI disabled).
func NewService(db *sqlite.DB, gen Generator) *Service {
	return &Service{db: db, gen: gen, timeout: 30 * time.Second}
}

// Enabled reports whether a generator is configured.
func (s *Service) Enabled() bool { return s.gen != nil }

// ShouldAdvise reports whether a lesson completion warrants a background
// advice run: Pro account, a first attempt at the lesson, and every
// fifth completed lesson.
func (s *Service) ShouldAdvise(u domain.User, firstAttempt bool, completedCount int) bool {
	return s.Enabled() && u.IsPro && firstAttempt &&
		completedCount > 0 && completedCount%analysisWindow == 0
}

// QueueLessonAdvice generates a post-lesson tutoring note in the
// background and stores it. Fire-and-forget: the caller's response has
// already been committed, and any failure here degrades to the canned
// fallback note.
func (s *Service) QueueLessonAdvice(userID int64, completedCount int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		text, err := s.lessonAdvice(ctx, userID, completedCount)
		fallback := false
		if err != nil {
			log.Printf("[advice] generation for user %d failed: %v", userID, err)
			text = FallbackMessage
			fallback = true
			metrics.AdviceGenerated.WithLabelValues("fallback").Inc()
		} else {
			metrics.AdviceGenerated.WithLabelValues("ok").Inc()
		}

		if _, err := s.db.InsertAdvice(domain.TutorAdvice{
			UserID:    userID,
			Text:      text,
			Fallback:  fallback,
			CreatedAt: time.Now(),
		}); err != nil {
			log.Printf("[advice] store for user %d failed: %v", userID, err)
		}
	}()
}

// Latest returns the newest stored note for a user.
func (s *Service) Latest(userID int64) (domain.TutorAdvice, bool, error) {
	return s.db.LatestAdvice(userID)
}

func (s *Service) lessonAdvice(ctx context.Context, userID int64, completedCount int) (string, error) {
	recs, lessons, err := s.db.RecentProgressWithTitles(userID, analysisWindow)
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return "", fmt.Errorf("no progress to analyze")
	}

	var sum, weakCount int
	var weak, strong []string
	for i, r := range recs {
		sum += r.Score
		if r.Score < domain.CompletionThreshold {
			weak = append(weak, lessons[i].Title)
			weakCount++
		}
		if r.Score >= 90 {
			strong = append(strong, lessons[i].Title)
		}
	}
	avg := sum / len(recs)

	prompt := fmt.Sprintf(`You are a professional English tutor. The student has completed %d lessons.
Last %d lessons performance:
- Average score: %d%%
- Struggled with (weak): %s
- Excelled in (strong): %s

Provide short, motivating, specific advice (max 2 sentences) in Russian. Focus on what to repeat or what to do next.`,
		completedCount, len(recs), avg,
		joinOrNone(weak), joinOrNone(strong))

	return s.gen.Generate(ctx, prompt)
}

// Chat answers a free-form student question. Pro only.
func (s *Service) Chat(ctx context.Context, u domain.User, message string) (string, error) {
	if !u.IsPro {
		return "", domain.ErrProOnly
	}
	if !s.Enabled() {
		return "", domain.ErrAdviceDisabled
	}

	prompt := fmt.Sprintf(`You are a helpful and friendly English tutor for a student named %s.
Current level: %s (goal: %s)
Student says: %q

Respond concisely (max 3-4 sentences), helpfully, and encouragingly in Russian. If they ask about English rules, explain them simply.`,
		u.Name, u.Level, orUnset(u.Goal), message)

	reply, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", mapQuota(err)
	}
	return reply, nil
}

// Analyze produces a structured performance review over the student's
// recent attempts. Pro only. Returns the review and how many lessons it
// covered.
func (s *Service) Analyze(ctx context.Context, u domain.User) (string, int, error) {
	if !u.IsPro {
		return "", 0, domain.ErrProOnly
	}
	if !s.Enabled() {
		return "", 0, domain.ErrAdviceDisabled
	}

	recs, lessons, err := s.db.RecentProgressWithTitles(u.ID, analysisWindow)
	if err != nil {
		return "", 0, err
	}
	if len(recs) == 0 {
		return "Пока недостаточно данных для анализа. Пройди хотя бы один урок!", 0, nil
	}

	var sum int
	var lines, weak, strong []string
	for i, r := range recs {
		sum += r.Score
		lines = append(lines, fmt.Sprintf("%d. %q (тип: %s) — результат: %d%%",
			i+1, lessons[i].Title, lessons[i].Type, r.Score))
		if r.Score < 70 {
			weak = append(weak, fmt.Sprintf("%q (%d%%)", lessons[i].Title, r.Score))
		}
		if r.Score >= 85 {
			strong = append(strong, fmt.Sprintf("%q (%d%%)", lessons[i].Title, r.Score))
		}
	}
	avg := sum / len(recs)

	prompt := fmt.Sprintf(`Ты — профессиональный репетитор по английскому языку. Проанализируй успехи ученика.

Имя ученика: %s
Текущий уровень: %s
Цель обучения: %s
Средний балл за последние %d уроков: %d%%

Последние уроки:
%s

Слабые уроки (< 70%%): %s
Сильные уроки (≥ 85%%): %s

Дай анализ на РУССКОМ языке со структурой: сильные стороны, что нужно
повторить, 2-3 конкретных рекомендации, и один практический совет дня
для уровня %s. Ответ должен быть мотивирующим, конкретным и не более
200 слов.`,
		u.Name, u.Level, orUnset(u.Goal), len(recs), avg,
		strings.Join(lines, "\n"), joinOrNone(weak), joinOrNone(strong), u.Level)

	reply, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", 0, mapQuota(err)
	}
	return reply, len(recs), nil
}

// IsQuota reports whether err is the daily-limit sentinel.
func IsQuota(err error) bool {
	return errors.Is(err, domain.ErrAdviceQuota)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

func orUnset(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}
