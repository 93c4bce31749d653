package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
)

// ─── Best-Score Ledger ──────────────────────────────────────────────────────

// ProgressForUser returns the full ledger for one user.
func (d *DB) ProgressForUser(userID int64) ([]domain.ProgressRecord, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, lesson_id, score, completed_at
		 FROM progress WHERE user_id = ? ORDER BY completed_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ProgressRecord
	for rows.Next() {
		var p domain.ProgressRecord
		var at int64
		if err := rows.Scan(&p.ID, &p.UserID, &p.LessonID, &p.Score, &at); err != nil {
			return nil, err
		}
		p.CompletedAt = time.Unix(at, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProgressFor returns the record for one (user, lesson) pair. The second
// return is false when no attempt has been recorded yet.
func (d *DB) ProgressFor(userID int64, lessonID string) (domain.ProgressRecord, bool, error) {
	var p domain.ProgressRecord
	var at int64
	err := d.db.QueryRow(
		`SELECT id, user_id, lesson_id, score, completed_at
		 FROM progress WHERE user_id = ? AND lesson_id = ?`, userID, lessonID,
	).Scan(&p.ID, &p.UserID, &p.LessonID, &p.Score, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProgressRecord{}, false, nil
	}
	if err != nil {
		return domain.ProgressRecord{}, false, err
	}
	p.CompletedAt = time.Unix(at, 0)
	return p, true, nil
}

// ApplyLessonResult persists one lesson-completion event atomically: the
// updated user snapshot and the best-score upsert commit together or not
// at all. The upsert keeps the higher score, so concurrent replays can
// never regress the ledger.
func (d *DB) ApplyLessonResult(u domain.User, rec domain.ProgressRecord) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := d.updateUserState(tx, u); err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO progress (user_id, lesson_id, score, completed_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, lesson_id) DO UPDATE SET
			score = excluded.score,
			completed_at = excluded.completed_at
		 WHERE excluded.score > progress.score`,
		rec.UserID, rec.LessonID, rec.Score, rec.CompletedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return tx.Commit()
}

// CompletedLessonIDs returns the lesson ids this user has at or above the
// completion threshold.
func (d *DB) CompletedLessonIDs(userID int64) ([]string, error) {
	rows, err := d.db.Query(
		`SELECT lesson_id FROM progress WHERE user_id = ? AND score >= ?`,
		userID, domain.CompletionThreshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CompletedCountIn counts this user's at-threshold records among the given
// lesson ids. Used by the level promotion gate.
func (d *DB) CompletedCountIn(userID int64, lessonIDs []string) (int, error) {
	if len(lessonIDs) == 0 {
		return 0, nil
	}
	query := `SELECT COUNT(*) FROM progress
		WHERE user_id = ? AND score >= ? AND lesson_id IN (?` +
		repeat(",?", len(lessonIDs)-1) + `)`
	args := []interface{}{userID, domain.CompletionThreshold}
	for _, id := range lessonIDs {
		args = append(args, id)
	}

	var n int
	if err := d.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// RecentProgressWithTitles returns the latest attempts joined with lesson
// titles and types, newest first. Feeds the AI tutor's analysis prompt.
func (d *DB) RecentProgressWithTitles(userID int64, limit int) ([]domain.ProgressRecord, []domain.Lesson, error) {
	rows, err := d.db.Query(
		`SELECT p.id, p.user_id, p.lesson_id, p.score, p.completed_at,
			l.id, l.module_id, l.title, l.type
		 FROM progress p JOIN lessons l ON l.id = p.lesson_id
		 WHERE p.user_id = ? ORDER BY p.completed_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var recs []domain.ProgressRecord
	var lessons []domain.Lesson
	for rows.Next() {
		var p domain.ProgressRecord
		var l domain.Lesson
		var at int64
		if err := rows.Scan(&p.ID, &p.UserID, &p.LessonID, &p.Score, &at,
			&l.ID, &l.ModuleID, &l.Title, &l.Type); err != nil {
			return nil, nil, err
		}
		p.CompletedAt = time.Unix(at, 0)
		recs = append(recs, p)
		lessons = append(lessons, l)
	}
	return recs, lessons, rows.Err()
}

// ─── Tutor Advice ───────────────────────────────────────────────────────────

// InsertAdvice stores a generated tutoring note.
func (d *DB) InsertAdvice(a domain.TutorAdvice) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO tutor_advice (user_id, text, fallback, created_at)
		 VALUES (?, ?, ?, ?)`,
		a.UserID, a.Text, a.Fallback, a.CreatedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("insert advice: %w", err)
	}
	return res.LastInsertId()
}

// LatestAdvice returns the newest stored note for a user, if any.
func (d *DB) LatestAdvice(userID int64) (domain.TutorAdvice, bool, error) {
	var a domain.TutorAdvice
	var at int64
	err := d.db.QueryRow(
		`SELECT id, user_id, text, fallback, created_at
		 FROM tutor_advice WHERE user_id = ? ORDER BY id DESC LIMIT 1`, userID,
	).Scan(&a.ID, &a.UserID, &a.Text, &a.Fallback, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TutorAdvice{}, false, nil
	}
	if err != nil {
		return domain.TutorAdvice{}, false, err
	}
	a.CreatedAt = time.Unix(at, 0)
	return a, true, nil
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
