package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
)

// ─── Course Catalog ─────────────────────────────────────────────────────────

// UpsertCourse writes a course row (seed tool).
func (d *DB) UpsertCourse(c domain.Course) error {
	_, err := d.db.Exec(
		`INSERT INTO courses (id, level, title, description) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET level = excluded.level,
			title = excluded.title, description = excluded.description`,
		c.ID, string(c.Level), c.Title, c.Description)
	if err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}
	return nil
}

// UpsertModule writes a module row (seed tool).
func (d *DB) UpsertModule(m domain.CourseModule, position int) error {
	_, err := d.db.Exec(
		`INSERT INTO modules (id, course_id, title, position) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET course_id = excluded.course_id,
			title = excluded.title, position = excluded.position`,
		m.ID, m.CourseID, m.Title, position)
	if err != nil {
		return fmt.Errorf("upsert module: %w", err)
	}
	return nil
}

// CreateLesson inserts a lesson.
func (d *DB) CreateLesson(l domain.Lesson) error {
	content := l.Content
	if len(content) == 0 {
		content = json.RawMessage("{}")
	}
	_, err := d.db.Exec(
		`INSERT INTO lessons (id, module_id, title, type, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.ModuleID, l.Title, string(l.Type), string(content), l.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

// UpsertLesson writes a lesson row, refreshing content on conflict. The
// original created_at survives so lesson ordering stays stable across
// re-seeds.
func (d *DB) UpsertLesson(l domain.Lesson) error {
	content := l.Content
	if len(content) == 0 {
		content = json.RawMessage("{}")
	}
	_, err := d.db.Exec(
		`INSERT INTO lessons (id, module_id, title, type, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET module_id = excluded.module_id,
			title = excluded.title, type = excluded.type, content = excluded.content`,
		l.ID, l.ModuleID, l.Title, string(l.Type), string(content), l.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert lesson: %w", err)
	}
	return nil
}

// UpdateLesson overwrites a lesson's title and content (admin editor).
func (d *DB) UpdateLesson(id, title string, content json.RawMessage) (domain.Lesson, error) {
	res, err := d.db.Exec(
		`UPDATE lessons SET title = ?, content = ? WHERE id = ?`,
		title, string(content), id)
	if err != nil {
		return domain.Lesson{}, fmt.Errorf("update lesson: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	return d.LessonByID(id)
}

// LessonByID loads one lesson.
func (d *DB) LessonByID(id string) (domain.Lesson, error) {
	var l domain.Lesson
	var content string
	var at int64
	err := d.db.QueryRow(
		`SELECT id, module_id, title, type, content, created_at
		 FROM lessons WHERE id = ?`, id,
	).Scan(&l.ID, &l.ModuleID, &l.Title, &l.Type, &content, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Lesson{}, domain.ErrLessonNotFound
	}
	if err != nil {
		return domain.Lesson{}, err
	}
	l.Content = json.RawMessage(content)
	l.CreatedAt = time.Unix(at, 0)
	return l, nil
}

// Courses returns the full catalog tree: every course with its modules and
// lessons, lessons in creation order.
func (d *DB) Courses() ([]domain.Course, error) {
	rows, err := d.db.Query(`SELECT id, level, title, description FROM courses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Level, &c.Title, &c.Description); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range courses {
		if err := d.fillCourse(&courses[i]); err != nil {
			return nil, err
		}
	}
	return courses, nil
}

// CourseByLevel returns the course tied to one ladder level, with its tree.
func (d *DB) CourseByLevel(level domain.Level) (domain.Course, error) {
	var c domain.Course
	err := d.db.QueryRow(
		`SELECT id, level, title, description FROM courses WHERE level = ?`,
		string(level),
	).Scan(&c.ID, &c.Level, &c.Title, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	if err != nil {
		return domain.Course{}, err
	}
	if err := d.fillCourse(&c); err != nil {
		return domain.Course{}, err
	}
	return c, nil
}

// LessonIDsForLevel returns every lesson id under the course for a level.
func (d *DB) LessonIDsForLevel(level domain.Level) ([]string, error) {
	rows, err := d.db.Query(
		`SELECT l.id FROM lessons l
		 JOIN modules m ON m.id = l.module_id
		 JOIN courses c ON c.id = m.course_id
		 WHERE c.level = ?`, string(level))
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

func (d *DB) fillCourse(c *domain.Course) error {
	mrows, err := d.db.Query(
		`SELECT id, course_id, title FROM modules WHERE course_id = ? ORDER BY position`,
		c.ID)
	if err != nil {
		return err
	}
	defer mrows.Close()

	for mrows.Next() {
		var m domain.CourseModule
		if err := mrows.Scan(&m.ID, &m.CourseID, &m.Title); err != nil {
			return err
		}
		c.Modules = append(c.Modules, m)
	}
	if err := mrows.Err(); err != nil {
		return err
	}

	for i := range c.Modules {
		lrows, err := d.db.Query(
			`SELECT id, module_id, title, type, content, created_at
			 FROM lessons WHERE module_id = ? ORDER BY created_at ASC`,
			c.Modules[i].ID)
		if err != nil {
			return err
		}
		for lrows.Next() {
			var l domain.Lesson
			var content string
			var at int64
			if err := lrows.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Type, &content, &at); err != nil {
				lrows.Close()
				return err
			}
			l.Content = json.RawMessage(content)
			l.CreatedAt = time.Unix(at, 0)
			c.Modules[i].Lessons = append(c.Modules[i].Lessons, l)
		}
		if err := lrows.Err(); err != nil {
			lrows.Close()
			return err
		}
		lrows.Close()
	}
	return nil
}
