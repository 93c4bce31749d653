package domain

import (
	"encoding/json"
	"time"
)

// ─── Course Catalog ─────────────────────────────────────────────────────────
// Lessons belong to modules, modules to a course, and each course is tied
// one-to-one with a ladder level. Level completion is judged against every
// lesson under the level's course.

// Course is one ladder tier's curriculum.
type Course struct {
	ID          string         `json:"id"`
	Level       Level          `json:"level"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Modules     []CourseModule `json:"modules,omitempty"`
}

// CourseModule groups lessons inside a course.
type CourseModule struct {
	ID       string   `json:"id"`
	CourseID string   `json:"courseId"`
	Title    string   `json:"title"`
	Lessons  []Lesson `json:"lessons,omitempty"`
}

// LessonType tags what kind of exercise a lesson renders as.
type LessonType string

const (
	LessonVocabulary LessonType = "vocabulary"
	LessonGrammar    LessonType = "grammar"
	LessonListening  LessonType = "listening"
)

// Lesson is a single playable unit. Content is an opaque JSON document
// (words, theory, practice questions) rendered by the client and edited
// by the admin content editor; the engine never inspects it.
type Lesson struct {
	ID        string          `json:"id"`
	ModuleID  string          `json:"moduleId"`
	Title     string          `json:"title"`
	Type      LessonType      `json:"type"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
}
