package domain

import "time"

// ─── Groups & Chat ──────────────────────────────────────────────────────────

// Group is a study squad. Hidden groups (IsPublic=false) are discoverable
// only by exact name match.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Level       string    `json:"level"`
	MaxMembers  int       `json:"maxMembers"`
	IsPublic    bool      `json:"isPublic"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Message is one chat line in a group, persisted before broadcast.
type Message struct {
	ID         int64     `json:"id"`
	GroupID    int64     `json:"groupId"`
	UserID     int64     `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TutorAdvice is a stored AI tutoring note, generated asynchronously after
// lesson completion and fetched separately by the client.
type TutorAdvice struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Text      string    `json:"text"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"createdAt"`
}
