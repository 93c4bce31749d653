// Package social implements study groups and their chat rooms.
package social

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

const defaultGroupSize = 10

// Service manages groups, memberships, and persisted chat history.
type Service struct {
	db *sqlite.DB
}

// NewService creates a social service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// QuickJoin drops the user into a group with zero choices: an existing
// membership wins, else the first public group with room, else a freshly
// created public squad.
func (s *Service) QuickJoin(userID int64, now time.Time) (domain.Group, error) {
	mine, err := s.db.GroupsForUser(userID)
	if err != nil {
		return domain.Group{}, err
	}
	if len(mine) > 0 {
		return mine[0], nil
	}

	groups, err := s.db.PublicGroups()
	if err != nil {
		return domain.Group{}, err
	}
	for _, g := range groups {
		if g.MemberCount < g.MaxMembers {
			if err := s.db.JoinGroup(userID, g.ID, now); err != nil {
				return domain.Group{}, err
			}
			return g, nil
		}
	}

	g, err := s.db.CreateGroup(domain.Group{
		Name:       fmt.Sprintf("Global Squad %d", rand.Intn(1000)),
		Level:      "All Levels",
		MaxMembers: defaultGroupSize,
		IsPublic:   true,
		CreatedAt:  now,
	})
	if err != nil {
		return domain.Group{}, err
	}
	if err := s.db.JoinGroup(userID, g.ID, now); err != nil {
		return domain.Group{}, err
	}
	return g, nil
}

// Create makes a group and joins the creator to it.
func (s *Service) Create(userID int64, name, level string, maxMembers int, isPublic bool, now time.Time) (domain.Group, error) {
	if maxMembers <= 0 {
		maxMembers = defaultGroupSize
	}
	g, err := s.db.CreateGroup(domain.Group{
		Name:       strings.TrimSpace(name),
		Level:      level,
		MaxMembers: maxMembers,
		IsPublic:   isPublic,
		CreatedAt:  now,
	})
	if err != nil {
		return domain.Group{}, err
	}
	if err := s.db.JoinGroup(userID, g.ID, now); err != nil {
		return domain.Group{}, err
	}
	g.MemberCount = 1
	return g, nil
}

// Search finds public groups by name prefix; hidden groups only by exact
// name, so they cannot be enumerated.
func (s *Service) Search(q string) ([]domain.Group, error) {
	if q == "" {
		return nil, nil
	}
	return s.db.SearchGroups(q)
}

// Available lists every public group.
func (s *Service) Available() ([]domain.Group, error) {
	return s.db.PublicGroups()
}

// MyGroups lists the caller's memberships.
func (s *Service) MyGroups(userID int64) ([]domain.Group, error) {
	return s.db.GroupsForUser(userID)
}

// Join adds the user to a group after a capacity check.
func (s *Service) Join(userID, groupID int64, now time.Time) (domain.Group, error) {
	g, err := s.db.GroupByID(groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if g.MemberCount >= g.MaxMembers {
		member, err := s.db.IsMember(userID, groupID)
		if err != nil {
			return domain.Group{}, err
		}
		if !member {
			return domain.Group{}, domain.ErrGroupFull
		}
		return g, nil
	}
	if err := s.db.JoinGroup(userID, groupID, now); err != nil {
		return domain.Group{}, err
	}
	return g, nil
}

// Leave removes the user from a group.
func (s *Service) Leave(userID, groupID int64) error {
	return s.db.LeaveGroup(userID, groupID)
}

// History returns a group's chat log, oldest first.
func (s *Service) History(groupID int64) ([]domain.Message, error) {
	if _, err := s.db.GroupByID(groupID); err != nil {
		return nil, err
	}
	return s.db.MessagesForGroup(groupID)
}

// Post persists a chat message and returns it with the sender's display
// fields resolved. Broadcast to live subscribers is the transport
// layer's job, after the write.
func (s *Service) Post(userID, groupID int64, content string, now time.Time) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, fmt.Errorf("empty message")
	}
	if _, err := s.db.GroupByID(groupID); err != nil {
		return domain.Message{}, err
	}
	return s.db.InsertMessage(domain.Message{
		GroupID:   groupID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
	})
}
