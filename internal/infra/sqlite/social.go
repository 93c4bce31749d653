package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
)

// ─── Groups ─────────────────────────────────────────────────────────────────

const groupColumns = `g.id, g.name, g.level, g.max_members, g.is_public, g.created_at,
	(SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id)`

func scanGroup(row interface{ Scan(...interface{}) error }) (domain.Group, error) {
	var g domain.Group
	var at int64
	err := row.Scan(&g.ID, &g.Name, &g.Level, &g.MaxMembers, &g.IsPublic, &at, &g.MemberCount)
	if err != nil {
		return domain.Group{}, err
	}
	g.CreatedAt = time.Unix(at, 0)
	return g, nil
}

// CreateGroup inserts a group and returns it with its id.
func (d *DB) CreateGroup(g domain.Group) (domain.Group, error) {
	res, err := d.db.Exec(
		`INSERT INTO groups (name, level, max_members, is_public, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		g.Name, g.Level, g.MaxMembers, g.IsPublic, g.CreatedAt.Unix())
	if err != nil {
		return domain.Group{}, fmt.Errorf("insert group: %w", err)
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return domain.Group{}, err
	}
	return g, nil
}

// GroupByID loads one group with its member count.
func (d *DB) GroupByID(id int64) (domain.Group, error) {
	g, err := scanGroup(d.db.QueryRow(
		`SELECT `+groupColumns+` FROM groups g WHERE g.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Group{}, domain.ErrGroupNotFound
	}
	return g, err
}

// PublicGroups lists every public group.
func (d *DB) PublicGroups() ([]domain.Group, error) {
	return d.queryGroups(
		`SELECT ` + groupColumns + ` FROM groups g WHERE g.is_public = 1 ORDER BY g.id`)
}

// SearchGroups returns public groups whose name starts with q plus hidden
// groups matching q exactly. Hidden groups stay invisible to prefix
// probing.
func (d *DB) SearchGroups(q string) ([]domain.Group, error) {
	return d.queryGroups(
		`SELECT `+groupColumns+` FROM groups g
		 WHERE (g.is_public = 1 AND g.name LIKE ?) OR (g.is_public = 0 AND g.name = ?)
		 ORDER BY g.id`,
		q+"%", q)
}

// AdminGroups lists groups for the admin panel, optionally filtered by a
// name substring.
func (d *DB) AdminGroups(q string) ([]domain.Group, error) {
	if q == "" {
		return d.queryGroups(
			`SELECT ` + groupColumns + ` FROM groups g ORDER BY g.level ASC`)
	}
	return d.queryGroups(
		`SELECT `+groupColumns+` FROM groups g WHERE g.name LIKE ? ORDER BY g.level ASC`,
		"%"+q+"%")
}

// GroupsForUser lists the groups a user belongs to.
func (d *DB) GroupsForUser(userID int64) ([]domain.Group, error) {
	return d.queryGroups(
		`SELECT `+groupColumns+` FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ? ORDER BY gm.joined_at DESC`, userID)
}

func (d *DB) queryGroups(query string, args ...interface{}) ([]domain.Group, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// JoinGroup records membership; re-joining is a no-op.
func (d *DB) JoinGroup(userID, groupID int64, now time.Time) error {
	_, err := d.db.Exec(
		`INSERT INTO group_members (user_id, group_id, joined_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, group_id) DO NOTHING`,
		userID, groupID, now.Unix())
	if err != nil {
		return fmt.Errorf("join group: %w", err)
	}
	return nil
}

// LeaveGroup removes membership.
func (d *DB) LeaveGroup(userID, groupID int64) error {
	_, err := d.db.Exec(
		`DELETE FROM group_members WHERE user_id = ? AND group_id = ?`,
		userID, groupID)
	return err
}

// IsMember reports whether the user belongs to the group.
func (d *DB) IsMember(userID, groupID int64) (bool, error) {
	var n int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM group_members WHERE user_id = ? AND group_id = ?`,
		userID, groupID).Scan(&n)
	return n > 0, err
}

// DeleteGroup removes a group, its memberships and its chat history.
func (d *DB) DeleteGroup(id int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM group_members WHERE group_id = ?`,
		`DELETE FROM messages WHERE group_id = ?`,
		`DELETE FROM groups WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
	}
	return tx.Commit()
}

// ─── Chat Messages ──────────────────────────────────────────────────────────

// InsertMessage persists a chat line and returns it joined with the
// sender's display fields.
func (d *DB) InsertMessage(m domain.Message) (domain.Message, error) {
	res, err := d.db.Exec(
		`INSERT INTO messages (group_id, user_id, content, created_at)
		 VALUES (?, ?, ?, ?)`,
		m.GroupID, m.UserID, m.Content, m.CreatedAt.Unix())
	if err != nil {
		return domain.Message{}, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Message{}, err
	}
	return d.messageByID(id)
}

// MessagesForGroup returns the group's chat history, oldest first.
func (d *DB) MessagesForGroup(groupID int64) ([]domain.Message, error) {
	rows, err := d.db.Query(
		`SELECT m.id, m.group_id, m.user_id, u.name, u.avatar_url, m.content, m.created_at
		 FROM messages m JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = ? ORDER BY m.created_at ASC, m.id ASC`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		var at int64
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.UserName,
			&m.UserAvatar, &m.Content, &at); err != nil {
			return nil, err
		}
		m.CreatedAt = time.Unix(at, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *DB) messageByID(id int64) (domain.Message, error) {
	var m domain.Message
	var at int64
	err := d.db.QueryRow(
		`SELECT m.id, m.group_id, m.user_id, u.name, u.avatar_url, m.content, m.created_at
		 FROM messages m JOIN users u ON u.id = m.user_id WHERE m.id = ?`, id,
	).Scan(&m.ID, &m.GroupID, &m.UserID, &m.UserName, &m.UserAvatar, &m.Content, &at)
	if err != nil {
		return domain.Message{}, err
	}
	m.CreatedAt = time.Unix(at, 0)
	return m, nil
}
