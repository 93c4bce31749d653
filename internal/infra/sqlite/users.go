package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
)

const userColumns = `id, email, name, password_hash, level, xp, coins, age, goal,
	is_pro, avatar_url, streak, old_streak, streak_freezes, last_streak_update,
	last_streak_lost_at, last_repair_used_at, hearts, last_heart_reset,
	last_login, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (domain.User, error) {
	var u domain.User
	var lastStreak, lastHeart, created int64
	var lostAt, repairAt, lastLogin sql.NullInt64

	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Level,
		&u.XP, &u.Coins, &u.Age, &u.Goal, &u.IsPro, &u.AvatarURL,
		&u.Streak, &u.OldStreak, &u.StreakFreezes, &lastStreak,
		&lostAt, &repairAt, &u.Hearts, &lastHeart, &lastLogin, &created)
	if err != nil {
		return domain.User{}, err
	}

	u.LastStreakUpdate = time.Unix(lastStreak, 0)
	u.LastHeartReset = time.Unix(lastHeart, 0)
	u.CreatedAt = time.Unix(created, 0)
	u.LastStreakLostAt = unixPtr(lostAt)
	u.LastRepairUsedAt = unixPtr(repairAt)
	u.LastLogin = unixOrZero(lastLogin)
	return u, nil
}

// CreateUser inserts a new account and returns it with its assigned id.
func (d *DB) CreateUser(u domain.User) (domain.User, error) {
	result, err := d.db.Exec(
		`INSERT INTO users (email, name, password_hash, level, xp, coins, age, goal,
			is_pro, avatar_url, streak, old_streak, streak_freezes, last_streak_update,
			last_streak_lost_at, last_repair_used_at, hearts, last_heart_reset,
			last_login, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.Name, u.PasswordHash, string(u.Level), u.XP, u.Coins, u.Age, u.Goal,
		u.IsPro, u.AvatarURL, u.Streak, u.OldStreak, u.StreakFreezes,
		u.LastStreakUpdate.Unix(), nullableUnix(u.LastStreakLostAt),
		nullableUnix(u.LastRepairUsedAt), u.Hearts, u.LastHeartReset.Unix(),
		nullableUnix(&u.LastLogin), u.CreatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return domain.User{}, domain.ErrUserExists
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = result.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// UserByID loads one account.
func (d *DB) UserByID(id int64) (domain.User, error) {
	u, err := scanUser(d.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

// UserByEmail loads one account by email.
func (d *DB) UserByEmail(email string) (domain.User, error) {
	u, err := scanUser(d.db.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

// UpdateUserState writes back every engine-mutated field of the user row
// in one statement. The whole snapshot goes together: no observable
// intermediate state.
func (d *DB) UpdateUserState(u domain.User) error {
	return d.updateUserState(d.db, u)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func (d *DB) updateUserState(ex execer, u domain.User) error {
	res, err := ex.Exec(
		`UPDATE users SET level = ?, xp = ?, coins = ?, is_pro = ?,
			streak = ?, old_streak = ?, streak_freezes = ?, last_streak_update = ?,
			last_streak_lost_at = ?, last_repair_used_at = ?,
			hearts = ?, last_heart_reset = ?, last_login = ?
		 WHERE id = ?`,
		string(u.Level), u.XP, u.Coins, u.IsPro,
		u.Streak, u.OldStreak, u.StreakFreezes, u.LastStreakUpdate.Unix(),
		nullableUnix(u.LastStreakLostAt), nullableUnix(u.LastRepairUsedAt),
		u.Hearts, u.LastHeartReset.Unix(), nullableUnix(&u.LastLogin),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("update user state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdateProfile writes the user-editable profile fields.
func (d *DB) UpdateProfile(id int64, name string, age int, goal string, level domain.Level) (domain.User, error) {
	_, err := d.db.Exec(
		`UPDATE users SET name = ?, age = ?, goal = ?, level = ? WHERE id = ?`,
		name, age, goal, string(level), id,
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return d.UserByID(id)
}

// Leaderboard returns the top users by XP, public fields only.
func (d *DB) Leaderboard(limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, name, xp, level, coins, avatar_url
		 FROM users ORDER BY xp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.XP, &e.Level, &e.Coins, &e.AvatarURL); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SearchUsers lists accounts whose name or email contains q (all accounts
// when q is empty). Admin view: ordered by level.
func (d *DB) SearchUsers(q string) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY level ASC`
	args := []interface{}{}
	if q != "" {
		query = `SELECT ` + userColumns + ` FROM users
			WHERE name LIKE ? OR email LIKE ? ORDER BY level ASC`
		pat := "%" + q + "%"
		args = append(args, pat, pat)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// AdjustUserStats increments XP and coins by the given deltas (admin tool).
func (d *DB) AdjustUserStats(id int64, xp, coins int) (domain.User, error) {
	res, err := d.db.Exec(
		`UPDATE users SET xp = xp + ?, coins = coins + ? WHERE id = ?`,
		xp, coins, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("adjust stats: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return d.UserByID(id)
}

// DeleteUser removes an account and everything hanging off it.
func (d *DB) DeleteUser(id int64) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM progress WHERE user_id = ?`,
		`DELETE FROM group_members WHERE user_id = ?`,
		`DELETE FROM messages WHERE user_id = ?`,
		`DELETE FROM tutor_advice WHERE user_id = ?`,
		`DELETE FROM wallet_ledger WHERE user_id = ?`,
		`DELETE FROM users WHERE id = ?`,
	} {
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
	}
	return tx.Commit()
}
