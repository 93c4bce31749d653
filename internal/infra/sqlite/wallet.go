package sqlite

import (
	"fmt"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
)

// InsertWalletEntry appends one line to a user's coin audit trail.
func (d *DB) InsertWalletEntry(e domain.WalletEntry) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO wallet_ledger (user_id, kind, amount, reason, balance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, string(e.Kind), e.Amount, e.Reason, e.Balance, e.CreatedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("insert wallet entry: %w", err)
	}
	return res.LastInsertId()
}

// WalletEntries returns a user's most recent ledger lines, newest first.
func (d *DB) WalletEntries(userID int64, limit int) ([]domain.WalletEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, kind, amount, reason, balance, created_at
		 FROM wallet_ledger WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.WalletEntry
	for rows.Next() {
		var e domain.WalletEntry
		var at int64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.Amount, &e.Reason, &e.Balance, &at); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(at, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
