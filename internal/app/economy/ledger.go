// Package economy keeps the coin audit trail. The users table stays the
// source of truth for balances; the ledger records how every coin was
// earned or spent so a balance can always be explained.
package economy

import (
	"fmt"
	"log"
	"time"

	"github.com/lingvolab/lingvo/internal/domain"
	"github.com/lingvolab/lingvo/internal/infra/sqlite"
)

// Ledger reasons written by the progression engine.
const (
	ReasonLessonReward   = "lesson reward"
	ReasonPromotionBonus = "level promotion bonus"
	ReasonProUpgrade     = "pro upgrade"
)

// Service appends and reads wallet ledger entries.
type Service struct {
	db *sqlite.DB
}

// NewService creates a ledger service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// RecordEarn appends an earn line. balance is the coin balance after the
// grant was applied.
func (s *Service) RecordEarn(userID int64, amount int, reason string, balance int, now time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("earn amount must be positive, got %d", amount)
	}
	_, err := s.db.InsertWalletEntry(domain.WalletEntry{
		UserID:    userID,
		Kind:      domain.WalletEarn,
		Amount:    amount,
		Reason:    reason,
		Balance:   balance,
		CreatedAt: now,
	})
	return err
}

// RecordSpend appends a spend line.
func (s *Service) RecordSpend(userID int64, amount int, reason string, balance int, now time.Time) error {
	if amount <= 0 {
		return fmt.Errorf("spend amount must be positive, got %d", amount)
	}
	_, err := s.db.InsertWalletEntry(domain.WalletEntry{
		UserID:    userID,
		Kind:      domain.WalletSpend,
		Amount:    amount,
		Reason:    reason,
		Balance:   balance,
		CreatedAt: now,
	})
	return err
}

// Note logs a ledger write failure without failing the caller: the coin
// mutation has already committed, so the audit line is best effort.
func Note(err error) {
	if err != nil {
		log.Printf("[economy] ledger write failed: %v", err)
	}
}

// History returns a user's recent ledger lines, newest first.
func (s *Service) History(userID int64, limit int) ([]domain.WalletEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.db.WalletEntries(userID, limit)
}
