package domain

import "time"

// WalletKind classifies a wallet ledger entry.
type WalletKind string

const (
	WalletEarn  WalletKind = "earn"
	WalletSpend WalletKind = "spend"
)

// WalletEntry is one line of the coin audit trail. Balance is the user's
// coin balance after the entry was applied.
type WalletEntry struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	Kind      WalletKind `json:"kind"`
	Amount    int        `json:"amount"`
	Reason    string     `json:"reason"`
	Balance   int        `json:"balance"`
	CreatedAt time.Time  `json:"createdAt"`
}
