package domain

import "time"

type TransactionType string

const (
	TransactionEarned   TransactionType = "earned"
	TransactionRedeemed TransactionType = "redeemed"
)

// Transaction is an immutable ledger entry. Every balance-affecting write
// appends exactly one of these in the same transaction as the balance
// mutation.
type Transaction struct {
	ID          uint            `json:"id"`
	PlumberID   uint            `json:"plumber_id"`
	Type        TransactionType `json:"type"`
	Tokens      int             `json:"tokens"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`

	// Populated on dealer views only.
	PlumberName string `json:"plumber_name,omitempty"`
	PlumberPID  string `json:"plumber_pid,omitempty"`
}

func (t Transaction) IsValid() bool {
	if t.Tokens <= 0 {
		return false
	}
	if t.Type != TransactionEarned && t.Type != TransactionRedeemed {
		return false
	}

	return true
}
