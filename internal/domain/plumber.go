package domain

import "time"

// Plumber is the loyalty account of a registered plumber. Tokens is the
// spendable balance; TotalEarned and TotalRedeemed are lifetime counters.
// All three are mutated together inside a single database transaction, so
// Tokens == TotalEarned - TotalRedeemed holds at every commit point.
type Plumber struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PID           string    `json:"pid"`
	Tokens        int       `json:"tokens"`
	TotalEarned   int       `json:"total_earned"`
	TotalRedeemed int       `json:"total_redeemed"`
	CreatedAt     time.Time `json:"created_at"`
}
