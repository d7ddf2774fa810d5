package domain

import "time"

const (
	RedemptionPending   = "pending"
	RedemptionApproved  = "approved"
	RedemptionDelivered = "delivered"
)

type Redemption struct {
	ID         uint      `json:"id"`
	PlumberID  uint      `json:"plumber_id"`
	RewardName string    `json:"reward_name"`
	TokensUsed int       `json:"tokens_used"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`

	// Populated on dealer views only.
	PlumberName string `json:"plumber_name,omitempty"`
	PlumberPID  string `json:"plumber_pid,omitempty"`
}

func IsRedemptionStatus(s string) bool {
	switch s {
	case RedemptionPending, RedemptionApproved, RedemptionDelivered:
		return true
	}

	return false
}

// CanTransitionTo reports whether the status may move forward to target.
// The permitted set is pending->approved, approved->delivered and
// pending->delivered; delivered is terminal.
func (r Redemption) CanTransitionTo(target string) bool {
	switch r.Status {
	case RedemptionPending:
		return target == RedemptionApproved || target == RedemptionDelivered
	case RedemptionApproved:
		return target == RedemptionDelivered
	}

	return false
}
