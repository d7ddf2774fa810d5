package response

import (
	"time"

	"github.com/rajsanitation/orio-rewards/internal/domain"
)

type TransferResponse struct {
	Message string         `json:"message"`
	Plumber domain.Plumber `json:"plumber"`
}

type RedemptionCodeResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}
