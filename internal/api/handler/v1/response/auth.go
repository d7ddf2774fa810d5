package response

import (
	"github.com/rajsanitation/orio-rewards/internal/domain"
)

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}
