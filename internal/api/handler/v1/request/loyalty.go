package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// Transfers above maxTransferTokens are rejected outright. Large credits
// are almost always dealer typos.
const maxTransferTokens = 50

type TransferRequest struct {
	PlumberID   uint   `json:"plumber_id" binding:"required"`
	Tokens      int    `json:"tokens" binding:"required,min=1"`
	Description string `json:"description"`
}

func (req *TransferRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PlumberID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Tokens, validation.Required, validation.Min(1), validation.Max(maxTransferTokens)),
		validation.Field(&req.Description, validation.Length(0, 200)),
	)
}

type RedeemRequest struct {
	RewardName string `json:"reward_name" binding:"required"`
	Code       string `json:"code" binding:"required"`
}

func (req *RedeemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RewardName, validation.Required),
		validation.Field(&req.Code, validation.Required, validation.Length(6, 6)),
	)
}

type AdvanceRedemptionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (req *AdvanceRedemptionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In("approved", "delivered")),
	)
}
