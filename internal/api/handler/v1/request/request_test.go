package request

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignupRequestValidate(t *testing.T) {
	valid := SignupRequest{
		Email:           "ramesh@example.com",
		Password:        "password1",
		ConfirmPassword: "password1",
		Name:            "Ramesh Kumar",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *SignupRequest)
	}{
		{"bad email", func(r *SignupRequest) { r.Email = "not-an-email" }},
		{"missing name", func(r *SignupRequest) { r.Name = "" }},
		{"too short password", func(r *SignupRequest) { r.Password = "pass1"; r.ConfirmPassword = "pass1" }},
		{"password without digit", func(r *SignupRequest) { r.Password = "passwords"; r.ConfirmPassword = "passwords" }},
		{"password without letter", func(r *SignupRequest) { r.Password = "12345678"; r.ConfirmPassword = "12345678" }},
		{"confirm mismatch", func(r *SignupRequest) { r.ConfirmPassword = "password2" }},
	}

	for _, ts := range tests {
		req := valid
		ts.mutate(&req)
		require.Error(t, req.Validate(), ts.name)
	}
}

func TestLoginRequestValidate(t *testing.T) {
	valid := LoginRequest{Email: "ramesh@example.com", Password: "password1"}
	require.NoError(t, valid.Validate())

	require.Error(t, (&LoginRequest{Email: "bad", Password: "password1"}).Validate())
	require.Error(t, (&LoginRequest{Email: "ramesh@example.com"}).Validate())
}

func TestTransferRequestValidate(t *testing.T) {
	valid := TransferRequest{PlumberID: 1, Tokens: 10}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name string
		req  TransferRequest
	}{
		{"missing plumber", TransferRequest{Tokens: 10}},
		{"zero tokens", TransferRequest{PlumberID: 1}},
		{"negative tokens", TransferRequest{PlumberID: 1, Tokens: -5}},
		{"over transfer cap", TransferRequest{PlumberID: 1, Tokens: 51}},
	}

	for _, ts := range tests {
		require.Error(t, ts.req.Validate(), ts.name)
	}

	atCap := TransferRequest{PlumberID: 1, Tokens: maxTransferTokens}
	require.NoError(t, atCap.Validate())
}

func TestRedeemRequestValidate(t *testing.T) {
	valid := RedeemRequest{RewardName: "Smart Watch", Code: "453667"}
	require.NoError(t, valid.Validate())

	require.Error(t, (&RedeemRequest{Code: "453667"}).Validate())
	require.Error(t, (&RedeemRequest{RewardName: "Smart Watch"}).Validate())
	require.Error(t, (&RedeemRequest{RewardName: "Smart Watch", Code: "1234"}).Validate())
}

func TestAdvanceRedemptionRequestValidate(t *testing.T) {
	require.NoError(t, (&AdvanceRedemptionRequest{Status: "approved"}).Validate())
	require.NoError(t, (&AdvanceRedemptionRequest{Status: "delivered"}).Validate())

	require.Error(t, (&AdvanceRedemptionRequest{}).Validate())
	require.Error(t, (&AdvanceRedemptionRequest{Status: "pending"}).Validate())
	require.Error(t, (&AdvanceRedemptionRequest{Status: "shipped"}).Validate())
}
