package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindReward(t *testing.T) {
	reward, ok := FindReward("Smart Watch")
	require.True(t, ok)
	require.Equal(t, 5, reward.Tokens)

	_, ok = FindReward("Jet Ski")
	require.False(t, ok)
}

func TestCatalogFor(t *testing.T) {
	tests := []struct {
		balance        int
		availableCount int
	}{
		{0, 0},
		{4, 0},
		{5, 1},
		{14, 2},
		{15, 3},
		{30, 6},
		{100, 6},
	}

	for _, ts := range tests {
		entries := CatalogFor(ts.balance)
		require.Len(t, entries, len(RewardCatalog))

		available := 0
		for _, e := range entries {
			if e.Available {
				available++
				require.Zero(t, e.TokensShort, "balance=%v reward=%v", ts.balance, e.Name)
			} else {
				require.Equal(t, e.Tokens-ts.balance, e.TokensShort, "balance=%v reward=%v", ts.balance, e.Name)
			}
		}
		require.Equal(t, ts.availableCount, available, "balance=%v", ts.balance)
	}
}
