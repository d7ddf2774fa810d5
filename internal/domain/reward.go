package domain

type Reward struct {
	Name   string `json:"name"`
	Tokens int    `json:"tokens"`
	Icon   string `json:"icon"`
}

// RewardCatalog is the fixed catalog offered to plumbers.
var RewardCatalog = []Reward{
	{Name: "Smart Watch", Tokens: 5, Icon: "watch"},
	{Name: "Washing Machine", Tokens: 10, Icon: "washer"},
	{Name: "5G Smartphone", Tokens: 15, Icon: "phone"},
	{Name: "Single Door Fridge", Tokens: 20, Icon: "fridge"},
	{Name: `40" LED TV`, Tokens: 25, Icon: "tv"},
	{Name: "Double Door Fridge", Tokens: 30, Icon: "fridge-double"},
}

func FindReward(name string) (Reward, bool) {
	for _, r := range RewardCatalog {
		if r.Name == name {
			return r, true
		}
	}

	return Reward{}, false
}

// CatalogEntry is a reward annotated with availability for one balance.
type CatalogEntry struct {
	Reward
	Available   bool `json:"available"`
	TokensShort int  `json:"tokens_short"`
}

func CatalogFor(balance int) []CatalogEntry {
	entries := make([]CatalogEntry, len(RewardCatalog))
	for i, r := range RewardCatalog {
		entry := CatalogEntry{Reward: r, Available: balance >= r.Tokens}
		if !entry.Available {
			entry.TokensShort = r.Tokens - balance
		}
		entries[i] = entry
	}

	return entries
}
