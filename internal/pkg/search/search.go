// Package search ranks plumbers against a free-text query, matching the
// transfer picker's behavior: approximate matching over name, PID and
// email, best hits first.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/rajsanitation/orio-rewards/internal/domain"
)

type roster []domain.Plumber

func (r roster) String(i int) string {
	p := r[i]

	return strings.ToLower(p.Name + " " + p.PID + " " + p.Email)
}

func (r roster) Len() int {
	return len(r)
}

// Plumbers returns the plumbers matching query, ranked by match quality.
// An empty query returns the full list unchanged.
func Plumbers(query string, plumbers []domain.Plumber) []domain.Plumber {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return plumbers
	}

	matches := fuzzy.FindFrom(query, roster(plumbers))

	result := make([]domain.Plumber, len(matches))
	for i, m := range matches {
		result[i] = plumbers[m.Index]
	}

	return result
}
