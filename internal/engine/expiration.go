package engine

import (
	"sort"
	"time"

	"github.com/quantbird/spreadscan/types"
)

// selectExpiration picks the earliest expiration at least minDTE days out and
// returns the contracts restricted to it. The fixed-window variant bypasses
// this and asks the market calendar instead.
func selectExpiration(contracts []types.OptionContract, minDTE int, now time.Time) (time.Time, []types.OptionContract, error) {
	seen := make(map[time.Time]bool)
	var candidates []time.Time

	for _, c := range contracts {
		if seen[c.Expiration] {
			continue
		}
		seen[c.Expiration] = true
		if c.DTE(now) >= minDTE {
			candidates = append(candidates, c.Expiration)
		}
	}

	if len(candidates) == 0 {
		return time.Time{}, nil, ErrNoValidExpiration
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })
	expiration := candidates[0]

	var out []types.OptionContract
	for _, c := range contracts {
		if c.Expiration.Equal(expiration) {
			out = append(out, c)
		}
	}

	return expiration, out, nil
}

// filterByType keeps only contracts of the given right.
func filterByType(contracts []types.OptionContract, optType types.OptionType) ([]types.OptionContract, error) {
	var out []types.OptionContract
	for _, c := range contracts {
		if c.Type == optType {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoContractsForType
	}
	return out, nil
}
