package aggregate

import (
	"sort"

	"github.com/polymarket-feed/internal/market"
)

// Strategy selects how the final result set is assembled.
type Strategy string

const (
	// StrategyTop ranks the globally deduplicated pool by volume.
	StrategyTop Strategy = "top"
	// StrategyBalanced round-robins across tags before falling back to
	// volume ranking, so one dominant tag cannot crowd out the feed.
	StrategyBalanced Strategy = "balanced"
)

// ParseStrategy mirrors the query-parameter contract: anything other than
// "balanced" selects the default top strategy.
func ParseStrategy(s string) Strategy {
	if s == string(StrategyBalanced) {
		return StrategyBalanced
	}
	return StrategyTop
}

// RankByVolume returns a copy sorted by volume descending. The sort is
// stable so equal-volume markets keep their encounter order, which keeps
// assembly deterministic for identical upstream data.
func RankByVolume(markets []market.Market) []market.Market {
	ranked := make([]market.Market, len(markets))
	copy(ranked, markets)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Volume > ranked[j].Volume
	})
	return ranked
}

// Assemble produces the final bounded, ordered result from per-tag market
// lists. perTag must be aligned with the discovered tag order; that order is
// what balanced round-robin fairness is defined against.
func Assemble(perTag [][]market.Market, limit int, strategy Strategy) []market.Market {
	if limit <= 0 {
		return []market.Market{}
	}

	if strategy == StrategyBalanced {
		return assembleBalanced(perTag, limit)
	}
	return assembleTop(perTag, limit)
}

func assembleTop(perTag [][]market.Market, limit int) []market.Market {
	pool := RankByVolume(Dedupe(flatten(perTag)))
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

// assembleBalanced emits one market per tag per round, skipping candidates
// whose market or event was already taken. When every tag is exhausted and
// the result is still short, it backfills from the globally ranked pool,
// still honoring the seen sets so no duplicate event can slip in.
func assembleBalanced(perTag [][]market.Market, limit int) []market.Market {
	ranked := make([][]market.Market, len(perTag))
	for i, markets := range perTag {
		ranked[i] = RankByVolume(Dedupe(markets))
	}

	cursors := make([]int, len(ranked))
	seenMarkets := make(map[string]struct{})
	seenEvents := make(map[string]struct{})
	out := make([]market.Market, 0, limit)

	take := func(m market.Market) {
		seenMarkets[m.ID] = struct{}{}
		if m.EventID != "" {
			seenEvents[m.EventID] = struct{}{}
		}
		out = append(out, m)
	}

	taken := func(m market.Market) bool {
		if _, ok := seenMarkets[m.ID]; ok {
			return true
		}
		if m.EventID != "" {
			if _, ok := seenEvents[m.EventID]; ok {
				return true
			}
		}
		return false
	}

	for len(out) < limit {
		added := false
		for i, list := range ranked {
			idx := cursors[i]
			for idx < len(list) && taken(list[idx]) {
				idx++
			}
			cursors[i] = idx

			if idx < len(list) {
				take(list[idx])
				cursors[i]++
				added = true
				if len(out) >= limit {
					break
				}
			}
		}
		if !added {
			break
		}
	}

	if len(out) < limit {
		for _, m := range RankByVolume(Dedupe(flatten(perTag))) {
			if len(out) >= limit {
				break
			}
			if !taken(m) {
				take(m)
			}
		}
	}

	return out
}

func flatten(perTag [][]market.Market) []market.Market {
	total := 0
	for _, markets := range perTag {
		total += len(markets)
	}
	flat := make([]market.Market, 0, total)
	for _, markets := range perTag {
		flat = append(flat, markets...)
	}
	return flat
}
