package aggregate

import "github.com/polymarket-feed/internal/market"

// Dedupe collapses a list of markets to one market per event, keeping the
// highest-volume market for each event (first seen wins on a volume tie).
// Markets without an event are deduplicated by market id instead, first
// occurrence kept. Markets without an id are dropped. The output is the
// event winners in event-encounter order, followed by the standalone
// markets in encounter order; ranking happens later in the assembler.
func Dedupe(markets []market.Market) []market.Market {
	bestByEvent := make(map[string]int)
	eventWinners := make([]market.Market, 0, len(markets))

	seenStandalone := make(map[string]struct{})
	standalone := make([]market.Market, 0)

	for _, m := range markets {
		if m.ID == "" {
			continue
		}

		if m.EventID != "" {
			if i, ok := bestByEvent[m.EventID]; ok {
				if m.Volume > eventWinners[i].Volume {
					eventWinners[i] = m
				}
			} else {
				bestByEvent[m.EventID] = len(eventWinners)
				eventWinners = append(eventWinners, m)
			}
			continue
		}

		if _, ok := seenStandalone[m.ID]; !ok {
			seenStandalone[m.ID] = struct{}{}
			standalone = append(standalone, m)
		}
	}

	return append(eventWinners, standalone...)
}
