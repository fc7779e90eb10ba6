package aggregate

import (
	"context"
	"log"
	"sync"

	"github.com/polymarket-feed/internal/market"
)

// fetchMarketsPerTag fans out one upstream fetch per tag and joins when all
// of them have settled. The outer slice is aligned with tagIDs; each
// goroutine writes only to its own slot, so no lock is needed. A failed or
// timed-out fetch leaves an empty slot and is logged; it never fails the
// request or the other in-flight fetches.
func (s *Service) fetchMarketsPerTag(ctx context.Context, tagIDs []string) [][]market.Market {
	perTag := make([][]market.Market, len(tagIDs))

	var wg sync.WaitGroup
	for i, tagID := range tagIDs {
		wg.Add(1)
		go func(i int, tagID string) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
			defer cancel()

			raws, err := s.source.MarketsByTag(fetchCtx, tagID, s.perTagCap)
			if err != nil {
				log.Printf("tag %s: market fetch failed: %v", tagID, err)
				return
			}
			perTag[i] = market.FromRawList(raws)
		}(i, tagID)
	}
	wg.Wait()

	return perTag
}
