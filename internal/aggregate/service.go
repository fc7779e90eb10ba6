// Package aggregate is the market aggregation and balanced sampling engine:
// it discovers which upstream tags belong to a category, fans out concurrent
// per-tag market fetches, deduplicates overlapping results by event, and
// assembles a bounded feed by pure volume ranking or by a fairness-preserving
// round-robin across tags. The engine is stateless: every call builds its own
// maps and sets, so concurrent requests never interact.
package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/polymarket-feed/internal/config"
	"github.com/polymarket-feed/internal/gamma"
	"github.com/polymarket-feed/internal/market"
)

// Source is the slice of the Gamma client the engine consumes. It must be
// safe for concurrent use; the fetch fan-out calls MarketsByTag from many
// goroutines at once.
type Source interface {
	Tags(ctx context.Context) ([]gamma.Tag, error)
	MarketsByTag(ctx context.Context, tagID string, limit int) ([]json.RawMessage, error)
	TrendingMarkets(ctx context.Context, limit int) ([]json.RawMessage, error)
	Search(ctx context.Context, query string, limitPerType int) (*gamma.SearchResponse, error)
}

// Result is one assembled feed. Markets is never nil so an empty feed
// serializes as [].
type Result struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	TagsUsed int             `json:"tagsUsed,omitempty"`
	Markets  []market.Market `json:"markets"`
}

// SearchResult is the response for free-text search.
type SearchResult struct {
	Query   string          `json:"query"`
	Count   int             `json:"count"`
	Markets []market.Market `json:"markets"`
}

type Service struct {
	source       Source
	maxTags      int
	perTagCap    int
	defaultLimit int
	trendingCap  int
	fetchTimeout time.Duration
}

func NewService(source Source, cfg config.AggregationConfig) *Service {
	return &Service{
		source:       source,
		maxTags:      cfg.MaxTags,
		perTagCap:    cfg.MarketsPerTag,
		defaultLimit: cfg.DefaultLimit,
		trendingCap:  cfg.TrendingCap,
		fetchTimeout: time.Duration(cfg.FetchTimeoutSecs) * time.Second,
	}
}

// GetCategoryMarkets assembles the feed for one category. A category with no
// discoverable tags or no fetchable markets yields a valid empty result, not
// an error; only an unknown category or an internal fault errors.
func (s *Service) GetCategoryMarkets(ctx context.Context, category string, limit int, strategy Strategy) (*Result, error) {
	keywords, ok := CategoryKeywords[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	tags := s.findTags(ctx, keywords, s.maxTags)
	if len(tags) == 0 {
		log.Printf("category %s: no tags discovered", category)
		return &Result{Category: category, Markets: []market.Market{}}, nil
	}

	tagIDs := make([]string, len(tags))
	for i, tag := range tags {
		tagIDs[i] = tag.ID
	}

	perTag := s.fetchMarketsPerTag(ctx, tagIDs)
	markets := Assemble(perTag, limit, strategy)

	log.Printf("category %s: %d/%d markets from %d tags (%s)", category, len(markets), limit, len(tags), strategy)

	return &Result{
		Category: category,
		Count:    len(markets),
		TagsUsed: len(tags),
		Markets:  markets,
	}, nil
}

// Trending returns the top open markets by 24h volume. Upstream already
// orders the response, so it is only normalized and truncated.
func (s *Service) Trending(ctx context.Context, limit int) (*Result, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	raws, err := s.source.TrendingMarkets(ctx, s.trendingCap)
	if err != nil {
		return nil, fmt.Errorf("trending fetch: %w", err)
	}

	markets := market.FromRawList(raws)
	if len(markets) > limit {
		markets = markets[:limit]
	}

	return &Result{
		Category: "trending",
		Count:    len(markets),
		Markets:  markets,
	}, nil
}

// Search queries Gamma public-search and keeps one market per returned
// event: the highest-volume one, or the event itself shaped as a market when
// the event carries none. An empty query is a valid empty result.
func (s *Service) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if query == "" {
		return &SearchResult{Markets: []market.Market{}}, nil
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	resp, err := s.source.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	markets := make([]market.Market, 0, len(resp.Events))
	for _, event := range resp.Events {
		markets = append(markets, marketFromSearchEvent(event))
	}

	return &SearchResult{
		Query:   query,
		Count:   len(markets),
		Markets: markets,
	}, nil
}

func marketFromSearchEvent(event gamma.SearchEvent) market.Market {
	best, found := market.Market{}, false
	for _, raw := range event.Markets {
		m, ok := market.FromRaw(raw)
		if !ok {
			continue
		}
		if !found || m.Volume > best.Volume {
			best, found = m, true
		}
	}

	if !found {
		return market.Market{
			ID:                event.ID,
			EventID:           event.ID,
			Title:             event.Title,
			Question:          event.Title,
			Slug:              event.Slug,
			Volume:            market.ParseVolume(event.Volume),
			Image:             event.Image,
			EndDate:           event.EndDate,
			Category:          event.Category,
			HasBinaryOutcomes: true,
		}
	}

	// Search responses are event-centric, so event fields fill any gaps in
	// the winning market, and the raw payload is dropped in favor of the
	// composed shape.
	best.Raw = nil
	best.EventID = event.ID
	if best.Title == "" {
		best.Title = event.Title
		best.Question = event.Title
	}
	if best.Slug == "" {
		best.Slug = event.Slug
	}
	if best.Volume == 0 {
		best.Volume = market.ParseVolume(event.Volume)
	}
	if best.EndDate == "" {
		best.EndDate = event.EndDate
	}
	best.Image = event.Image
	best.Category = event.Category
	return best
}
