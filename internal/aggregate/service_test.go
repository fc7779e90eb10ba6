package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/polymarket-feed/internal/config"
	"github.com/polymarket-feed/internal/gamma"
)

var testCfg = config.AggregationConfig{
	MaxTags:          100,
	MarketsPerTag:    300,
	DefaultLimit:     20,
	TrendingCap:      100,
	FetchTimeoutSecs: 5,
}

type fakeSource struct {
	tags        []gamma.Tag
	tagsErr     error
	marketsBy   map[string][]json.RawMessage
	failTags    map[string]bool
	trending    []json.RawMessage
	trendingErr error
	search      *gamma.SearchResponse
	searchErr   error
}

func (f *fakeSource) Tags(ctx context.Context) ([]gamma.Tag, error) {
	return f.tags, f.tagsErr
}

func (f *fakeSource) MarketsByTag(ctx context.Context, tagID string, limit int) ([]json.RawMessage, error) {
	if f.failTags[tagID] {
		return nil, errors.New("simulated upstream failure")
	}
	return f.marketsBy[tagID], nil
}

func (f *fakeSource) TrendingMarkets(ctx context.Context, limit int) ([]json.RawMessage, error) {
	return f.trending, f.trendingErr
}

func (f *fakeSource) Search(ctx context.Context, query string, limitPerType int) (*gamma.SearchResponse, error) {
	return f.search, f.searchErr
}

func rawMkt(id, eventID string, volume float64) json.RawMessage {
	if eventID == "" {
		return json.RawMessage(fmt.Sprintf(`{"id":%q,"question":"q","volumeNum":%g}`, id, volume))
	}
	return json.RawMessage(fmt.Sprintf(`{"id":%q,"question":"q","volumeNum":%g,"events":[{"id":%q}]}`, id, volume, eventID))
}

func TestGetCategoryMarkets_CatalogFailureYieldsEmptyResult(t *testing.T) {
	svc := NewService(&fakeSource{tagsErr: errors.New("catalog down")}, testCfg)

	result, err := svc.GetCategoryMarkets(context.Background(), "sports", 20, StrategyTop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Category != "sports" || result.Count != 0 || len(result.Markets) != 0 {
		t.Fatalf("result = %+v, want empty sports result", result)
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"category":"sports","count":0,"markets":[]}`; string(data) != want {
		t.Errorf("serialized result = %s, want %s", data, want)
	}
}

func TestGetCategoryMarkets_NoMatchingTags(t *testing.T) {
	src := &fakeSource{tags: []gamma.Tag{{ID: "1", Label: "Knitting", Slug: "knitting"}}}
	svc := NewService(src, testCfg)

	result, err := svc.GetCategoryMarkets(context.Background(), "crypto", 5, StrategyTop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count != 0 || result.TagsUsed != 0 {
		t.Fatalf("result = %+v, want zero tags and markets", result)
	}
}

func TestGetCategoryMarkets_UnknownCategory(t *testing.T) {
	svc := NewService(&fakeSource{}, testCfg)

	if _, err := svc.GetCategoryMarkets(context.Background(), "knitting", 5, StrategyTop); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestGetCategoryMarkets_TopAcrossTags(t *testing.T) {
	src := &fakeSource{
		tags: []gamma.Tag{
			{ID: "10", Label: "Bitcoin", Slug: "bitcoin"},
			{ID: "11", Label: "Ethereum", Slug: "ethereum"},
			{ID: "12", Label: "Knitting", Slug: "knitting"},
		},
		marketsBy: map[string][]json.RawMessage{
			"10": {rawMkt("m1", "", 10), rawMkt("m2", "E1", 50), rawMkt("m3", "E1", 30)},
			"11": {rawMkt("m4", "E2", 50), rawMkt("m5", "", 5)},
		},
	}
	svc := NewService(src, testCfg)

	result, err := svc.GetCategoryMarkets(context.Background(), "crypto", 3, StrategyTop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TagsUsed != 2 {
		t.Errorf("TagsUsed = %d, want 2 (knitting tag must not match)", result.TagsUsed)
	}
	assertIDs(t, result.Markets, []string{"m2", "m4", "m1"})
	if result.Count != 3 {
		t.Errorf("Count = %d, want 3", result.Count)
	}
}

func TestGetCategoryMarkets_FailedTagFetchDegrades(t *testing.T) {
	src := &fakeSource{
		tags: []gamma.Tag{
			{ID: "10", Label: "Bitcoin", Slug: "bitcoin"},
			{ID: "11", Label: "Ethereum", Slug: "ethereum"},
		},
		marketsBy: map[string][]json.RawMessage{
			"11": {rawMkt("m1", "", 40), rawMkt("m2", "", 30)},
		},
		failTags: map[string]bool{"10": true},
	}
	svc := NewService(src, testCfg)

	result, err := svc.GetCategoryMarkets(context.Background(), "crypto", 5, StrategyTop)
	if err != nil {
		t.Fatalf("one failing tag must not fail the request: %v", err)
	}
	assertIDs(t, result.Markets, []string{"m1", "m2"})
}

func TestGetCategoryMarkets_BalancedFollowsCatalogTagOrder(t *testing.T) {
	src := &fakeSource{
		tags: []gamma.Tag{
			{ID: "A", Label: "Bitcoin", Slug: "bitcoin"},
			{ID: "B", Label: "Ethereum", Slug: "ethereum"},
		},
		marketsBy: map[string][]json.RawMessage{
			"A": {rawMkt("1", "", 90), rawMkt("2", "", 10)},
			"B": {rawMkt("3", "", 80), rawMkt("4", "", 70)},
		},
	}
	svc := NewService(src, testCfg)

	result, err := svc.GetCategoryMarkets(context.Background(), "crypto", 3, StrategyBalanced)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertIDs(t, result.Markets, []string{"1", "3", "2"})
}

func TestGetCategoryMarkets_DefaultLimit(t *testing.T) {
	raws := make([]json.RawMessage, 0, 30)
	for i := 0; i < 30; i++ {
		raws = append(raws, rawMkt(fmt.Sprintf("m%d", i), "", float64(i)))
	}
	src := &fakeSource{
		tags:      []gamma.Tag{{ID: "10", Label: "Bitcoin", Slug: "bitcoin"}},
		marketsBy: map[string][]json.RawMessage{"10": raws},
	}
	svc := NewService(src, testCfg)

	result, err := svc.GetCategoryMarkets(context.Background(), "crypto", 0, StrategyTop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count != testCfg.DefaultLimit {
		t.Errorf("Count = %d, want default limit %d", result.Count, testCfg.DefaultLimit)
	}
}

func TestGetCategoryMarkets_MaxTagsTruncation(t *testing.T) {
	cfg := testCfg
	cfg.MaxTags = 2

	src := &fakeSource{
		tags: []gamma.Tag{
			{ID: "1", Label: "Bitcoin", Slug: "bitcoin"},
			{ID: "2", Label: "Ethereum", Slug: "ethereum"},
			{ID: "3", Label: "Solana", Slug: "solana"},
		},
	}
	svc := NewService(src, cfg)

	result, err := svc.GetCategoryMarkets(context.Background(), "crypto", 5, StrategyTop)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TagsUsed != 2 {
		t.Errorf("TagsUsed = %d, want 2", result.TagsUsed)
	}
}

func TestTrending_TruncatesToLimit(t *testing.T) {
	src := &fakeSource{
		trending: []json.RawMessage{
			rawMkt("t1", "", 300), rawMkt("t2", "", 200), rawMkt("t3", "", 100),
		},
	}
	svc := NewService(src, testCfg)

	result, err := svc.Trending(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Category != "trending" {
		t.Errorf("Category = %q, want trending", result.Category)
	}
	assertIDs(t, result.Markets, []string{"t1", "t2"})
}

func TestTrending_UpstreamErrorPropagates(t *testing.T) {
	svc := NewService(&fakeSource{trendingErr: errors.New("boom")}, testCfg)

	if _, err := svc.Trending(context.Background(), 5); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := NewService(&fakeSource{}, testCfg)

	result, err := svc.Search(context.Background(), "", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count != 0 || len(result.Markets) != 0 {
		t.Fatalf("result = %+v, want empty", result)
	}
}

func TestSearch_PicksBestMarketPerEvent(t *testing.T) {
	src := &fakeSource{
		search: &gamma.SearchResponse{
			Events: []gamma.SearchEvent{
				{
					ID:    "EV1",
					Title: "Who wins?",
					Markets: []json.RawMessage{
						rawMkt("low", "", 10),
						rawMkt("high", "", 80),
					},
				},
				{
					ID:     "EV2",
					Title:  "Bare event",
					Volume: json.RawMessage(`"123.5"`),
				},
			},
		},
	}
	svc := NewService(src, testCfg)

	result, err := svc.Search(context.Background(), "wins", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Query != "wins" || result.Count != 2 {
		t.Fatalf("result = %+v, want 2 markets for query wins", result)
	}

	if result.Markets[0].ID != "high" || result.Markets[0].EventID != "EV1" {
		t.Errorf("markets[0] = %+v, want highest-volume market of EV1", result.Markets[0])
	}
	if result.Markets[1].ID != "EV2" || result.Markets[1].Volume != 123.5 {
		t.Errorf("markets[1] = %+v, want bare event shaped as market", result.Markets[1])
	}
}
