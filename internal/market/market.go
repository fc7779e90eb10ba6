// Package market defines the normalized market value used across the
// aggregation engine. Upstream payloads are loosely typed (volume may be a
// number or a string, events may be absent), so all parsing happens here,
// once, at ingestion; downstream code never re-checks field types.
package market

import (
	"encoding/json"
	"strconv"
)

// Market is a single tradeable listing. EventID is empty when the upstream
// market does not belong to an event. Raw holds the upstream payload verbatim
// when the market came straight from the Gamma API; it takes precedence when
// serializing so the frontend sees the full upstream object.
type Market struct {
	ID                string          `json:"id"`
	EventID           string          `json:"eventId,omitempty"`
	Title             string          `json:"title,omitempty"`
	Question          string          `json:"question,omitempty"`
	Slug              string          `json:"slug,omitempty"`
	Volume            float64         `json:"volumeNum"`
	Image             string          `json:"image,omitempty"`
	EndDate           string          `json:"endDate,omitempty"`
	Category          string          `json:"category,omitempty"`
	OutcomePrices     json.RawMessage `json:"outcomePrices,omitempty"`
	HasBinaryOutcomes bool            `json:"hasBinaryOutcomes"`

	Raw json.RawMessage `json:"-"`
}

// MarshalJSON emits the raw upstream payload when one is attached, so the
// HTTP layer passes Gamma markets through untouched.
func (m Market) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	type plain Market
	return json.Marshal(plain(m))
}

// rawMarket mirrors the Gamma /markets response shape. Volume shows up as
// volumeNum (number) on newer payloads and volume (string) on older ones.
type rawMarket struct {
	ID            string          `json:"id"`
	Question      string          `json:"question"`
	Slug          string          `json:"slug"`
	VolumeNum     *float64        `json:"volumeNum"`
	Volume        json.RawMessage `json:"volume"`
	Image         string          `json:"image"`
	EndDate       string          `json:"endDate"`
	Category      string          `json:"category"`
	OutcomePrices json.RawMessage `json:"outcomePrices"`
	Events        []struct {
		ID string `json:"id"`
	} `json:"events"`
}

// FromRaw normalizes one upstream market object. The second return is false
// when the payload has no id; such markets cannot participate in
// deduplication or output and are dropped by callers.
func FromRaw(raw json.RawMessage) (Market, bool) {
	var rm rawMarket
	if err := json.Unmarshal(raw, &rm); err != nil || rm.ID == "" {
		return Market{}, false
	}

	m := Market{
		ID:                rm.ID,
		Title:             rm.Question,
		Question:          rm.Question,
		Slug:              rm.Slug,
		Volume:            parseVolume(rm.VolumeNum, rm.Volume),
		Image:             rm.Image,
		EndDate:           rm.EndDate,
		Category:          rm.Category,
		OutcomePrices:     rm.OutcomePrices,
		HasBinaryOutcomes: true,
		Raw:               raw,
	}
	if len(rm.Events) > 0 {
		m.EventID = rm.Events[0].ID
	}
	return m, true
}

// FromRawList normalizes a whole upstream response, dropping entries without
// an id.
func FromRawList(raws []json.RawMessage) []Market {
	markets := make([]Market, 0, len(raws))
	for _, raw := range raws {
		if m, ok := FromRaw(raw); ok {
			markets = append(markets, m)
		}
	}
	return markets
}

// ParseVolume parses a bare volume field that may be a JSON number or a
// quoted numeric string, defaulting to zero.
func ParseVolume(volume json.RawMessage) float64 {
	return parseVolume(nil, volume)
}

// parseVolume prefers volumeNum, falls back to the volume field (number or
// quoted string), and treats anything unparsable as zero. A zero-volume
// market is kept: it may still be the only market for its event.
func parseVolume(volumeNum *float64, volume json.RawMessage) float64 {
	if volumeNum != nil && *volumeNum != 0 {
		return *volumeNum
	}
	if len(volume) == 0 {
		return 0
	}

	var f float64
	if err := json.Unmarshal(volume, &f); err == nil {
		return f
	}

	var s string
	if err := json.Unmarshal(volume, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}
