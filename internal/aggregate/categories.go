package aggregate

// CategoryKeywords maps each feed category to the keyword set used to match
// upstream tags. A tag belongs to a category when any keyword is a
// case-insensitive substring of its label or slug.
var CategoryKeywords = map[string][]string{
	"sports":     {"sports", "nfl", "nba", "mlb", "soccer", "football", "basketball", "baseball", "tennis", "golf", "nhl", "rugby", "cricket"},
	"politics":   {"politics", "election", "trump", "president", "congress", "senate", "vote", "biden", "campaign", "candidate", "harris", "musk", "elon", "house", "representative", "governor", "mayor", "war", "conflict", "international", "diplomacy", "uk", "uk politics", "brexit", "parliament", "minister", "prime minister", "government"},
	"crypto":     {"bitcoin", "btc", "eth", "ethereum", "solana", "crypto", "blockchain", "web3", "defi", "nft", "token"},
	"popculture": {"tv", "movie", "celebrity", "oscars", "grammy", "entertainment", "actor", "actress", "award", "film", "music"},
	"finance":    {"ipo", "gdp", "ceo", "economy", "stock", "merger", "business", "fed", "interest", "inflation", "recession"},
	"tech":       {"tech", "technology", "ai", "artificial intelligence", "apple", "google", "microsoft", "tesla", "nvidia", "meta", "amazon", "startup", "ipo", "innovation", "software", "hardware", "silicon valley"},
	"climate":    {"climate", "climate change", "earthquake", "global warming", "carbon", "emissions", "renewable", "energy", "green", "environment", "sustainability", "weather", "temperature", "cop28", "net zero", "greenhouse gas", "fossil fuel", "solar", "wind", "electric vehicle", "ev", "oil", "gas", "coal", "methane", "drought", "flood", "hurricane", "tornado"},
	"earnings":   {"earnings", "revenue", "profit", "earnings call", "q1", "q2", "q3", "q4", "quarterly", "annual", "guidance", "forecast", "results", "ebitda", "net income", "eps", "earnings per share", "roe", "pe ratio", "margin", "growth", "beat", "miss", "dividend", "buyback", "financial results", "investor"},
}

// CategoryNames is the fixed presentation order for the category listing.
var CategoryNames = []string{
	"sports", "politics", "crypto", "popculture", "finance", "tech", "climate", "earnings",
}
