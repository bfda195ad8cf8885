package search

import "time"

// MatchClause selects documents whose field matches the analyzed term.
type MatchClause struct {
	Match map[string]string `json:"match"`
}

// Highlight asks the index to return emphasized fragments for matched fields.
type Highlight struct {
	PreTags           []string                  `json:"pre_tags"`
	PostTags          []string                  `json:"post_tags"`
	Fields            map[string]map[string]any `json:"fields"`
	RequireFieldMatch bool                      `json:"require_field_match"`
}

// Query is the payload the widget sends to the remote search index. It is
// fully determined by the search term and immutable once built.
type Query struct {
	Query     MatchClause `json:"query"`
	Highlight Highlight   `json:"highlight"`
}

// Hit is a single result with its highlighted field fragments.
type Hit struct {
	Highlight map[string][]string `json:"highlight"`
}

// Hits carries the result count and the per-hit payloads.
type Hits struct {
	Total int   `json:"total"`
	Hits  []Hit `json:"hits"`
}

// Response is the index's answer to a Query. Read-only, consumed once per search.
type Response struct {
	Hits Hits `json:"hits"`
}

// Record is one persisted search, kept for the history view.
type Record struct {
	ID        string        `json:"id"`
	Term      string        `json:"term"`
	Total     int           `json:"total"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}
