package search

// BuildMatchQuery constructs the match-plus-highlight query for a free-text
// term. Pure and total: any string, including the empty string, yields a valid
// query, and equal terms yield structurally identical queries.
func BuildMatchQuery(term string) Query {
	return Query{
		Query: MatchClause{
			Match: map[string]string{"url": term},
		},
		Highlight: Highlight{
			PreTags:           []string{"<strong>"},
			PostTags:          []string{"</strong>"},
			Fields:            map[string]map[string]any{"*": {}},
			RequireFieldMatch: false,
		},
	}
}
