package model

// Query is one retrieval request: the text to match and how many results to return.
type Query struct {
	Text string
	TopK int
}

type SearchResult struct {
	DisplayText    string  `json:"text"`
	RelevanceScore float64 `json:"relevance_score"`
	Metadata       FlatMap `json:"metadata"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// EmptySearch is the "no matches" response. Results is non-nil so it encodes as [].
func EmptySearch(query string) SearchResponse {
	return SearchResponse{Query: query, Results: []SearchResult{}}
}
