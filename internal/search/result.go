package search

// Result is one record returned by the search collaborator or produced by a
// news scrape. Snippet and Date may be empty.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
	Date    string `json:"date,omitempty"` // raw published-at text, e.g. "3 hours ago"
}
