// Package search provides full-text search over stories and comments,
// backed by Meilisearch with a PostgreSQL fallback.
package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultStory   ResultType = "story"
	ResultComment ResultType = "comment"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type       ResultType `json:"type"`
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Snippet    string     `json:"snippet"`
	StoryID    string     `json:"story_id,omitempty"`
	StoryTitle string     `json:"story_title,omitempty"`
	IsPrivate  bool       `json:"is_private,omitempty"`
}

// Query describes a search request. IncludePrivate is set only for
// authenticated admin searches; visitor searches never see private
// comments.
type Query struct {
	Text           string
	FilterType     ResultType // empty = all types
	Limit          int
	Offset         int
	IncludePrivate bool
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// StoryRecord is the data we index for a published story.
type StoryRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Tags     string `json:"tags"`
}

// CommentRecord is the data we index for a comment.
type CommentRecord struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	VisitorName string `json:"visitor_name"`
	StoryID     string `json:"story_id"`
	StoryTitle  string `json:"story_title"`
	IsPrivate   bool   `json:"is_private"`
}
