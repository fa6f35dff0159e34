package store

import (
	"sort"
	"strings"
	"time"
)

// Documents are loosely typed in the backing store; every field here is
// optional at rest and older records may carry only legacy field names.

// Story content values that mark a record as corrupted. These are exact
// sentinels written by a historical client bug, not a heuristic.
const (
	StatusRepaired           = "repaired"
	StatusNeedsManualReview  = "needs_manual_review"
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

type Story struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Category      string    `json:"category,omitempty"`
	Tags          string    `json:"tags,omitempty"`
	PublishDate   time.Time `json:"publish_date"`
	Views         int       `json:"views"`
	Likes         int       `json:"likes"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Back-reference to the submission this story was approved from;
	// OriginalID is a legacy alias found on older records.
	SourceSubmittedID string `json:"source_submitted_id,omitempty"`
	OriginalID        string `json:"original_id,omitempty"`

	// Set by the repair tool only.
	Status      string `json:"status,omitempty"`
	RepairNotes string `json:"repair_notes,omitempty"`
}

// SourceID returns the id of the submission this story came from,
// preferring the current field name over the legacy alias.
func (s Story) SourceID() string {
	if s.SourceSubmittedID != "" {
		return s.SourceSubmittedID
	}
	return s.OriginalID
}

type Comment struct {
	ID          string    `json:"id"`
	StoryID     string    `json:"story_id"`
	VisitorName string    `json:"visitor_name"`
	Text        string    `json:"text"`
	Rating      int       `json:"rating,omitempty"`
	IsPrivate   bool      `json:"is_private"`
	CreatedAt   time.Time `json:"created_at"`
	ReplyTo     string    `json:"reply_to,omitempty"`
	Likes       int       `json:"likes,omitempty"`
	Upvotes     int       `json:"upvotes,omitempty"`
	Downvotes   int       `json:"downvotes,omitempty"`

	// Filled on read, never stored.
	StoryTitle string `json:"story_title,omitempty"`
}

// SubmittedStory keeps every content field name the submission schema has
// ever used. Older records populate only the earlier names, so readers
// must go through FallbackContent rather than Content directly.
type SubmittedStory struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Email       string    `json:"email,omitempty"`
	Dedication  string    `json:"dedication,omitempty"`
	Content     string    `json:"content"`
	Category    string    `json:"category,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	Status      string    `json:"status"`

	// Legacy content fields from earlier schema revisions. The precedence
	// order below must not change: existing records depend on it.
	Story       string `json:"story,omitempty"`
	Text        string `json:"text,omitempty"`
	Body        string `json:"body,omitempty"`
	ContentHTML string `json:"content_html,omitempty"`
}

// FallbackContent resolves the submission's content through the ordered
// field chain content, story, text, body, content_html; the first
// non-empty value wins. Callers validate the result for whitespace.
func (s SubmittedStory) FallbackContent() string {
	for _, candidate := range []string{s.Content, s.Story, s.Text, s.Body, s.ContentHTML} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

type Visitor struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LastActive time.Time `json:"last_active"`

	// Filled on read, never stored.
	CommentCount int `json:"comment_count"`
}

type Admin struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// sortStoriesNewestFirst orders by publish_date descending, falling back
// to created_at when a legacy record has no usable publish date. Sorting
// happens client side because the JSONB store has no ordered index on
// document payloads.
func sortStoriesNewestFirst(stories []Story) {
	sort.Slice(stories, func(i, j int) bool {
		return storySortKey(stories[i]).After(storySortKey(stories[j]))
	})
}

func storySortKey(s Story) time.Time {
	if !s.PublishDate.IsZero() {
		return s.PublishDate
	}
	return s.CreatedAt
}

func sortCommentsNewestFirst(comments []Comment) {
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
}

func sortSubmissionsNewestFirst(submissions []SubmittedStory) {
	sort.Slice(submissions, func(i, j int) bool {
		return submissions[i].SubmittedAt.After(submissions[j].SubmittedAt)
	})
}

func sortVisitorsByLastActive(visitors []Visitor) {
	sort.Slice(visitors, func(i, j int) bool {
		return visitors[i].LastActive.After(visitors[j].LastActive)
	})
}

// NormalizeName trims surrounding whitespace from a visitor name for
// lookup purposes.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
