package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/adminauth"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/auth"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/config"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/email"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/events"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/export"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/presence"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/revisions"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/search"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/store"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/util"
)

type Session struct {
	Token     string
	AdminID   string
	Username  string
	JTI       string
	ExpiresAt time.Time
}

type CreateStoryInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Tags     string `json:"tags"`
}

type CreateCommentInput struct {
	StoryID     string `json:"story_id"`
	VisitorName string `json:"visitor_name"`
	Text        string `json:"text"`
	Rating      int    `json:"rating"`
	IsPrivate   bool   `json:"is_private"`
	ReplyTo     string `json:"reply_to"`
}

type SubmitStoryInput struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	Email      string `json:"email"`
	Dedication string `json:"dedication"`
	Content    string `json:"content"`
	Category   string `json:"category"`
}

type Analytics struct {
	TotalStories       int `json:"total_stories"`
	TotalViews         int `json:"total_views"`
	TotalLikes         int `json:"total_likes"`
	TotalComments      int `json:"total_comments"`
	TotalVisitors      int `json:"total_visitors"`
	PendingSubmissions int `json:"pending_submissions"`
}

type dataStore interface {
	Ping(context.Context) error

	ListStories(context.Context) ([]store.Story, error)
	GetStory(context.Context, string) (store.Story, error)
	CreateStory(context.Context, store.Story) (store.Story, error)
	UpdateStory(context.Context, string, map[string]any) (store.Story, error)
	DeleteStory(context.Context, string) error

	ListComments(context.Context, string) ([]store.Comment, error)
	GetComment(context.Context, string) (store.Comment, error)
	CreateComment(context.Context, store.Comment) (store.Comment, error)
	DeleteComment(context.Context, string) error

	ListVisitors(context.Context) ([]store.Visitor, error)
	UpsertVisitorByName(context.Context, string) (store.Visitor, error)
	CommentCountsByVisitor(context.Context) (map[string]int, error)

	ListSubmittedStories(context.Context) ([]store.SubmittedStory, error)
	GetSubmittedStory(context.Context, string) (store.SubmittedStory, error)
	CreateSubmittedStory(context.Context, store.SubmittedStory) (store.SubmittedStory, error)
	PatchSubmittedStory(context.Context, string, map[string]any) (store.SubmittedStory, error)
	DeleteSubmittedStory(context.Context, string) error

	GetAdminByID(context.Context, string) (store.Admin, error)
}

// Deps wires the service's collaborators. Store, Events, Presence, and
// Auth are required; the rest are optional features that degrade to
// no-ops when nil.
type Deps struct {
	Store     dataStore
	Events    *events.Buffer
	Presence  presence.Tracker
	Auth      *adminauth.Service
	Search    *search.Service
	Revisions *revisions.Service
	Email     *email.Service
	Export    *export.Service
}

type Service struct {
	cfg       config.Config
	store     dataStore
	events    *events.Buffer
	presence  presence.Tracker
	auth      *adminauth.Service
	search    *search.Service
	revisions *revisions.Service
	email     *email.Service
	export    *export.Service
}

func NewService(cfg config.Config, deps Deps) *Service {
	return &Service{
		cfg:       cfg,
		store:     deps.Store,
		events:    deps.Events,
		presence:  deps.Presence,
		auth:      deps.Auth,
		search:    deps.Search,
		revisions: deps.Revisions,
		email:     deps.Email,
		export:    deps.Export,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Bootstrap prepares runtime state on startup: the admin account exists
// and the search index reflects the database.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.auth.EnsureAdmin(ctx, s.cfg.AdminUsername, s.cfg.AdminPassword); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if s.search != nil {
		go s.search.ReindexAllFromPG(context.Background())
	}
	return nil
}

// Sessions

func (s *Service) AdminLogin(ctx context.Context, username, password string) (Session, error) {
	admin, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return Session{}, err
	}

	expiresAt := time.Now().Add(s.cfg.AccessTTL)
	claims := auth.Claims{
		Sub:      admin.ID,
		Username: admin.Username,
		JTI:      util.NewID("jti"),
		Exp:      expiresAt.Unix(),
	}
	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), claims)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}

	return Session{
		Token:     token,
		AdminID:   admin.ID,
		Username:  admin.Username,
		JTI:       claims.JTI,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	if _, err := s.store.GetAdminByID(ctx, claims.Sub); err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	return Session{
		Token:     token,
		AdminID:   claims.Sub,
		Username:  claims.Username,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) ChangePassword(ctx context.Context, session Session, currentPassword, newPassword string) error {
	return s.auth.ChangePassword(ctx, session.AdminID, currentPassword, newPassword)
}

// Stories

func (s *Service) ListStories(ctx context.Context) ([]store.Story, error) {
	stories, err := s.store.ListStories(ctx)
	if err != nil {
		return nil, err
	}
	if stories == nil {
		stories = []store.Story{}
	}
	return stories, nil
}

// GetStory returns the story and bumps its view counter. The counter
// write is best effort; a failed bump never fails the read.
func (s *Service) GetStory(ctx context.Context, id string) (store.Story, error) {
	story, err := s.store.GetStory(ctx, id)
	if err != nil {
		return store.Story{}, err
	}
	updated, err := s.store.UpdateStory(ctx, id, map[string]any{"views": story.Views + 1})
	if err != nil {
		log.Printf("story %s: view counter bump failed: %v", id, err)
		return story, nil
	}
	return updated, nil
}

func (s *Service) CreateStory(ctx context.Context, session Session, input CreateStoryInput) (store.Story, error) {
	if strings.TrimSpace(input.Title) == "" {
		return store.Story{}, validationError("Title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return store.Story{}, validationError("Content is required")
	}

	story, err := s.store.CreateStory(ctx, store.Story{
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
		Tags:     input.Tags,
	})
	if err != nil {
		return store.Story{}, err
	}

	s.events.Append(events.TypeNewStory, fmt.Sprintf("New story published: %s", story.Title),
		map[string]any{"story_id": story.ID, "title": story.Title})
	s.recordRevision(story, session.Username, "Publish story", true)
	s.indexStory(story)
	return story, nil
}

func (s *Service) UpdateStory(ctx context.Context, session Session, id string, patch map[string]any) (store.Story, error) {
	story, err := s.store.UpdateStory(ctx, id, patch)
	if err != nil {
		return store.Story{}, err
	}

	s.events.Append(events.TypeStoryUpdate, fmt.Sprintf("Story updated: %s", story.Title),
		map[string]any{"story_id": story.ID, "title": story.Title})
	s.recordRevision(story, session.Username, "Edit story", false)
	s.indexStory(story)
	return story, nil
}

func (s *Service) DeleteStory(ctx context.Context, id string) error {
	story, err := s.store.GetStory(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteStory(ctx, id); err != nil {
		return err
	}

	s.events.Append(events.TypeStoryDeleted, fmt.Sprintf("Story deleted: %s", story.Title),
		map[string]any{"story_id": id, "title": story.Title})
	if s.search != nil {
		s.search.DeleteStory(id)
	}
	return nil
}

func (s *Service) LikeStory(ctx context.Context, id string) (store.Story, error) {
	story, err := s.store.GetStory(ctx, id)
	if err != nil {
		return store.Story{}, err
	}
	updated, err := s.store.UpdateStory(ctx, id, map[string]any{"likes": story.Likes + 1})
	if err != nil {
		return store.Story{}, err
	}

	s.events.Append(events.TypeStoryLike, fmt.Sprintf("Someone liked: %s", updated.Title),
		map[string]any{"story_id": id, "likes": updated.Likes})
	return updated, nil
}

// Comments

// ListComments attaches the story title to each comment on the way out.
// Deleted stories leave a dangling story_id, shown as "Unknown Story".
func (s *Service) ListComments(ctx context.Context, storyID string, includePrivate bool) ([]store.Comment, error) {
	comments, err := s.store.ListComments(ctx, storyID)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string)
	out := make([]store.Comment, 0, len(comments))
	for _, c := range comments {
		if c.IsPrivate && !includePrivate {
			continue
		}
		title, ok := titles[c.StoryID]
		if !ok {
			if story, err := s.store.GetStory(ctx, c.StoryID); err == nil {
				title = story.Title
			} else {
				title = "Unknown Story"
			}
			titles[c.StoryID] = title
		}
		c.StoryTitle = title
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) CreateComment(ctx context.Context, input CreateCommentInput) (store.Comment, error) {
	name := store.NormalizeName(input.VisitorName)
	if name == "" {
		return store.Comment{}, validationError("Visitor name is required")
	}
	if strings.TrimSpace(input.Text) == "" {
		return store.Comment{}, validationError("Comment text is required")
	}
	if input.Rating != 0 && (input.Rating < 1 || input.Rating > 5) {
		return store.Comment{}, validationError("Rating must be between 1 and 5")
	}

	story, err := s.store.GetStory(ctx, input.StoryID)
	if err != nil {
		return store.Comment{}, err
	}

	if _, err := s.store.UpsertVisitorByName(ctx, name); err != nil {
		return store.Comment{}, err
	}
	if err := s.presence.Touch(ctx, name); err != nil {
		log.Printf("presence touch %s: %v", name, err)
	}

	comment, err := s.store.CreateComment(ctx, store.Comment{
		StoryID:     story.ID,
		VisitorName: name,
		Text:        input.Text,
		Rating:      input.Rating,
		IsPrivate:   input.IsPrivate,
		ReplyTo:     input.ReplyTo,
	})
	if err != nil {
		return store.Comment{}, err
	}

	if _, err := s.store.UpdateStory(ctx, story.ID, map[string]any{"comments_count": story.CommentsCount + 1}); err != nil {
		log.Printf("story %s: comment counter bump failed: %v", story.ID, err)
	}

	s.events.Append(events.TypeNewComment, fmt.Sprintf("%s commented on %s", name, story.Title),
		map[string]any{"story_id": story.ID, "comment_id": comment.ID, "visitor": name})
	if s.search != nil {
		s.search.IndexComment(search.CommentRecord{
			ID:          comment.ID,
			Text:        comment.Text,
			VisitorName: comment.VisitorName,
			StoryID:     story.ID,
			StoryTitle:  story.Title,
			IsPrivate:   comment.IsPrivate,
		})
	}
	comment.StoryTitle = story.Title
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, id string) error {
	if err := s.store.DeleteComment(ctx, id); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteComment(id)
	}
	return nil
}

// Visitors and analytics

func (s *Service) ListUsers(ctx context.Context) ([]store.Visitor, error) {
	visitors, err := s.store.ListVisitors(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CommentCountsByVisitor(ctx)
	if err != nil {
		return nil, err
	}
	for i := range visitors {
		visitors[i].CommentCount = counts[visitors[i].Name]
	}
	return visitors, nil
}

// RealtimeVisitors reports who was active within the presence window.
func (s *Service) RealtimeVisitors(ctx context.Context) (int, []string, error) {
	names, err := s.presence.Active(ctx)
	if err != nil {
		return 0, nil, err
	}
	if names == nil {
		names = []string{}
	}
	sort.Strings(names)
	return len(names), names, nil
}

func (s *Service) Analytics(ctx context.Context) (Analytics, error) {
	stories, err := s.store.ListStories(ctx)
	if err != nil {
		return Analytics{}, err
	}
	comments, err := s.store.ListComments(ctx, "")
	if err != nil {
		return Analytics{}, err
	}
	visitors, err := s.store.ListVisitors(ctx)
	if err != nil {
		return Analytics{}, err
	}
	submissions, err := s.store.ListSubmittedStories(ctx)
	if err != nil {
		return Analytics{}, err
	}

	a := Analytics{
		TotalStories:  len(stories),
		TotalComments: len(comments),
		TotalVisitors: len(visitors),
	}
	for _, story := range stories {
		a.TotalViews += story.Views
		a.TotalLikes += story.Likes
	}
	for _, sub := range submissions {
		if sub.Status == store.SubmissionStatusPending {
			a.PendingSubmissions++
		}
	}
	return a, nil
}

// Events

func (s *Service) VisitorEvents() []events.Event {
	return s.events.VisitorView()
}

func (s *Service) AdminEvents() []events.Event {
	return s.events.AdminView()
}

func (s *Service) SubscribeEvents() (<-chan events.Event, func()) {
	return s.events.Subscribe()
}

// Submissions

func (s *Service) SubmitStory(ctx context.Context, input SubmitStoryInput) (store.SubmittedStory, error) {
	if strings.TrimSpace(input.Title) == "" {
		return store.SubmittedStory{}, validationError("Title is required")
	}
	if strings.TrimSpace(input.Author) == "" {
		return store.SubmittedStory{}, validationError("Author is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return store.SubmittedStory{}, validationError("Content is required")
	}

	submission, err := s.store.CreateSubmittedStory(ctx, store.SubmittedStory{
		Title:      input.Title,
		Author:     input.Author,
		Email:      input.Email,
		Dedication: input.Dedication,
		Content:    input.Content,
		Category:   input.Category,
		Status:     store.SubmissionStatusPending,
	})
	if err != nil {
		return store.SubmittedStory{}, err
	}

	s.events.Append(events.TypeStorySubmission, fmt.Sprintf("New story submitted: %s", submission.Title),
		map[string]any{"submission_id": submission.ID, "author": submission.Author})
	return submission, nil
}

func (s *Service) ListSubmittedStories(ctx context.Context) ([]store.SubmittedStory, error) {
	submissions, err := s.store.ListSubmittedStories(ctx)
	if err != nil {
		return nil, err
	}
	if submissions == nil {
		submissions = []store.SubmittedStory{}
	}
	return submissions, nil
}

// UpdateSubmission applies the patch, then reacts to status changes.
// Approving publishes a story built from the submission's content;
// re-approving an already-approved submission patches the record but
// never publishes a duplicate.
func (s *Service) UpdateSubmission(ctx context.Context, session Session, id string, patch map[string]any) (store.SubmittedStory, error) {
	previous, err := s.store.GetSubmittedStory(ctx, id)
	if err != nil {
		return store.SubmittedStory{}, err
	}

	submission, err := s.store.PatchSubmittedStory(ctx, id, patch)
	if err != nil {
		return store.SubmittedStory{}, err
	}

	switch {
	case submission.Status == store.SubmissionStatusApproved && previous.Status != store.SubmissionStatusApproved:
		if err := s.publishSubmission(ctx, session, submission); err != nil {
			return store.SubmittedStory{}, err
		}
	case submission.Status == store.SubmissionStatusRejected && previous.Status != store.SubmissionStatusRejected:
		s.events.Append(events.TypeStoryRejected, fmt.Sprintf("Submission rejected: %s", submission.Title),
			map[string]any{"submission_id": submission.ID})
		s.notifySubmitter(submission, false)
	}
	return submission, nil
}

func (s *Service) publishSubmission(ctx context.Context, session Session, submission store.SubmittedStory) error {
	content := submission.FallbackContent()
	if strings.TrimSpace(content) == "" {
		return validationError("Cannot approve story with empty content")
	}

	story, err := s.store.CreateStory(ctx, store.Story{
		Title:             submission.Title,
		Content:           content,
		Category:          submission.Category,
		SourceSubmittedID: submission.ID,
	})
	if err != nil {
		return fmt.Errorf("publish approved story: %w", err)
	}

	s.events.Append(events.TypeStoryApproved, fmt.Sprintf("New story published: %s", story.Title),
		map[string]any{"story_id": story.ID, "submission_id": submission.ID, "title": story.Title})
	author := session.Username
	if author == "" {
		author = "admin"
	}
	s.recordRevision(story, author, "Publish story", true)
	s.indexStory(story)
	s.notifySubmitter(submission, true)
	return nil
}

func (s *Service) DeleteSubmission(ctx context.Context, id string) error {
	return s.store.DeleteSubmittedStory(ctx, id)
}

// Search, export, history

func (s *Service) Search(q search.Query) (search.Response, error) {
	if s.search == nil {
		return search.Response{}, domainError(http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", "Search is not configured", nil)
	}
	return s.search.Search(q), nil
}

func (s *Service) ExportStory(ctx context.Context, id string, format export.Format) (*export.Result, error) {
	if s.export == nil {
		return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Export is not configured", nil)
	}
	return s.export.Export(ctx, export.Request{StoryID: id, Format: format})
}

func (s *Service) StoryHistory(ctx context.Context, id string, limit int) ([]revisions.CommitInfo, error) {
	if _, err := s.store.GetStory(ctx, id); err != nil {
		return nil, err
	}
	if s.revisions == nil || !s.revisions.HasRepo(id) {
		return []revisions.CommitInfo{}, nil
	}
	return s.revisions.History(id, limit)
}

// Helpers; revision, index, and email failures are logged, never
// surfaced to the request that triggered them.

func (s *Service) recordRevision(story store.Story, author, message string, initial bool) {
	if s.revisions == nil {
		return
	}
	content := revisions.Content{
		Title:    story.Title,
		Content:  story.Content,
		Category: story.Category,
		Tags:     story.Tags,
	}
	if initial {
		if err := s.revisions.EnsureStoryRepo(story.ID, content, author); err != nil {
			log.Printf("revisions: init story %s: %v", story.ID, err)
		}
		return
	}
	if !s.revisions.HasRepo(story.ID) {
		if err := s.revisions.EnsureStoryRepo(story.ID, content, author); err != nil {
			log.Printf("revisions: init story %s: %v", story.ID, err)
		}
		return
	}
	if _, err := s.revisions.Commit(story.ID, content, author, message); err != nil {
		log.Printf("revisions: commit story %s: %v", story.ID, err)
	}
}

func (s *Service) indexStory(story store.Story) {
	if s.search == nil {
		return
	}
	s.search.IndexStory(search.StoryRecord{
		ID:       story.ID,
		Title:    story.Title,
		Content:  story.Content,
		Category: story.Category,
		Tags:     story.Tags,
	})
}

func (s *Service) notifySubmitter(submission store.SubmittedStory, approved bool) {
	if s.email == nil || !s.email.IsConfigured() || submission.Email == "" {
		return
	}
	go func() {
		var err error
		if approved {
			err = s.email.SendApprovalEmail(submission.Email, submission.Author, submission.Title)
		} else {
			err = s.email.SendRejectionEmail(submission.Email, submission.Author, submission.Title)
		}
		if err != nil {
			log.Printf("email: notify submitter %s: %v", submission.ID, err)
		}
	}()
}
