package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/util"
)

// Collection names in the documents table.
const (
	colStories     = "stories"
	colComments    = "comments"
	colUsers       = "users"
	colSubmissions = "submitted_stories"
	colAdmins      = "admins"
)

// PostgresStore persists every entity as a JSON document in a single
// documents table keyed by (collection, id). Queries filter by
// collection only; ordering happens in Go, not in SQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) insertDoc(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s doc: %w", collection, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
	`, collection, id, data)
	if err != nil {
		return fmt.Errorf("insert %s doc: %w", collection, err)
	}
	return nil
}

func (s *PostgresStore) getDoc(ctx context.Context, collection, id string, out any) error {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT data FROM documents WHERE collection=$1 AND id=$2
	`, collection, id).Scan(&data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s doc %s: %w", collection, id, err)
	}
	return nil
}

// patchDoc merges the given fields into the stored document. Top-level
// keys in patch replace the stored values; keys absent from patch are
// left untouched.
func (s *PostgresStore) patchDoc(ctx context.Context, collection, id string, patch map[string]any) error {
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal %s patch: %w", collection, err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET data = data || $3::jsonb, updated_at = NOW()
		WHERE collection=$1 AND id=$2
	`, collection, id, data)
	if err != nil {
		return fmt.Errorf("patch %s doc %s: %w", collection, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("patch %s doc %s: %w", collection, id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) deleteDoc(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM documents WHERE collection=$1 AND id=$2
	`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s doc %s: %w", collection, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s doc %s: %w", collection, id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func listDocs[T any](ctx context.Context, s *PostgresStore, collection string) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM documents WHERE collection=$1
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s docs: %w", collection, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s doc: %w", collection, err)
		}
		var doc T
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode %s doc: %w", collection, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s docs: %w", collection, err)
	}
	return out, nil
}

// Stories

func (s *PostgresStore) ListStories(ctx context.Context) ([]Story, error) {
	stories, err := listDocs[Story](ctx, s, colStories)
	if err != nil {
		return nil, err
	}
	sortStoriesNewestFirst(stories)
	return stories, nil
}

func (s *PostgresStore) GetStory(ctx context.Context, id string) (Story, error) {
	var story Story
	if err := s.getDoc(ctx, colStories, id, &story); err != nil {
		return Story{}, err
	}
	return story, nil
}

func (s *PostgresStore) CreateStory(ctx context.Context, story Story) (Story, error) {
	if story.ID == "" {
		story.ID = util.NewID("story")
	}
	now := time.Now().UTC()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = now
	}
	if story.UpdatedAt.IsZero() {
		story.UpdatedAt = now
	}
	if story.PublishDate.IsZero() {
		story.PublishDate = now
	}
	if err := s.insertDoc(ctx, colStories, story.ID, story); err != nil {
		return Story{}, err
	}
	return story, nil
}

func (s *PostgresStore) UpdateStory(ctx context.Context, id string, patch map[string]any) (Story, error) {
	patch["updated_at"] = time.Now().UTC()
	if err := s.patchDoc(ctx, colStories, id, patch); err != nil {
		return Story{}, err
	}
	return s.GetStory(ctx, id)
}

func (s *PostgresStore) DeleteStory(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, colStories, id)
}

// Comments

func (s *PostgresStore) ListComments(ctx context.Context, storyID string) ([]Comment, error) {
	comments, err := listDocs[Comment](ctx, s, colComments)
	if err != nil {
		return nil, err
	}
	if storyID != "" {
		filtered := comments[:0]
		for _, c := range comments {
			if c.StoryID == storyID {
				filtered = append(filtered, c)
			}
		}
		comments = filtered
	}
	sortCommentsNewestFirst(comments)
	return comments, nil
}

func (s *PostgresStore) CreateComment(ctx context.Context, comment Comment) (Comment, error) {
	if comment.ID == "" {
		comment.ID = util.NewID("comment")
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	comment.StoryTitle = ""
	if err := s.insertDoc(ctx, colComments, comment.ID, comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

func (s *PostgresStore) GetComment(ctx context.Context, id string) (Comment, error) {
	var comment Comment
	if err := s.getDoc(ctx, colComments, id, &comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

func (s *PostgresStore) DeleteComment(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, colComments, id)
}

// Visitors

func (s *PostgresStore) ListVisitors(ctx context.Context) ([]Visitor, error) {
	visitors, err := listDocs[Visitor](ctx, s, colUsers)
	if err != nil {
		return nil, err
	}
	sortVisitorsByLastActive(visitors)
	return visitors, nil
}

// UpsertVisitorByName finds a visitor by exact name and bumps last_active,
// creating the record on first sight.
func (s *PostgresStore) UpsertVisitorByName(ctx context.Context, name string) (Visitor, error) {
	name = NormalizeName(name)
	visitors, err := listDocs[Visitor](ctx, s, colUsers)
	if err != nil {
		return Visitor{}, err
	}
	now := time.Now().UTC()
	for _, v := range visitors {
		if v.Name == name {
			if err := s.patchDoc(ctx, colUsers, v.ID, map[string]any{"last_active": now}); err != nil {
				return Visitor{}, err
			}
			v.LastActive = now
			return v, nil
		}
	}
	visitor := Visitor{ID: util.NewID("visitor"), Name: name, LastActive: now}
	if err := s.insertDoc(ctx, colUsers, visitor.ID, visitor); err != nil {
		return Visitor{}, err
	}
	return visitor, nil
}

func (s *PostgresStore) DeleteVisitor(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, colUsers, id)
}

// CommentCountsByVisitor tallies stored comments per visitor name.
func (s *PostgresStore) CommentCountsByVisitor(ctx context.Context) (map[string]int, error) {
	comments, err := listDocs[Comment](ctx, s, colComments)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(comments))
	for _, c := range comments {
		counts[c.VisitorName]++
	}
	return counts, nil
}

// Submitted stories

func (s *PostgresStore) ListSubmittedStories(ctx context.Context) ([]SubmittedStory, error) {
	submissions, err := listDocs[SubmittedStory](ctx, s, colSubmissions)
	if err != nil {
		return nil, err
	}
	sortSubmissionsNewestFirst(submissions)
	return submissions, nil
}

func (s *PostgresStore) GetSubmittedStory(ctx context.Context, id string) (SubmittedStory, error) {
	var submission SubmittedStory
	if err := s.getDoc(ctx, colSubmissions, id, &submission); err != nil {
		return SubmittedStory{}, err
	}
	return submission, nil
}

func (s *PostgresStore) CreateSubmittedStory(ctx context.Context, submission SubmittedStory) (SubmittedStory, error) {
	if submission.ID == "" {
		submission.ID = util.NewID("submission")
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	if submission.Status == "" {
		submission.Status = SubmissionStatusPending
	}
	if err := s.insertDoc(ctx, colSubmissions, submission.ID, submission); err != nil {
		return SubmittedStory{}, err
	}
	return submission, nil
}

func (s *PostgresStore) PatchSubmittedStory(ctx context.Context, id string, patch map[string]any) (SubmittedStory, error) {
	if err := s.patchDoc(ctx, colSubmissions, id, patch); err != nil {
		return SubmittedStory{}, err
	}
	return s.GetSubmittedStory(ctx, id)
}

func (s *PostgresStore) DeleteSubmittedStory(ctx context.Context, id string) error {
	return s.deleteDoc(ctx, colSubmissions, id)
}

// Admins

func (s *PostgresStore) GetAdminByUsername(ctx context.Context, username string) (Admin, error) {
	admins, err := listDocs[Admin](ctx, s, colAdmins)
	if err != nil {
		return Admin{}, err
	}
	for _, a := range admins {
		if a.Username == username {
			return a, nil
		}
	}
	return Admin{}, sql.ErrNoRows
}

func (s *PostgresStore) GetAdminByID(ctx context.Context, id string) (Admin, error) {
	var admin Admin
	if err := s.getDoc(ctx, colAdmins, id, &admin); err != nil {
		return Admin{}, err
	}
	return admin, nil
}

func (s *PostgresStore) CreateAdmin(ctx context.Context, admin Admin) (Admin, error) {
	if admin.ID == "" {
		admin.ID = util.NewID("admin")
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}
	if err := s.insertDoc(ctx, colAdmins, admin.ID, admin); err != nil {
		return Admin{}, err
	}
	return admin, nil
}

func (s *PostgresStore) UpdateAdminPassword(ctx context.Context, id, passwordHash string) error {
	return s.patchDoc(ctx, colAdmins, id, map[string]any{"password_hash": passwordHash})
}

func (s *PostgresStore) TouchAdminLogin(ctx context.Context, id string) error {
	return s.patchDoc(ctx, colAdmins, id, map[string]any{"last_login": time.Now().UTC()})
}

func (s *PostgresStore) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM documents WHERE collection=$1
	`, colAdmins).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// IsNotFound reports whether err means the requested document does not
// exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
