// Package repair finds stories whose content was destroyed by a
// historical client bug and restores them from their original
// submissions.
package repair

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/revisions"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/store"
)

// Store is the persistence surface the repair tool needs.
type Store interface {
	ListStories(ctx context.Context) ([]store.Story, error)
	GetSubmittedStory(ctx context.Context, id string) (store.SubmittedStory, error)
	UpdateStory(ctx context.Context, id string, patch map[string]any) (store.Story, error)
}

// Backup archives a document snapshot before it is rewritten.
type Backup interface {
	Archive(ctx context.Context, storyID string, doc any) (string, error)
}

// Revisions records restored content in the story's history.
type Revisions interface {
	HasRepo(storyID string) bool
	EnsureStoryRepo(storyID string, initial revisions.Content, author string) error
	Commit(storyID string, content revisions.Content, author, message string) (revisions.CommitInfo, error)
}

// Summary reports the outcome of a repair run.
type Summary struct {
	Repaired     int `json:"repaired"`
	ManualReview int `json:"manual_review"`
	Failed       int `json:"failed"`
	Total        int `json:"total"`
}

// IsCorrupted reports whether a story's content matches one of the
// exact corruption sentinels. Matching is by equality, never substring:
// a legitimate story containing "A" somewhere is not corrupted.
func IsCorrupted(content string) bool {
	switch content {
	case "", "A", "A A A":
		return true
	}
	return false
}

// Runner drives a scan-and-repair pass over the story collection.
type Runner struct {
	store  Store
	backup Backup    // nil disables pre-repair snapshots
	revs   Revisions // nil disables repair revision commits
	dryRun bool
}

func NewRunner(store Store, backup Backup, revs Revisions, dryRun bool) *Runner {
	return &Runner{store: store, backup: backup, revs: revs, dryRun: dryRun}
}

// Scan returns every story whose content matches a corruption sentinel.
func (r *Runner) Scan(ctx context.Context) ([]store.Story, error) {
	stories, err := r.store.ListStories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	var corrupted []store.Story
	for _, s := range stories {
		if IsCorrupted(s.Content) {
			corrupted = append(corrupted, s)
		}
	}
	return corrupted, nil
}

// Run scans for corrupted stories and repairs each one independently. A
// failure on one story never aborts the batch.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	corrupted, err := r.Scan(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(corrupted)}
	for _, story := range corrupted {
		if r.dryRun {
			log.Printf("repair: would repair story %s (%q)", story.ID, story.Title)
			continue
		}
		status, err := r.repairStory(ctx, story)
		switch {
		case err != nil:
			summary.Failed++
			log.Printf("repair: story %s failed: %v", story.ID, err)
		case status == store.StatusRepaired:
			summary.Repaired++
			log.Printf("repair: story %s repaired", story.ID)
		default:
			summary.ManualReview++
			log.Printf("repair: story %s marked for manual review", story.ID)
		}
	}
	return summary, nil
}

// repairStory restores one story from its source submission. When no
// usable source exists the story is flagged needs_manual_review with a
// note instead of being silently skipped.
func (r *Runner) repairStory(ctx context.Context, story store.Story) (string, error) {
	if r.backup != nil {
		object, err := r.backup.Archive(ctx, story.ID, story)
		if err != nil {
			return "", fmt.Errorf("backup before repair: %w", err)
		}
		log.Printf("repair: story %s archived to %s", story.ID, object)
	}

	sourceID := story.SourceID()
	if sourceID == "" {
		return r.flagManualReview(ctx, story.ID, "no source submission reference")
	}

	submission, err := r.store.GetSubmittedStory(ctx, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return r.flagManualReview(ctx, story.ID, fmt.Sprintf("source submission %s not found", sourceID))
	}
	if err != nil {
		return "", fmt.Errorf("load submission %s: %w", sourceID, err)
	}

	content := submission.FallbackContent()
	if strings.TrimSpace(content) == "" {
		return r.flagManualReview(ctx, story.ID, fmt.Sprintf("submission %s has no usable content", sourceID))
	}

	repaired, err := r.store.UpdateStory(ctx, story.ID, map[string]any{
		"content": content,
		"status":  store.StatusRepaired,
	})
	if err != nil {
		return "", fmt.Errorf("write repaired content: %w", err)
	}
	r.recordRevision(repaired)
	return store.StatusRepaired, nil
}

// recordRevision commits the restored content; history failures are
// logged, the repair itself already succeeded.
func (r *Runner) recordRevision(story store.Story) {
	if r.revs == nil {
		return
	}
	content := revisions.Content{
		Title:    story.Title,
		Content:  story.Content,
		Category: story.Category,
		Tags:     story.Tags,
	}
	if !r.revs.HasRepo(story.ID) {
		if err := r.revs.EnsureStoryRepo(story.ID, content, "repair-tool"); err != nil {
			log.Printf("repair: story %s revision init failed: %v", story.ID, err)
		}
		return
	}
	if _, err := r.revs.Commit(story.ID, content, "repair-tool", "Repair content"); err != nil {
		log.Printf("repair: story %s revision commit failed: %v", story.ID, err)
	}
}

func (r *Runner) flagManualReview(ctx context.Context, storyID, note string) (string, error) {
	if _, err := r.store.UpdateStory(ctx, storyID, map[string]any{
		"status":       store.StatusNeedsManualReview,
		"repair_notes": note,
	}); err != nil {
		return "", fmt.Errorf("flag manual review: %w", err)
	}
	return store.StatusNeedsManualReview, nil
}
