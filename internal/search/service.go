package search

import (
	"context"
	"log"
)

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
type Service struct {
	meili *Meili
	pgfts *PgFTS
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, pgfts *PgFTS) *Service {
	return &Service{meili: meili, pgfts: pgfts}
}

func (s *Service) meiliReady() bool {
	return s.meili != nil && s.meili.Healthy()
}

// Search tries Meilisearch if healthy, otherwise falls back to PG FTS.
// Private comments are filtered again on the way out in case a stale
// index entry slips through.
func (s *Service) Search(q Query) Response {
	if s.meiliReady() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return s.respond(q, results, total)
		}
		log.Printf("search: meilisearch error, falling back to pgfts: %v", err)
	}

	results, total, err := s.pgfts.Search(q)
	if err != nil {
		log.Printf("search: pgfts error: %v", err)
		return Response{Results: []Result{}, Query: q.Text}
	}
	return s.respond(q, results, total)
}

func (s *Service) respond(q Query, results []Result, total int) Response {
	return Response{
		Results: sanitizeResults(nonNil(results), q.IncludePrivate),
		Total:   total,
		Query:   q.Text,
	}
}

// async runs an index mutation in the background; callers never wait on
// Meilisearch. Skipped entirely while the server is unhealthy; the
// startup reindex reconciles once it recovers.
func (s *Service) async(op, id string, fn func() error) {
	if !s.meiliReady() {
		return
	}
	go func() {
		if err := fn(); err != nil {
			log.Printf("search: %s %s: %v", op, id, err)
		}
	}()
}

func (s *Service) IndexStory(rec StoryRecord) {
	s.async("index story", rec.ID, func() error { return s.meili.IndexStory(rec) })
}

func (s *Service) IndexComment(rec CommentRecord) {
	s.async("index comment", rec.ID, func() error { return s.meili.IndexComment(rec) })
}

func (s *Service) DeleteStory(id string) {
	s.async("delete story", id, func() error { return s.meili.DeleteStory(id) })
}

func (s *Service) DeleteComment(id string) {
	s.async("delete comment", id, func() error { return s.meili.DeleteComment(id) })
}

// ReindexAllFromPG reindexes all stories and comments from PostgreSQL
// into Meilisearch. Called during bootstrap when Meilisearch is healthy.
func (s *Service) ReindexAllFromPG(ctx context.Context) {
	if !s.meiliReady() || s.pgfts == nil {
		return
	}
	stories, comments, err := s.pgfts.LoadAllRecords(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	if err := s.meili.IndexStories(stories); err != nil {
		log.Printf("search: reindex stories: %v", err)
	}
	if err := s.meili.IndexComments(comments); err != nil {
		log.Printf("search: reindex comments: %v", err)
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}

func sanitizeResults(results []Result, includePrivate bool) []Result {
	if includePrivate {
		return results
	}
	filtered := make([]Result, 0, len(results))
	for _, result := range results {
		if result.Type == ResultComment && result.IsPrivate {
			continue
		}
		filtered = append(filtered, result)
	}
	return filtered
}
