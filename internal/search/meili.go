package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxStories  = "silentstories_stories"
	idxComments = "silentstories_comments"
)

// indexSpec describes one Meilisearch index. The table drives index
// configuration, query fan-out, and hit decoding.
type indexSpec struct {
	uid        string
	rtype      ResultType
	filterable []string
	searchable []string
}

var indexSpecs = []indexSpec{
	{
		uid:        idxStories,
		rtype:      ResultStory,
		filterable: []string{"category"},
		searchable: []string{"title", "content", "tags"},
	},
	{
		uid:        idxComments,
		rtype:      ResultComment,
		filterable: []string{"story_id", "is_private"},
		searchable: []string{"text", "visitor_name"},
	},
}

func specForIndex(uid string) (indexSpec, bool) {
	for _, spec := range indexSpecs {
		if spec.uid == uid {
			return spec, true
		}
	}
	return indexSpec{}, false
}

// Meili implements Searcher via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures indexes. The
// background health loop keeps retrying, so an unreachable server at
// startup is tolerated.
func NewMeili(url, apiKey string) *Meili {
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		done:   make(chan struct{}),
	}

	if m.checkHealth() {
		m.configureIndexes()
	} else {
		log.Printf("search: meilisearch unavailable at %s", url)
	}

	go m.healthLoop()
	return m
}

func (m *Meili) checkHealth() bool {
	_, err := m.client.Health()
	m.healthy.Store(err == nil)
	return err == nil
}

func (m *Meili) configureIndexes() {
	for _, spec := range indexSpecs {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{
			Uid:        spec.uid,
			PrimaryKey: "id",
		}); err != nil {
			log.Printf("search: create index %s (may already exist): %v", spec.uid, err)
		}

		index := m.client.Index(spec.uid)
		filterable := make([]interface{}, len(spec.filterable))
		for i, attr := range spec.filterable {
			filterable[i] = attr
		}
		if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
			log.Printf("search: update filterable attrs for %s: %v", spec.uid, err)
		}
		searchable := spec.searchable
		if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
			log.Printf("search: update searchable attrs for %s: %v", spec.uid, err)
		}
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			wasHealthy := m.healthy.Load()
			if m.checkHealth() && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search fans the query out over the story and comment indexes with a
// single MultiSearch call and merges the hits.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	var queries []*meili.SearchRequest
	for _, spec := range indexSpecs {
		if q.FilterType != "" && q.FilterType != spec.rtype {
			continue
		}
		request := &meili.SearchRequest{
			IndexUID:              spec.uid,
			Query:                 q.Text,
			Limit:                 limit,
			Offset:                int64(q.Offset),
			AttributesToHighlight: []string{"*"},
			HighlightPreTag:       "<mark>",
			HighlightPostTag:      "</mark>",
			ShowRankingScore:      true,
		}
		if spec.rtype == ResultComment && !q.IncludePrivate {
			request.Filter = []string{"is_private = false"}
		}
		queries = append(queries, request)
	}
	if len(queries) == 0 {
		return nil, 0, nil
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{Queries: queries})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	var results []Result
	total := 0
	for _, indexResult := range resp.Results {
		total += int(indexResult.EstimatedTotalHits)
		spec, ok := specForIndex(indexResult.IndexUID)
		if !ok {
			continue
		}
		for _, hit := range indexResult.Hits {
			results = append(results, resultFromHit(hit, spec.rtype))
		}
	}
	return results, total, nil
}

func resultFromHit(hit meili.Hit, rtype ResultType) Result {
	r := Result{Type: rtype, ID: hitString(hit, "id")}

	switch rtype {
	case ResultStory:
		r.Title = firstNonBlank(hitHighlight(hit, "title"), hitString(hit, "title"))
		r.Snippet = firstNonBlank(hitHighlight(hit, "content"), hitString(hit, "content"))
		r.StoryID = r.ID
	case ResultComment:
		r.Title = firstNonBlank(hitHighlight(hit, "visitor_name"), hitString(hit, "visitor_name"))
		r.Snippet = firstNonBlank(hitHighlight(hit, "text"), hitString(hit, "text"))
		r.StoryID = hitString(hit, "story_id")
		r.StoryTitle = hitString(hit, "story_title")
		r.IsPrivate = hitBool(hit, "is_private")
	}
	return r
}

func hitString(hit meili.Hit, key string) string {
	var s string
	if raw, ok := hit[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func hitBool(hit meili.Hit, key string) bool {
	var b bool
	if raw, ok := hit[key]; ok {
		_ = json.Unmarshal(raw, &b)
	}
	return b
}

// hitHighlight pulls the <mark>-tagged variant of a field from the
// _formatted section of a hit.
func hitHighlight(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]string
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	return strings.TrimSpace(formatted[key])
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// IndexStory adds or updates a story in the search index.
func (m *Meili) IndexStory(s StoryRecord) error {
	_, err := m.client.Index(idxStories).AddDocuments([]StoryRecord{s}, nil)
	return err
}

// IndexComment adds or updates a comment in the search index.
func (m *Meili) IndexComment(c CommentRecord) error {
	_, err := m.client.Index(idxComments).AddDocuments([]CommentRecord{c}, nil)
	return err
}

// DeleteStory removes a story from the search index.
func (m *Meili) DeleteStory(id string) error {
	_, err := m.client.Index(idxStories).DeleteDocument(id, nil)
	return err
}

// DeleteComment removes a comment from the search index.
func (m *Meili) DeleteComment(id string) error {
	_, err := m.client.Index(idxComments).DeleteDocument(id, nil)
	return err
}

// IndexStories bulk-indexes stories, used by the startup reindex.
func (m *Meili) IndexStories(stories []StoryRecord) error {
	if len(stories) == 0 {
		return nil
	}
	_, err := m.client.Index(idxStories).AddDocuments(stories, nil)
	return err
}

// IndexComments bulk-indexes comments, used by the startup reindex.
func (m *Meili) IndexComments(comments []CommentRecord) error {
	if len(comments) == 0 {
		return nil
	}
	_, err := m.client.Index(idxComments).AddDocuments(comments, nil)
	return err
}
