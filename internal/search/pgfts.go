package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a
// fallback. The document store keeps payloads as JSONB, so tsvectors are
// built on the fly from the JSON fields rather than a stored fts column.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true; if Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across the stories and comments
// collections using plainto_tsquery and ts_rank, with ts_headline for
// snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultStory {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'story'::text AS type, d.id,
				coalesce(d.data->>'title', '') AS title,
				ts_headline('english', coalesce(d.data->>'content', ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				d.id AS story_id,
				''::text AS story_title,
				false AS is_private,
				ts_rank(to_tsvector('english',
					coalesce(d.data->>'title', '') || ' ' ||
					coalesce(d.data->>'content', '') || ' ' ||
					coalesce(d.data->>'tags', '')), %s) AS rank
			FROM documents d
			WHERE d.collection = 'stories'
				AND to_tsvector('english',
					coalesce(d.data->>'title', '') || ' ' ||
					coalesce(d.data->>'content', '') || ' ' ||
					coalesce(d.data->>'tags', '')) @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultComment {
		commentWhere := fmt.Sprintf(`d.collection = 'comments'
				AND to_tsvector('english',
					coalesce(d.data->>'text', '') || ' ' ||
					coalesce(d.data->>'visitor_name', '')) @@ %s`, tsQuery)
		if !q.IncludePrivate {
			commentWhere += " AND coalesce((d.data->>'is_private')::boolean, false) = false"
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'comment'::text AS type, d.id,
				coalesce(d.data->>'visitor_name', '') AS title,
				ts_headline('english', coalesce(d.data->>'text', ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				coalesce(d.data->>'story_id', '') AS story_id,
				coalesce(s.data->>'title', '') AS story_title,
				coalesce((d.data->>'is_private')::boolean, false) AS is_private,
				ts_rank(to_tsvector('english',
					coalesce(d.data->>'text', '') || ' ' ||
					coalesce(d.data->>'visitor_name', '')), %s) AS rank
			FROM documents d
			LEFT JOIN documents s ON s.collection = 'stories' AND s.id = d.data->>'story_id'
			WHERE %s`, tsQuery, tsQuery, commentWhere))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, story_id, story_title, is_private
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.StoryID, &r.StoryTitle, &r.IsPrivate); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]StoryRecord, []CommentRecord, error) {
	storyRows, err := p.db.QueryContext(ctx, `
		SELECT d.id,
			coalesce(d.data->>'title', ''),
			coalesce(d.data->>'content', ''),
			coalesce(d.data->>'category', ''),
			coalesce(d.data->>'tags', '')
		FROM documents d
		WHERE d.collection = 'stories'
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load stories: %w", err)
	}
	defer storyRows.Close()

	stories := make([]StoryRecord, 0)
	for storyRows.Next() {
		var s StoryRecord
		if err := storyRows.Scan(&s.ID, &s.Title, &s.Content, &s.Category, &s.Tags); err != nil {
			return nil, nil, fmt.Errorf("scan story: %w", err)
		}
		stories = append(stories, s)
	}
	if err := storyRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate stories: %w", err)
	}

	commentRows, err := p.db.QueryContext(ctx, `
		SELECT d.id,
			coalesce(d.data->>'text', ''),
			coalesce(d.data->>'visitor_name', ''),
			coalesce(d.data->>'story_id', ''),
			coalesce(s.data->>'title', ''),
			coalesce((d.data->>'is_private')::boolean, false)
		FROM documents d
		LEFT JOIN documents s ON s.collection = 'stories' AND s.id = d.data->>'story_id'
		WHERE d.collection = 'comments'
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load comments: %w", err)
	}
	defer commentRows.Close()

	comments := make([]CommentRecord, 0)
	for commentRows.Next() {
		var c CommentRecord
		if err := commentRows.Scan(&c.ID, &c.Text, &c.VisitorName, &c.StoryID, &c.StoryTitle, &c.IsPrivate); err != nil {
			return nil, nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := commentRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate comments: %w", err)
	}

	return stories, comments, nil
}
