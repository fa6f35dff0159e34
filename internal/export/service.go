package export

import (
	"context"
	"fmt"
	"html/template"

	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/store"
)

// StoryStore defines the data access needed for export.
type StoryStore interface {
	GetStory(ctx context.Context, id string) (store.Story, error)
}

// Service renders stories to downloadable files.
type Service struct {
	store StoryStore
}

func NewService(store StoryStore) *Service {
	return &Service{store: store}
}

// Export generates an export in the requested format.
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	story, err := s.store.GetStory(ctx, req.StoryID)
	if err != nil {
		return nil, fmt.Errorf("get story: %w", err)
	}
	if story.Content == "" {
		return nil, ErrContentUnavailable
	}

	html, err := RenderStoryHTML(TemplateData{
		Title:       story.Title,
		Category:    story.Category,
		ContentHTML: template.HTML(story.Content),
		PublishDate: story.PublishDate,
		Likes:       story.Likes,
		Views:       story.Views,
	})
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch req.Format {
	case FormatPDF, "":
		return exportPDF(html, story.Title)
	default:
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}
}
