package export

import (
	"bytes"
	"html/template"
	"time"
)

// SafeHTML marks a string as pre-rendered HTML. Story content is stored
// as HTML already, so it must not be escaped a second time.
func SafeHTML(s interface{}) template.HTML {
	switch v := s.(type) {
	case string:
		return template.HTML(v)
	case template.HTML:
		return v
	default:
		return template.HTML("")
	}
}

var storyTemplate = template.Must(template.New("story").Funcs(template.FuncMap{
	"safeHTML": SafeHTML,
}).Parse(storyPageTemplate))

// TemplateData holds data for story page rendering.
type TemplateData struct {
	Title       string
	Category    string
	ContentHTML template.HTML
	PublishDate time.Time
	Likes       int
	Views       int
}

// RenderStoryHTML renders the printable story page.
func RenderStoryHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := storyTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const storyPageTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Georgia, serif; line-height: 1.7; max-width: 720px; margin: 2rem auto; color: #222; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    .content p { margin: 1em 0; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">
    {{if .Category}}{{.Category}} | {{end}}{{.PublishDate.Format "Jan 2, 2006"}}
    | {{.Views}} views | {{.Likes}} likes
  </div>
  <div class="content">{{.ContentHTML | safeHTML}}</div>
</body>
</html>`
