// Package email notifies story submitters about moderation decisions
// via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

const mimeBoundary = "silentstories-alt"

// Config holds SMTP configuration.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Service sends moderation decision emails.
type Service struct {
	config Config
	server string
	auth   smtp.Auth
}

func NewService(config Config) *Service {
	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   smtp.PlainAuth("", config.Username, config.Password, config.Host),
	}
}

// IsConfigured returns true if email is configured. When it is not, the
// app skips notifications silently.
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendHTMLEmail sends a multipart/alternative message with an HTML body
// and a plain-text fallback.
func (s *Service) SendHTMLEmail(to []string, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	var msg bytes.Buffer
	writeHeader := func(key, value string) {
		fmt.Fprintf(&msg, "%s: %s\r\n", key, value)
	}
	writeHeader("To", strings.Join(to, ", "))
	writeHeader("From", from)
	writeHeader("Subject", subject)
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", mimeBoundary))

	writePart := func(contentType, body string) {
		fmt.Fprintf(&msg, "\r\n--%s\r\n", mimeBoundary)
		writeHeader("Content-Type", contentType)
		fmt.Fprintf(&msg, "\r\n%s\r\n", body)
	}
	writePart("text/plain; charset=UTF-8", "Please view this email in an HTML-capable email client.")
	writePart("text/html; charset=UTF-8", htmlBody)
	fmt.Fprintf(&msg, "\r\n--%s--\r\n", mimeBoundary)

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg.Bytes())
}

// DecisionData holds data for moderation decision emails.
type DecisionData struct {
	AppName    string
	AuthorName string
	StoryTitle string
}

// SendApprovalEmail tells a submitter their story was published.
func (s *Service) SendApprovalEmail(to, authorName, storyTitle string) error {
	subject := fmt.Sprintf("Your story %q has been published", storyTitle)
	return s.sendDecision(to, subject, approvalEmailTemplate, authorName, storyTitle)
}

// SendRejectionEmail tells a submitter their story was not accepted.
func (s *Service) SendRejectionEmail(to, authorName, storyTitle string) error {
	subject := fmt.Sprintf("About your story %q", storyTitle)
	return s.sendDecision(to, subject, rejectionEmailTemplate, authorName, storyTitle)
}

func (s *Service) sendDecision(to, subject, tmpl, authorName, storyTitle string) error {
	html, err := renderTemplate(tmpl, DecisionData{
		AppName:    "SilentStories",
		AuthorName: authorName,
		StoryTitle: storyTitle,
	})
	if err != nil {
		return fmt.Errorf("render decision template: %w", err)
	}
	return s.SendHTMLEmail([]string{to}, subject, html)
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const emailStyle = `
    body { font-family: Georgia, 'Times New Roman', serif; line-height: 1.7; color: #2b2b2b; max-width: 560px; margin: 0 auto; padding: 24px; }
    h1 { font-size: 22px; border-bottom: 1px solid #c9c2b8; padding-bottom: 12px; }
    .footer { margin-top: 36px; border-top: 1px solid #e4dfd7; padding-top: 14px; font-size: 12px; color: #777; }`

const approvalEmailTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.AppName}}</title>
  <style>` + emailStyle + `
  </style>
</head>
<body>
  <h1>{{.AppName}}</h1>
  <h2>Good news, {{.AuthorName}}!</h2>
  <p>Your story <strong>{{.StoryTitle}}</strong> has been approved and is now live on {{.AppName}}.</p>
  <p>Thank you for sharing your story with our readers.</p>
  <div class="footer">
    <p>You received this email because you submitted a story to {{.AppName}}.</p>
  </div>
</body>
</html>`

const rejectionEmailTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.AppName}}</title>
  <style>` + emailStyle + `
  </style>
</head>
<body>
  <h1>{{.AppName}}</h1>
  <h2>Hello {{.AuthorName}},</h2>
  <p>Thank you for submitting <strong>{{.StoryTitle}}</strong> to {{.AppName}}.</p>
  <p>After review, we decided not to publish it at this time. We would love to read more of your writing in the future.</p>
  <div class="footer">
    <p>You received this email because you submitted a story to {{.AppName}}.</p>
  </div>
</body>
</html>`
