package email

import (
	"strings"
	"testing"
)

func TestIsConfigured(t *testing.T) {
	cases := []struct {
		name   string
		config Config
		want   bool
	}{
		{"fully configured", Config{Host: "smtp.example.com", Port: "587", From: "noreply@example.com"}, true},
		{"missing host", Config{Port: "587", From: "noreply@example.com"}, false},
		{"missing port", Config{Host: "smtp.example.com", From: "noreply@example.com"}, false},
		{"missing from", Config{Host: "smtp.example.com", Port: "587"}, false},
		{"empty", Config{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(tc.config)
			if got := svc.IsConfigured(); got != tc.want {
				t.Fatalf("IsConfigured() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSendFailsWhenNotConfigured(t *testing.T) {
	svc := NewService(Config{})
	if err := svc.SendHTMLEmail([]string{"a@example.com"}, "subject", "<p>body</p>"); err == nil {
		t.Fatal("expected error when email not configured")
	}
}

func TestDecisionTemplatesRender(t *testing.T) {
	data := DecisionData{AppName: "SilentStories", AuthorName: "Maya", StoryTitle: "A Silent Night"}

	approval, err := renderTemplate(approvalEmailTemplate, data)
	if err != nil {
		t.Fatalf("render approval: %v", err)
	}
	if !strings.Contains(approval, "Maya") || !strings.Contains(approval, "A Silent Night") {
		t.Fatal("approval email missing author or title")
	}

	rejection, err := renderTemplate(rejectionEmailTemplate, data)
	if err != nil {
		t.Fatalf("render rejection: %v", err)
	}
	if !strings.Contains(rejection, "not to publish") {
		t.Fatal("rejection email missing decision wording")
	}
}
