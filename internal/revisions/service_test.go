package revisions

import (
	"fmt"
	"testing"
)

func TestStoryRevisionLifecycle(t *testing.T) {
	svc := New(t.TempDir())

	initial := Content{Title: "The Journey Begins", Content: "<p>First draft.</p>"}
	if err := svc.EnsureStoryRepo("story_1", initial, "ArunKumar"); err != nil {
		t.Fatalf("EnsureStoryRepo: %v", err)
	}

	// Re-ensuring must not reset the repo.
	if err := svc.EnsureStoryRepo("story_1", Content{Title: "other"}, "ArunKumar"); err != nil {
		t.Fatalf("EnsureStoryRepo again: %v", err)
	}

	updated := Content{Title: "The Journey Begins", Content: "<p>Second draft.</p>"}
	info, err := svc.Commit("story_1", updated, "ArunKumar", "Edit story")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if info.Hash == "" || info.Author != "ArunKumar" {
		t.Fatalf("unexpected commit info: %+v", info)
	}

	history, err := svc.History("story_1", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Message != "Edit story" {
		t.Fatalf("newest commit message = %q", history[0].Message)
	}

	content, err := svc.GetContentByHash("story_1", history[1].Hash)
	if err != nil {
		t.Fatalf("GetContentByHash: %v", err)
	}
	if content.Content != "<p>First draft.</p>" {
		t.Fatalf("baseline content = %q", content.Content)
	}
}

func TestHistoryLimit(t *testing.T) {
	svc := New(t.TempDir())
	if err := svc.EnsureStoryRepo("story_2", Content{Title: "t", Content: "v1"}, "ArunKumar"); err != nil {
		t.Fatalf("EnsureStoryRepo: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Commit("story_2", Content{Title: "t", Content: fmt.Sprintf("v%d", i+2)}, "ArunKumar", "edit"); err != nil {
			t.Fatalf("Commit %d: %v", i, err)
		}
	}

	history, err := svc.History("story_2", 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
}

func TestHasRepo(t *testing.T) {
	svc := New(t.TempDir())
	if svc.HasRepo("missing") {
		t.Fatal("HasRepo reported repo for unknown story")
	}
	if err := svc.EnsureStoryRepo("story_3", Content{Title: "t", Content: "c"}, "ArunKumar"); err != nil {
		t.Fatalf("EnsureStoryRepo: %v", err)
	}
	if !svc.HasRepo("story_3") {
		t.Fatal("HasRepo did not find created repo")
	}
}
