package events

import (
	"fmt"
	"testing"
)

func TestBufferEvictsOldestAtCapacity(t *testing.T) {
	buf := NewBuffer(50)

	for i := 1; i <= 51; i++ {
		buf.Append(TypeNewComment, fmt.Sprintf("comment %d", i), nil)
	}

	if buf.Len() != 50 {
		t.Fatalf("expected 50 buffered events, got %d", buf.Len())
	}

	view := buf.AdminView()
	if len(view) != 50 {
		t.Fatalf("expected 50 events in admin view, got %d", len(view))
	}
	if view[0].ID != 51 {
		t.Errorf("expected newest event id 51 first, got %d", view[0].ID)
	}
	for _, event := range view {
		if event.ID == 1 {
			t.Errorf("oldest event should have been evicted, found id 1")
		}
	}
}

func TestAdminViewNewestFirst(t *testing.T) {
	buf := NewBuffer(50)
	buf.Append(TypeNewStory, "first", nil)
	buf.Append(TypeStoryLike, "second", nil)
	buf.Append(TypeStoryDeleted, "third", nil)

	view := buf.AdminView()
	if len(view) != 3 {
		t.Fatalf("expected 3 events, got %d", len(view))
	}
	for i := 1; i < len(view); i++ {
		if view[i-1].ID <= view[i].ID {
			t.Fatalf("expected newest-first ordering, got ids %d before %d", view[i-1].ID, view[i].ID)
		}
	}
}

func TestVisitorViewFiltersModerationEvents(t *testing.T) {
	buf := NewBuffer(50)
	buf.Append(TypeStorySubmission, "new submission", nil)
	buf.Append(TypeStoryApproved, "approved", nil)
	buf.Append(TypeStoryRejected, "rejected", nil)
	buf.Append(TypeStoryUpdate, "updated", nil)
	buf.Append(TypeNewComment, "comment", nil)

	view := buf.VisitorView()
	if len(view) != 2 {
		t.Fatalf("expected 2 visitor-visible events, got %d", len(view))
	}
	for _, event := range view {
		if event.Type != TypeStoryApproved && event.Type != TypeStoryUpdate {
			t.Errorf("visitor view leaked event type %q", event.Type)
		}
	}
	if view[0].Type != TypeStoryUpdate {
		t.Errorf("expected story_update first (newest), got %q", view[0].Type)
	}
}

func TestSubscribeReceivesAppendedEvents(t *testing.T) {
	buf := NewBuffer(50)
	ch, cancel := buf.Subscribe()
	defer cancel()

	appended := buf.Append(TypeStoryApproved, "approved", map[string]any{"storyId": "story_1"})

	select {
	case received := <-ch:
		if received.ID != appended.ID {
			t.Errorf("expected event id %d, got %d", appended.ID, received.ID)
		}
		if received.Data["storyId"] != "story_1" {
			t.Errorf("expected storyId payload, got %v", received.Data)
		}
	default:
		t.Fatal("expected subscriber to receive appended event")
	}
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	buf := NewBuffer(50)
	ch, cancel := buf.Subscribe()
	cancel()

	buf.Append(TypeNewStory, "after cancel", nil)

	if event, ok := <-ch; ok {
		t.Errorf("expected closed channel after cancel, received %+v", event)
	}
}

func TestSequentialIDs(t *testing.T) {
	buf := NewBuffer(3)
	for i := 0; i < 5; i++ {
		buf.Append(TypeStoryLike, "like", nil)
	}
	view := buf.AdminView()
	if view[0].ID != 5 {
		t.Errorf("ids should keep increasing past eviction, newest = %d", view[0].ID)
	}
	if view[len(view)-1].ID != 3 {
		t.Errorf("expected oldest retained id 3, got %d", view[len(view)-1].ID)
	}
}
