// Package events holds the process-local activity feed: a fixed-capacity
// ring of recent events consumed by the admin dashboard and the visitor UI.
// It is not persisted and resets on restart; its purpose is "recent
// activity", not an audit log.
package events

import (
	"sync"
	"time"
)

const (
	TypeNewStory        = "new_story"
	TypeStoryUpdate     = "story_update"
	TypeStoryDeleted    = "story_deleted"
	TypeStoryLike       = "story_like"
	TypeNewComment      = "new_comment"
	TypeStorySubmission = "story_submission"
	TypeStoryApproved   = "story_approved"
	TypeStoryRejected   = "story_rejected"
)

// visitorVisible is the allow-list of event types exposed to anonymous
// visitors. Moderation-internal events never leave the admin view.
var visitorVisible = map[string]struct{}{
	TypeStoryApproved: {},
	TypeStoryUpdate:   {},
}

type Event struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Buffer is a mutex-guarded circular buffer. When full, the oldest entry
// is evicted. Subscribers receive appended events on buffered channels;
// slow subscribers miss events rather than block the writer.
type Buffer struct {
	mu      sync.Mutex
	entries []Event
	start   int
	size    int
	nextID  int64
	subs    map[int64]chan Event
	nextSub int64
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 50
	}
	return &Buffer{
		entries: make([]Event, capacity),
		nextID:  1,
		subs:    make(map[int64]chan Event),
	}
}

// Append records an event with a generated sequential id and a server
// timestamp, evicting the oldest entry when the buffer is full.
func (b *Buffer) Append(eventType, message string, data map[string]any) Event {
	b.mu.Lock()
	event := Event{
		ID:        b.nextID,
		Type:      eventType,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
	b.nextID++

	if b.size < len(b.entries) {
		b.entries[(b.start+b.size)%len(b.entries)] = event
		b.size++
	} else {
		b.entries[b.start] = event
		b.start = (b.start + 1) % len(b.entries)
	}

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	b.mu.Unlock()
	return event
}

// AdminView returns every buffered event, newest first.
func (b *Buffer) AdminView() []Event {
	return b.snapshot(func(Event) bool { return true })
}

// VisitorView returns the visitor-safe subset, newest first.
func (b *Buffer) VisitorView() []Event {
	return b.snapshot(func(e Event) bool {
		_, ok := visitorVisible[e.Type]
		return ok
	})
}

// VisitorVisible reports whether an event type may be shown to visitors.
func VisitorVisible(eventType string) bool {
	_, ok := visitorVisible[eventType]
	return ok
}

func (b *Buffer) snapshot(keep func(Event) bool) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Event, 0, b.size)
	// Walk backwards from the newest entry so the result is newest-first.
	for i := b.size - 1; i >= 0; i-- {
		event := b.entries[(b.start+i)%len(b.entries)]
		if keep(event) {
			out = append(out, event)
		}
	}
	return out
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Subscribe registers a listener for future events. The returned cancel
// function must be called to release the subscription.
func (b *Buffer) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	ch := make(chan Event, 16)
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}
