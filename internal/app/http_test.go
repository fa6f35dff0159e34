package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/adminauth"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/events"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/presence"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/store"
)

// failingStore wraps memStore to simulate database trouble on the
// public listing paths.
type failingStore struct {
	*memStore
}

func (f *failingStore) ListStories(context.Context) ([]store.Story, error) {
	return nil, errors.New("connection refused")
}

func (f *failingStore) ListComments(context.Context, string) ([]store.Comment, error) {
	return nil, errors.New("connection refused")
}

func newTestHandler(t *testing.T, ds dataStore, adminStore adminauth.AdminStore) (http.Handler, *Service) {
	t.Helper()
	cfg := testConfig()
	cfg.AdminUsername = "ArunKumar"
	cfg.AdminPassword = "correct horse"
	svc := NewService(cfg, Deps{
		Store:    ds,
		Events:   events.NewBuffer(50),
		Presence: presence.NewMemoryTracker(time.Minute),
		Auth:     adminauth.NewService(adminStore),
	})
	if err := svc.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return NewHTTPServer(svc, "*").Handler(), svc
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "ArunKumar",
		"password": "correct horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Token == "" {
		t.Fatalf("login body = %s (%v)", rec.Body.String(), err)
	}
	return body.Token
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body = %s (%v)", rec.Body.String(), err)
	}
	return body.Code
}

func TestHealthAndReady(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)

	rec := doJSON(t, handler, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)

	rec := doJSON(t, handler, http.MethodGet, "/api/nope", "", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "NOT_FOUND" {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, handler, http.MethodGet, "/other/stories", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("non-api status = %d", rec.Code)
	}
}

func TestAdminEndpointsRejectMissingOrBadToken(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)

	paths := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/stories"},
		{http.MethodPut, "/api/stories/x"},
		{http.MethodDelete, "/api/stories/x"},
		{http.MethodGet, "/api/submitted-stories"},
		{http.MethodPut, "/api/submitted-stories/x"},
		{http.MethodDelete, "/api/submitted-stories/x"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/api/analytics"},
		{http.MethodGet, "/api/admin/comments"},
		{http.MethodGet, "/api/admin/realtime-events"},
		{http.MethodDelete, "/api/comments/x"},
		{http.MethodPost, "/api/admin/change-password"},
		{http.MethodGet, "/api/stories/x/history"},
		{http.MethodPost, "/api/stories/x/export"},
	}
	for _, p := range paths {
		rec := doJSON(t, handler, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d", p.method, p.path, rec.Code)
		}
		rec = doJSON(t, handler, p.method, p.path, "garbage-token", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with bad token: status = %d", p.method, p.path, rec.Code)
		}
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)

	rec := doJSON(t, handler, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "ArunKumar",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "UNAUTHORIZED" {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitAndModerateOverHTTP(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)
	token := loginToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/submit-story", "", SubmitStoryInput{
		Title: "My Tale", Author: "Maya", Content: "<p>hello</p>",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var sub store.SubmittedStory
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("submit body: %v", err)
	}
	if sub.Status != store.SubmissionStatusPending {
		t.Fatalf("status = %s", sub.Status)
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/submitted-stories/"+sub.ID, token,
		map[string]any{"status": store.SubmissionStatusApproved})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/stories", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var stories []store.Story
	if err := json.Unmarshal(rec.Body.Bytes(), &stories); err != nil {
		t.Fatalf("list body: %v", err)
	}
	if len(stories) != 1 || stories[0].Title != "My Tale" {
		t.Fatalf("stories = %+v", stories)
	}
}

func TestApproveEmptySubmissionReturns400(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)
	token := loginToken(t, handler)

	sub, _ := ms.CreateSubmittedStory(context.Background(), store.SubmittedStory{Title: "t", Content: "   "})
	rec := doJSON(t, handler, http.MethodPut, "/api/submitted-stories/"+sub.ID, token,
		map[string]any{"status": store.SubmissionStatusApproved})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "VALIDATION_ERROR" {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestPublicListingsDegradeToEmpty(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, &failingStore{ms}, ms)

	rec := doJSON(t, handler, http.MethodGet, "/api/stories", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stories status = %d", rec.Code)
	}
	var stories []store.Story
	if err := json.Unmarshal(rec.Body.Bytes(), &stories); err != nil || len(stories) != 0 {
		t.Fatalf("stories body = %s (%v)", rec.Body.String(), err)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/comments", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("comments status = %d", rec.Code)
	}
	var comments []store.Comment
	if err := json.Unmarshal(rec.Body.Bytes(), &comments); err != nil || len(comments) != 0 {
		t.Fatalf("comments body = %s (%v)", rec.Body.String(), err)
	}
}

func TestUpdateStoryStripsImmutableFields(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)
	token := loginToken(t, handler)

	story, _ := ms.CreateStory(context.Background(), store.Story{Title: "t", Content: "c"})

	// A patch that only tries to rewrite bookkeeping fields is rejected.
	rec := doJSON(t, handler, http.MethodPut, "/api/stories/"+story.ID, token,
		map[string]any{"views": 9999, "likes": 9999, "id": "hijack"})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "VALIDATION_ERROR" {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/stories/"+story.ID, token,
		map[string]any{"title": "renamed", "views": 9999})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got, _ := ms.GetStory(context.Background(), story.ID)
	if got.Title != "renamed" || got.Views != 0 {
		t.Fatalf("story = %+v", got)
	}
}

func TestLikeEndpointIsPublic(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)

	story, _ := ms.CreateStory(context.Background(), store.Story{Title: "t", Content: "c"})
	rec := doJSON(t, handler, http.MethodPost, "/api/stories/"+story.ID+"/like", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Likes int `json:"likes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Likes != 1 {
		t.Fatalf("body = %s (%v)", rec.Body.String(), err)
	}
}

func TestRealtimeEventsFilterByAudience(t *testing.T) {
	ms := newMemStore()
	handler, svc := newTestHandler(t, ms, ms)
	token := loginToken(t, handler)

	story, _ := ms.CreateStory(context.Background(), store.Story{Title: "t", Content: "c"})
	if _, err := svc.CreateComment(context.Background(), CreateCommentInput{
		StoryID: story.ID, VisitorName: "Maya", Text: "hi",
	}); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	var payload struct {
		Events []events.Event `json:"events"`
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/realtime-events", "", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("visitor body: %v", err)
	}
	if len(payload.Events) != 0 {
		t.Fatalf("visitor events = %+v, new_comment should be hidden", payload.Events)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/admin/realtime-events", token, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("admin body: %v", err)
	}
	if len(payload.Events) != 1 || payload.Events[0].Type != events.TypeNewComment {
		t.Fatalf("admin events = %+v", payload.Events)
	}
}

func TestSearchUnavailableWithoutBackend(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)

	rec := doJSON(t, handler, http.MethodGet, "/api/search?q=hello", "", nil)
	if rec.Code != http.StatusServiceUnavailable || errorCode(t, rec) != "SEARCH_UNAVAILABLE" {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestChangePasswordFlow(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)
	token := loginToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/admin/change-password", token, map[string]string{
		"current_password": "correct horse",
		"new_password":     "battery staple",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("change status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "ArunKumar", "password": "correct horse",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("old password still works: %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodPost, "/api/admin/login", "", map[string]string{
		"username": "ArunKumar", "password": "battery staple",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("new password rejected: %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestShortNewPasswordReturnsValidationError(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)
	token := loginToken(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/admin/change-password", token, map[string]string{
		"current_password": "correct horse",
		"new_password":     "short",
	})
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "VALIDATION_ERROR" {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCORSAndRequestIDHeaders(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)

	req := httptest.NewRequest(http.MethodOptions, "/api/stories", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing generated request id")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("request id = %q, want passthrough", got)
	}
}

func TestGetMissingStoryReturns404(t *testing.T) {
	ms := newMemStore()
	handler, _ := newTestHandler(t, ms, ms)

	rec := doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/stories/%s", "missing"), "", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "NOT_FOUND" {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
