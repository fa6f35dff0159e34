package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/adminauth"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/auth"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/events"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/export"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/search"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}
		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}
		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) == 0 || parts[0] != "api" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	parts = parts[1:]

	switch {
	// Admin session
	case r.Method == http.MethodPost && pathIs(parts, "admin", "login"):
		s.handleAdminLogin(w, r)
	case r.Method == http.MethodPost && pathIs(parts, "admin", "change-password"):
		s.handleChangePassword(w, r)

	// Stories
	case r.Method == http.MethodGet && pathIs(parts, "stories"):
		s.handleListStories(w, r)
	case r.Method == http.MethodPost && pathIs(parts, "stories"):
		s.handleCreateStory(w, r)
	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "stories":
		s.handleGetStory(w, r, parts[1])
	case r.Method == http.MethodPut && len(parts) == 2 && parts[0] == "stories":
		s.handleUpdateStory(w, r, parts[1])
	case r.Method == http.MethodDelete && len(parts) == 2 && parts[0] == "stories":
		s.handleDeleteStory(w, r, parts[1])
	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "stories" && parts[2] == "like":
		s.handleLikeStory(w, r, parts[1])
	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "stories" && parts[2] == "history":
		s.handleStoryHistory(w, r, parts[1])
	case r.Method == http.MethodPost && len(parts) == 3 && parts[0] == "stories" && parts[2] == "export":
		s.handleExportStory(w, r, parts[1])

	// Comments
	case r.Method == http.MethodGet && pathIs(parts, "comments"):
		s.handleListComments(w, r)
	case r.Method == http.MethodPost && pathIs(parts, "comments"):
		s.handleCreateComment(w, r)
	case r.Method == http.MethodDelete && len(parts) == 2 && parts[0] == "comments":
		s.handleDeleteComment(w, r, parts[1])
	case r.Method == http.MethodGet && pathIs(parts, "admin", "comments"):
		s.handleAdminComments(w, r)

	// Submissions
	case r.Method == http.MethodPost && pathIs(parts, "submit-story"):
		s.handleSubmitStory(w, r)
	case r.Method == http.MethodGet && pathIs(parts, "submitted-stories"):
		s.handleListSubmissions(w, r)
	case r.Method == http.MethodPut && len(parts) == 2 && parts[0] == "submitted-stories":
		s.handleUpdateSubmission(w, r, parts[1])
	case r.Method == http.MethodDelete && len(parts) == 2 && parts[0] == "submitted-stories":
		s.handleDeleteSubmission(w, r, parts[1])

	// Visitors, events, analytics
	case r.Method == http.MethodGet && pathIs(parts, "users"):
		s.handleListUsers(w, r)
	case r.Method == http.MethodGet && pathIs(parts, "realtime-visitors"):
		s.handleRealtimeVisitors(w, r)
	case r.Method == http.MethodGet && pathIs(parts, "realtime-events"):
		writeJSON(w, http.StatusOK, map[string]any{"events": s.service.VisitorEvents()})
	case r.Method == http.MethodGet && pathIs(parts, "events", "stream"):
		s.handleEventStream(w, r, false)
	case r.Method == http.MethodGet && pathIs(parts, "admin", "realtime-events"):
		s.handleAdminEvents(w, r)
	case r.Method == http.MethodGet && pathIs(parts, "admin", "events", "stream"):
		s.handleAdminEventStream(w, r)
	case r.Method == http.MethodGet && pathIs(parts, "analytics"):
		s.handleAnalytics(w, r)

	// Search
	case r.Method == http.MethodGet && pathIs(parts, "search"):
		s.handleSearch(w, r)

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

// Session handlers

func (s *HTTPServer) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	session, err := s.service.AdminLogin(r.Context(), body.Username, body.Password)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      session.Token,
		"username":   session.Username,
		"expires_at": session.ExpiresAt,
	})
}

func (s *HTTPServer) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if err := s.service.ChangePassword(r.Context(), session, body.CurrentPassword, body.NewPassword); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Story handlers

// handleListStories degrades to an empty list when the store errors so
// the public site keeps rendering.
func (s *HTTPServer) handleListStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.service.ListStories(r.Context())
	if err != nil {
		log.Printf("list stories degraded to empty: %v", err)
		writeJSON(w, http.StatusOK, []store.Story{})
		return
	}
	writeJSON(w, http.StatusOK, stories)
}

func (s *HTTPServer) handleGetStory(w http.ResponseWriter, r *http.Request, id string) {
	story, err := s.service.GetStory(r.Context(), id)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

func (s *HTTPServer) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	var input CreateStoryInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	story, err := s.service.CreateStory(r.Context(), session, input)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusCreated, story)
}

func (s *HTTPServer) handleUpdateStory(w http.ResponseWriter, r *http.Request, id string) {
	session, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	patch := map[string]any{}
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	// Immutable bookkeeping fields are never client-writable.
	for _, field := range []string{"id", "created_at", "views", "likes", "comments_count"} {
		delete(patch, field)
	}
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "No updatable fields in body", nil)
		return
	}
	story, err := s.service.UpdateStory(r.Context(), session, id, patch)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, story)
}

func (s *HTTPServer) handleDeleteStory(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	if err := s.service.DeleteStory(r.Context(), id); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleLikeStory(w http.ResponseWriter, r *http.Request, id string) {
	story, err := s.service.LikeStory(r.Context(), id)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": story.ID, "likes": story.Likes})
}

func (s *HTTPServer) handleStoryHistory(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	limit := queryInt(r, "limit", 0)
	history, err := s.service.StoryHistory(r.Context(), id, limit)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"story_id": id, "history": history})
}

func (s *HTTPServer) handleExportStory(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	format := export.Format(r.URL.Query().Get("format"))
	result, err := s.service.ExportStory(r.Context(), id, format)
	if err != nil {
		if errors.Is(err, export.ErrPDFDependencyMissing) {
			writeError(w, http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "PDF renderer not installed", nil)
			return
		}
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// Comment handlers

// handleListComments is public and degrades to an empty list on store
// errors. Private comments are never included here.
func (s *HTTPServer) handleListComments(w http.ResponseWriter, r *http.Request) {
	storyID := r.URL.Query().Get("storyId")
	comments, err := s.service.ListComments(r.Context(), storyID, false)
	if err != nil {
		log.Printf("list comments degraded to empty: %v", err)
		writeJSON(w, http.StatusOK, []store.Comment{})
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *HTTPServer) handleAdminComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	storyID := r.URL.Query().Get("storyId")
	comments, err := s.service.ListComments(r.Context(), storyID, true)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *HTTPServer) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var input CreateCommentInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	comment, err := s.service.CreateComment(r.Context(), input)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *HTTPServer) handleDeleteComment(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	if err := s.service.DeleteComment(r.Context(), id); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Submission handlers

func (s *HTTPServer) handleSubmitStory(w http.ResponseWriter, r *http.Request) {
	var input SubmitStoryInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	submission, err := s.service.SubmitStory(r.Context(), input)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusCreated, submission)
}

func (s *HTTPServer) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	submissions, err := s.service.ListSubmittedStories(r.Context())
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}

func (s *HTTPServer) handleUpdateSubmission(w http.ResponseWriter, r *http.Request, id string) {
	session, ok := s.requireAdmin(w, r)
	if !ok {
		return
	}
	patch := map[string]any{}
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	for _, field := range []string{"id", "submitted_at"} {
		delete(patch, field)
	}
	if len(patch) == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "No updatable fields in body", nil)
		return
	}
	submission, err := s.service.UpdateSubmission(r.Context(), session, id, patch)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, submission)
}

func (s *HTTPServer) handleDeleteSubmission(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	if err := s.service.DeleteSubmission(r.Context(), id); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Visitor, event, analytics handlers

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	visitors, err := s.service.ListUsers(r.Context())
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, visitors)
}

func (s *HTTPServer) handleRealtimeVisitors(w http.ResponseWriter, r *http.Request) {
	count, names, err := s.service.RealtimeVisitors(r.Context())
	if err != nil {
		log.Printf("realtime visitors degraded to empty: %v", err)
		writeJSON(w, http.StatusOK, map[string]any{"count": 0, "visitors": []string{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": count, "visitors": names})
}

func (s *HTTPServer) handleAdminEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": s.service.AdminEvents()})
}

func (s *HTTPServer) handleAdminEventStream(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	s.handleEventStream(w, r, true)
}

// handleEventStream pushes buffered events and then live ones over SSE.
// Visitor streams only carry the public event types.
func (s *HTTPServer) handleEventStream(w http.ResponseWriter, r *http.Request, admin bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Streaming unsupported", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	var backlog []events.Event
	if admin {
		backlog = s.service.AdminEvents()
	} else {
		backlog = s.service.VisitorEvents()
	}
	for _, evt := range backlog {
		writeSSEEvent(w, evt)
	}
	flusher.Flush()

	ch, cancel := s.service.SubscribeEvents()
	defer cancel()

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case evt, open := <-ch:
			if !open {
				return
			}
			if !admin && !events.VisitorVisible(evt.Type) {
				continue
			}
			writeSSEEvent(w, evt)
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, evt events.Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", evt.ID, evt.Type, payload)
}

func (s *HTTPServer) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	analytics, err := s.service.Analytics(r.Context())
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// Search handler

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	includePrivate := false
	if token := bearerToken(r); token != "" {
		if _, err := s.service.SessionFromToken(r.Context(), token); err == nil {
			includePrivate = true
		}
	}

	q := search.Query{
		Text:           r.URL.Query().Get("q"),
		FilterType:     search.ResultType(r.URL.Query().Get("type")),
		Limit:          queryInt(r, "limit", 20),
		Offset:         queryInt(r, "offset", 0),
		IncludePrivate: includePrivate,
	}
	response, err := s.service.Search(q)
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// Middleware and helpers

func (s *HTTPServer) requireAdmin(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	return session, true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush lets SSE handlers stream through the recorder.
func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func pathIs(parts []string, want ...string) bool {
	if len(parts) != len(want) {
		return false
	}
	for i := range want {
		if parts[i] != want[i] {
			return false
		}
	}
	return true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, adminauth.ErrInvalidCredentials) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password", nil
	}
	if errors.Is(err, adminauth.ErrWeakPassword) {
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
