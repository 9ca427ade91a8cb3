package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"cinematch/internal/handler"
)

// newTestRouter builds the full route tree with zero-value handlers. Route
// registration itself must not panic (chi rejects conflicting wildcards at
// mount time), and requests that fail before reaching a handler are safe to
// exercise.
func newTestRouter() http.Handler {
	return NewRouter(RouterConfig{
		AuthHandler:      &handler.AuthHandler{},
		UserHandler:      &handler.UserHandler{},
		FollowHandler:    &handler.FollowHandler{},
		MovieHandler:     &handler.MovieHandler{},
		ForumHandler:     &handler.ForumHandler{},
		CommunityHandler: &handler.CommunityHandler{},
		EventHandler:     &handler.EventHandler{},
		JWTSecret:        "test-secret",
	})
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter()

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", w.Code)
	}
}

func TestRouter_ProtectedRoutesRejectAnonymous(t *testing.T) {
	router := newTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/me"},
		{http.MethodPost, "/users/ana/follow"},
		{http.MethodPost, "/movies/1b4e28b4-1a1a-4b01-9f1e-000000000000/rate"},
		{http.MethodGet, "/communities"},
		{http.MethodGet, "/events"},
		{http.MethodPost, "/polls/1/vote"},
	}

	for _, tt := range paths {
		r := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without a token = %d, want 401", tt.method, tt.path, w.Code)
		}
	}
}
