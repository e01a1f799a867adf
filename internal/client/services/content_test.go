package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/evento/internal/client/client"
	"github.com/dmitrijs2005/evento/internal/client/models"
)

func newContent(t *testing.T, h http.HandlerFunc) (*ContentService, *int) {
	t.Helper()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := client.NewHTTPClient(client.Options{BaseURL: srv.URL})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return NewContentService(c), &hits
}

func TestContentService_Paths(t *testing.T) {
	s, _ := newContent(t, func(w http.ResponseWriter, r *http.Request) {})

	assert.Equal(t, "/api/events", s.Events.Path())
	assert.Equal(t, "/api/blogs", s.Blogs.Path())
	assert.Equal(t, "/api/contacts", s.Contacts.Path())
	assert.Equal(t, "/api/users", s.Users.Path())
	assert.Equal(t, "/api/order", s.Orders.Path())
}

func TestCreateEvent(t *testing.T) {
	var got models.Event
	s, hits := newContent(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"_id": "e1", "title": got.Title}})
	})
	ctx := context.Background()

	_, err := s.CreateEvent(ctx, &models.Event{Title: " "})
	require.ErrorIs(t, err, ErrEmptyTitle)
	_, err = s.CreateEvent(ctx, &models.Event{Title: "Jazz", Price: -1})
	require.ErrorIs(t, err, ErrNegativePrice)
	assert.Zero(t, *hits)

	e, err := s.CreateEvent(ctx, &models.Event{Title: "Jazz", Price: 10})
	require.NoError(t, err)
	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, "Jazz", got.Title)
}

func TestCreateBlog_Validation(t *testing.T) {
	s, hits := newContent(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := context.Background()

	_, err := s.CreateBlog(ctx, &models.Blog{Content: "x"})
	require.ErrorIs(t, err, ErrEmptyTitle)
	_, err = s.CreateBlog(ctx, &models.Blog{Title: "x"})
	require.ErrorIs(t, err, ErrEmptyContent)
	assert.Zero(t, *hits)
}
