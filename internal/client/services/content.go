package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/evento/internal/client/client"
	"github.com/dmitrijs2005/evento/internal/client/models"
)

var (
	ErrEmptyTitle    = errors.New("title is required")
	ErrEmptyContent  = errors.New("content is required")
	ErrNegativePrice = errors.New("price must not be negative")
)

// ContentService groups the admin collections.
type ContentService struct {
	Events   *client.Resource[models.Event]
	Blogs    *client.Resource[models.Blog]
	Contacts *client.Resource[models.Contact]
	Users    *client.Resource[models.Account]
	Orders   *client.Resource[models.Order]
}

func NewContentService(c *client.HTTPClient) *ContentService {
	return &ContentService{
		Events:   client.NewResource[models.Event](c, "/api/events"),
		Blogs:    client.NewResource[models.Blog](c, "/api/blogs"),
		Contacts: client.NewResource[models.Contact](c, "/api/contacts"),
		Users:    client.NewResource[models.Account](c, "/api/users"),
		Orders:   client.NewResource[models.Order](c, "/api/order"),
	}
}

func (s *ContentService) CreateEvent(ctx context.Context, e *models.Event) (*models.Event, error) {
	if strings.TrimSpace(e.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if e.Price < 0 {
		return nil, ErrNegativePrice
	}
	return s.Events.Create(ctx, e)
}

func (s *ContentService) CreateBlog(ctx context.Context, b *models.Blog) (*models.Blog, error) {
	if strings.TrimSpace(b.Title) == "" {
		return nil, ErrEmptyTitle
	}
	if strings.TrimSpace(b.Content) == "" {
		return nil, ErrEmptyContent
	}
	return s.Blogs.Create(ctx, b)
}
