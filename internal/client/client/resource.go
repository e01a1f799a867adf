package client

import (
	"context"
	"net/http"
	"net/url"
)

// Resource is the CRUD surface of one admin collection, e.g. /api/events.
type Resource[T any] struct {
	c    *HTTPClient
	path string
}

func NewResource[T any](c *HTTPClient, path string) *Resource[T] {
	return &Resource[T]{c: c, path: path}
}

func (r *Resource[T]) Path() string { return r.path }

func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	env, err := r.c.Do(ctx, &Request{Method: http.MethodGet, Path: r.path, Query: query})
	if err != nil {
		return nil, err
	}
	var items []T
	if err := env.Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	env, err := r.c.Do(ctx, &Request{Method: http.MethodGet, Path: r.path + "/" + url.PathEscape(id)})
	if err != nil {
		return nil, err
	}
	var item T
	if err := env.Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create posts item and returns the stored version when the backend echoes
// it, item itself otherwise.
func (r *Resource[T]) Create(ctx context.Context, item *T) (*T, error) {
	return r.write(ctx, http.MethodPost, r.path, item)
}

func (r *Resource[T]) Update(ctx context.Context, id string, item *T) (*T, error) {
	return r.write(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id), item)
}

func (r *Resource[T]) write(ctx context.Context, method, path string, item *T) (*T, error) {
	env, err := r.c.Do(ctx, &Request{Method: method, Path: path, Body: item})
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return item, nil
	}
	var out T
	if err := env.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.c.Do(ctx, &Request{Method: http.MethodDelete, Path: r.path + "/" + url.PathEscape(id)})
	return err
}
