// Package exam exposes the PSC backend resources as typed calls over an
// api.Doer. Every method returns *api.Error on failure.
package exam

import (
	"context"

	"github.com/pscapp/psc/internal/api"
)

// Client is a typed facade over the backend endpoints.
type Client struct {
	doer api.Doer
}

// New wraps d. d is usually an *api.Client.
func New(d api.Doer) *Client {
	return &Client{doer: d}
}

// list fetches one page of a list endpoint.
func list[T any](ctx context.Context, c *Client, path string, q api.Query) (*api.Page[T], error) {
	page, err := api.Fetch[api.Page[T]](ctx, c.doer, api.Get(api.WithQuery(path, q)))
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = &api.Page[T]{}
	}
	return page, nil
}

// one fetches a single object. A success with no body is reported as nil.
func one[T any](ctx context.Context, c *Client, req *api.Request) (*T, error) {
	return api.Fetch[T](ctx, c.doer, req)
}
