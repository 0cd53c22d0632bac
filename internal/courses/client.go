// Package courses wraps the read-only course listing endpoints. It
// consumes session state indirectly through the API client's bearer header
// and never mutates it.
package courses

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/abenov/coursehub/internal/domain"
)

// apiDoer is the slice of api.Client this package needs.
type apiDoer interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}

type Client struct {
	api apiDoer
}

func NewClient(api apiDoer) *Client {
	return &Client{api: api}
}

type ListOptions struct {
	Page     int
	PageSize int
	Category string
	Level    string
	Sort     string
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("limit", strconv.Itoa(o.PageSize))
	}
	if o.Category != "" {
		q.Set("category", o.Category)
	}
	if o.Level != "" {
		q.Set("level", o.Level)
	}
	if o.Sort != "" {
		q.Set("sort", o.Sort)
	}
	return q
}

type listEnvelope struct {
	Data struct {
		Courses    []domain.Course `json:"courses"`
		Total      int             `json:"total"`
		Page       int             `json:"page"`
		PageSize   int             `json:"limit"`
		TotalPages int             `json:"totalPages"`
	} `json:"data"`
}

func (e listEnvelope) page() *domain.Page[domain.Course] {
	return &domain.Page[domain.Course]{
		Items:      e.Data.Courses,
		Total:      e.Data.Total,
		Page:       e.Data.Page,
		PageSize:   e.Data.PageSize,
		TotalPages: e.Data.TotalPages,
	}
}

func (c *Client) List(ctx context.Context, opts ListOptions) (*domain.Page[domain.Course], error) {
	var env listEnvelope
	if err := c.api.Do(ctx, http.MethodGet, "/courses", opts.query(), nil, &env); err != nil {
		return nil, err
	}
	return env.page(), nil
}

// Search passes the query through to the server; there is no local ranking.
func (c *Client) Search(ctx context.Context, term string, opts ListOptions) (*domain.Page[domain.Course], error) {
	q := opts.query()
	q.Set("q", term)

	var env listEnvelope
	if err := c.api.Do(ctx, http.MethodGet, "/courses/search", q, nil, &env); err != nil {
		return nil, err
	}
	return env.page(), nil
}

func (c *Client) Get(ctx context.Context, slug string) (*domain.Course, error) {
	var env struct {
		Data struct {
			Course domain.Course `json:"course"`
		} `json:"data"`
	}
	if err := c.api.Do(ctx, http.MethodGet, "/courses/"+slug, nil, nil, &env); err != nil {
		return nil, err
	}
	return &env.Data.Course, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var env struct {
		Data struct {
			Categories []string `json:"categories"`
		} `json:"data"`
	}
	if err := c.api.Do(ctx, http.MethodGet, "/courses/categories", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Data.Categories, nil
}
