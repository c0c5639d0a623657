package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/storefront/internal/orders"
)

// Orders is the order service client
type Orders struct {
	c *Client
}

func NewOrders(c *Client) *Orders {
	return &Orders{c: c}
}

func (s *Orders) Create(ctx context.Context, req orders.Request) (orders.Confirmation, error) {
	var conf orders.Confirmation
	err := s.c.do(ctx, http.MethodPost, "/orders", nil, req, &conf)
	return conf, err
}

func (s *Orders) List(ctx context.Context, page, size int) (orders.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	var result orders.Page
	err := s.c.do(ctx, http.MethodGet, "/orders", q, nil, &result)
	return result, err
}

func (s *Orders) Get(ctx context.Context, id string) (orders.Order, error) {
	var o orders.Order
	err := s.c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &o)
	if IsStatus(err, http.StatusNotFound) {
		return o, fmt.Errorf("%w: %s", orders.ErrOrderNotFound, id)
	}
	return o, err
}

func (s *Orders) Cancel(ctx context.Context, id string) (orders.Order, error) {
	var o orders.Order
	err := s.c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(id)+"/cancel", nil, nil, &o)
	if IsStatus(err, http.StatusConflict) {
		return o, fmt.Errorf("%w: %w", orders.ErrNotCancellable, err)
	}
	return o, err
}

func (s *Orders) Status(ctx context.Context, id string) (orders.StatusInfo, error) {
	var info orders.StatusInfo
	err := s.c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id)+"/status", nil, nil, &info)
	return info, err
}
