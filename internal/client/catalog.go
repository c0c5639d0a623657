package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/storefront/internal/catalog"
)

// ProductQuery are the listing parameters of the products endpoint
type ProductQuery struct {
	Page     int
	Size     int
	Sort     string
	Order    string
	Category string
	Search   string
}

// DefaultProductQuery is the first page of twelve, newest first
func DefaultProductQuery() ProductQuery {
	return ProductQuery{Page: 0, Size: 12, Sort: "id", Order: "DESC"}
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

// Catalog is the catalog service client
type Catalog struct {
	c *Client
}

func NewCatalog(c *Client) *Catalog {
	return &Catalog{c: c}
}

func (s *Catalog) Products(ctx context.Context, q ProductQuery) (catalog.Page, error) {
	var page catalog.Page
	err := s.c.do(ctx, http.MethodGet, "/products", q.values(), nil, &page)
	return page, err
}

// AllProducts walks every page of the listing for q
func (s *Catalog) AllProducts(ctx context.Context, q ProductQuery) ([]catalog.Product, error) {
	if q.Size <= 0 {
		q.Size = 100
	}
	var all []catalog.Product
	for {
		page, err := s.Products(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Products...)
		if len(page.Products) == 0 || len(all) >= page.TotalItems {
			return all, nil
		}
		q.Page++
	}
}

func (s *Catalog) Product(ctx context.Context, id int64) (catalog.Product, error) {
	var p catalog.Product
	err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, nil, &p)
	if IsStatus(err, http.StatusNotFound) {
		return p, fmt.Errorf("%w: %d", catalog.ErrProductNotFound, id)
	}
	return p, err
}

func (s *Catalog) Search(ctx context.Context, term string, q ProductQuery) (catalog.Page, error) {
	q.Search = term
	var page catalog.Page
	err := s.c.do(ctx, http.MethodGet, "/products/search", q.values(), nil, &page)
	return page, err
}

func (s *Catalog) Categories(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	err := s.c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories)
	return categories, err
}

func (s *Catalog) Featured(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	err := s.c.do(ctx, http.MethodGet, "/products/featured", nil, nil, &products)
	return products, err
}

func (s *Catalog) Reviews(ctx context.Context, productID int64) ([]catalog.Review, error) {
	var reviews []catalog.Review
	err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d/reviews", productID), nil, nil, &reviews)
	return reviews, err
}

func (s *Catalog) CreateReview(ctx context.Context, productID int64, input catalog.ReviewInput) (catalog.Review, error) {
	var review catalog.Review
	if err := input.Validate(); err != nil {
		return review, err
	}
	err := s.c.do(ctx, http.MethodPost, fmt.Sprintf("/products/%d/reviews", productID), nil, input, &review)
	return review, err
}
