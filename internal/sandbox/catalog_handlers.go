package sandbox

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/sandbox/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

func pageParams(r *http.Request) (page, size int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	if page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func paginate[T any](items []T, page, size int) []T {
	start := page * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// queryProducts applies the listing parameters: category (ID or name),
// search term, then sort by id, price or name in ASC or DESC order.
func (s *Server) queryProducts(r *http.Request) []catalog.Product {
	q := r.URL.Query()

	s.mu.RLock()
	c := catalog.Criteria{
		Search:       q.Get("search"),
		Category:     s.categories.Label(q.Get("category")),
		PriceCeiling: maxPrice(s.products),
		Sort:         catalog.SortPopular,
	}
	products := catalog.Apply(s.products, c)
	s.mu.RUnlock()

	desc := strings.EqualFold(q.Get("order"), "DESC")
	var less func(a, b catalog.Product) bool
	switch strings.ToLower(q.Get("sort")) {
	case "price":
		less = func(a, b catalog.Product) bool { return a.Price.LessThan(b.Price) }
	case "name":
		less = func(a, b catalog.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		less = func(a, b catalog.Product) bool { return a.ID < b.ID }
	}
	sort.SliceStable(products, func(i, j int) bool {
		if desc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
	return products
}

func maxPrice(products []catalog.Product) decimal.Decimal {
	ceiling := catalog.DefaultPriceCeiling
	for _, p := range products {
		if p.Price.GreaterThan(ceiling) {
			ceiling = p.Price
		}
	}
	return ceiling
}

func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := s.queryProducts(r)
	page, size := pageParams(r)

	respondJSON(w, http.StatusOK, catalog.Page{
		Products:   paginate(products, page, size),
		Page:       page,
		Size:       size,
		TotalItems: len(products),
	})
}

// SearchProducts is ListProducts with a required search term
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(r.URL.Query().Get("search")) == "" {
		respondJSONError(w, "Search term is required", http.StatusBadRequest)
		return
	}
	s.ListProducts(w, r)
}

func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	p, ok := s.findProduct(id)
	if !ok {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) findProduct(id int64) (catalog.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return catalog.Product{}, false
}

func (s *Server) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	featured := make([]catalog.Product, 0, len(s.featured))
	for _, id := range s.featured {
		if p, ok := s.findProduct(id); ok {
			featured = append(featured, p)
		}
	}
	respondJSON(w, http.StatusOK, featured)
}

func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.categories.All())
}

func (s *Server) ListReviews(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if _, ok := s.findProduct(id); !ok {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}

	s.mu.RLock()
	reviews := append([]catalog.Review{}, s.reviews[id]...)
	s.mu.RUnlock()

	respondJSON(w, http.StatusOK, reviews)
}

func (s *Server) CreateReview(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if _, ok := s.findProduct(id); !ok {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}

	var req catalog.ReviewInput
	if err := decodeBody(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		respondJSONError(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())
	review := catalog.Review{
		ID:        uuid.New().String(),
		ProductID: id,
		UserName:  claims.Name,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: s.now().UTC().Format("2006-01-02"),
	}

	s.mu.Lock()
	s.reviews[id] = append(s.reviews[id], review)
	s.mu.Unlock()

	respondJSON(w, http.StatusCreated, review)
}
