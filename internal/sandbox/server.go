// Package sandbox is an in-memory implementation of the identity, catalog
// and order services, for local development and integration tests.
package sandbox

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/sandbox/middleware"
	"github.com/example/storefront/internal/session"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type account struct {
	user         session.User
	passwordHash string
}

// Server holds all sandbox state behind one mutex
type Server struct {
	mu         sync.RWMutex
	jwtService *auth.JWTService

	accounts map[string]*account // by user ID
	byEmail  map[string]string   // lower-case email -> user ID
	revoked  map[string]bool     // token IDs

	products   []catalog.Product
	categories *catalog.CategoryIndex
	reviews    map[int64][]catalog.Review
	featured   []int64

	orders map[string][]*orders.Order // by user ID, newest first

	now func() time.Time
}

// New seeds a server from fixtures
func New(fixtures Fixtures, jwtService *auth.JWTService) (*Server, error) {
	s := &Server{
		jwtService: jwtService,
		accounts:   make(map[string]*account),
		byEmail:    make(map[string]string),
		revoked:    make(map[string]bool),
		products:   append([]catalog.Product(nil), fixtures.Products...),
		categories: catalog.NewCategoryIndex(fixtures.Categories),
		reviews:    make(map[int64][]catalog.Review),
		featured:   append([]int64(nil), fixtures.Featured...),
		orders:     make(map[string][]*orders.Order),
		now:        time.Now,
	}

	for _, r := range fixtures.Reviews {
		s.reviews[r.ProductID] = append(s.reviews[r.ProductID], r)
	}
	for _, u := range fixtures.Users {
		if _, err := s.createAccount(u.Name, u.Email, u.Password); err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}

	log.Printf("[Sandbox] Seeded %d products, %d categories, %d users",
		len(s.products), len(s.categories.All()), len(s.accounts))
	return s, nil
}

// IsRevoked reports whether a token was invalidated by logout
func (s *Server) IsRevoked(tokenID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revoked[tokenID]
}

// Handler returns the HTTP API rooted at /api
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger)

	api := router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/login", s.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", s.Register).Methods(http.MethodPost)
	api.HandleFunc("/products", s.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/search", s.SearchProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/featured", s.FeaturedProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}", s.GetProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}/reviews", s.ListReviews).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.ListCategories).Methods(http.MethodGet)

	// Protected routes; registered last so a method mismatch on a public
	// route still falls through to them.
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(s.jwtService, s))
	protected.HandleFunc("/auth/logout", s.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/verify", s.Verify).Methods(http.MethodGet)
	protected.HandleFunc("/auth/profile", s.GetProfile).Methods(http.MethodGet)
	protected.HandleFunc("/auth/profile", s.UpdateProfile).Methods(http.MethodPut)
	protected.HandleFunc("/products/{id:[0-9]+}/reviews", s.CreateReview).Methods(http.MethodPost)
	protected.HandleFunc("/orders", s.PlaceOrder).Methods(http.MethodPost)
	protected.HandleFunc("/orders", s.ListOrders).Methods(http.MethodGet)
	protected.HandleFunc("/orders/{id}", s.GetOrder).Methods(http.MethodGet)
	protected.HandleFunc("/orders/{id}/cancel", s.CancelOrder).Methods(http.MethodPost)
	protected.HandleFunc("/orders/{id}/status", s.GetOrderStatus).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSONError(w, "Not found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return router
}

func (s *Server) issueToken(u session.User) (string, error) {
	token, _, err := s.jwtService.GenerateToken(uuid.New().String(), u.ID, u.Email, u.Name)
	return token, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"message": message})
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
