package sandbox

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// FixtureUser is a seeded account; the password is hashed at load
type FixtureUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Fixtures seed the sandbox catalog and accounts
type Fixtures struct {
	Categories []catalog.Category `json:"categories"`
	Products   []catalog.Product  `json:"products"`
	Reviews    []catalog.Review   `json:"reviews"`
	Featured   []int64            `json:"featured"`
	Users      []FixtureUser      `json:"users"`
}

// LoadFixtures reads fixtures from a JSON file
func LoadFixtures(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, fmt.Errorf("failed to read fixtures: %w", err)
	}
	var f Fixtures
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixtures{}, fmt.Errorf("failed to parse fixtures %s: %w", path, err)
	}
	return f, nil
}

func usd(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultFixtures is a small catalog used when no fixture file is given
func DefaultFixtures() Fixtures {
	return Fixtures{
		Categories: []catalog.Category{
			{ID: 1, Name: "Skincare"},
			{ID: 2, Name: "Accessories"},
			{ID: 3, Name: "Casual Wear"},
			{ID: 4, Name: "Home"},
		},
		Products: []catalog.Product{
			{ID: 1, Name: "Hydrating Face Serum", Price: usd("29.99"), Category: "Skincare", InStock: true, Description: "Lightweight serum with hyaluronic acid."},
			{ID: 2, Name: "Gentle Foaming Cleanser", Price: usd("15.99"), Category: "Skincare", InStock: true},
			{ID: 3, Name: "Overnight Repair Cream", Price: usd("34.50"), Category: "Skincare", InStock: false},
			{ID: 4, Name: "Leather Tote Bag", Price: usd("89.00"), Category: "Accessories", InStock: true},
			{ID: 5, Name: "Silk Scarf", Price: usd("24.99"), Category: "Accessories", InStock: true},
			{ID: 6, Name: "Organic Cotton Tee", Price: usd("19.99"), Category: "Casual Wear", InStock: true},
			{ID: 7, Name: "Relaxed Linen Shirt", Price: usd("49.99"), Category: "Casual Wear", InStock: false},
			{ID: 8, Name: "Coffee Shop Aesthetic Mug", Price: usd("15.99"), Category: "Home", InStock: true},
			{ID: 9, Name: "Vintage Camera Print", Price: usd("29.99"), Category: "Home", InStock: true},
		},
		Reviews: []catalog.Review{
			{ID: "rev-1", ProductID: 1, UserName: "Ana", Rating: 5, Comment: "My skin loves it.", CreatedAt: "2024-01-10"},
			{ID: "rev-2", ProductID: 1, UserName: "Sam", Rating: 4, Comment: "Good, a bit sticky.", CreatedAt: "2024-01-12"},
		},
		Featured: []int64{1, 4, 9},
		Users: []FixtureUser{
			{Name: "Demo Shopper", Email: "demo@example.com", Password: "password123"},
		},
	}
}
