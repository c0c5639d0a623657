package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("product id is required")
)

// Product is a purchasable catalog item as returned by the catalog service.
// Products are immutable for the lifetime of a page view.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image,omitempty"`
	InStock     bool            `json:"inStock"`
	Description string          `json:"description,omitempty"`
}

// Review is a customer review attached to a product.
type Review struct {
	ID        string `json:"id"`
	ProductID int64  `json:"productId"`
	UserName  string `json:"userName"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"createdAt"`
}

// ReviewInput is the body of a new review.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

func (r ReviewInput) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

// Page is one page of a product listing.
type Page struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	Size       int       `json:"size"`
	TotalItems int       `json:"totalItems"`
}
