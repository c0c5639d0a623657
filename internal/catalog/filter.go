package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SortKey selects the ordering of a filtered listing.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price-low"
	SortPriceDesc SortKey = "price-high"
	SortPopular   SortKey = "popular"
	SortRating    SortKey = "rating"
)

// DefaultPriceCeiling is the upper bound of the price slider.
var DefaultPriceCeiling = decimal.NewFromInt(1000)

var (
	ErrUnknownSortKey  = errors.New("unknown sort key")
	ErrNegativeCeiling = errors.New("price ceiling must not be negative")
)

// ParseSortKey accepts the canonical keys plus a few common aliases.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newest":
		return SortNewest, nil
	case "price-low", "price-asc", "price_asc":
		return SortPriceAsc, nil
	case "price-high", "price-desc", "price_desc":
		return SortPriceDesc, nil
	case "popular", "popularity":
		return SortPopular, nil
	case "rating":
		return SortRating, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// Criteria holds the listing filter inputs. Category and NavCategory must
// already be canonical labels (see CategoryIndex.Label).
type Criteria struct {
	Search       string
	Category     string
	NavCategory  string
	PriceCeiling decimal.Decimal
	Sort         SortKey
	InStockOnly  bool
}

// DefaultCriteria mirrors the initial state of the filter sidebar.
func DefaultCriteria() Criteria {
	return Criteria{
		PriceCeiling: DefaultPriceCeiling,
		Sort:         SortNewest,
	}
}

func (c Criteria) Validate() error {
	if c.PriceCeiling.IsNegative() {
		return ErrNegativeCeiling
	}
	if _, err := ParseSortKey(string(c.Sort)); err != nil {
		return err
	}
	return nil
}

// EffectiveCategory returns the category the pipeline filters on: the
// explicit selection wins over the navigation context.
func (c Criteria) EffectiveCategory() string {
	if c.Category != "" {
		return c.Category
	}
	return c.NavCategory
}

// Apply returns the products matching c in display order. The input slice
// is not modified.
func Apply(products []Product, c Criteria) []Product {
	term := strings.ToLower(strings.TrimSpace(c.Search))
	category := c.EffectiveCategory()

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if p.Price.IsNegative() || p.Price.GreaterThan(c.PriceCeiling) {
			continue
		}
		if c.InStockOnly && !p.InStock {
			continue
		}
		out = append(out, p)
	}

	switch c.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	default:
		// popular and rating have no backing field; catalog order is kept
	}
	return out
}
