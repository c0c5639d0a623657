package catalog

import (
	"strconv"
	"strings"
)

// Category is a product category as listed by the catalog service.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryIndex resolves category selectors to a canonical category label.
// Navigation links carry numeric IDs while sidebar selections carry names;
// both are resolved once here so the filter pipeline only compares labels.
type CategoryIndex struct {
	byID   map[int64]Category
	byName map[string]Category
	order  []Category
}

func NewCategoryIndex(categories []Category) *CategoryIndex {
	idx := &CategoryIndex{
		byID:   make(map[int64]Category, len(categories)),
		byName: make(map[string]Category, len(categories)),
		order:  make([]Category, 0, len(categories)),
	}
	for _, c := range categories {
		if _, dup := idx.byID[c.ID]; dup {
			continue
		}
		idx.byID[c.ID] = c
		idx.byName[strings.ToLower(c.Name)] = c
		idx.order = append(idx.order, c)
	}
	return idx
}

// Resolve maps a selector (numeric ID or case-insensitive name) to its
// category. Empty selectors and unknown values resolve to false.
func (idx *CategoryIndex) Resolve(selector string) (Category, bool) {
	selector = strings.TrimSpace(selector)
	if selector == "" || idx == nil {
		return Category{}, false
	}
	if id, err := strconv.ParseInt(selector, 10, 64); err == nil {
		c, ok := idx.byID[id]
		return c, ok
	}
	c, ok := idx.byName[strings.ToLower(selector)]
	return c, ok
}

// Label resolves a selector to its canonical name. Unknown selectors are
// passed through unchanged so that a stale link filters to an empty result
// instead of silently showing everything.
func (idx *CategoryIndex) Label(selector string) string {
	if c, ok := idx.Resolve(selector); ok {
		return c.Name
	}
	return strings.TrimSpace(selector)
}

// All returns categories in the order they were listed.
func (idx *CategoryIndex) All() []Category {
	if idx == nil {
		return nil
	}
	out := make([]Category, len(idx.order))
	copy(out, idx.order)
	return out
}
