package model

import (
	"errors"
	"strings"
)

// Category is either the all-listings pseudo-category or a named one.
// The zero value is AllListings.
type Category struct {
	label string
	named bool
}

// AllListings maps to the unfiltered listing view.
func AllListings() Category { return Category{} }

// Named returns a real category filter value.
func Named(label string) Category { return Category{label: label, named: true} }

// IsAll reports whether c is the all-listings pseudo-category.
func (c Category) IsAll() bool { return !c.named }

// Label is the filter value, empty for AllListings.
func (c Category) Label() string { return c.label }

// CatalogEntry is one row of the category navigation.
type CatalogEntry struct {
	Label    string   `json:"label"`
	Route    string   `json:"route"`
	Category Category `json:"-"`
}

// Catalog is the fixed, ordered category list. It is built once and
// shared read-only.
type Catalog struct {
	allLabel string
	named    []string
}

// NewCatalog builds a catalog whose first label is the all-listings entry.
func NewCatalog(labels []string) (Catalog, error) {
	if len(labels) < 2 {
		return Catalog{}, errors.New("catalog needs the all-listings label and at least one category")
	}
	seen := make(map[string]struct{}, len(labels))
	cleaned := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			return Catalog{}, errors.New("catalog labels must not be empty")
		}
		if _, dup := seen[l]; dup {
			return Catalog{}, errors.New("duplicate catalog label " + l)
		}
		seen[l] = struct{}{}
		cleaned = append(cleaned, l)
	}
	return Catalog{allLabel: cleaned[0], named: cleaned[1:]}, nil
}

// DefaultCategories is used when no category list is configured.
var DefaultCategories = []string{
	"Today's Picks",
	"vehicles",
	"property rentals",
	"apparel",
	"electronics",
	"entertainment",
	"family",
	"free stuff",
	"garden & outdoor",
	"hobbies",
	"home goods",
	"home improvement",
	"home sales",
	"musical instruments",
	"office supplies",
	"pet supplies",
	"sporting goods",
	"toys & games",
}

// Entries returns the navigation list in catalog order.
func (c Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(c.named)+1)
	out = append(out, CatalogEntry{Label: c.allLabel, Route: "/", Category: AllListings()})
	for _, l := range c.named {
		out = append(out, CatalogEntry{Label: l, Route: "/category/" + l, Category: Named(l)})
	}
	return out
}

// Selectable lists the labels a new listing may be filed under.
func (c Catalog) Selectable() []string {
	out := make([]string, len(c.named))
	copy(out, c.named)
	return out
}

// Resolve maps a label (or an empty string) to a Category.
func (c Catalog) Resolve(label string) (Category, bool) {
	if label == "" || label == c.allLabel {
		return AllListings(), true
	}
	for _, l := range c.named {
		if l == label {
			return Named(l), true
		}
	}
	return Category{}, false
}

// Contains reports whether label is a real (non pseudo) category.
func (c Catalog) Contains(label string) bool {
	cat, ok := c.Resolve(label)
	return ok && !cat.IsAll()
}
