// Package taxonomy loads and resolves the category taxonomy: a mapping from
// each main category name to its ordered list of subcategory labels. Every
// subcategory belongs to exactly one main category; labels matching no known
// subcategory resolve to the reserved unclassified bucket.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sthimark/quakeboard/internal/model"
)

// Taxonomy is the loaded category mapping plus a case-insensitive
// subcategory-to-main lookup index. Immutable after construction.
type Taxonomy struct {
	categories map[string][]string
	subToMain  map[string]string
}

// New builds a Taxonomy from a main-category → subcategory-labels mapping.
func New(categories map[string][]string) *Taxonomy {
	t := &Taxonomy{
		categories: make(map[string][]string, len(categories)),
		subToMain:  make(map[string]string),
	}
	for main, subs := range categories {
		t.categories[main] = append([]string(nil), subs...)
		for _, sub := range subs {
			t.subToMain[strings.ToLower(sub)] = main
		}
	}
	return t
}

// Load reads the taxonomy JSON file (main category name → ordered list of
// subcategory label strings).
func Load(path string) (*Taxonomy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy %s: %w", path, err)
	}
	var categories map[string][]string
	if err := json.Unmarshal(b, &categories); err != nil {
		return nil, fmt.Errorf("parsing taxonomy %s: %w", path, err)
	}
	return New(categories), nil
}

// ResolveMain returns the main category a subcategory label belongs to.
// Lookup is case-insensitive; unknown or empty labels resolve to the
// unclassified bucket.
func (t *Taxonomy) ResolveMain(label string) string {
	if main, ok := t.subToMain[strings.ToLower(label)]; ok {
		return main
	}
	return model.Unclassified
}

// HasMain reports whether the taxonomy defines the given main category.
func (t *Taxonomy) HasMain(name string) bool {
	_, ok := t.categories[name]
	return ok
}

// Subcategories returns the ordered subcategory labels of a main category,
// or nil for an unknown category.
func (t *Taxonomy) Subcategories(main string) []string {
	return append([]string(nil), t.categories[main]...)
}

// MainCategories returns the main category names in sorted order.
func (t *Taxonomy) MainCategories() []string {
	names := make([]string, 0, len(t.categories))
	for name := range t.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Categories returns a copy of the full mapping.
func (t *Taxonomy) Categories() map[string][]string {
	out := make(map[string][]string, len(t.categories))
	for main := range t.categories {
		out[main] = t.Subcategories(main)
	}
	return out
}
