package service

import (
	"slices"
	"strings"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"golang.org/x/text/cases"
)

// A CategoryLabeler renders category labels in the display language.
type CategoryLabeler interface {
	CategoryLabel(domain.Category) string
}

// Matches reports whether p satisfies every non-empty constraint of state.
func Matches(p domain.Product, state *domain.FilterState, labels CategoryLabeler) bool {
	return categoryMatch(p, state) &&
		packSizeMatch(p, state) &&
		typeMatch(p, state) &&
		searchMatch(p, state, labels)
}

// FilterProducts keeps the products that match state, in catalog order.
// The result is never nil.
func FilterProducts(
	catalog []domain.Product, state *domain.FilterState, labels CategoryLabeler,
) []domain.Product {
	out := make([]domain.Product, 0, len(catalog))
	for _, p := range catalog {
		if Matches(p, state, labels) {
			out = append(out, p)
		}
	}
	return out
}

func categoryMatch(p domain.Product, state *domain.FilterState) bool {
	selected := state.Selected(domain.DimensionCategory)
	return len(selected) == 0 || slices.Contains(selected, string(p.Category))
}

func packSizeMatch(p domain.Product, state *domain.FilterState) bool {
	selected := state.Selected(domain.DimensionPackSize)
	if len(selected) == 0 {
		return true
	}
	for _, w := range p.AvailableWeights {
		if slices.Contains(selected, string(w)) {
			return true
		}
	}
	return false
}

func typeMatch(p domain.Product, state *domain.FilterState) bool {
	selected := state.Selected(domain.DimensionType)
	return len(selected) == 0 || slices.Contains(selected, string(p.Type))
}

func searchMatch(p domain.Product, state *domain.FilterState, labels CategoryLabeler) bool {
	q := normalize(state.SearchText())
	if q == "" {
		return true
	}
	for _, lang := range domain.Languages() {
		if strings.Contains(normalize(p.Name.In(lang)), q) {
			return true
		}
	}
	return strings.Contains(normalize(labels.CategoryLabel(p.Category)), q)
}

// normalize trims and case-folds s. Caseless scripts pass through unchanged.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}
