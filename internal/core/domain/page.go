package domain

import "time"

type (
	// A CatalogPage is the renderable result of one filter evaluation.
	CatalogPage struct {
		Language          Language
		Products          []ProductSummary
		Count             int
		ActiveFilterCount int
		SearchText        string
		Empty             *EmptyState
	}

	EmptyState struct {
		Title    string
		Subtitle string
		Reset    string
	}

	FilterOption struct {
		Value      string
		Label      string
		Selections int
	}

	FilterOptions struct {
		Language   Language
		Categories []FilterOption
		PackSizes  []FilterOption
		Types      []FilterOption
	}
)

type (
	FilterToggled struct {
		ViewID    string
		Dimension Dimension
		Value     string
		Selected  bool
		At        time.Time
	}

	SearchPerformed struct {
		ViewID      string
		Language    Language
		Query       string
		ResultCount int
		At          time.Time
	}
)

// PopularityKey is the key of a filter value in the popularity table.
func PopularityKey(dim Dimension, value string) string {
	return string(dim) + ":" + value
}
