package domain

import (
	"fmt"
	"slices"
)

type Dimension string

const (
	DimensionCategory Dimension = "category"
	DimensionPackSize Dimension = "packSize"
	DimensionType     Dimension = "type"
)

func Dimensions() []Dimension {
	return []Dimension{DimensionCategory, DimensionPackSize, DimensionType}
}

func ParseDimension(s string) (Dimension, error) {
	switch Dimension(s) {
	case DimensionCategory, DimensionPackSize, DimensionType:
		return Dimension(s), nil
	case "pack_size":
		return DimensionPackSize, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// A FilterState holds the selections of one catalog view.
//
// Empty selections put no restriction on the catalog. Values keep
// the order in which they were first selected. The zero value is ready to use.
type FilterState struct {
	categories []string
	packSizes  []string
	types      []string
	searchText string
}

func NewFilterState() *FilterState {
	return &FilterState{}
}

// Toggle removes value from dim if present, otherwise adds it.
func (s *FilterState) Toggle(dim Dimension, value string) {
	set := s.set(dim)
	if set == nil {
		return
	}
	if i := slices.Index(*set, value); i >= 0 {
		*set = slices.Delete(*set, i, i+1)
		return
	}
	*set = append(*set, value)
}

// SetSearchText stores text verbatim. Trimming happens at match time.
func (s *FilterState) SetSearchText(text string) {
	s.searchText = text
}

func (s *FilterState) SearchText() string {
	return s.searchText
}

func (s *FilterState) Clear() {
	s.categories = nil
	s.packSizes = nil
	s.types = nil
	s.searchText = ""
}

// ActiveFilterCount counts selected values; search text is not counted.
func (s *FilterState) ActiveFilterCount() int {
	return len(s.categories) + len(s.packSizes) + len(s.types)
}

func (s *FilterState) Has(dim Dimension, value string) bool {
	set := s.set(dim)
	if set == nil {
		return false
	}
	return slices.Contains(*set, value)
}

// Selected returns a copy of the values selected for dim.
func (s *FilterState) Selected(dim Dimension) []string {
	set := s.set(dim)
	if set == nil || len(*set) == 0 {
		return nil
	}
	return slices.Clone(*set)
}

func (s *FilterState) Clone() *FilterState {
	return &FilterState{
		categories: slices.Clone(s.categories),
		packSizes:  slices.Clone(s.packSizes),
		types:      slices.Clone(s.types),
		searchText: s.searchText,
	}
}

func (s *FilterState) set(dim Dimension) *[]string {
	switch dim {
	case DimensionCategory:
		return &s.categories
	case DimensionPackSize:
		return &s.packSizes
	case DimensionType:
		return &s.types
	}
	return nil
}
