package domain_test

import (
	"testing"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterStateToggle(t *testing.T) {
	t.Run("AddThenRemove", func(t *testing.T) {
		s := domain.NewFilterState()
		s.Toggle(domain.DimensionCategory, "millets")
		assert.True(t, s.Has(domain.DimensionCategory, "millets"))
		assert.Equal(t, 1, s.ActiveFilterCount())

		s.Toggle(domain.DimensionCategory, "millets")
		assert.False(t, s.Has(domain.DimensionCategory, "millets"))
		assert.Zero(t, s.ActiveFilterCount())
	})

	t.Run("SelfInverse", func(t *testing.T) {
		s := domain.NewFilterState()
		s.Toggle(domain.DimensionPackSize, "250g")
		s.Toggle(domain.DimensionPackSize, "1kg")
		before := s.Selected(domain.DimensionPackSize)

		s.Toggle(domain.DimensionPackSize, "5kg")
		s.Toggle(domain.DimensionPackSize, "5kg")
		assert.Equal(t, before, s.Selected(domain.DimensionPackSize))

		s.Toggle(domain.DimensionPackSize, "250g")
		s.Toggle(domain.DimensionPackSize, "250g")
		assert.ElementsMatch(t, before, s.Selected(domain.DimensionPackSize))
	})

	t.Run("DimensionsAreIndependent", func(t *testing.T) {
		s := domain.NewFilterState()
		s.Toggle(domain.DimensionCategory, "readyToCook")
		s.Toggle(domain.DimensionType, "readyToCook")
		assert.Equal(t, []string{"readyToCook"}, s.Selected(domain.DimensionCategory))
		assert.Equal(t, []string{"readyToCook"}, s.Selected(domain.DimensionType))
		assert.Nil(t, s.Selected(domain.DimensionPackSize))
		assert.Equal(t, 2, s.ActiveFilterCount())
	})

	t.Run("UnknownDimensionIsNoop", func(t *testing.T) {
		s := domain.NewFilterState()
		s.Toggle(domain.Dimension("color"), "red")
		assert.Zero(t, s.ActiveFilterCount())
		assert.False(t, s.Has(domain.Dimension("color"), "red"))
	})
}

func TestFilterStateSearchAndClear(t *testing.T) {
	s := domain.NewFilterState()
	s.SetSearchText("  Tur ")
	assert.Equal(t, "  Tur ", s.SearchText(), "stored verbatim")
	assert.Zero(t, s.ActiveFilterCount(), "search text is not counted")

	s.Toggle(domain.DimensionCategory, "millets")
	s.Toggle(domain.DimensionPackSize, "1kg")
	s.Toggle(domain.DimensionType, "raw")
	require.Equal(t, 3, s.ActiveFilterCount())

	s.Clear()
	assert.Zero(t, s.ActiveFilterCount())
	assert.Empty(t, s.SearchText())
	for _, d := range domain.Dimensions() {
		assert.Nil(t, s.Selected(d))
	}
}

func TestFilterStateClone(t *testing.T) {
	s := domain.NewFilterState()
	s.Toggle(domain.DimensionCategory, "millets")
	s.SetSearchText("ragi")

	c := s.Clone()
	c.Toggle(domain.DimensionCategory, "spices")
	c.SetSearchText("")

	assert.Equal(t, []string{"millets"}, s.Selected(domain.DimensionCategory))
	assert.Equal(t, "ragi", s.SearchText())
	assert.Equal(t, []string{"millets", "spices"}, c.Selected(domain.DimensionCategory))
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Dimension
		wantErr bool
	}{
		{"category", domain.DimensionCategory, false},
		{"packSize", domain.DimensionPackSize, false},
		{"pack_size", domain.DimensionPackSize, false},
		{"type", domain.DimensionType, false},
		{"brand", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseDimension(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnknownDimension)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLanguage(t *testing.T) {
	l, err := domain.ParseLanguage(" te ")
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageTE, l)

	_, err = domain.ParseLanguage("fr")
	assert.ErrorIs(t, err, domain.ErrUnknownLanguage)
}
