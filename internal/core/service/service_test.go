package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/niksmo/millet-catalog/internal/core/locale"
	"github.com/niksmo/millet-catalog/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeCatalog []domain.Product

func (c fakeCatalog) Products() ([]domain.Product, error) {
	return append([]domain.Product(nil), c...), nil
}

func (c fakeCatalog) BySlug(slug string) (domain.Product, error) {
	for _, p := range c {
		if p.Slug == slug {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishFilterToggled(ctx context.Context, v domain.FilterToggled) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockPublisher) PublishSearchPerformed(ctx context.Context, v domain.SearchPerformed) error {
	return m.Called(ctx, v).Error(0)
}

type MockPopularity struct {
	mock.Mock
}

func (m *MockPopularity) Selections(key string) (int, error) {
	args := m.Called(key)
	return args.Int(0), args.Error(1)
}

type MockSearchesStorage struct {
	mock.Mock
}

func (m *MockSearchesStorage) StoreSearches(ctx context.Context, vs []domain.SearchPerformed) error {
	return m.Called(ctx, vs).Error(0)
}

func testCatalog() fakeCatalog {
	return fakeCatalog{
		{
			ID:               "p1",
			Slug:             "foxtail-millet",
			Category:         domain.CategoryMillets,
			Type:             domain.TypeRaw,
			AvailableWeights: []domain.PackSize{"250g", "1kg"},
			Name: domain.LocalizedText{
				domain.LanguageEN: "Foxtail Millet",
				domain.LanguageTE: "కొర్రలు",
			},
			ShortDescription: domain.LocalizedText{domain.LanguageEN: "Whole grain"},
			Nutrition:        domain.LocalizedText{domain.LanguageEN: "Per 100g: Energy: 351 kcal"},
			Images:           []string{"/images/foxtail.jpg", "/images/foxtail-2.jpg"},
		},
		{
			ID:               "p2",
			Slug:             "turmeric-powder",
			Category:         domain.CategorySpices,
			Type:             domain.TypeFlour,
			AvailableWeights: []domain.PackSize{"100g"},
			Name:             domain.LocalizedText{domain.LanguageEN: "Turmeric Powder"},
		},
	}
}

func testTranslator(t *testing.T) *locale.Translator {
	t.Helper()
	d, _ := locale.NewDictionary(map[string]map[string]string{
		"EN": {
			"products.filters.millets": "Millets",
			"products.filters.spices":  "Spices",
			"products.types.raw":       "Raw",
			"products.empty.title":     "No products found",
			"products.empty.subtitle":  "Try other filters",
			"products.empty.reset":     "Reset filters",
		},
		"TE": {
			"products.filters.millets": "చిరుధాన్యాలు",
		},
	})
	require.NotNil(t, d)
	return locale.NewTranslator(d)
}

func TestServiceBrowse(t *testing.T) {
	s := service.New(testCatalog(), testTranslator(t), nil, nil, nil)

	t.Run("All", func(t *testing.T) {
		page, err := s.Browse(t.Context(), domain.NewFilterState(), domain.LanguageEN)
		require.NoError(t, err)
		assert.Equal(t, 2, page.Count)
		assert.Nil(t, page.Empty)
		require.Len(t, page.Products, 2)
		assert.Equal(t, domain.ProductSummary{
			ID:               "p1",
			Slug:             "foxtail-millet",
			Name:             "Foxtail Millet",
			ShortDescription: "Whole grain",
			CategoryLabel:    "Millets",
			Image:            "/images/foxtail.jpg",
		}, page.Products[0])
	})

	t.Run("Localized", func(t *testing.T) {
		page, err := s.Browse(t.Context(), domain.NewFilterState(), domain.LanguageTE)
		require.NoError(t, err)
		assert.Equal(t, "కొర్రలు", page.Products[0].Name)
		assert.Equal(t, "చిరుధాన్యాలు", page.Products[0].CategoryLabel)
		assert.Empty(t, page.Products[0].ShortDescription)
		assert.Equal(t, "products.filters.spices", page.Products[1].CategoryLabel)
	})

	t.Run("EmptyState", func(t *testing.T) {
		state := domain.NewFilterState()
		state.Toggle(domain.DimensionCategory, "millets")
		state.Toggle(domain.DimensionPackSize, "100g")

		page, err := s.Browse(t.Context(), state, domain.LanguageEN)
		require.NoError(t, err)
		assert.Zero(t, page.Count)
		assert.NotNil(t, page.Products)
		assert.Equal(t, 2, page.ActiveFilterCount)
		require.NotNil(t, page.Empty)
		assert.Equal(t, "No products found", page.Empty.Title)
		assert.Equal(t, "Reset filters", page.Empty.Reset)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := s.Browse(ctx, domain.NewFilterState(), domain.LanguageEN)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestServiceProductDetail(t *testing.T) {
	s := service.New(testCatalog(), testTranslator(t), nil, nil, nil)

	d, err := s.ProductDetail(t.Context(), "foxtail-millet", domain.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, "Foxtail Millet", d.Summary.Name)
	assert.Equal(t, "Raw", d.TypeLabel)
	assert.Equal(t, []domain.PackSize{"250g", "1kg"}, d.Weights)
	assert.Equal(t, []domain.NutritionFact{{Label: "Energy", Value: "351 kcal"}}, d.Nutrition)

	_, err = s.ProductDetail(t.Context(), "no-such-product", domain.LanguageEN)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServiceFilterOptions(t *testing.T) {
	t.Run("WithoutPopularity", func(t *testing.T) {
		s := service.New(testCatalog(), testTranslator(t), nil, nil, nil)
		opts, err := s.FilterOptions(t.Context(), domain.LanguageEN)
		require.NoError(t, err)
		assert.Len(t, opts.Categories, len(domain.Categories()))
		assert.Len(t, opts.PackSizes, len(domain.PackSizes()))
		assert.Len(t, opts.Types, len(domain.ProductTypes()))
		assert.Equal(t, domain.FilterOption{Value: "millets", Label: "Millets"}, opts.Categories[0])
		assert.Equal(t, domain.FilterOption{Value: "250g", Label: "250g"}, opts.PackSizes[0])
	})

	t.Run("WithPopularity", func(t *testing.T) {
		pop := new(MockPopularity)
		pop.On("Selections", "category:millets").Return(7, nil)
		pop.On("Selections", "packSize:1kg").Return(0, errors.New("view not ready"))
		pop.On("Selections", mock.Anything).Return(0, nil)

		s := service.New(testCatalog(), testTranslator(t), nil, pop, nil)
		opts, err := s.FilterOptions(t.Context(), domain.LanguageEN)
		require.NoError(t, err)
		assert.Equal(t, 7, opts.Categories[0].Selections)
		assert.Zero(t, opts.PackSizes[2].Selections)
	})
}

func TestServiceViews(t *testing.T) {
	pub := new(MockPublisher)
	s := service.New(testCatalog(), testTranslator(t), pub, nil, nil)
	ctx := t.Context()

	id, err := s.OpenView(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	pub.On("PublishFilterToggled", mock.Anything, mock.MatchedBy(func(v domain.FilterToggled) bool {
		return v.ViewID == id && v.Dimension == domain.DimensionCategory &&
			v.Value == "millets" && v.Selected
	})).Return(nil).Once()

	require.NoError(t, s.ToggleFilter(ctx, id, domain.DimensionCategory, "millets"))

	page, err := s.ViewPage(ctx, id, domain.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, 1, page.ActiveFilterCount)

	pub.On("PublishFilterToggled", mock.Anything, mock.MatchedBy(func(v domain.FilterToggled) bool {
		return v.Value == "millets" && !v.Selected
	})).Return(errors.New("broker down")).Once()

	require.NoError(t, s.ToggleFilter(ctx, id, domain.DimensionCategory, "millets"),
		"publish failures are not surfaced")

	pub.On("PublishSearchPerformed", mock.Anything, mock.MatchedBy(func(v domain.SearchPerformed) bool {
		return v.ViewID == id && v.Query == "tur" && v.ResultCount == 1 &&
			v.Language == domain.LanguageEN
	})).Return(nil).Once()

	require.NoError(t, s.SetSearchText(ctx, id, " tur ", domain.LanguageEN))
	page, err = s.ViewPage(ctx, id, domain.LanguageEN)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "p2", page.Products[0].ID)
	assert.Equal(t, " tur ", page.SearchText)

	require.NoError(t, s.SetSearchText(ctx, id, "  ", domain.LanguageEN), "blank search is not published")

	require.NoError(t, s.ClearFilters(ctx, id))
	page, err = s.ViewPage(ctx, id, domain.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
	assert.Zero(t, page.ActiveFilterCount)

	require.NoError(t, s.CloseView(ctx, id))
	assert.ErrorIs(t, s.CloseView(ctx, id), domain.ErrNotFound)
	_, err = s.ViewPage(ctx, id, domain.LanguageEN)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.ToggleFilter(ctx, id, domain.DimensionType, "raw"), domain.ErrNotFound)

	pub.AssertExpectations(t)
}

func TestServiceToggleUnknownDimension(t *testing.T) {
	s := service.New(testCatalog(), testTranslator(t), nil, nil, nil)
	id, err := s.OpenView(t.Context())
	require.NoError(t, err)

	err = s.ToggleFilter(t.Context(), id, domain.Dimension("brand"), "x")
	assert.ErrorIs(t, err, domain.ErrUnknownDimension)
}

func TestServiceSaveSearches(t *testing.T) {
	vs := []domain.SearchPerformed{{ViewID: "v", Query: "ragi", Language: domain.LanguageEN}}

	t.Run("Disabled", func(t *testing.T) {
		s := service.New(testCatalog(), testTranslator(t), nil, nil, nil)
		assert.NoError(t, s.SaveSearches(t.Context(), vs))
	})

	t.Run("Stored", func(t *testing.T) {
		storage := new(MockSearchesStorage)
		storage.On("StoreSearches", mock.Anything, vs).Return(nil).Once()

		s := service.New(testCatalog(), testTranslator(t), nil, nil, storage)
		require.NoError(t, s.SaveSearches(t.Context(), vs))
		storage.AssertExpectations(t)
	})

	t.Run("StorageError", func(t *testing.T) {
		storage := new(MockSearchesStorage)
		storage.On("StoreSearches", mock.Anything, vs).Return(errors.New("tx aborted"))

		s := service.New(testCatalog(), testTranslator(t), nil, nil, storage)
		assert.Error(t, s.SaveSearches(t.Context(), vs))
	})
}

func TestSearchPublishedInViewLanguage(t *testing.T) {
	pub := new(MockPublisher)
	s := service.New(testCatalog(), testTranslator(t), pub, nil, nil)
	ctx := t.Context()

	id, err := s.OpenView(ctx)
	require.NoError(t, err)

	var published domain.SearchPerformed
	pub.On("PublishSearchPerformed", mock.Anything, mock.Anything).
		Return(nil).Once().
		Run(func(args mock.Arguments) {
			published = args.Get(1).(domain.SearchPerformed)
		})

	require.NoError(t, s.SetSearchText(ctx, id, "చిరుధాన్యాలు", domain.LanguageTE))

	page, err := s.ViewPage(ctx, id, domain.LanguageTE)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "p1", page.Products[0].ID)

	assert.Equal(t, domain.LanguageTE, published.Language)
	assert.Equal(t, page.Count, published.ResultCount)
	pub.AssertExpectations(t)
}
