package port

import (
	"context"
	"sync"

	"github.com/niksmo/millet-catalog/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// Inbound ports.

type CatalogBrowser interface {
	Browse(context.Context, *domain.FilterState, domain.Language) (domain.CatalogPage, error)
	ProductDetail(ctx context.Context, slug string, lang domain.Language) (domain.ProductDetail, error)
	FilterOptions(context.Context, domain.Language) (domain.FilterOptions, error)
}

type ViewManager interface {
	OpenView(context.Context) (string, error)
	ToggleFilter(ctx context.Context, viewID string, dim domain.Dimension, value string) error
	SetSearchText(ctx context.Context, viewID string, text string, lang domain.Language) error
	ClearFilters(ctx context.Context, viewID string) error
	ViewPage(ctx context.Context, viewID string, lang domain.Language) (domain.CatalogPage, error)
	CloseView(ctx context.Context, viewID string) error
}

type LanguageSwitcher interface {
	Current() domain.Language
	Set(context.Context, domain.Language) error
}

type Translator interface {
	Translate(key string, lang domain.Language) string
}

type SearchesSaver interface {
	SaveSearches(context.Context, []domain.SearchPerformed) error
}

// Outbound ports.

type ProductCatalog interface {
	Products() ([]domain.Product, error)
	BySlug(slug string) (domain.Product, error)
}

type PreferenceStorage interface {
	ReadPreference(ctx context.Context, key string) (string, error)
	StorePreference(ctx context.Context, key, value string) error
}

type InteractionsPublisher interface {
	PublishFilterToggled(context.Context, domain.FilterToggled) error
	PublishSearchPerformed(context.Context, domain.SearchPerformed) error
}

type PopularityReader interface {
	Selections(key string) (int, error)
}

type SearchesStorage interface {
	StoreSearches(context.Context, []domain.SearchPerformed) error
}

type FilterPopularityProcessor interface {
	runnerContextWg
	closer
}
