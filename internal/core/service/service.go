package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/niksmo/millet-catalog/internal/core/locale"
	"github.com/niksmo/millet-catalog/internal/core/port"
)

var _ port.CatalogBrowser = (*Service)(nil)
var _ port.ViewManager = (*Service)(nil)
var _ port.SearchesSaver = (*Service)(nil)

type Service struct {
	catalog         port.ProductCatalog
	translator      *locale.Translator
	publisher       port.InteractionsPublisher
	popularity      port.PopularityReader
	searchesStorage port.SearchesStorage
	views           *viewRegistry
	now             func() time.Time
}

// New creates the catalog service.
//
// publisher, popularity and searchesStorage are optional and may be nil.
func New(
	catalog port.ProductCatalog,
	translator *locale.Translator,
	publisher port.InteractionsPublisher,
	popularity port.PopularityReader,
	searchesStorage port.SearchesStorage,
) *Service {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Service{
		catalog:         catalog,
		translator:      translator,
		publisher:       publisher,
		popularity:      popularity,
		searchesStorage: searchesStorage,
		views:           newViewRegistry(),
		now:             time.Now,
	}
}

func (s *Service) Browse(
	ctx context.Context, state *domain.FilterState, lang domain.Language,
) (domain.CatalogPage, error) {
	const op = "Service.Browse"

	if err := ctx.Err(); err != nil {
		return domain.CatalogPage{}, fmt.Errorf("%s: %w", op, err)
	}

	products, err := s.catalog.Products()
	if err != nil {
		return domain.CatalogPage{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.page(products, state, lang), nil
}

func (s *Service) ProductDetail(
	ctx context.Context, slug string, lang domain.Language,
) (domain.ProductDetail, error) {
	const op = "Service.ProductDetail"

	if err := ctx.Err(); err != nil {
		return domain.ProductDetail{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.catalog.BySlug(slug)
	if err != nil {
		return domain.ProductDetail{}, fmt.Errorf("%s: %w", op, err)
	}

	l := s.translator.For(lang)
	return domain.ProductDetail{
		Summary:   s.summary(p, l),
		Type:      p.Type,
		TypeLabel: l.T(p.Type.LabelKey()),
		Weights:   p.AvailableWeights,
		Images:    p.Images,
		Nutrition: ParseNutrition(p.Nutrition.In(lang)),
	}, nil
}

func (s *Service) FilterOptions(
	ctx context.Context, lang domain.Language,
) (domain.FilterOptions, error) {
	const op = "Service.FilterOptions"

	if err := ctx.Err(); err != nil {
		return domain.FilterOptions{}, fmt.Errorf("%s: %w", op, err)
	}

	l := s.translator.For(lang)
	opts := domain.FilterOptions{Language: lang}

	for _, c := range domain.Categories() {
		opts.Categories = append(opts.Categories,
			s.option(domain.DimensionCategory, string(c), l.CategoryLabel(c)))
	}
	for _, size := range domain.PackSizes() {
		opts.PackSizes = append(opts.PackSizes,
			s.option(domain.DimensionPackSize, string(size), string(size)))
	}
	for _, t := range domain.ProductTypes() {
		opts.Types = append(opts.Types,
			s.option(domain.DimensionType, string(t), l.T(t.LabelKey())))
	}
	return opts, nil
}

func (s *Service) SaveSearches(
	ctx context.Context, vs []domain.SearchPerformed,
) error {
	const op = "Service.SaveSearches"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.searchesStorage == nil {
		slog.Debug("search log disabled, dropping", "op", op, "n", len(vs))
		return nil
	}

	if err := s.searchesStorage.StoreSearches(ctx, vs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) page(
	products []domain.Product, state *domain.FilterState, lang domain.Language,
) domain.CatalogPage {
	l := s.translator.For(lang)
	matched := FilterProducts(products, state, l)

	page := domain.CatalogPage{
		Language:          lang,
		Products:          make([]domain.ProductSummary, 0, len(matched)),
		Count:             len(matched),
		ActiveFilterCount: state.ActiveFilterCount(),
		SearchText:        state.SearchText(),
	}
	for _, p := range matched {
		page.Products = append(page.Products, s.summary(p, l))
	}

	if page.Count == 0 {
		page.Empty = &domain.EmptyState{
			Title:    l.T("products.empty.title"),
			Subtitle: l.T("products.empty.subtitle"),
			Reset:    l.T("products.empty.reset"),
		}
	}
	return page
}

func (s *Service) summary(p domain.Product, l locale.Localizer) domain.ProductSummary {
	return domain.ProductSummary{
		ID:               p.ID,
		Slug:             p.Slug,
		Name:             p.Name.In(l.Language()),
		ShortDescription: p.ShortDescription.In(l.Language()),
		CategoryLabel:    l.CategoryLabel(p.Category),
		Image:            p.Image(),
	}
}

func (s *Service) option(dim domain.Dimension, value, label string) domain.FilterOption {
	const op = "Service.option"

	o := domain.FilterOption{Value: value, Label: label}
	if s.popularity == nil {
		return o
	}

	n, err := s.popularity.Selections(domain.PopularityKey(dim, value))
	if err != nil {
		slog.Warn("failed to read popularity", "op", op, "dimension", dim, "value", value, "err", err)
		return o
	}
	o.Selections = n
	return o
}

type nopPublisher struct{}

func (nopPublisher) PublishFilterToggled(context.Context, domain.FilterToggled) error {
	return nil
}

func (nopPublisher) PublishSearchPerformed(context.Context, domain.SearchPerformed) error {
	return nil
}
