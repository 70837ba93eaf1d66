package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/niksmo/millet-catalog/internal/core/domain"
)

// viewRegistry keeps the filter state of every open browsing view.
type viewRegistry struct {
	mu    sync.Mutex
	views map[string]*domain.FilterState
}

func newViewRegistry() *viewRegistry {
	return &viewRegistry{views: make(map[string]*domain.FilterState)}
}

// with runs fn on the state of view id under the registry lock.
func (r *viewRegistry) with(id string, fn func(*domain.FilterState)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.views[id]
	if !ok {
		return fmt.Errorf("view %q: %w", id, domain.ErrNotFound)
	}
	fn(state)
	return nil
}

func (r *viewRegistry) open() string {
	id := uuid.NewString()
	r.mu.Lock()
	r.views[id] = domain.NewFilterState()
	r.mu.Unlock()
	return id
}

func (r *viewRegistry) close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.views[id]
	delete(r.views, id)
	return ok
}

func (r *viewRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (s *Service) OpenView(ctx context.Context) (string, error) {
	const op = "Service.OpenView"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id := s.views.open()
	slog.Debug("view opened", "op", op, "viewID", id, "open", s.views.len())
	return id, nil
}

func (s *Service) ToggleFilter(
	ctx context.Context, viewID string, dim domain.Dimension, value string,
) error {
	const op = "Service.ToggleFilter"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dim, err := domain.ParseDimension(string(dim))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var selected bool
	err = s.views.with(viewID, func(state *domain.FilterState) {
		state.Toggle(dim, value)
		selected = state.Has(dim, value)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	evt := domain.FilterToggled{
		ViewID:    viewID,
		Dimension: dim,
		Value:     value,
		Selected:  selected,
		At:        s.now(),
	}
	if err := s.publisher.PublishFilterToggled(ctx, evt); err != nil {
		slog.Warn("failed to publish filter toggle", "op", op, "err", err)
	}
	return nil
}

// SetSearchText replaces the search text of the view. The published
// result count is the one a reader of lang sees.
func (s *Service) SetSearchText(
	ctx context.Context, viewID string, text string, lang domain.Language,
) error {
	const op = "Service.SetSearchText"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	products, err := s.catalog.Products()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	labels := s.translator.For(lang)
	var count int
	err = s.views.with(viewID, func(state *domain.FilterState) {
		state.SetSearchText(text)
		count = len(FilterProducts(products, state, labels))
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(text) == "" {
		return nil
	}

	evt := domain.SearchPerformed{
		ViewID:      viewID,
		Language:    lang,
		Query:       strings.TrimSpace(text),
		ResultCount: count,
		At:          s.now(),
	}
	if err := s.publisher.PublishSearchPerformed(ctx, evt); err != nil {
		slog.Warn("failed to publish search", "op", op, "err", err)
	}
	return nil
}

func (s *Service) ClearFilters(ctx context.Context, viewID string) error {
	const op = "Service.ClearFilters"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.views.with(viewID, func(state *domain.FilterState) {
		state.Clear()
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) ViewPage(
	ctx context.Context, viewID string, lang domain.Language,
) (domain.CatalogPage, error) {
	const op = "Service.ViewPage"

	if err := ctx.Err(); err != nil {
		return domain.CatalogPage{}, fmt.Errorf("%s: %w", op, err)
	}

	var snapshot *domain.FilterState
	err := s.views.with(viewID, func(state *domain.FilterState) {
		snapshot = state.Clone()
	})
	if err != nil {
		return domain.CatalogPage{}, fmt.Errorf("%s: %w", op, err)
	}

	page, err := s.Browse(ctx, snapshot, lang)
	if err != nil {
		return domain.CatalogPage{}, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

func (s *Service) CloseView(ctx context.Context, viewID string) error {
	const op = "Service.CloseView"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.views.close(viewID) {
		return fmt.Errorf("%s: view %q: %w", op, viewID, domain.ErrNotFound)
	}
	return nil
}
