package locale

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/niksmo/millet-catalog/internal/core/port"
)

// PreferenceKey is the storage key of the selected display language.
const PreferenceKey = "lang"

var _ port.LanguageSwitcher = (*LanguageProvider)(nil)

// LanguageProvider owns the current display language.
//
// It is initialized from storage and writes every change through
// before it becomes visible.
type LanguageProvider struct {
	mu      sync.RWMutex
	current domain.Language
	storage port.PreferenceStorage
}

func NewLanguageProvider(
	ctx context.Context, storage port.PreferenceStorage,
) (*LanguageProvider, error) {
	const op = "locale.NewLanguageProvider"
	log := slog.With("op", op)

	p := &LanguageProvider{current: domain.BaselineLanguage, storage: storage}

	v, err := storage.ReadPreference(ctx, PreferenceKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Info("no stored language, using baseline", "lang", p.current)
			return p, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lang, err := domain.ParseLanguage(v)
	if err != nil {
		log.Warn("ignoring stored language", "value", v, "err", err)
		return p, nil
	}
	p.current = lang
	log.Info("restored language", "lang", lang)
	return p, nil
}

func (p *LanguageProvider) Current() domain.Language {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

func (p *LanguageProvider) Set(ctx context.Context, lang domain.Language) error {
	const op = "LanguageProvider.Set"

	if _, err := domain.ParseLanguage(string(lang)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.storage.StorePreference(ctx, PreferenceKey, string(lang)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.current = lang
	return nil
}
