package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/niksmo/millet-catalog/config"
	"github.com/niksmo/millet-catalog/internal/adapter/storage"
	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localConfig() config.Config {
	return config.Config{
		LogLevel:           slog.LevelError,
		HTTPServerAddr:     "127.0.0.1:0",
		StrictTranslations: true,
	}
}

func TestNewWithoutInfrastructure(t *testing.T) {
	app := New(context.Background(), localConfig())
	t.Cleanup(func() { app.Close(context.Background()) })

	assert.Nil(t, app.broker)
	assert.Nil(t, app.out.sqlDB)
	assert.Nil(t, app.out.publisher)
	assert.Nil(t, app.out.searchesStorage)
	assert.IsType(t, &storage.MemoryPreferences{}, app.out.preferences)
	assert.Equal(t, domain.BaselineLanguage, app.language.Current())

	page, err := app.service.Browse(context.Background(), domain.NewFilterState(), domain.LanguageEN)
	require.NoError(t, err)
	assert.NotZero(t, page.Count)
}

func TestStrictTranslations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translations.yaml")
	raw := "EN:\n  products.page.title: Our Products\nTE:\n  products.page.title: మా ఉత్పత్తులు\nHI: {}\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg := localConfig()
	cfg.TranslationsFile = path

	assert.Panics(t, func() { New(context.Background(), cfg) })

	cfg.StrictTranslations = false
	app := New(context.Background(), cfg)
	t.Cleanup(func() { app.Close(context.Background()) })
	assert.Equal(t, "products.page.title",
		app.out.translator.Translate("products.page.title", domain.LanguageHI))
}

func TestBrokenCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.yaml")
	require.NoError(t, os.WriteFile(path, []byte("products: [{id: x}]\n"), 0o600))

	cfg := localConfig()
	cfg.CatalogFile = path
	assert.Panics(t, func() { New(context.Background(), cfg) })
}
