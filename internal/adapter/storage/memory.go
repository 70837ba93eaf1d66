package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/niksmo/millet-catalog/internal/core/port"
)

var _ port.PreferenceStorage = (*MemoryPreferences)(nil)

// MemoryPreferences keeps preferences for the lifetime of the process.
type MemoryPreferences struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: make(map[string]string)}
}

func (m *MemoryPreferences) ReadPreference(
	ctx context.Context, key string,
) (string, error) {
	const op = "MemoryPreferences.ReadPreference"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", fmt.Errorf("%s: %q: %w", op, key, domain.ErrNotFound)
	}
	return v, nil
}

func (m *MemoryPreferences) StorePreference(
	ctx context.Context, key, value string,
) error {
	const op = "MemoryPreferences.StorePreference"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
