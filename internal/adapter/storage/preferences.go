package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/niksmo/millet-catalog/internal/core/port"
)

var _ port.PreferenceStorage = PreferencesRepository{}

type PreferencesRepository struct {
	sqldb sqldb
}

func NewPreferencesRepository(sqldb sqldb) PreferencesRepository {
	return PreferencesRepository{sqldb}
}

func (r PreferencesRepository) ReadPreference(
	ctx context.Context, key string,
) (string, error) {
	const op = "PreferencesRepository.ReadPreference"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT value FROM preferences WHERE key = $1;`

	var value string
	err := r.sqldb.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %q: %w", op, key, domain.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

func (r PreferencesRepository) StorePreference(
	ctx context.Context, key, value string,
) error {
	const op = "PreferencesRepository.StorePreference"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.sqldb.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}
	return nil
}
