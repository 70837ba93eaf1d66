package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/niksmo/millet-catalog/internal/core/port"
)

var _ port.SearchesStorage = SearchesRepository{}

type SearchesRepository struct {
	sqldb sqldb
}

func NewSearchesRepository(sqldb sqldb) SearchesRepository {
	return SearchesRepository{sqldb}
}

// StoreSearches appends the batch to the search log in one transaction.
// Redelivered events are ignored.
func (r SearchesRepository) StoreSearches(
	ctx context.Context, vs []domain.SearchPerformed,
) (storeErr error) {
	const op = "SearchesRepository.StoreSearches"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(vs) == 0 {
		return nil
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	query := `
		INSERT INTO catalog_searches (
			view_id, language, query, result_count, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (view_id, occurred_at) DO NOTHING;
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, v := range vs {
		_, err := stmt.ExecContext(ctx,
			v.ViewID, string(v.Language), v.Query, v.ResultCount, v.At.UTC(),
		)
		if err != nil {
			return fmt.Errorf("%s: failed to exec: %w", op, err)
		}
	}

	log.Debug("searches stored", "count", len(vs))
	return nil
}
