package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/millet-catalog/internal/core/port"
)

var _ port.PopularityReader = (*FilterPopularityView)(nil)

// A FilterPopularityView reads the selection counts kept by
// [FilterPopularityProcessor].
type FilterPopularityView struct {
	opPrefix string
	gv       *goka.View
}

func NewFilterPopularityView(
	seedBrokers []string, group string,
) (*FilterPopularityView, error) {
	const op = "NewFilterPopularityView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(group)),
		selectionCountCodec{},
		withNonlogViewOpt(),
	)
	if err != nil {
		return nil, opErr(err, op)
	}

	return &FilterPopularityView{
		opPrefix: "FilterPopularityView",
		gv:       gv,
	}, nil
}

func (v *FilterPopularityView) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "Run"
	log := slog.With("op", makeOp(v.opPrefix, op))

	defer wg.Done()

	go func() {
		defer stopFn()
		if err := v.gv.Run(ctx); err != nil {
			log.Error("stopped", "err", err)
			return
		}
		log.Info("stopped")
	}()
	log.Info("running")
}

// Selections returns the count stored under key, zero when the key was
// never selected.
func (v *FilterPopularityView) Selections(key string) (int, error) {
	const op = "Selections"

	value, err := v.gv.Get(key)
	if err != nil {
		return 0, opErr(err, v.opPrefix, op)
	}
	if value == nil {
		return 0, nil
	}

	n, ok := value.(selectionCount)
	if !ok {
		return 0, opErr(
			fmt.Errorf("%w: %T", ErrInvalidValueType, value), v.opPrefix, op,
		)
	}
	return int(n), nil
}
