package kafka

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/lovoo/goka"
	"github.com/niksmo/millet-catalog/internal/core/port"
	"github.com/niksmo/millet-catalog/pkg/schema"
)

var _ port.FilterPopularityProcessor = (*FilterPopularityProcessor)(nil)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "runProc"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A filterToggledCodec used for serde [schema.FilterToggledV1]
type filterToggledCodec struct {
	serde Serde
}

func newFilterToggledCodec(s Serde) filterToggledCodec {
	return filterToggledCodec{s}
}

func (c filterToggledCodec) Encode(v any) ([]byte, error) {
	const op = "filterToggledCodec.Encode"
	if _, ok := v.(schema.FilterToggledV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c filterToggledCodec) Decode(data []byte) (any, error) {
	const op = "filterToggledCodec.Decode"
	var s schema.FilterToggledV1
	if err := c.serde.Decode(data, &s); err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A selectionCount is the number of views that currently have a filter
// value selected.
type selectionCount int64

// A selectionCountCodec used for serde [selectionCount]
type selectionCountCodec struct{}

func (selectionCountCodec) Encode(v any) ([]byte, error) {
	const op = "selectionCountCodec.Encode"
	n, ok := v.(selectionCount)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return strconv.AppendInt(nil, int64(n), 10), nil
}

func (selectionCountCodec) Decode(data []byte) (any, error) {
	const op = "selectionCountCodec.Decode"
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return nil, opErr(err, op)
	}
	return selectionCount(n), nil
}

// nextSelectionCount applies one toggle to the stored count.
// The count never drops below zero.
func nextSelectionCount(current any, selected bool) selectionCount {
	n, _ := current.(selectionCount)
	if selected {
		return n + 1
	}
	if n > 0 {
		return n - 1
	}
	return 0
}

// A FilterPopularityProcessor counts filter selections
// from the toggle stream into a group table.
type FilterPopularityProcessor struct {
	opPrefix string
	proc     processor
}

func NewFilterPopularityProc(
	seedBrokers []string,
	inputStream string,
	group string,
	filterToggledSerde Serde,
) (*FilterPopularityProcessor, error) {
	const op = "NewFilterPopularityProc"

	p := &FilterPopularityProcessor{opPrefix: "FilterPopularityProcessor"}

	gg := goka.DefineGroup(goka.Group(group),
		goka.Input(
			goka.Stream(inputStream),
			newFilterToggledCodec(filterToggledSerde),
			p.processFn,
		),
		goka.Persist(selectionCountCodec{}),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{opPrefix: p.opPrefix, gp: gp}
	return p, nil
}

func (p *FilterPopularityProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *FilterPopularityProcessor) Close() {
	p.proc.close()
}

func (p *FilterPopularityProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"

	event, ok := msg.(schema.FilterToggledV1)
	if !ok {
		slog.Error("unexpected message type",
			"op", makeOp(p.opPrefix, op), "key", ctx.Key())
		return
	}
	n := nextSelectionCount(ctx.Value(), event.Selected)
	ctx.SetValue(n)
	slog.Debug("selection counted",
		"op", makeOp(p.opPrefix, op),
		"key", ctx.Key(),
		"selected", event.Selected,
		"count", int64(n),
	)
}
