package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/niksmo/millet-catalog/internal/core/port"
	"github.com/niksmo/millet-catalog/pkg/retry"
	"github.com/niksmo/millet-catalog/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

const slowDownDelay = time.Second

var processRetry = retry.RetryConfig{
	MaxAttempts: 4,
	Backoff:     retry.ExponentialBackoff(250 * time.Millisecond),
}

type ConsumerOpt func(*consumerOpts) error

type consumerOpts struct {
	cl            ConsumerClient
	decoder       Decoder
	searchesSaver port.SearchesSaver
}

func (co *consumerOpts) apply(opts ...ConsumerOpt) error {
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return err
		}
	}
	if co.cl == nil || co.decoder == nil || co.searchesSaver == nil {
		return ErrTooFewOpts
	}
	return nil
}

func ConsumerClientOpt(topic, group string, clientOpts ...kgo.Opt) ConsumerOpt {
	return func(co *consumerOpts) error {
		all := append(slices.Clone(clientOpts),
			kgo.ConsumeTopics(topic),
			kgo.ConsumerGroup(group),
			kgo.DisableAutoCommit(),
		)
		cl, err := kgo.NewClient(all...)
		if err != nil {
			return err
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func SearchesConsumerSaverOpt(s port.SearchesSaver) ConsumerOpt {
	return func(co *consumerOpts) error {
		if s == nil {
			return errors.New("searches saver is nil")
		}
		co.searchesSaver = s
		return nil
	}
}

type consumerParent interface {
	processFetches(context.Context, kgo.Fetches) error
}

// A consumer is used for composition.
//
// Fetching records from kafka broker, committing offsets after the
// parent processed them and closing underlying [kgo.Client].
// A polled batch is processed until it succeeds or the context ends,
// the next poll never skips past it.
type consumer struct {
	opPrefix      string
	parent        consumerParent
	cl            ConsumerClient
	slowDownDelay time.Duration
	processRetry  retry.RetryConfig
}

func (c consumer) run(ctx context.Context) {
	const op = "run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")

	for {
		select {
		case <-ctx.Done():
			log.Info("stopped")
			return
		default:
		}

		err := c.consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			log.Error("failed to consume", "err", err)
			c.slowDown(ctx)
		}
	}
}

func (c consumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if fetches.Empty() {
		return nil
	}

	if err := c.process(ctx, fetches); err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if err := c.commit(ctx); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) process(ctx context.Context, fetches kgo.Fetches) error {
	const op = "process"
	log := slog.With("op", makeOp(c.opPrefix, op))

	for {
		err := retry.Do(ctx, c.processRetry, func() error {
			return c.parent.processFetches(ctx, fetches)
		})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return opErr(err, c.opPrefix, op)
		}
		log.Error("failed to process batch, retrying", "err", err)
		c.slowDown(ctx)
	}
}

func (c consumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	const op = "pollFetches"

	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	if err := c.handleFetchesErrs(fetches); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	return fetches, nil
}

func (c consumer) handleFetchesErrs(fetches kgo.Fetches) error {
	var errsMessages []string
	fetches.EachError(func(t string, p int32, err error) {
		errsMessages = append(errsMessages,
			fmt.Sprintf("topic %q partition %d: %q", t, p, err),
		)
	})

	if len(errsMessages) != 0 {
		return errors.New(strings.Join(errsMessages, "; "))
	}
	return nil
}

func (c consumer) slowDown(ctx context.Context) {
	t := time.NewTimer(c.slowDownDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (c consumer) commit(ctx context.Context) error {
	const op = "commit"

	if err := ctx.Err(); err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if err := c.cl.CommitUncommittedOffsets(ctx); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) close() {
	const op = "close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

// A SearchesConsumer consumes search events
// then sends them to the core service for the search log.
type SearchesConsumer struct {
	opPrefix string
	consumer consumer
	saver    port.SearchesSaver
	decoder  Decoder
}

func NewSearchesConsumer(opts ...ConsumerOpt) (sc SearchesConsumer, err error) {
	const op = "NewSearchesConsumer"

	var options consumerOpts
	if err := options.apply(opts...); err != nil {
		if options.cl != nil {
			options.cl.Close()
		}
		return sc, opErr(err, op)
	}

	return newSearchesConsumer(options), nil
}

func newSearchesConsumer(options consumerOpts) SearchesConsumer {
	opPrefix := "SearchesConsumer"

	sc := SearchesConsumer{
		opPrefix: opPrefix,
		saver:    options.searchesSaver,
		decoder:  options.decoder,
	}
	sc.consumer = consumer{
		opPrefix:      opPrefix,
		parent:        sc,
		cl:            options.cl,
		slowDownDelay: slowDownDelay,
		processRetry:  processRetry,
	}
	return sc
}

func (c SearchesConsumer) Run(ctx context.Context) {
	c.consumer.run(ctx)
}

func (c SearchesConsumer) Close() {
	c.consumer.close()
}

func (c SearchesConsumer) processFetches(
	ctx context.Context, fetches kgo.Fetches,
) error {
	const op = "processFetches"

	values := c.toDomain(fetches)
	if len(values) == 0 {
		return nil
	}

	if err := c.saver.SaveSearches(ctx, values); err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c SearchesConsumer) toDomain(
	fetches kgo.Fetches,
) (vs []domain.SearchPerformed) {
	const op = "toDomain"
	log := slog.With("op", makeOp(c.opPrefix, op))

	fetches.EachRecord(func(r *kgo.Record) {
		v, err := c.decodeRecValue(r)
		if err != nil {
			log.Error(
				"failed to decode value",
				"err", err,
				"topic", r.Topic,
				"offset", r.Offset,
			)
			return
		}
		vs = append(vs, v)
	})
	return vs
}

func (c SearchesConsumer) decodeRecValue(
	r *kgo.Record,
) (domain.SearchPerformed, error) {
	var s schema.SearchPerformedV1
	if err := c.decoder.Decode(r.Value, &s); err != nil {
		return domain.SearchPerformed{}, err
	}
	return schemaV1ToSearchPerformed(s)
}
