package kafka

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/niksmo/millet-catalog/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.InteractionsPublisher = InteractionsProducer{}

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl            ProducerClient
	filterEncoder Encoder
	searchEncoder Encoder
	filterTopic   string
	searchTopic   string
}

// ProducerClientOpt connects to the brokers and checks they answer.
func ProducerClientOpt(ctx context.Context, clientOpts ...kgo.Opt) ProducerOpt {
	return func(opts *producerOpts) error {
		all := append(slices.Clone(clientOpts),
			kgo.RequiredAcks(kgo.AllISRAcks()),
		)
		cl, err := kgo.NewClient(all...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

func ProducerFilterTopicOpt(topic string, encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if topic == "" || encoder == nil {
			return errors.New("filter topic or encoder is empty")
		}
		opts.filterTopic = topic
		opts.filterEncoder = encoder
		return nil
	}
}

func ProducerSearchTopicOpt(topic string, encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if topic == "" || encoder == nil {
			return errors.New("search topic or encoder is empty")
		}
		opts.searchTopic = topic
		opts.searchEncoder = encoder
		return nil
	}
}

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// An InteractionsProducer publishes filter toggles and searches.
type InteractionsProducer struct {
	opPrefix      string
	producer      producer
	filterEncoder Encoder
	searchEncoder Encoder
	filterTopic   string
	searchTopic   string
}

func NewInteractionsProducer(
	opts ...ProducerOpt,
) (InteractionsProducer, error) {
	const op = "NewInteractionsProducer"

	if len(opts) != 3 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			if options.cl != nil {
				options.cl.Close()
			}
			return InteractionsProducer{}, opErr(err, op)
		}
	}

	opPrefix := "InteractionsProducer"
	return InteractionsProducer{
		opPrefix:      opPrefix,
		producer:      producer{opPrefix: opPrefix, cl: options.cl},
		filterEncoder: options.filterEncoder,
		searchEncoder: options.searchEncoder,
		filterTopic:   options.filterTopic,
		searchTopic:   options.searchTopic,
	}, nil
}

func (p InteractionsProducer) Close() {
	p.producer.close()
}

func (p InteractionsProducer) PublishFilterToggled(
	ctx context.Context, v domain.FilterToggled,
) error {
	const op = "PublishFilterToggled"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	s := filterToggledToSchemaV1(v)
	b, err := p.filterEncoder.Encode(s)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}
	r := &kgo.Record{
		Topic: p.filterTopic,
		Key:   []byte(domain.PopularityKey(v.Dimension, v.Value)),
		Value: b,
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func (p InteractionsProducer) PublishSearchPerformed(
	ctx context.Context, v domain.SearchPerformed,
) error {
	const op = "PublishSearchPerformed"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	s := searchPerformedToSchemaV1(v)
	b, err := p.searchEncoder.Encode(s)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}
	r := &kgo.Record{
		Topic: p.searchTopic,
		Key:   []byte(s.ViewID),
		Value: b,
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}
