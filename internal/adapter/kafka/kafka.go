// Package kafka publishes catalog interactions, keeps the filter
// popularity table and feeds the search log from the broker.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/IBM/sarama"
	"github.com/lovoo/goka"
	"github.com/niksmo/millet-catalog/internal/core/domain"
	"github.com/niksmo/millet-catalog/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

// ClientOpts returns the connection options shared by producers and
// consumers. A nil tlsConfig keeps plaintext.
func ClientOpts(seedBrokers []string, tlsConfig *tls.Config) []kgo.Opt {
	opts := []kgo.Opt{kgo.SeedBrokers(seedBrokers...)}
	if tlsConfig != nil {
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}
	return opts
}

// UseTLS switches goka processors and views to TLS.
// It must be called before any of them is created.
func UseTLS(tlsConfig *tls.Config) {
	if tlsConfig == nil {
		return
	}
	cfg := goka.DefaultConfig()
	cfg.Net.TLS.Enable = true
	cfg.Net.TLS.Config = tlsConfig
	cfg.Version = sarama.V2_8_0_0
	goka.ReplaceGlobalConfig(cfg)
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func withNonlogViewOpt() goka.ViewOption {
	return goka.WithViewLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func filterToggledToSchemaV1(v domain.FilterToggled) (s schema.FilterToggledV1) {
	s.ViewID = v.ViewID
	s.Dimension = string(v.Dimension)
	s.Value = v.Value
	s.Selected = v.Selected
	s.OccurredAt = v.At.UTC()
	return
}

func searchPerformedToSchemaV1(
	v domain.SearchPerformed,
) (s schema.SearchPerformedV1) {
	s.ViewID = v.ViewID
	s.Language = string(v.Language)
	s.Query = v.Query
	s.ResultCount = v.ResultCount
	s.OccurredAt = v.At.UTC()
	return
}

func schemaV1ToSearchPerformed(
	s schema.SearchPerformedV1,
) (domain.SearchPerformed, error) {
	lang, err := domain.ParseLanguage(s.Language)
	if err != nil {
		return domain.SearchPerformed{}, err
	}
	return domain.SearchPerformed{
		ViewID:      s.ViewID,
		Language:    lang,
		Query:       s.Query,
		ResultCount: s.ResultCount,
		At:          s.OccurredAt,
	}, nil
}
