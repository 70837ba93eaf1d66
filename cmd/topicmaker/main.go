package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lovoo/goka"
	"github.com/niksmo/millet-catalog/config"
	"github.com/niksmo/millet-catalog/internal/adapter"
	"github.com/niksmo/millet-catalog/internal/adapter/kafka"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
)

const (
	partitions        = 3
	replicationFactor = 3
	minISR            = "2"
	deletePolicy      = "delete"
	compactPolicy     = "compact"
)

func main() {
	sigCtx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM,
	)
	defer cancel()

	cfg := config.Load()
	if !cfg.Broker.Enabled() {
		fmt.Println("broker.seed_brokers is empty, nothing to do")
		return
	}

	cl := createClient(cfg)
	defer cl.Close()

	streams := []string{
		cfg.Broker.Topics.FilterSelections,
		cfg.Broker.Topics.CatalogSearches,
	}
	table := toGroupTable(cfg.Broker.Consumers.FilterPopularityGroup)

	printStart(append(streams, table))
	start := time.Now()

	if err := makeTopics(sigCtx, cl, deletePolicy, streams...); err != nil {
		printFail(err)
		os.Exit(1)
	}

	if err := makeTopics(sigCtx, cl, compactPolicy, table); err != nil {
		printFail(err)
		os.Exit(1)
	}

	printComplete(start)
}

func createClient(cfg config.Config) *kadm.Client {
	var tlsConfig *tls.Config
	if t := cfg.Broker.TLS; t.Enabled() {
		var err error
		tlsConfig, err = adapter.LoadTLSConfig(t.CAFile, t.CertFile, t.KeyFile)
		if err != nil {
			printFail(err)
			os.Exit(2)
		}
	}

	cl, err := kadm.NewOptClient(
		kafka.ClientOpts(cfg.Broker.SeedBrokers, tlsConfig)...,
	)
	if err != nil {
		panic(err) // develop mistake
	}
	return cl
}

func makeTopics(
	ctx context.Context, cl *kadm.Client, cleanupPolicy string, topics ...string,
) error {
	isr := minISR
	topicConfig := map[string]*string{
		"cleanup.policy":      &cleanupPolicy,
		"min.insync.replicas": &isr,
	}

	responses, err := cl.CreateTopics(
		ctx,
		partitions,
		replicationFactor,
		topicConfig,
		topics...,
	)
	if err != nil {
		return err
	}

	var errs []error
	for _, res := range responses.Sorted() {
		if res.Err != nil {
			if errors.Is(res.Err, kerr.TopicAlreadyExists) {
				fmt.Printf("topic: %q already exists\n", res.Topic)
				continue
			}
			errs = append(errs, fmt.Errorf("topic %q: %w", res.Topic, res.Err))
			continue
		}
		fmt.Printf("topic: %q created, policy %s\n", res.Topic, cleanupPolicy)
	}

	return errors.Join(errs...)
}

func printStart(topics []string) {
	fmt.Println("initializing topics...")
	for _, t := range topics {
		fmt.Printf("\t- %q\n", t)
	}
	fmt.Println()
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}

func toGroupTable(group string) string {
	return string(goka.GroupTable(goka.Group(group)))
}
