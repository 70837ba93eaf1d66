// Package app wires adapters and the core service into a runnable
// catalog application.
package app

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/niksmo/millet-catalog/config"
	"github.com/niksmo/millet-catalog/internal/adapter"
	"github.com/niksmo/millet-catalog/internal/adapter/httphandler"
	"github.com/niksmo/millet-catalog/internal/adapter/kafka"
	"github.com/niksmo/millet-catalog/internal/adapter/static"
	"github.com/niksmo/millet-catalog/internal/adapter/storage"
	"github.com/niksmo/millet-catalog/internal/core/locale"
	"github.com/niksmo/millet-catalog/internal/core/port"
	"github.com/niksmo/millet-catalog/internal/core/service"
	"github.com/niksmo/millet-catalog/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sr"
	"golang.org/x/sync/errgroup"
)

type serdes struct {
	filterToggled   schema.Serde
	searchPerformed schema.Serde
}

type broker struct {
	clientOpts         []kgo.Opt
	serdes             serdes
	producer           kafka.InteractionsProducer
	popularityProc     *kafka.FilterPopularityProcessor
	popularityView     *kafka.FilterPopularityView
	searchesConsumer   kafka.SearchesConsumer
	withSearchConsumer bool
}

type outbound struct {
	catalog         *static.Catalog
	translator      *locale.Translator
	sqlDB           *storage.SQLDB
	preferences     port.PreferenceStorage
	searchesStorage port.SearchesStorage
	publisher       port.InteractionsPublisher
	popularity      port.PopularityReader
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	logLevel   *slog.LevelVar
	out        outbound
	broker     *broker
	language   *locale.LanguageProvider
	service    *service.Service
	httpServer *httphandler.HTTPServer
	wg         sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initCatalog()
	app.initTranslations()
	app.initStorage()
	app.initLanguage()
	app.initBroker()
	app.initCoreService()
	app.initBrokerConsumers()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	app.logLevel = new(slog.LevelVar)
	app.logLevel.Set(app.cfg.LogLevel)

	opts := &slog.HandlerOptions{Level: app.logLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)

	if app.cfg.Path != "" {
		config.WatchLogLevel(app.cfg.Path, app.logLevel)
	}
}

func (app *App) initCatalog() {
	const op = "App.initCatalog"

	catalog, err := static.NewCatalogFromFile(app.cfg.CatalogFile)
	if err != nil {
		app.fallDown(op, err)
	}
	if err := catalog.Validate(); err != nil {
		app.fallDown(op, err)
	}
	app.out.catalog = catalog
}

func (app *App) initTranslations() {
	const op = "App.initTranslations"
	log := slog.With("op", op)

	tables, err := static.LoadTranslations(app.cfg.TranslationsFile)
	if err != nil {
		app.fallDown(op, err)
	}

	dict, err := locale.NewDictionary(tables)
	var missing *locale.MissingKeysError
	switch {
	case errors.As(err, &missing):
		if app.cfg.StrictTranslations {
			app.fallDown(op, err)
		}
		log.Warn("translations are incomplete, keys fall back", "err", err)
	case err != nil:
		app.fallDown(op, err)
	}

	app.out.translator = locale.NewTranslator(dict)
}

func (app *App) initStorage() {
	const op = "App.initStorage"
	log := slog.With("op", op)

	if app.cfg.SQLDB == "" {
		log.Warn("sql database is not configured, preferences kept in memory")
		app.out.preferences = storage.NewMemoryPreferences()
		return
	}

	db, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.out.sqlDB = &db
	app.out.preferences = storage.NewPreferencesRepository(db)
	app.out.searchesStorage = storage.NewSearchesRepository(db)
}

func (app *App) initLanguage() {
	const op = "App.initLanguage"

	lp, err := locale.NewLanguageProvider(app.ctx, app.out.preferences)
	if err != nil {
		app.fallDown(op, err)
	}
	app.language = lp
}

func (app *App) initBroker() {
	const op = "App.initBroker"
	log := slog.With("op", op)

	bcfg := app.cfg.Broker
	if !bcfg.Enabled() {
		log.Warn("broker is not configured, interactions are not published")
		return
	}

	srOpts := []sr.ClientOpt{sr.URLs(bcfg.SchemaRegistryURLs...)}
	var tlsConfig *tls.Config
	if bcfg.TLS.Enabled() {
		var err error
		tlsConfig, err = adapter.LoadTLSConfig(
			bcfg.TLS.CAFile, bcfg.TLS.CertFile, bcfg.TLS.KeyFile,
		)
		if err != nil {
			app.fallDown(op, err)
		}
		srOpts = append(srOpts, sr.HTTPClient(&http.Client{
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		}))
		kafka.UseTLS(tlsConfig)
	}

	b := &broker{clientOpts: kafka.ClientOpts(bcfg.SeedBrokers, tlsConfig)}
	app.broker = b

	srClient, err := sr.NewClient(srOpts...)
	if err != nil {
		app.fallDown(op, err)
	}
	app.initSerdes(schema.NewRegistrySchemaIdentifier(srClient))

	producer, err := kafka.NewInteractionsProducer(
		kafka.ProducerClientOpt(app.ctx, b.clientOpts...),
		kafka.ProducerFilterTopicOpt(bcfg.Topics.FilterSelections, b.serdes.filterToggled),
		kafka.ProducerSearchTopicOpt(bcfg.Topics.CatalogSearches, b.serdes.searchPerformed),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	b.producer = producer
	app.out.publisher = producer

	proc, err := kafka.NewFilterPopularityProc(
		bcfg.SeedBrokers,
		bcfg.Topics.FilterSelections,
		bcfg.Consumers.FilterPopularityGroup,
		b.serdes.filterToggled,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	b.popularityProc = proc

	view, err := kafka.NewFilterPopularityView(
		bcfg.SeedBrokers, bcfg.Consumers.FilterPopularityGroup,
	)
	if err != nil {
		app.fallDown(op, err)
	}
	b.popularityView = view
	app.out.popularity = view
}

func (app *App) initSerdes(si schema.SchemaIdentifier) {
	const op = "App.initSerdes"

	topics := app.cfg.Broker.Topics
	g, ctx := errgroup.WithContext(app.ctx)

	g.Go(func() error {
		s, err := schema.NewSerdeFilterToggledV1(
			ctx,
			schema.SubjectOpt(topics.FilterSelections+"-value"),
			schema.SchemaIdentifierOpt(si),
		)
		app.broker.serdes.filterToggled = s
		return err
	})
	g.Go(func() error {
		s, err := schema.NewSerdeSearchPerformedV1(
			ctx,
			schema.SubjectOpt(topics.CatalogSearches+"-value"),
			schema.SchemaIdentifierOpt(si),
		)
		app.broker.serdes.searchPerformed = s
		return err
	})

	if err := g.Wait(); err != nil {
		app.fallDown(op, err)
	}
}

func (app *App) initCoreService() {
	app.service = service.New(
		app.out.catalog,
		app.out.translator,
		app.out.publisher,
		app.out.popularity,
		app.out.searchesStorage,
	)
}

func (app *App) initBrokerConsumers() {
	const op = "App.initBrokerConsumers"

	if app.broker == nil {
		return
	}
	if app.out.searchesStorage == nil {
		slog.Warn("search log is disabled without sql database", "op", op)
		return
	}

	bcfg := app.cfg.Broker
	c, err := kafka.NewSearchesConsumer(
		kafka.ConsumerClientOpt(
			bcfg.Topics.CatalogSearches,
			bcfg.Consumers.SearchSaverGroup,
			app.broker.clientOpts...,
		),
		kafka.ConsumerDecoderOpt(app.broker.serdes.searchPerformed),
		kafka.SearchesConsumerSaverOpt(app.service),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.broker.searchesConsumer = c
	app.broker.withSearchConsumer = true
}

func (app *App) initInboundAdapters() {
	const op = "App.initInboundAdapters"

	mux := http.NewServeMux()
	httphandler.RegisterCatalog(
		mux, app.service, app.service, app.language, app.out.translator,
	)
	handler := httphandler.AllowJSON(mux)
	srv, err := httphandler.NewHTTPServer(app.ctx, app.cfg.HTTPServerAddr, handler)
	if err != nil {
		app.fallDown(op, err)
	}
	app.httpServer = srv
}

func (app *App) Run(stopFn context.CancelFunc) {
	if b := app.broker; b != nil {
		app.wg.Add(2)
		go b.popularityProc.Run(app.ctx, stopFn, &app.wg)
		go b.popularityView.Run(app.ctx, stopFn, &app.wg)
		app.wg.Wait()

		if b.withSearchConsumer {
			go b.searchesConsumer.Run(app.ctx)
		}
	}

	go app.httpServer.Run(stopFn)

	slog.Info("application is running", "language", app.language.Current())
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)

	if b := app.broker; b != nil {
		if b.withSearchConsumer {
			b.searchesConsumer.Close()
		}
		b.popularityProc.Close()
		b.producer.Close()
	}

	if app.out.sqlDB != nil {
		app.out.sqlDB.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
