// Package config reads the service configuration from a YAML file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "CATALOG_CONFIG_FILE"

type consumers struct {
	FilterPopularityGroup string `mapstructure:"filter_popularity_group"`
	SearchSaverGroup      string `mapstructure:"search_saver_group"`
}

type topics struct {
	FilterSelections string `mapstructure:"filter_selections"`
	CatalogSearches  string `mapstructure:"catalog_searches"`
}

type tlsFiles struct {
	CAFile   string `mapstructure:"ca_file"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

func (t tlsFiles) Enabled() bool {
	return t.CAFile != "" && t.CertFile != "" && t.KeyFile != ""
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	TLS                tlsFiles  `mapstructure:"tls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

// Enabled reports whether interactions are published to a broker.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type Config struct {
	LogLevel           slog.Level `mapstructure:"log_level"`
	HTTPServerAddr     string     `mapstructure:"http_server_addr"`
	SQLDB              string     `mapstructure:"sql_db"`
	CatalogFile        string     `mapstructure:"catalog_file"`
	TranslationsFile   string     `mapstructure:"translations_file"`
	StrictTranslations bool       `mapstructure:"strict_translations"`
	Broker             broker     `mapstructure:"broker"`

	// Path is the file the config was read from.
	Path string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "INFO")
	v.SetDefault("http_server_addr", ":8080")
	v.SetDefault("broker.topics.filter_selections", "filter_selections")
	v.SetDefault("broker.topics.catalog_searches", "catalog_searches")
	v.SetDefault("broker.consumers.filter_popularity_group", "filter-popularity")
	v.SetDefault("broker.consumers.search_saver_group", "search-saver")
}

// Load reads the file named by --config or CATALOG_CONFIG_FILE and
// exits the process on failure.
func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads and validates the config at path. Unknown keys are
// rejected.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	err := v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	cfg.Path = path
	return cfg, nil
}

// WatchLogLevel applies log_level changes of the config file to level.
// Invalid edits are logged and ignored.
func WatchLogLevel(path string, level *slog.LevelVar) {
	const op = "config.WatchLogLevel"
	log := slog.With("op", op)

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		log.Warn("config is not watched", "err", err)
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := LoadFile(e.Name)
		if err != nil {
			log.Warn("ignoring invalid config change", "err", err)
			return
		}
		if cfg.LogLevel == level.Level() {
			return
		}
		level.Set(cfg.LogLevel)
		log.Info("log level changed", "level", cfg.LogLevel)
	})
	v.WatchConfig()
}

func (c Config) validate() error {
	if c.HTTPServerAddr == "" {
		return fmt.Errorf("http_server_addr: required")
	}
	if !c.Broker.Enabled() {
		return nil
	}
	if len(c.Broker.SchemaRegistryURLs) == 0 {
		return fmt.Errorf("broker.schema_registry_urls: required with seed_brokers")
	}
	t := c.Broker.TLS
	anyTLS := t.CAFile != "" || t.CertFile != "" || t.KeyFile != ""
	if anyTLS && !t.Enabled() {
		return fmt.Errorf("broker.tls: ca_file, cert_file and key_file go together")
	}
	return nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	c.Fprint(os.Stdout)
}

// Fprint writes the loaded config to w. The DSN is reported only as set or unset.
func (c Config) Fprint(w io.Writer) {
	template := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	SQLDB=%t
	CatalogFile=%q
	TranslationsFile=%q
	StrictTranslations=%t

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		FilterSelections=%q
		CatalogSearches=%q
	Consumers:
		FilterPopularityGroup=%q
		SearchSaverGroup=%q

`
	fmt.Fprintln(w, "Loaded config:")
	fmt.Fprintf(w,
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.SQLDB != "",
		c.CatalogFile,
		c.TranslationsFile,
		c.StrictTranslations,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.FilterSelections,
		c.Broker.Topics.CatalogSearches,
		c.Broker.Consumers.FilterPopularityGroup,
		c.Broker.Consumers.SearchSaverGroup,
	)
}
