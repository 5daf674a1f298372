package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/voidshard/tallyman/pkg/detect"
)

const (
	DefaultFile     = "tallyman.yaml"
	DefaultDotEnv   = ".env"
	DefaultSchedule = "@every 1m"
)

type Config struct {
	LogLevel   string `yaml:"log_level" env:"TALLYMAN_LOG_LEVEL"`
	Workers    int    `yaml:"workers" env:"TALLYMAN_WORKERS"`
	DateFormat string `yaml:"date_format" env:"TALLYMAN_DATE_FORMAT"`

	// DayFirst reads ambiguous numeric dates as dd/mm instead of mm/dd.
	DayFirst bool `yaml:"day_first" env:"TALLYMAN_DAY_FIRST"`

	// Out is a store spec, eg. jsonfile:/tmp/out.json or es8:http://localhost:9200
	Out string `yaml:"out" env:"TALLYMAN_OUT"`

	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`

	// Signatures are registered after the built in banks.
	Signatures []detect.Signature `yaml:"signatures"`

	Watch  WatchConfig  `yaml:"watch"`
	Serve  ServeConfig  `yaml:"serve"`
	Export ExportConfig `yaml:"export"`
}

type ElasticsearchConfig struct {
	Addresses []string `yaml:"addresses" env:"TALLYMAN_ES_ADDRESSES" envSeparator:","`
	Index     string   `yaml:"index" env:"TALLYMAN_ES_INDEX"`
	Username  string   `yaml:"username" env:"TALLYMAN_ES_USERNAME"`
	Password  string   `yaml:"password" env:"TALLYMAN_ES_PASSWORD"`
}

type WatchConfig struct {
	Inbox    string `yaml:"inbox" env:"TALLYMAN_WATCH_INBOX"`
	Outbox   string `yaml:"outbox" env:"TALLYMAN_WATCH_OUTBOX"`
	Schedule string `yaml:"schedule" env:"TALLYMAN_WATCH_SCHEDULE"`
	Timezone string `yaml:"timezone" env:"TALLYMAN_WATCH_TZ"`
}

type ServeConfig struct {
	Addr string `yaml:"addr" env:"TALLYMAN_SERVE_ADDR"`
}

type ExportConfig struct {
	Format  string `yaml:"format" env:"TALLYMAN_EXPORT_FORMAT"`
	SignKey string `yaml:"sign_key" env:"TALLYMAN_EXPORT_SIGN_KEY"`
}

// Defaults fill whatever the file and environment leave unset.
func Defaults() Config {
	return Config{
		LogLevel: "info",
		Workers:  4,
		Elasticsearch: ElasticsearchConfig{
			Addresses: []string{"http://localhost:9200"},
			Index:     "tallyman",
		},
		Watch: WatchConfig{
			Inbox:    "inbox",
			Outbox:   "outbox",
			Schedule: DefaultSchedule,
			Timezone: "Local",
		},
		Serve:  ServeConfig{Addr: ":8080"},
		Export: ExportConfig{Format: "tally-xml"},
	}
}

// Load reads the yaml file at path (a missing file is fine), then a .env file
// next to the working directory, then TALLYMAN_* environment variables.
// Later sources win; defaults fill the gaps.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(DefaultDotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DefaultDotEnv, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := mergo.Merge(cfg, Defaults()); err != nil {
		return nil, fmt.Errorf("failed to merge config defaults: %w", err)
	}

	return cfg, cfg.Validate()
}

// Validate checks values the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	_, err := c.Registry()
	return err
}

// Registry is the built in signature table extended with c.Signatures.
func (c *Config) Registry() (*detect.Registry, error) {
	if len(c.Signatures) == 0 {
		return detect.DefaultRegistry(), nil
	}
	reg, err := detect.NewRegistry(append(detect.Builtin(), c.Signatures...)...)
	if err != nil {
		return nil, fmt.Errorf("invalid signatures: %w", err)
	}
	return reg, nil
}
