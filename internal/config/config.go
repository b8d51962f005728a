package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"whalegen/internal/core/domain"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel  string
	Discovery Discovery
	Storage   Storage
	Pixelate  Pixelate
	Batch     Batch
	HTTP      HTTP
	Telegram  Telegram
}

type Discovery struct {
	Endpoint     string
	APIKey       string
	EngineID     string
	Query        string
	ExcludeTerms string
	FileType     string
	Limit        int
}

type Storage struct {
	Root           string
	ImageBucket    string
	MetadataBucket string
	ImageBaseURI   string
	Region         string
	Endpoint       string
}

type Pixelate struct {
	CanvasWidth  int
	CanvasHeight int
	BlockSize    int
}

type Batch struct {
	StartIndex    int
	FailurePolicy domain.FailurePolicy
	Workers       int
	URLs          []string
}

type HTTP struct {
	Timeout        time.Duration
	RetryAttempts  uint64
	RetryBaseDelay time.Duration
}

type Telegram struct {
	BotToken string
	ChatID   int64
}

// SetDefaults registers the default of every key. Bucket names and the base uri point at the whalecoin deployment.
func SetDefaults() {
	viper.SetDefault("log.level", "info")

	viper.SetDefault("discovery.endpoint", "https://customsearch.googleapis.com/customsearch/v1")
	viper.SetDefault("discovery.query", "whale")
	viper.SetDefault("discovery.exclude_terms", "nft")
	viper.SetDefault("discovery.file_type", "png")
	viper.SetDefault("discovery.limit", 10)

	viper.SetDefault("storage.root", ".")
	viper.SetDefault("storage.image_bucket", "whalecoin-img")
	viper.SetDefault("storage.metadata_bucket", "whalecoin-md")
	viper.SetDefault("storage.image_base_uri", "https://whalecoin-img.s3.us-west-1.amazonaws.com")
	viper.SetDefault("storage.region", "us-west-1")

	viper.SetDefault("pixelate.canvas_width", 400)
	viper.SetDefault("pixelate.canvas_height", 300)
	viper.SetDefault("pixelate.block_size", 6)

	viper.SetDefault("batch.start_index", 0)
	viper.SetDefault("batch.failure_policy", string(domain.Continue))
	viper.SetDefault("batch.workers", 1)

	viper.SetDefault("http.timeout", "30s")
	viper.SetDefault("http.retry_attempts", 3)
	viper.SetDefault("http.retry_base_delay", "500ms")
}

// Read loads the toml config file at path, or config.toml from the working directory when path is empty.
// Environment variables prefixed with WHALEGEN_ override file values. A missing default file is not an error.
func Read(path string) error {
	SetDefaults()

	viper.SetEnvPrefix("whalegen")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType("toml")
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
	}

	log.Info().Str("path", path).Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			log.Warn().Msg("no config file found, using defaults and environment")
			return nil
		}
		return fmt.Errorf("could not read config file: %w", err)
	}

	return nil
}

// Load assembles the configuration from viper and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel: viper.GetString("log.level"),
		Discovery: Discovery{
			Endpoint:     viper.GetString("discovery.endpoint"),
			APIKey:       viper.GetString("discovery.api_key"),
			EngineID:     viper.GetString("discovery.engine_id"),
			Query:        viper.GetString("discovery.query"),
			ExcludeTerms: viper.GetString("discovery.exclude_terms"),
			FileType:     viper.GetString("discovery.file_type"),
			Limit:        viper.GetInt("discovery.limit"),
		},
		Storage: Storage{
			Root:           viper.GetString("storage.root"),
			ImageBucket:    viper.GetString("storage.image_bucket"),
			MetadataBucket: viper.GetString("storage.metadata_bucket"),
			ImageBaseURI:   viper.GetString("storage.image_base_uri"),
			Region:         viper.GetString("storage.region"),
			Endpoint:       viper.GetString("storage.endpoint"),
		},
		Pixelate: Pixelate{
			CanvasWidth:  viper.GetInt("pixelate.canvas_width"),
			CanvasHeight: viper.GetInt("pixelate.canvas_height"),
			BlockSize:    viper.GetInt("pixelate.block_size"),
		},
		Batch: Batch{
			StartIndex:    viper.GetInt("batch.start_index"),
			FailurePolicy: domain.FailurePolicy(strings.ToLower(viper.GetString("batch.failure_policy"))),
			Workers:       viper.GetInt("batch.workers"),
			URLs:          viper.GetStringSlice("batch.urls"),
		},
		HTTP: HTTP{
			Timeout:        viper.GetDuration("http.timeout"),
			RetryAttempts:  viper.GetUint64("http.retry_attempts"),
			RetryBaseDelay: viper.GetDuration("http.retry_base_delay"),
		},
		Telegram: Telegram{
			BotToken: viper.GetString("telegram.bot_token"),
			ChatID:   viper.GetInt64("telegram.chat_id"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that would otherwise only fail halfway through a batch.
func (c *Config) Validate() error {
	var errs []error

	p := c.Pixelate
	if p.CanvasWidth <= 0 || p.CanvasHeight <= 0 {
		errs = append(errs, fmt.Errorf("canvas must be positive, got %dx%d", p.CanvasWidth, p.CanvasHeight))
	} else if p.BlockSize <= 0 || p.BlockSize > min(p.CanvasWidth, p.CanvasHeight) {
		errs = append(errs, fmt.Errorf("%w: block size %d must be within 1..%d", domain.ErrUnsupportedBlockSize,
			p.BlockSize, min(p.CanvasWidth, p.CanvasHeight)))
	}

	switch c.Batch.FailurePolicy {
	case domain.Abort, domain.Continue:
	default:
		errs = append(errs, fmt.Errorf("unknown failure policy %q, expected %q or %q", c.Batch.FailurePolicy,
			domain.Abort, domain.Continue))
	}

	if c.Batch.StartIndex < 0 {
		errs = append(errs, fmt.Errorf("start index must not be negative, got %d", c.Batch.StartIndex))
	}

	if c.Batch.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Batch.Workers))
	}

	if c.Storage.ImageBucket == "" || c.Storage.MetadataBucket == "" {
		errs = append(errs, errors.New("image and metadata buckets are required"))
	}

	if c.Storage.ImageBaseURI == "" {
		errs = append(errs, errors.New("image base uri is required"))
	}

	if len(c.Batch.URLs) == 0 && (c.Discovery.APIKey == "" || c.Discovery.EngineID == "") {
		errs = append(errs, errors.New("discovery api key and engine id are required when no urls are given"))
	}

	return errors.Join(errs...)
}
