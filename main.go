package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"whalegen/internal/adapters/converter"
	"whalegen/internal/adapters/discovery"
	"whalegen/internal/adapters/file"
	"whalegen/internal/adapters/sender"
	"whalegen/internal/adapters/uploader"
	"whalegen/internal/config"
	"whalegen/internal/core/port"
	"whalegen/internal/core/service"

	"github.com/go-telegram/bot"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "whalegen",
		Short:        "Pixelate discovered whale images and publish them with their descriptors",
		SilenceUsage: true,
		RunE:         run,
	}

	flags := cmd.Flags()
	flags.String("config", "", "path to a toml config file (default ./config.toml)")
	flags.Int("start-index", 0, "sequence index assigned to the first source image")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Int("workers", 0, "number of items processed in parallel")
	flags.String("failure-policy", "", "what to do when an item fails: abort or continue")
	flags.StringSlice("url", nil, "source image url, repeatable; skips discovery")

	bindings := map[string]string{
		"batch.start_index":    "start-index",
		"log.level":            "log-level",
		"batch.workers":        "workers",
		"batch.failure_policy": "failure-policy",
		"batch.urls":           "url",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Panic().Err(err).Str("flag", flag).Msg("failed binding flag")
		}
	}

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	log.Info().Msg("starting whalegen...")

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	if err := config.Read(configPath); err != nil {
		log.Error().Err(err).Msg("could not read config file")
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	setLogLevel(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	batch, err := wire(ctx, cfg)
	if err != nil {
		return err
	}

	summary, err := batch.RunDiscovered(ctx, cfg.Batch.StartIndex)
	if summary != nil {
		fmt.Println(sender.FormatSummary(summary))
	}
	if err != nil {
		log.Error().Err(err).Msg("batch did not complete")
		return err
	}

	log.Info().Msg("batch complete")

	return nil
}

func setLogLevel(level string) {
	var logLevel zerolog.Level

	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)
}

func wire(ctx context.Context, cfg *config.Config) (*service.Batch, error) {
	pixelator, err := converter.NewPixelator(cfg.Pixelate.CanvasWidth, cfg.Pixelate.CanvasHeight,
		cfg.Pixelate.BlockSize)
	if err != nil {
		log.Error().Err(err).Msg("failed initializing pixelator")
		return nil, err
	}

	store := file.NewStore(afero.NewOsFs(), cfg.Storage.Root)
	downloader := file.NewDownloader(cfg.HTTP.Timeout, cfg.HTTP.RetryAttempts, cfg.HTTP.RetryBaseDelay)

	s3Client, err := uploader.NewS3Client(ctx, cfg.Storage.Region, cfg.Storage.Endpoint)
	if err != nil {
		log.Error().Err(err).Msg("failed initializing s3 client")
		return nil, err
	}
	s3Uploader := uploader.NewS3(s3Client, store.Fs(), cfg.HTTP.RetryAttempts, cfg.HTTP.RetryBaseDelay)

	var discoverer port.Discoverer
	if len(cfg.Batch.URLs) > 0 {
		discoverer = discovery.NewStatic(cfg.Batch.URLs)
	} else {
		discoverer = discovery.NewGoogleSearch(cfg.Discovery.Endpoint, cfg.Discovery.APIKey, cfg.Discovery.EngineID,
			discovery.Query{
				Terms:        cfg.Discovery.Query,
				ExcludeTerms: cfg.Discovery.ExcludeTerms,
				FileType:     cfg.Discovery.FileType,
				Limit:        cfg.Discovery.Limit,
			}, cfg.HTTP.Timeout)
	}

	var summarySender port.SummarySender
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		b, err := bot.New(cfg.Telegram.BotToken)
		if err != nil {
			log.Error().Err(err).Msg("failed initializing telegram bot")
			return nil, err
		}
		summarySender = sender.NewTelegramSender(b, cfg.Telegram.ChatID)
	}

	return service.NewBatch(discoverer, downloader, pixelator, store, s3Uploader, summarySender, service.Settings{
		ImageBucket:    cfg.Storage.ImageBucket,
		MetadataBucket: cfg.Storage.MetadataBucket,
		ImageBaseURI:   cfg.Storage.ImageBaseURI,
		Policy:         cfg.Batch.FailurePolicy,
		Workers:        cfg.Batch.Workers,
	}), nil
}
