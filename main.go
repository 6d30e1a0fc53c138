package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tomerlev/telegram-lunchbox-bot/config"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/blob"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/bot"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/llm"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/scan"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/storage"
	"github.com/tomerlev/telegram-lunchbox-bot/internal/watcher"
)

const logFileName = "telegram-lunchbox-bot.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	config.LoadEnvFile()

	// JOURNAL_STREAM is set by systemd when running as a service.
	// Skip file logging under systemd (journald handles it, and ProtectSystem=strict
	// makes the working directory read-only).
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		// Local development: log to both stderr and file
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open log file")
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		multiWriter := io.MultiWriter(consoleWriter, fileWriter)
		log.Logger = log.Output(multiWriter)

		log.Info().Str("logFile", logFileName).Msg("logging to file")
	}

	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal().Msg("BOT_TOKEN is not set")
	}

	// Database path (optional, defaults to lunchbox.db)
	dbPath := os.Getenv("LUNCHBOX_DB_PATH")
	if dbPath == "" {
		dbPath = "lunchbox.db"
	}

	tg, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}
	tg.Debug = false
	log.Info().Str("username", tg.Self.UserName).Msg("authorized on account")

	// Register bot commands for Telegram's command menu
	bot.RegisterCommands(tg)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer store.Close()
	log.Info().Str("dbPath", dbPath).Msg("store initialized")

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	analyzer, err := newAnalyzer(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vision analyzer")
	}

	// Wrap with cache so re-scans of the same photo are free
	visionAnalyzer := llm.NewCachedAnalyzer(analyzer, store)
	log.Info().Msg("vision analysis caching enabled")

	blobs, err := newBlobStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob store")
	}

	scans := scan.NewService(store, blobs)

	g, ctx := errgroup.WithContext(ctx)

	// Run bot update loop
	g.Go(func() error {
		return runBot(ctx, tg, store, visionAnalyzer, scans)
	})

	// Run the offer feed for trade notifications
	feed := watcher.NewService(store, tg)
	g.Go(func() error {
		feed.Run(ctx)
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}

// newAnalyzer picks the vision provider from VISION_PROVIDER (gemini by
// default, claude as an alternative).
func newAnalyzer(ctx context.Context) (llm.Analyzer, error) {
	switch os.Getenv("VISION_PROVIDER") {
	case "claude":
		analyzer := llm.NewClaudeAnalyzer(llm.ClaudeOpts{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
		})
		log.Info().Msg("claude vision analyzer initialized")
		return analyzer, nil
	default:
		analyzer, err := llm.NewGeminiAnalyzer(ctx)
		if err != nil {
			return nil, err
		}
		log.Info().Msg("gemini vision analyzer initialized")
		return analyzer, nil
	}
}

// newBlobStore picks S3 when S3_BUCKET is set, otherwise a local directory
// store for development.
func newBlobStore(ctx context.Context) (blob.Store, error) {
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		store, err := blob.NewS3Store(ctx, blob.S3Opts{
			Bucket:          bucket,
			Region:          os.Getenv("AWS_REGION"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", bucket).Msg("s3 blob store initialized")
		return store, nil
	}

	dir := os.Getenv("BLOB_DIR")
	if dir == "" {
		dir = "blobs"
	}
	baseURL := os.Getenv("BLOB_BASE_URL")
	if baseURL == "" {
		baseURL = "file://" + dir
	}
	store, err := blob.NewLocalStore(dir, baseURL)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dir", dir).Msg("local blob store initialized")
	return store, nil
}

func runBot(ctx context.Context, tg *tgbotapi.BotAPI, store storage.Store, visionAnalyzer llm.Analyzer, scans *scan.Service) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := tg.GetUpdatesChan(updateConfig)

	b := bot.NewBot(tg, store, visionAnalyzer, scans)

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping bot update loop")
			tg.StopReceivingUpdates()
			log.Info().Msg("waiting for active handlers to finish")
			wg.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				log.Warn().Msg("updates channel closed")
				wg.Wait()
				return nil
			}
			wg.Add(1)
			go func(u tgbotapi.Update) {
				defer wg.Done()
				b.HandleUpdate(ctx, u)
			}(update)
		}
	}
}
