package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"careguard/internal/authority"
	"careguard/internal/events"
	httpapi "careguard/internal/http"
	"careguard/internal/notification"
	"careguard/internal/ocr"
	"careguard/internal/platform/config"
	"careguard/internal/platform/httpserver"
	"careguard/internal/platform/logger"
	"careguard/internal/platform/postgres"
	"careguard/internal/platform/redis"
	"careguard/internal/verification"
	verificationhandler "careguard/internal/verification/handler"
	"careguard/internal/verification/metrics"
	"careguard/internal/verification/store"
	id "careguard/pkg/domain"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logger.New()
	cfg := config.FromEnv()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Stores: postgres when configured, in-memory otherwise.
	var (
		ledger   verification.Ledger
		statuses verification.UserStatuses
		health   func() error
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		ledger = store.NewPostgresLedger(db)
		statuses = store.NewPostgresUserStatuses(db)
		health = db.Ping
		log.Info("using postgres stores")
	} else {
		ledger = store.NewMemoryLedger()
		statuses = store.NewMemoryUserStatuses()
		log.Warn("no DATABASE_URL set, using in-memory stores")
	}

	// Authority response cache, if Redis is configured.
	var authorityCache authority.Cache
	rdb, err := redis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		authorityCache = authority.NewRedisCache(rdb.Client, cfg.AuthorityCacheTTL)
		log.Info("authority response cache enabled", "ttl", cfg.AuthorityCacheTTL)
	}

	registry := authority.FromConfig(cfg)
	for _, j := range authority.All {
		if !registry.Configured(j) {
			log.Warn("wwcc registry not configured, submissions fall back to manual review",
				"jurisdiction", j)
		}
	}

	var extractor ocr.Extractor
	if cfg.OCRServiceURL != "" {
		extractor = ocr.NewHTTPExtractor(cfg.OCRServiceURL, cfg.OCRAPIKey, cfg.ExternalTimeout)
	} else {
		// Without an extraction service every document routes to manual
		// review, which is safe but noisy.
		log.Warn("no OCR_SERVICE_URL set, documents cannot be auto-verified")
		extractor = &ocr.MockExtractor{Err: errors.New("extraction service not configured")}
	}

	// Event fan-out: the in-process channel always feeds the notification
	// dispatcher; Kafka mirroring is added when brokers are configured.
	channelEvents := events.NewChannelPublisher(256)
	defer channelEvents.Close()
	publisher := events.Publisher(channelEvents)
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer kafka.Close()
		publisher = events.MultiPublisher{channelEvents, kafka}
		log.Info("kafka event mirroring enabled", "topic", cfg.KafkaTopic)
	}

	service, err := verification.NewService(verification.Deps{
		Authorities:    registry,
		AuthorityCache: authorityCache,
		Extractor:      extractor,
		Ledger:         ledger,
		Statuses:       statuses,
		Events:         publisher,
		Logger:         log,
		Metrics:        m,
	})
	if err != nil {
		return err
	}

	var notifier notification.Notifier
	if cfg.SMTPHost != "" {
		notifier = notification.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)
	} else {
		notifier = &notification.LogNotifier{Logger: log}
	}
	directory := notification.DirectoryFunc(func(ctx context.Context, userID id.UserID) (notification.Contact, error) {
		user, err := statuses.Get(ctx, userID)
		if err != nil {
			return notification.Contact{}, err
		}
		return notification.Contact{FirstName: user.FirstName, Email: user.Email}, nil
	})
	dispatcher := notification.NewDispatcher(notifier, directory, channelEvents.Events(), log, m)
	go func() {
		if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("notification dispatcher stopped", "error", err)
		}
	}()

	router := httpapi.NewRouter(httpapi.Deps{
		Verification:   verificationhandler.New(service, log),
		JWTSigningKey:  []byte(cfg.JWTSigningKey),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         log,
		Health:         health,
	})

	server := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
