package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"marketplace-service/internal/config"
	"marketplace-service/internal/handler"
	"marketplace-service/internal/logging"
	mongoclient "marketplace-service/internal/mongo"
	"marketplace-service/internal/notify"
	"marketplace-service/internal/repository"
	"marketplace-service/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg config.Config, logger *logging.Logger) error {
	catalog, err := cfg.Catalog()
	if err != nil {
		return fmt.Errorf("categories: %w", err)
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	mc, err := mongoclient.NewMongoClient(ctx, cfg.Mongo.URI, 10*time.Second)
	if err != nil {
		return err
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	listingRepo := repository.NewListingRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	photoRepo := repository.NewPhotoRepository(mc, cfg.Mongo.Database, cfg.PublicBaseURL)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnw("redis unreachable, message rate limit fails open", "addr", cfg.Redis.Addr, "error", err)
		}
	}

	notifier, closeNotifier, err := newNotifier(cfg.Notify, listingRepo, logger)
	if err != nil {
		return err
	}
	defer closeNotifier()
	dispatcher := notify.NewDispatcher(notifier, cfg.Notify.Timeout, logger)

	listings := service.NewListingService(listingRepo, photoRepo, catalog, service.ListingOptions{
		Bucket:          cfg.Storage.Bucket,
		DefaultLocation: cfg.DefaultLocation,
		CleanupOrphans:  cfg.Storage.CleanupOrphans,
	}, logger)
	messages := service.NewMessageService(messageRepo, dispatcher, catalog, logger)

	router := handler.NewRouter(handler.Deps{
		Listings:       listings,
		Messages:       messages,
		Objects:        photoRepo,
		Bucket:         cfg.Storage.Bucket,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		JWTSecret:      cfg.JWTSecret,
		Redis:          rdb,
		RateLimitQPS:   cfg.Redis.RateLimitQPS,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infow("listing service running", "addr", cfg.HTTPAddr, "bucket", cfg.Storage.Bucket, "notify", cfg.Notify.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorw("http shutdown", "error", err)
		}
		if err := dispatcher.Close(shutdownCtx); err != nil {
			logger.Warnw("pending notifications dropped", "error", err)
		}
		return nil
	})
	return g.Wait()
}

// newNotifier builds the seller notification driver. The returned close
// func is always safe to call.
func newNotifier(cfg config.NotifyConfig, titles notify.TitleLookup, logger *logging.Logger) (notify.Notifier, func(), error) {
	switch cfg.Driver {
	case "smtp":
		n := notify.NewSMTPNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, titles, logger)
		return n, func() {}, nil
	case "kafka":
		n, err := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, nil, err
		}
		return n, func() {
			if err := n.Close(); err != nil {
				logger.Warnw("kafka producer close", "error", err)
			}
		}, nil
	case "log", "":
		return notify.LogNotifier{Logger: logger}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}
}
