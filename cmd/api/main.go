package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/customer"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/reservation"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/infrastructure/cartstore"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/notification"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/projection"
	"github.com/example/storefront/internal/query"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(true)
	if err != nil {
		return err
	}
	logger.Info("starting storefront api",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("event_store", cfg.EventStore),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("kafka_topic", cfg.KafkaTopic))

	var (
		eventStore store.EventStoreInterface
		readStore  store.ReadStoreInterface
		source     catalog.Source
		cartStore  cart.Storage
	)

	if cfg.EventStore == config.EventStoreMemory {
		// Single process: projections and mail run inline after each append.
		memReadStore := store.NewReadStore()
		memSource := catalog.NewMemorySource()
		projector := projection.NewProjector(memReadStore, logger)
		notifier := notification.NewHandler(newMailer(cfg), memSource, logger)
		eventStore = store.NewEventStore(store.NewLocalPublisher(logger, projector.HandleEvent, notifier.HandleEvent))
		readStore, source, cartStore = memReadStore, memSource, cartstore.NewMemoryStore()
	} else {
		db, err := openDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		readStore = store.NewPostgresReadStore(db)
		source = catalog.NewPostgresSource(db)

		switch cfg.EventStore {
		case config.EventStoreDynamo:
			client, err := newDynamoClient(ctx)
			if err != nil {
				return err
			}
			eventStore = store.NewDynamoEventStore(client, cfg.DynamoEventsTable, cfg.DynamoSnapshotsTable)
		default:
			producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
			defer producer.Close()
			eventStore = store.NewPostgresEventStore(db, producer)
		}

		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		cartStore = cartstore.NewRedisStore(redisClient, cfg.CartTTL)
	}

	customers := customer.NewService(eventStore, logger)
	cmdHandler := command.NewHandler(
		source,
		customers,
		order.NewService(eventStore, logger),
		reservation.NewService(eventStore, logger),
		newVerifier(cfg, logger),
		logger,
	)

	sessions, err := cart.NewSessions(cartStore, cfg.CartSessionsMax, logger)
	if err != nil {
		return err
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)
	handlers := api.NewHandlers(source, sessions, cmdHandler, query.NewHandler(readStore, logger), logger)
	authHandlers := api.NewAuthHandlers(customers, jwtService, logger)
	router := api.NewRouter(handlers, authHandlers, jwtService, logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(router, "storefront-api"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return err
	}

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, error) {
	db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.RunMigrations(db, cfg.MigrationsDir); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("connected to postgres", zap.String("migrations", cfg.MigrationsDir))
	return db, nil
}

func newDynamoClient(ctx context.Context) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(awsCfg), nil
}

func newVerifier(cfg *config.Config, logger *zap.Logger) payment.Verifier {
	if cfg.PaymentProviderURL == "" {
		return payment.Disabled{}
	}
	return payment.NewHTTPVerifier(cfg.PaymentProviderURL, cfg.PaymentAPIKey, nil, payment.DefaultBreakerSettings, logger)
}

func newMailer(cfg *config.Config) *email.Service {
	return email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)
}
