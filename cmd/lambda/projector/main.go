package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/infrastructure/kinesis"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/projection"
)

var (
	projector *projection.Projector
	logger    *zap.Logger
)

func init() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		panic(err)
	}
	logger = logger.Named("lambda-projector")

	cfg, err := config.Load(false)
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := store.ConnectPostgres(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	projector = projection.NewProjector(store.NewPostgresReadStore(db), logger)
	logger.Info("initialized")
}

func handler(ctx context.Context, kinesisEvent events.KinesisEvent) (events.KinesisEventResponse, error) {
	return kinesis.HandleBatch(ctx, kinesisEvent, projector.Project, logger), nil
}

func main() {
	lambda.Start(handler)
}
