package kinesis

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/infrastructure/store"
)

// EventHandler processes one decoded event.
type EventHandler func(ctx context.Context, event store.Event) error

// HandleBatch runs handle for every INSERT record in the batch and reports
// the records that failed, so Lambda retries only those.
func HandleBatch(ctx context.Context, batch events.KinesisEvent, handle EventHandler, logger *zap.Logger) events.KinesisEventResponse {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("received records", zap.Int("records", len(batch.Records)))

	var failures []events.KinesisBatchItemFailure
	fail := func(record events.KinesisEventRecord) {
		failures = append(failures, events.KinesisBatchItemFailure{ItemIdentifier: record.Kinesis.SequenceNumber})
	}

	for _, record := range batch.Records {
		event, err := ConvertFromKinesisRecord(record)
		if err != nil {
			logger.Error("failed to convert record", zap.String("record_id", record.EventID), zap.Error(err))
			fail(record)
			continue
		}
		if event == nil {
			continue
		}

		if err := handle(ctx, *event); err != nil {
			logger.Error("failed to process event",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.Error(err))
			fail(record)
		}
	}

	logger.Info("batch processed",
		zap.Int("records", len(batch.Records)),
		zap.Int("failed", len(failures)))

	return events.KinesisEventResponse{BatchItemFailures: failures}
}
