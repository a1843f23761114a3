package kinesis

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"

	"github.com/example/storefront/internal/infrastructure/store"
)

func sequenced(t *testing.T, seq, eventName string, image map[string]events.DynamoDBAttributeValue) events.KinesisEventRecord {
	record := kinesisRecord(t, "rec-"+seq, events.DynamoDBEventRecord{
		EventName: eventName,
		Change:    events.DynamoDBStreamRecord{NewImage: image},
	})
	record.Kinesis.SequenceNumber = seq
	return record
}

func TestHandleBatch(t *testing.T) {
	broken := events.KinesisEventRecord{EventID: "rec-4", Kinesis: events.KinesisRecord{Data: []byte("{"), SequenceNumber: "4"}}
	batch := events.KinesisEvent{Records: []events.KinesisEventRecord{
		sequenced(t, "1", "INSERT", orderPlacedImage("e1", "o1")),
		sequenced(t, "2", "MODIFY", orderPlacedImage("e2", "o2")),
		sequenced(t, "3", "INSERT", orderPlacedImage("e3", "o-fail")),
		broken,
	}}

	var handled []string
	resp := HandleBatch(context.Background(), batch, func(ctx context.Context, event store.Event) error {
		handled = append(handled, event.AggregateID)
		if event.AggregateID == "o-fail" {
			return errors.New("boom")
		}
		return nil
	}, nil)

	assert.Equal(t, []string{"o1", "o-fail"}, handled)
	assert.Equal(t, []events.KinesisBatchItemFailure{
		{ItemIdentifier: "3"},
		{ItemIdentifier: "4"},
	}, resp.BatchItemFailures)
}

func TestHandleBatch_Empty(t *testing.T) {
	resp := HandleBatch(context.Background(), events.KinesisEvent{}, func(context.Context, store.Event) error {
		t.Fatal("handler must not run")
		return nil
	}, nil)

	assert.Empty(t, resp.BatchItemFailures)
}
