package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// MessageHandler consumes one encoded event. It has the same shape as the
// Kafka consumer's handler, so projectors and notifiers plug in unchanged.
type MessageHandler func(ctx context.Context, key, value []byte) error

// LocalPublisher delivers events to in-process handlers when no event bus
// is configured. The event is already stored when Publish runs, so handler
// failures are logged and do not fail the append.
type LocalPublisher struct {
	handlers []MessageHandler
	logger   *zap.Logger
}

func NewLocalPublisher(logger *zap.Logger, handlers ...MessageHandler) *LocalPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalPublisher{handlers: handlers, logger: logger.Named("publisher")}
}

// Subscribe adds a handler. It must not be called concurrently with Publish.
func (p *LocalPublisher) Subscribe(handler MessageHandler) {
	p.handlers = append(p.handlers, handler)
}

func (p *LocalPublisher) Publish(ctx context.Context, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	for _, handle := range p.handlers {
		if err := handle(ctx, []byte(key), value); err != nil {
			p.logger.Error("event handler failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}
