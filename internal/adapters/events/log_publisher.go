package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/atvirokodosprendimai/bookwerx/internal/core/domain"
)

// LogPublisher is the publisher used when no webhook is configured. It only
// records that an event left the outbox.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, topic string, event domain.EventEnvelope) error {
	p.logger.Info().
		Str("topic", topic).
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Int64("aggregate_id", event.AggregateID).
		Msg("event published")
	return nil
}
