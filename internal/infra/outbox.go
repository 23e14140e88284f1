package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/playhub/arena/internal/domain"
)

// OutboxStore reads pending events and stamps them once relayed.
type OutboxStore interface {
	FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxDraft, error)
	MarkPublished(ctx context.Context, id int64) error
}

// OutboxRelay forwards event_outbox rows to a Publisher in occurrence order.
type OutboxRelay struct {
	store     OutboxStore
	publisher Publisher
	logger    *slog.Logger
	batchSize int
}

// NewOutboxRelay creates a relay that moves up to batchSize events per run.
func NewOutboxRelay(store OutboxStore, publisher Publisher, batchSize int, logger *slog.Logger) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{store: store, publisher: publisher, logger: logger, batchSize: batchSize}
}

// RunOnce relays one batch and returns how many events were published.
// A publish failure stops the batch so later events are not sent ahead of it.
func (r *OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	events, err := r.store.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch unpublished: %w", err)
	}

	published := 0
	for _, e := range events {
		msg, err := json.Marshal(e)
		if err != nil {
			return published, fmt.Errorf("marshal event %s: %w", e.EventID, err)
		}

		if err := r.publisher.Publish(ctx, e.Topic(), []byte(e.AggregateID), msg); err != nil {
			return published, fmt.Errorf("publish event %s: %w", e.EventID, err)
		}

		if err := r.store.MarkPublished(ctx, e.ID); err != nil {
			return published, fmt.Errorf("mark published %s: %w", e.EventID, err)
		}
		published++
	}

	if published > 0 {
		r.logger.Debug("outbox batch relayed", "published", published)
	}
	return published, nil
}
