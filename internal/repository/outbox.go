package repository

import (
	"context"
	"fmt"

	"github.com/playhub/arena/internal/domain"
)

type outboxRepo struct{}

// NewOutboxRepository returns a pgx-backed OutboxRepository.
func NewOutboxRepository() OutboxRepository {
	return &outboxRepo{}
}

func (r *outboxRepo) Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error {
	_, err := db.Exec(ctx, `
		INSERT INTO event_outbox
		  (event_id, aggregate_type, aggregate_id, event_type, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		draft.EventID,
		string(draft.AggregateType),
		draft.AggregateID,
		string(draft.EventType),
		draft.Payload,
		draft.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepo) FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error) {
	rows, err := db.Query(ctx, `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, payload, occurred_at
		FROM event_outbox
		WHERE published_at IS NULL
		ORDER BY id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}
	defer rows.Close()

	var events []domain.OutboxDraft
	for rows.Next() {
		var d domain.OutboxDraft
		var aggType, evtType string
		if err := rows.Scan(&d.ID, &d.EventID, &aggType, &d.AggregateID, &evtType, &d.Payload, &d.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		d.AggregateType = domain.AggregateType(aggType)
		d.EventType = domain.EventType(evtType)
		events = append(events, d)
	}
	return events, rows.Err()
}

func (r *outboxRepo) MarkPublished(ctx context.Context, db DBTX, id int64) error {
	if _, err := db.Exec(ctx, `UPDATE event_outbox SET published_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

// OutboxStore binds an OutboxRepository to a connection for the outbox relay.
type OutboxStore struct {
	repo OutboxRepository
	db   DBTX
}

// NewOutboxStore returns a store that runs every call against db.
func NewOutboxStore(repo OutboxRepository, db DBTX) *OutboxStore {
	return &OutboxStore{repo: repo, db: db}
}

func (s *OutboxStore) FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxDraft, error) {
	return s.repo.FetchUnpublished(ctx, s.db, limit)
}

func (s *OutboxStore) MarkPublished(ctx context.Context, id int64) error {
	return s.repo.MarkPublished(ctx, s.db, id)
}
