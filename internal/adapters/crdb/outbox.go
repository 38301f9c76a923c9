package crdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/flight-booking-web/internal/domain"
)

type OutboxRecord struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Status        string // NEW, PUBLISHED, FAILED
	DedupeKey     string
}

// OutboxPayload is the message body relayed for a booking activity.
type OutboxPayload struct {
	EventID    string                 `json:"event_id"`
	Type       string                 `json:"type"`
	PNR        string                 `json:"pnr,omitempty"`
	FlightID   string                 `json:"flight_id,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func NewOutboxRecord(act domain.Activity) (OutboxRecord, error) {
	payload, err := json.Marshal(OutboxPayload{
		EventID:    act.ID.String(),
		Type:       string(act.Type),
		PNR:        act.PNR,
		FlightID:   act.FlightID,
		Data:       act.Data,
		OccurredAt: act.OccurredAt,
	})
	if err != nil {
		return OutboxRecord{}, errors.Wrap(err, "encode outbox payload")
	}
	aggType, aggID := aggregateOf(act)
	return OutboxRecord{
		ID:            uuid.New(),
		AggregateType: aggType,
		AggregateID:   aggID,
		EventType:     string(act.Type),
		Payload:       payload,
		DedupeKey:     act.ID.String(),
	}, nil
}

func (r *Repository) InsertOutbox(ctx context.Context, tx pgx.Tx, record OutboxRecord) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload_json, status, dedupe_key)
		VALUES ($1, $2, $3, $4, $5, 'NEW', $6)
		ON CONFLICT (dedupe_key) DO NOTHING
	`, record.ID, record.AggregateType, record.AggregateID, record.EventType, record.Payload, record.DedupeKey)
	return err
}

// ClaimOutbox locks up to limit unpublished rows for the life of tx.
func (r *Repository) ClaimOutbox(ctx context.Context, tx pgx.Tx, limit int) ([]OutboxRecord, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload_json, created_at, published_at, status, dedupe_key
		FROM outbox WHERE status = 'NEW' ORDER BY created_at ASC LIMIT $1 FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []OutboxRecord
	for rows.Next() {
		var rec OutboxRecord
		err := rows.Scan(&rec.ID, &rec.AggregateType, &rec.AggregateID, &rec.EventType, &rec.Payload, &rec.CreatedAt, &rec.PublishedAt, &rec.Status, &rec.DedupeKey)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository) MarkPublished(ctx context.Context, tx pgx.Tx, id uuid.UUID, publishedAt time.Time) error {
	result, err := tx.Exec(ctx, `
		UPDATE outbox SET status = 'PUBLISHED', published_at = $2 WHERE id = $1
	`, id, publishedAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendActivity writes one booking activity to the outbox in its own transaction.
func (r *Repository) AppendActivity(ctx context.Context, act domain.Activity) error {
	rec, err := NewOutboxRecord(act)
	if err != nil {
		return err
	}
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		return r.InsertOutbox(ctx, tx, rec)
	})
}
