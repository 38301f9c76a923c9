package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/flight-booking-web/internal/adapters/crdb"
	"github.com/robertarktes/flight-booking-web/internal/observability"
)

const batchSize = 10

type Store interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
	ClaimOutbox(ctx context.Context, tx pgx.Tx, limit int) ([]crdb.OutboxRecord, error)
	MarkPublished(ctx context.Context, tx pgx.Tx, id uuid.UUID, publishedAt time.Time) error
}

type MessagePublisher interface {
	Publish(ctx context.Context, key string, msg amqp.Publishing) error
}

type Publisher struct {
	repo      Store
	rabbitPub MessagePublisher
	logger    observability.Logger
	now       func() time.Time
}

func NewPublisher(repo Store, rabbitPub MessagePublisher, logger observability.Logger) *Publisher {
	return &Publisher{repo: repo, rabbitPub: rabbitPub, logger: logger, now: time.Now}
}

func (p *Publisher) Run(ctx context.Context, interval time.Duration) {
	p.logger.Info("Outbox publisher started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.RelayOnce(ctx)
			if err != nil {
				p.logger.WithError(err).Error("outbox relay failed")
				continue
			}
			if n > 0 {
				p.logger.WithField("published", n).Debug("outbox batch relayed")
			}
		}
	}
}

// RelayOnce publishes one batch of claimed records and returns how many were
// marked published. A record whose publish fails stays NEW for the next tick.
func (p *Publisher) RelayOnce(ctx context.Context) (int, error) {
	published := 0
	err := p.repo.WithTx(ctx, func(tx pgx.Tx) error {
		published = 0
		records, err := p.repo.ClaimOutbox(ctx, tx, batchSize)
		if err != nil {
			return err
		}

		var lag time.Duration
		for _, rec := range records {
			msg := amqp.Publishing{
				MessageId:    rec.DedupeKey,
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Timestamp:    rec.CreatedAt,
				Body:         rec.Payload,
			}
			if err := p.rabbitPub.Publish(ctx, rec.EventType, msg); err != nil {
				observability.RabbitPublishRetries.Inc()
				p.logger.WithError(err).WithField("outbox_id", rec.ID.String()).Warn("publish failed, will retry")
				continue
			}
			if err := p.repo.MarkPublished(ctx, tx, rec.ID, p.now()); err != nil {
				return err
			}
			if age := p.now().Sub(rec.CreatedAt); age > lag {
				lag = age
			}
			published++
		}
		observability.OutboxLag.Set(lag.Seconds())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return published, nil
}
