// Package activity records what users do through the frontend.
package activity

import (
	"context"
	"time"

	"github.com/robertarktes/flight-booking-web/internal/domain"
	"github.com/robertarktes/flight-booking-web/internal/observability"
)

type Recorder interface {
	Record(ctx context.Context, act domain.Activity)
}

type AuditSink interface {
	LogActivity(ctx context.Context, act domain.Activity) error
}

type OutboxSink interface {
	AppendActivity(ctx context.Context, act domain.Activity) error
}

// Journal writes every activity to the audit sink and booking lifecycle
// activities to the outbox. Either sink may be absent.
type Journal struct {
	audit   AuditSink
	outbox  OutboxSink
	logger  observability.Logger
	timeout time.Duration
}

const DefaultSinkTimeout = 2 * time.Second

type Option func(*Journal)

func WithAudit(s AuditSink) Option {
	return func(j *Journal) { j.audit = s }
}

func WithOutbox(s OutboxSink) Option {
	return func(j *Journal) { j.outbox = s }
}

// WithSinkTimeout bounds each sink write.
func WithSinkTimeout(d time.Duration) Option {
	return func(j *Journal) { j.timeout = d }
}

func NewJournal(logger observability.Logger, opts ...Option) *Journal {
	j := &Journal{logger: logger, timeout: DefaultSinkTimeout}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Record never fails the caller; sink errors are logged. Each sink write
// runs detached from ctx's cancellation and is bounded by the sink timeout.
func (j *Journal) Record(ctx context.Context, act domain.Activity) {
	log := j.logger.WithField("activity", string(act.Type)).WithField("activity_id", act.ID.String())
	ctx = context.WithoutCancel(ctx)

	if j.audit != nil {
		if err := j.write(ctx, act, j.audit.LogActivity); err != nil {
			log.WithError(err).Warn("audit write failed")
		}
	}
	if j.outbox != nil && act.Type.Lifecycle() {
		if err := j.write(ctx, act, j.outbox.AppendActivity); err != nil {
			log.WithError(err).Warn("outbox write failed")
		}
	}
	log.Debug("activity recorded")
}

func (j *Journal) write(ctx context.Context, act domain.Activity, fn func(context.Context, domain.Activity) error) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	return fn(ctx, act)
}
