package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robertarktes/flight-booking-web/internal/activity"
	"github.com/robertarktes/flight-booking-web/internal/domain"
	"github.com/robertarktes/flight-booking-web/internal/observability"
	"github.com/stretchr/testify/assert"
)

type sink struct {
	got []domain.ActivityType
	err error
}

func (s *sink) LogActivity(ctx context.Context, act domain.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.got = append(s.got, act.Type)
	return s.err
}

func (s *sink) AppendActivity(ctx context.Context, act domain.Activity) error {
	s.got = append(s.got, act.Type)
	return s.err
}

func TestJournal_Routing(t *testing.T) {
	audit := &sink{}
	outbox := &sink{}
	j := activity.NewJournal(observability.NewNopLogger(), activity.WithAudit(audit), activity.WithOutbox(outbox))

	for _, typ := range []domain.ActivityType{
		domain.ActivityFlightSearched,
		domain.ActivityBookingCreated,
		domain.ActivityReceiptViewed,
		domain.ActivityPaymentPaid,
		domain.ActivityBookingCancelled,
	} {
		j.Record(context.Background(), domain.NewActivity(typ, "sid", nil))
	}

	assert.Len(t, audit.got, 5)
	assert.Equal(t, []domain.ActivityType{
		domain.ActivityBookingCreated,
		domain.ActivityPaymentPaid,
		domain.ActivityBookingCancelled,
	}, outbox.got)
}

func TestJournal_SinkErrorsAreSwallowed(t *testing.T) {
	failing := &sink{err: errors.New("down")}
	j := activity.NewJournal(observability.NewNopLogger(), activity.WithAudit(failing), activity.WithOutbox(failing))

	assert.NotPanics(t, func() {
		j.Record(context.Background(), domain.NewActivity(domain.ActivityPaymentFailed, "sid", nil))
	})
	assert.Len(t, failing.got, 2)
}

func TestJournal_NoSinks(t *testing.T) {
	j := activity.NewJournal(observability.NewNopLogger())
	assert.NotPanics(t, func() {
		j.Record(context.Background(), domain.NewActivity(domain.ActivityBookingCreated, "sid", nil))
	})
}

// blockingSink waits for its context like a driver stuck on server selection.
type blockingSink struct {
	err error
}

func (s *blockingSink) LogActivity(ctx context.Context, act domain.Activity) error {
	<-ctx.Done()
	s.err = ctx.Err()
	return s.err
}

func TestJournal_SlowSinkIsBounded(t *testing.T) {
	slow := &blockingSink{}
	j := activity.NewJournal(observability.NewNopLogger(), activity.WithAudit(slow), activity.WithSinkTimeout(50*time.Millisecond))

	start := time.Now()
	j.Record(context.Background(), domain.NewActivity(domain.ActivityFlightSearched, "sid", nil))

	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, slow.err, context.DeadlineExceeded)
}

func TestJournal_IgnoresRequestCancellation(t *testing.T) {
	audit := &sink{}
	j := activity.NewJournal(observability.NewNopLogger(), activity.WithAudit(audit))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	j.Record(ctx, domain.NewActivity(domain.ActivityBookingCancelled, "sid", nil))

	assert.Equal(t, []domain.ActivityType{domain.ActivityBookingCancelled}, audit.got)
}
