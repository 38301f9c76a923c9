package domain

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityFlightSearched    ActivityType = "flight.searched"
	ActivityFlightSelected    ActivityType = "flight.selected"
	ActivityBookingCreated    ActivityType = "booking.created"
	ActivityBookingFailed     ActivityType = "booking.failed"
	ActivityPaymentPaid       ActivityType = "payment.paid"
	ActivityPaymentFailed     ActivityType = "payment.failed"
	ActivityReceiptViewed     ActivityType = "receipt.viewed"
	ActivityReceiptDownloaded ActivityType = "receipt.downloaded"
	ActivityBookingCancelled  ActivityType = "booking.cancelled"
)

// Lifecycle reports whether the activity changes a booking and so is relayed
// to other services.
func (t ActivityType) Lifecycle() bool {
	switch t {
	case ActivityBookingCreated, ActivityPaymentPaid, ActivityPaymentFailed, ActivityBookingCancelled:
		return true
	}
	return false
}

// Activity is one user action performed through the frontend.
type Activity struct {
	ID         uuid.UUID
	Type       ActivityType
	SessionID  string
	PNR        string
	FlightID   string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func NewActivity(t ActivityType, sessionID string, data map[string]interface{}) Activity {
	return Activity{
		ID:         uuid.New(),
		Type:       t,
		SessionID:  sessionID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}
