package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/flight-booking-web/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuditLogger struct {
	coll *mongo.Collection
}

func NewAuditLogger(db *mongo.Database) *AuditLogger {
	return &AuditLogger{coll: db.Collection("audit_logs")}
}

type AuditLog struct {
	ID        string    `bson:"_id"`
	Action    string    `bson:"action"`
	SessionID string    `bson:"session_id"`
	PNR       string    `bson:"pnr,omitempty"`
	FlightID  string    `bson:"flight_id,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data,omitempty"`
}

func (a *AuditLogger) LogActivity(ctx context.Context, act domain.Activity) error {
	id := act.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	log := AuditLog{
		ID:        id.String(),
		Action:    string(act.Type),
		SessionID: act.SessionID,
		PNR:       act.PNR,
		FlightID:  act.FlightID,
		Timestamp: act.OccurredAt,
		Data:      bson.M(act.Data),
	}
	_, err := a.coll.InsertOne(ctx, log)
	return errors.Wrap(err, "insert audit log")
}

func (a *AuditLogger) Ping(ctx context.Context) error {
	return a.coll.Database().Client().Ping(ctx, nil)
}
