package mongo_test

import (
	"context"
	"testing"

	mongoadapter "github.com/robertarktes/flight-booking-web/internal/adapters/mongo"
	"github.com/robertarktes/flight-booking-web/internal/domain"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestAuditLogger_LogActivity(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()

	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { mongoContainer.Terminate(ctx) })

	endpoint, err := mongoContainer.Endpoint(ctx, "mongodb")
	if err != nil {
		t.Fatal(err)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Disconnect(ctx) })

	db := client.Database("flightbook_test")
	audit := mongoadapter.NewAuditLogger(db)
	if err := audit.Ping(ctx); err != nil {
		t.Fatal(err)
	}

	act := domain.NewActivity(domain.ActivityBookingCreated, "sess-1", map[string]interface{}{"price": 4567.8})
	act.PNR = "PNR123"
	act.FlightID = "7"
	if err := audit.LogActivity(ctx, act); err != nil {
		t.Fatal(err)
	}

	var got mongoadapter.AuditLog
	err = db.Collection("audit_logs").FindOne(ctx, bson.M{"_id": act.ID.String()}).Decode(&got)
	if err != nil {
		t.Fatal(err)
	}
	if got.Action != "booking.created" || got.PNR != "PNR123" || got.SessionID != "sess-1" {
		t.Errorf("unexpected audit log %+v", got)
	}

	if err := audit.LogActivity(ctx, act); err == nil {
		t.Error("expected duplicate activity id to be rejected")
	}
}
