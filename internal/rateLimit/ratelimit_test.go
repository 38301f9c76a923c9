package rateLimit_test

import (
	"context"
	"testing"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	redisadapter "github.com/robertarktes/flight-booking-web/internal/adapters/redis"
	"github.com/robertarktes/flight-booking-web/internal/rateLimit"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRateLimiter_NilAllows(t *testing.T) {
	rl := rateLimit.NewRateLimiter(nil)
	for i := 0; i < 5; i++ {
		if !rl.Allow(context.Background(), "ip:1", 1, time.Minute) {
			t.Fatal("nil limiter must allow")
		}
	}
}

func TestRateLimiter_Window(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForExec([]string{"redis-cli", "ping"}),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatal(err)
	}
	client := redisclient.NewClient(&redisclient.Options{Addr: host + ":" + port.Port()})
	defer client.Close()

	rl := rateLimit.NewRateLimiter(redisadapter.NewCache(client))

	for i := 0; i < 3; i++ {
		if !rl.Allow(ctx, "ip:10.0.0.1", 3, time.Minute) {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}
	if rl.Allow(ctx, "ip:10.0.0.1", 3, time.Minute) {
		t.Error("fourth hit should be limited")
	}
	if !rl.Allow(ctx, "ip:10.0.0.2", 3, time.Minute) {
		t.Error("other clients keep their own window")
	}
}
