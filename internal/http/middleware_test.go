package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	redisadapter "github.com/robertarktes/flight-booking-web/internal/adapters/redis"
	"github.com/robertarktes/flight-booking-web/internal/config"
	webhttp "github.com/robertarktes/flight-booking-web/internal/http"
	"github.com/robertarktes/flight-booking-web/internal/observability"
	"github.com/robertarktes/flight-booking-web/internal/rateLimit"
	"github.com/robertarktes/flight-booking-web/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForExec([]string{"redis-cli", "ping"}),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { redisContainer.Terminate(ctx) })

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redisclient.NewClient(&redisclient.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRateLimit_ForwardedHeadersDoNotResetWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	client := startRedis(t)

	cfg := &config.Config{
		DisplayLocation:    time.UTC,
		SessionTTL:         time.Hour,
		RateLimitPerMinute: 2,
	}
	pages, err := webhttp.NewRenderer()
	require.NoError(t, err)
	logger := observability.NewNopLogger()
	h := webhttp.NewHandlers(cfg, nil, session.NewMemoryStore(time.Hour), &recorder{}, pages, logger)
	router := webhttp.SetupRouter(cfg, h, logger, rateLimit.NewRateLimiter(redisadapter.NewCache(client)))

	var codes []int
	for _, forwarded := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest(http.MethodGet, "/cancel.html", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		req.Header.Set("X-Forwarded-For", forwarded)
		req.Header.Set("X-Real-IP", forwarded)
		req.Header.Set("True-Client-IP", forwarded)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_NilLimiterAllows(t *testing.T) {
	called := 0
	mw := webhttp.RateLimitMiddleware(nil, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
	}))
	for i := 0; i < 3; i++ {
		mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	assert.Equal(t, 3, called)
}
