package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/flight-booking-web/internal/activity"
	"github.com/robertarktes/flight-booking-web/internal/adapters/crdb"
	mongoadapter "github.com/robertarktes/flight-booking-web/internal/adapters/mongo"
	redisadapter "github.com/robertarktes/flight-booking-web/internal/adapters/redis"
	"github.com/robertarktes/flight-booking-web/internal/bookingapi"
	"github.com/robertarktes/flight-booking-web/internal/config"
	httphandler "github.com/robertarktes/flight-booking-web/internal/http"
	"github.com/robertarktes/flight-booking-web/internal/observability"
	"github.com/robertarktes/flight-booking-web/internal/rateLimit"
	"github.com/robertarktes/flight-booking-web/internal/session"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg.OTLPEndpoint, "flight-booking-web")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFile)

	pages, err := httphandler.NewRenderer()
	if err != nil {
		log.Fatalf("failed to parse templates: %v", err)
	}

	var (
		sessions session.Store
		rl       *rateLimit.RateLimiter
		checks   = map[string]httphandler.Pinger{}
	)
	if redisClient := connectRedis(cfg.RedisAddr, logger); redisClient != nil {
		defer redisClient.Close()
		redisCache := redisadapter.NewCache(redisClient)
		sessions = session.NewRedisStore(redisCache, redisadapter.NewReceiptSnapshots(redisClient), cfg.SessionTTL)
		rl = rateLimit.NewRateLimiter(redisCache)
		checks["redis"] = redisCache
	} else {
		logger.Warn("sessions kept in memory, rate limiting disabled")
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	var journalOpts []activity.Option
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		audit := mongoadapter.NewAuditLogger(mongoClient.Database(cfg.MongoDB))
		journalOpts = append(journalOpts, activity.WithAudit(audit))
		checks["mongo"] = audit
	}
	if cfg.CRDBDSN != "" {
		pool, err := pgxpool.New(context.Background(), cfg.CRDBDSN)
		if err != nil {
			log.Fatalf("failed to connect to crdb: %v", err)
		}
		defer pool.Close()
		repo := crdb.NewRepository(pool)
		if err := repo.Migrate(context.Background()); err != nil {
			log.Fatalf("failed to migrate outbox: %v", err)
		}
		journalOpts = append(journalOpts, activity.WithOutbox(repo))
		checks["crdb"] = repo
	}
	journal := activity.NewJournal(logger, journalOpts...)

	api := bookingapi.NewClient(cfg.BookingAPIURL, cfg.BookingAPITimeout)

	handlers := httphandler.NewHandlers(cfg, api, sessions, journal, pages, logger)
	for name, p := range checks {
		handlers.AddReadinessCheck(name, p)
	}

	r := httphandler.SetupRouter(cfg, handlers, logger, rl)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).WithField("api", cfg.BookingAPIURL).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}

// connectRedis returns nil when addr is empty or the server does not answer.
func connectRedis(addr string, logger observability.Logger) *redisclient.Client {
	if addr == "" {
		return nil
	}
	client := redisclient.NewClient(&redisclient.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).WithField("addr", addr).Warn("redis unreachable")
		client.Close()
		return nil
	}
	return client
}
