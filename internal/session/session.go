// Package session carries state between pages: the selected flight, its
// price and the booking reference, plus the last receipt a browser loaded.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	redisadapter "github.com/robertarktes/flight-booking-web/internal/adapters/redis"
	"github.com/robertarktes/flight-booking-web/internal/domain"
)

const (
	KeyFlightID = "flightId"
	KeyPrice    = "price"
	KeyPNR      = "pnr"

	CookieName = "fb_session"
)

type Store interface {
	Set(ctx context.Context, sessionID string, values map[string]string) error
	// Get returns "" when the key was never set.
	Get(ctx context.Context, sessionID, key string) (string, error)
	SaveReceipt(ctx context.Context, sessionID string, raw []byte) error
	// LoadReceipt returns domain.ErrReceiptNotLoaded when nothing was saved.
	LoadReceipt(ctx context.Context, sessionID string) ([]byte, error)
}

type RedisStore struct {
	cache    *redisadapter.Cache
	receipts *redisadapter.ReceiptSnapshots
	ttl      time.Duration
}

func NewRedisStore(cache *redisadapter.Cache, receipts *redisadapter.ReceiptSnapshots, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: cache, receipts: receipts, ttl: ttl}
}

func (s *RedisStore) Set(ctx context.Context, sessionID string, values map[string]string) error {
	return s.cache.SetSessionFields(ctx, sessionID, values, s.ttl)
}

func (s *RedisStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	return s.cache.GetSessionField(ctx, sessionID, key)
}

func (s *RedisStore) SaveReceipt(ctx context.Context, sessionID string, raw []byte) error {
	return s.receipts.Set(ctx, sessionID, raw, s.ttl)
}

func (s *RedisStore) LoadReceipt(ctx context.Context, sessionID string) ([]byte, error) {
	raw, err := s.receipts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrReceiptNotLoaded
	}
	return raw, nil
}

type ctxKey struct{}

// ID returns the session id attached by Middleware, or "".
func ID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Middleware issues the session cookie on first visit and exposes its id
// through the request context.
func Middleware(ttl time.Duration, secure bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(CookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}
