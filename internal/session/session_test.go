package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/robertarktes/flight-booking-web/internal/domain"
)

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	if v, err := s.Get(ctx, "sid", KeyFlightID); err != nil || v != "" {
		t.Fatalf("expected empty value, got %q, %v", v, err)
	}

	if err := s.Set(ctx, "sid", map[string]string{KeyFlightID: "7", KeyPrice: "4567.8"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "sid", map[string]string{KeyPNR: "PNR1"}); err != nil {
		t.Fatal(err)
	}

	for key, want := range map[string]string{KeyFlightID: "7", KeyPrice: "4567.8", KeyPNR: "PNR1"} {
		got, err := s.Get(ctx, "sid", key)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%s: got %q want %q", key, got, want)
		}
	}

	if v, _ := s.Get(ctx, "other", KeyPNR); v != "" {
		t.Errorf("sessions must not share values, got %q", v)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }

	s.Set(ctx, "sid", map[string]string{KeyPNR: "PNR1"})
	s.SaveReceipt(ctx, "sid", []byte(`{"pnr":"PNR1"}`))

	now = now.Add(2 * time.Minute)

	if v, _ := s.Get(ctx, "sid", KeyPNR); v != "" {
		t.Errorf("expected expired value, got %q", v)
	}
	if _, err := s.LoadReceipt(ctx, "sid"); !errors.Is(err, domain.ErrReceiptNotLoaded) {
		t.Errorf("expected receipt not loaded, got %v", err)
	}
}

func TestMemoryStore_SweepsAbandonedSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Millisecond)
	s.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		if err := s.Set(ctx, fmt.Sprintf("sid-%d", i), map[string]string{KeyFlightID: "7"}); err != nil {
			t.Fatal(err)
		}
	}

	now = now.Add(10 * time.Millisecond)
	if err := s.Set(ctx, "fresh", map[string]string{KeyFlightID: "8"}); err != nil {
		t.Fatal(err)
	}

	if got := len(s.entries); got != 1 {
		t.Fatalf("expected only the fresh session to remain, got %d entries", got)
	}
	if v, _ := s.Get(ctx, "fresh", KeyFlightID); v != "8" {
		t.Errorf("fresh session lost its value: %q", v)
	}
}

func TestMemoryStore_Receipt(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	if _, err := s.LoadReceipt(ctx, "sid"); !errors.Is(err, domain.ErrReceiptNotLoaded) {
		t.Fatalf("expected receipt not loaded, got %v", err)
	}

	raw := []byte(`{"pnr":"PNR1"}`)
	if err := s.SaveReceipt(ctx, "sid", raw); err != nil {
		t.Fatal(err)
	}
	raw[0] = 'x'

	got, err := s.LoadReceipt(ctx, "sid")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"pnr":"PNR1"}` {
		t.Errorf("snapshot must be copied, got %s", got)
	}
}

func TestMiddleware_IssuesAndReusesCookie(t *testing.T) {
	var seen string
	h := Middleware(time.Hour, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	if seen == "" || seen != cookies[0].Value {
		t.Fatalf("context id %q does not match cookie %q", seen, cookies[0].Value)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if len(rec.Result().Cookies()) != 0 {
		t.Error("existing session must not be reissued")
	}
	if seen != cookies[0].Value {
		t.Errorf("expected id %q, got %q", cookies[0].Value, seen)
	}
}

func TestMiddleware_ReplacesForgedCookie(t *testing.T) {
	var seen string
	h := Middleware(time.Hour, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "session:*"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen == "session:*" || seen == "" {
		t.Errorf("expected a fresh id, got %q", seen)
	}
}
