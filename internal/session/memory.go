package session

import (
	"context"
	"sync"
	"time"

	"github.com/robertarktes/flight-booking-web/internal/domain"
)

type memoryEntry struct {
	values    map[string]string
	receipt   []byte
	expiresAt time.Time
}

// MemoryStore is the single-process Store used when Redis is not configured.
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]*memoryEntry
	nextSweep time.Time
}

const maxSweepInterval = time.Minute

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]*memoryEntry)}
}

// entry returns the live entry for id, creating one when create is set.
// Callers hold mu.
func (s *MemoryStore) entry(id string, create bool) *memoryEntry {
	now := s.now()
	e, ok := s.entries[id]
	if ok && now.After(e.expiresAt) {
		delete(s.entries, id)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		s.sweep(now)
		e = &memoryEntry{values: make(map[string]string)}
		s.entries[id] = e
	}
	if create {
		e.expiresAt = now.Add(s.ttl)
	}
	return e
}

// sweep drops every expired entry, at most once per sweep interval.
// Callers hold mu.
func (s *MemoryStore) sweep(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
	interval := s.ttl
	if interval <= 0 || interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	s.nextSweep = now.Add(interval)
}

func (s *MemoryStore) Set(ctx context.Context, sessionID string, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(sessionID, true)
	for k, v := range values {
		e.values[k] = v
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(sessionID, false)
	if e == nil {
		return "", nil
	}
	return e.values[key], nil
}

func (s *MemoryStore) SaveReceipt(ctx context.Context, sessionID string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(sessionID, true)
	e.receipt = append([]byte(nil), raw...)
	return nil
}

func (s *MemoryStore) LoadReceipt(ctx context.Context, sessionID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(sessionID, false)
	if e == nil || e.receipt == nil {
		return nil, domain.ErrReceiptNotLoaded
	}
	return append([]byte(nil), e.receipt...), nil
}
