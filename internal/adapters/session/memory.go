package session

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/okian/stylepulse/internal/domain/ledger"
	"github.com/okian/stylepulse/pkg/metrics"
)

const (
	defaultMaxSessions = 10_000
	defaultTTL         = 30 * time.Minute
)

type memoryEntry struct {
	id      string
	ledger  *ledger.Ledger
	touched time.Time
}

// MemoryStore keeps sessions in process memory: a map from id to an element of
// a recency list. With maxSessions > 0 the least recently touched session is
// evicted from the back of the list when a new one would exceed the bound;
// otherwise sessions only leave through TTL expiry or Delete.
type MemoryStore struct {
	mu          sync.Mutex
	entries     map[string]*list.Element
	order       *list.List // front = most recently touched
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		entries:     make(map[string]*list.Element),
		order:       list.New(),
		maxSessions: defaultMaxSessions,
		ttl:         defaultTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns a copy of the session's ledger.
func (s *MemoryStore) Load(_ context.Context, id string) (*ledger.Ledger, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(id)
	if e == nil {
		return ledger.New(), nil
	}
	e.touched = s.now()
	s.order.MoveToFront(s.entries[id])
	return ledger.FromSnapshot(e.ledger.Snapshot()), nil
}

// Update applies fn to a working copy and commits it when fn succeeds.
func (s *MemoryStore) Update(_ context.Context, id string, fn func(*ledger.Ledger) error) error {
	if err := validateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.lookup(id)
	working := ledger.New()
	if e != nil {
		working = ledger.FromSnapshot(e.ledger.Snapshot())
	}
	if err := fn(working); err != nil {
		return err
	}

	now := s.now()
	if e != nil {
		e.ledger = working
		e.touched = now
		s.order.MoveToFront(s.entries[id])
		return nil
	}

	if s.maxSessions > 0 && len(s.entries) >= s.maxSessions {
		s.evictOldest()
	}
	s.entries[id] = s.order.PushFront(&memoryEntry{id: id, ledger: working, touched: now})
	metrics.RecordSessionCreated()
	metrics.UpdateLiveSessions(len(s.entries))
	return nil
}

// Delete discards the session.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[id]; ok {
		s.order.Remove(el)
		delete(s.entries, id)
		metrics.UpdateLiveSessions(len(s.entries))
	}
	return nil
}

// Len returns the number of sessions not yet swept. Expired sessions count
// until Sweep or an access removes them.
func (s *MemoryStore) Len(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes every expired session and returns how many were removed.
func (s *MemoryStore) Sweep(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	// The list is ordered by touch time, so expired entries sit at the back.
	for el := s.order.Back(); el != nil; {
		e := el.Value.(*memoryEntry) //nolint:forcetypeassert // list only holds *memoryEntry
		if !s.expired(e, now) {
			break
		}
		prev := el.Prev()
		s.order.Remove(el)
		delete(s.entries, e.id)
		metrics.RecordSessionEvicted()
		removed++
		el = prev
	}
	if removed > 0 {
		metrics.UpdateLiveSessions(len(s.entries))
	}
	return removed
}

// lookup returns the live entry for id, dropping it when expired.
// Must be called with s.mu held.
func (s *MemoryStore) lookup(id string) *memoryEntry {
	el, ok := s.entries[id]
	if !ok {
		return nil
	}
	e := el.Value.(*memoryEntry) //nolint:forcetypeassert // list only holds *memoryEntry
	if s.expired(e, s.now()) {
		s.order.Remove(el)
		delete(s.entries, id)
		metrics.RecordSessionEvicted()
		metrics.UpdateLiveSessions(len(s.entries))
		return nil
	}
	return e
}

func (s *MemoryStore) expired(e *memoryEntry, now time.Time) bool {
	return now.Sub(e.touched) > s.ttl
}

// evictOldest removes the least recently touched session.
// Must be called with s.mu held.
func (s *MemoryStore) evictOldest() {
	el := s.order.Back()
	if el == nil {
		return
	}
	e := el.Value.(*memoryEntry) //nolint:forcetypeassert // list only holds *memoryEntry
	s.order.Remove(el)
	delete(s.entries, e.id)
	metrics.RecordSessionEvicted()
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	return nil
}
