package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/stylepulse/internal/domain/catalog"
	"github.com/okian/stylepulse/internal/domain/ledger"
	"github.com/okian/stylepulse/pkg/metrics"
)

const (
	defaultKeyPrefix = "stylepulse:session:"
	scanBatch        = 100

	conflictBackoffBase = time.Millisecond
	conflictBackoffMax  = 50 * time.Millisecond
)

// RedisStore keeps each session ledger in a hash (field = category, value =
// count) whose TTL is refreshed on every access. Keys vanish with the session.
type RedisStore struct {
	client     redis.UniversalClient
	prefix     string
	ttl        time.Duration
	maxRetries int // 0 retries conflicts until ctx is done
}

// NewRedisStore creates a Redis-backed session store on client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrBackend, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Load returns the session's ledger and refreshes its TTL.
func (s *RedisStore) Load(ctx context.Context, id string) (*ledger.Ledger, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	key := s.key(id)
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: load: %w", ErrBackend, err)
	}
	if len(vals) == 0 {
		return ledger.New(), nil
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("%w: touch: %w", ErrBackend, err)
	}
	return decodeLedger(vals)
}

// Update runs fn inside an optimistic WATCH transaction. When another request
// changed the session concurrently the transaction is retried after a jittered
// backoff, so concurrent updates of one id all commit, one after another,
// unless ctx ends first or WithMaxRetries set a cap.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*ledger.Ledger) error) error {
	if err := validateID(id); err != nil {
		return err
	}
	key := s.key(id)
	var fnErr error

	txf := func(tx *redis.Tx) error {
		vals, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("%w: load: %w", ErrBackend, err)
		}
		created := len(vals) == 0
		l, err := decodeLedger(vals)
		if err != nil {
			return err
		}
		if fnErr = fn(l); fnErr != nil {
			return fnErr
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if fields := encodeLedger(l); len(fields) > 0 {
				pipe.HSet(ctx, key, fields)
				pipe.Expire(ctx, key, s.ttl)
			}
			return nil
		})
		if err == nil && created && !l.Empty() {
			metrics.RecordSessionCreated()
		}
		return err
	}

	for attempt := 0; ; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.TxFailedErr):
		case fnErr != nil, errors.Is(err, ErrBackend):
			return err
		default:
			return fmt.Errorf("%w: update: %w", ErrBackend, err)
		}

		if s.maxRetries > 0 && attempt+1 >= s.maxRetries {
			return fmt.Errorf("%w: update of %s kept conflicting", ErrBackend, id)
		}
		timer := time.NewTimer(conflictBackoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: update of %s: %w", ErrBackend, id, ctx.Err())
		case <-timer.C:
		}
	}
}

// conflictBackoff returns a random wait in [d/2, d] where d doubles per
// attempt up to conflictBackoffMax.
func conflictBackoff(attempt int) time.Duration {
	d := conflictBackoffMax
	if attempt < 6 {
		d = min(conflictBackoffBase<<attempt, conflictBackoffMax)
	}
	half := d / 2
	return half + rand.N(half+1)
}

// Delete removes the session key.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: delete: %w", ErrBackend, err)
	}
	return nil
}

// Len counts session keys with a SCAN over the prefix. It returns 0 when
// Redis is unreachable.
func (s *RedisStore) Len(ctx context.Context) int {
	n := 0
	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if iter.Err() != nil {
		return 0
	}
	return n
}

func decodeLedger(vals map[string]string) (*ledger.Ledger, error) {
	snap := make(map[catalog.Category]int, len(vals))
	for field, raw := range vals {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: count for %q: %w", ErrBackend, field, err)
		}
		snap[catalog.Category(field)] = n
	}
	return ledger.FromSnapshot(snap), nil
}

func encodeLedger(l *ledger.Ledger) map[string]any {
	snap := l.Snapshot()
	fields := make(map[string]any, len(snap))
	for c, n := range snap {
		fields[string(c)] = n
	}
	return fields
}
