package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"onboarding/internal/form/models"
	"onboarding/pkg/platform/sentinel"
)

const (
	keyPrefix = "form:draft:"
	// maxUpdateAttempts bounds WATCH retries before reporting a conflict.
	maxUpdateAttempts = 3
)

// RedisStore keeps sessions as JSON under form:draft:<id>. The key TTL
// follows the session's ExpiresAt, so an abandoned draft disappears on its own.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisClock replaces the clock used to derive key TTLs.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (s *RedisStore) ttl(sess *models.Session) time.Duration {
	return sess.ExpiresAt.Sub(s.now())
}

func (s *RedisStore) Create(ctx context.Context, sess *models.Session) error {
	ttl := s.ttl(sess)
	if ttl <= 0 {
		return fmt.Errorf("session %s: %w", sess.ID, sentinel.ErrExpired)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, key(sess.ID), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	if !ok {
		return fmt.Errorf("session %s: %w", sess.ID, sentinel.ErrConflict)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return s.load(ctx, s.client, id)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) load(ctx context.Context, c getter, id uuid.UUID) (*models.Session, error) {
	data, err := c.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

// Update applies fn under WATCH and writes the result in a MULTI block. A
// concurrent writer aborts the transaction; fn is re-run on fresh state up to
// maxUpdateAttempts times before sentinel.ErrConflict is returned.
func (s *RedisStore) Update(ctx context.Context, id uuid.UUID, fn func(*models.Session) error) (*models.Session, error) {
	k := key(id)
	var result *models.Session

	txf := func(tx *redis.Tx) error {
		sess, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			return err
		}
		ttl := s.ttl(sess)
		if ttl <= 0 {
			return sentinel.ErrExpired
		}
		data, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, data, ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = sess
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, k)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("update session %s: %w", id, sentinel.ErrConflict)
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.client.Del(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
