//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"onboarding/internal/datepair"
	"onboarding/internal/form/models"
	"onboarding/internal/form/store"
	"onboarding/pkg/platform/sentinel"
	"onboarding/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) newSession() *models.Session {
	sess := models.NewSession(uuid.New(), time.Now(), time.Hour)
	s.Require().NoError(s.store.Create(context.Background(), sess))
	return sess
}

func (s *RedisStoreSuite) TestRoundTripKeepsDatePairs() {
	ctx := context.Background()
	sess := s.newSession()

	_, err := s.store.Update(ctx, sess.ID, func(sess *models.Session) error {
		datepair.New(sess.Step(models.StepPersonal).Pairs[models.PairDOB]).OnFieldEdited(datepair.SideAD, "2023-04-28")
		return nil
	})
	s.Require().NoError(err)

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	pair := got.Step(models.StepPersonal).Pairs[models.PairDOB]
	s.Equal("2080-01-15", pair.Text(datepair.SideBS))
	s.Equal(datepair.SideAD, pair.LastEdited())
}

func (s *RedisStoreSuite) TestCreateTwiceConflicts() {
	sess := s.newSession()
	err := s.store.Create(context.Background(), sess)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *RedisStoreSuite) TestMissingSession() {
	_, err := s.store.Get(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(context.Background(), uuid.New()), sentinel.ErrNotFound)
}

// Concurrent writers either commit or exhaust their retries with
// ErrConflict; no write is silently lost.
func (s *RedisStoreSuite) TestConcurrentUpdates() {
	ctx := context.Background()
	sess := s.newSession()

	const writers = 10
	var wg sync.WaitGroup
	var committed, conflicted, other atomic.Int32
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Update(ctx, sess.ID, func(sess *models.Session) error {
				sess.Draft["edits"] += "x"
				return nil
			})
			switch {
			case err == nil:
				committed.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicted.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(0), other.Load())
	s.Equal(int32(writers), committed.Load()+conflicted.Load())

	got, err := s.store.Get(ctx, sess.ID)
	s.Require().NoError(err)
	s.Len(got.Draft["edits"], int(committed.Load()))
}

func (s *RedisStoreSuite) TestTTLFollowsExpiry() {
	ctx := context.Background()
	sess := s.newSession()

	ttl, err := s.redis.Client.TTL(ctx, "form:draft:"+sess.ID.String()).Result()
	s.Require().NoError(err)
	s.InDelta(time.Hour.Seconds(), ttl.Seconds(), 5)

	_, err = s.store.Update(ctx, sess.ID, func(sess *models.Session) error {
		sess.ExpiresAt = time.Now().Add(2 * time.Hour)
		return nil
	})
	s.Require().NoError(err)

	ttl, err = s.redis.Client.TTL(ctx, "form:draft:"+sess.ID.String()).Result()
	s.Require().NoError(err)
	s.InDelta((2 * time.Hour).Seconds(), ttl.Seconds(), 5)
}
