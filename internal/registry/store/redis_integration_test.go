//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"daviz/internal/registry/codec"
	"daviz/internal/registry/models"
	"daviz/internal/registry/store"
	"daviz/internal/registry/store/storetest"
	"daviz/pkg/address"
	"daviz/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	storetest.Suite
	redis *containers.RedisContainer
	rs    *store.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.rs = store.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Ctx = context.Background()
	s.Require().NoError(s.redis.FlushAll(s.Ctx))
	s.Store = s.rs
}

// TestConcurrentExecuteSerializes verifies WATCH retries do not lose updates.
func (s *RedisStoreSuite) TestConcurrentExecuteSerializes() {
	var addr address.Address
	addr[0] = 7
	raw, err := codec.EncodeFramework(&models.Framework{Name: "0"})
	s.Require().NoError(err)
	s.Require().NoError(s.rs.Create(s.Ctx, addr, raw))

	const writers = 4
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.rs.Execute(s.Ctx, addr, func(current []byte) ([]byte, error) {
				fw, err := codec.DecodeFramework(current)
				if err != nil {
					return nil, err
				}
				fw.FrameworkID++
				return codec.EncodeFramework(fw)
			})
		}()
	}
	wg.Wait()

	got, err := s.rs.Get(s.Ctx, addr)
	s.Require().NoError(err)
	fw, err := codec.DecodeFramework(got)
	s.Require().NoError(err)
	s.Equal(uint64(writers), fw.FrameworkID)
}
