// Package storetest holds the behavioural contract every account store backend
// must satisfy. Backend test files embed Suite and supply a fresh store per test.
package storetest

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/suite"

	"daviz/internal/registry/codec"
	"daviz/internal/registry/models"
	"daviz/internal/registry/store"
	"daviz/pkg/address"
	"daviz/pkg/platform/sentinel"
)

type Suite struct {
	suite.Suite
	Store store.Store
	Ctx   context.Context
}

func (s *Suite) addr() address.Address {
	var a address.Address
	_, err := rand.Read(a[:])
	s.Require().NoError(err)
	return a
}

func (s *Suite) framework(authority address.Address, name string) []byte {
	raw, err := codec.EncodeFramework(&models.Framework{
		Authority: authority,
		Name:      name,
		Criteria:  []string{"c1"},
		IsActive:  true,
	})
	s.Require().NoError(err)
	return raw
}

func (s *Suite) TestCreateAndGet() {
	s.Run("stores bytes at address", func() {
		addr := s.addr()
		data := s.framework(s.addr(), "F")
		s.Require().NoError(s.Store.Create(s.Ctx, addr, data))

		got, err := s.Store.Get(s.Ctx, addr)
		s.Require().NoError(err)
		s.Equal(data, got)
	})

	s.Run("rejects occupied address", func() {
		addr := s.addr()
		s.Require().NoError(s.Store.Create(s.Ctx, addr, s.framework(s.addr(), "A")))

		err := s.Store.Create(s.Ctx, addr, s.framework(s.addr(), "B"))
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)

		got, err := s.Store.Get(s.Ctx, addr)
		s.Require().NoError(err)
		fw, err := codec.DecodeFramework(got)
		s.Require().NoError(err)
		s.Equal("A", fw.Name, "first write must survive")
	})

	s.Run("returns ErrNotFound for empty address", func() {
		_, err := s.Store.Get(s.Ctx, s.addr())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *Suite) TestExecute() {
	s.Run("replaces bytes", func() {
		addr := s.addr()
		s.Require().NoError(s.Store.Create(s.Ctx, addr, s.framework(s.addr(), "old")))
		next := s.framework(s.addr(), "new")

		out, err := s.Store.Execute(s.Ctx, addr, func([]byte) ([]byte, error) { return next, nil })
		s.Require().NoError(err)
		s.Equal(next, out)

		got, err := s.Store.Get(s.Ctx, addr)
		s.Require().NoError(err)
		s.Equal(next, got)
	})

	s.Run("callback error leaves account untouched", func() {
		addr := s.addr()
		data := s.framework(s.addr(), "keep")
		s.Require().NoError(s.Store.Create(s.Ctx, addr, data))
		boom := errors.New("rejected")

		_, err := s.Store.Execute(s.Ctx, addr, func([]byte) ([]byte, error) { return nil, boom })
		s.ErrorIs(err, boom)

		got, err := s.Store.Get(s.Ctx, addr)
		s.Require().NoError(err)
		s.Equal(data, got)
	})

	s.Run("returns ErrNotFound for empty address", func() {
		called := false
		_, err := s.Store.Execute(s.Ctx, s.addr(), func(b []byte) ([]byte, error) {
			called = true
			return b, nil
		})
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.False(called)
	})
}

func (s *Suite) TestScanFilters() {
	alice, bob := s.addr(), s.addr()
	a1, a2, b1 := s.addr(), s.addr(), s.addr()
	s.Require().NoError(s.Store.Create(s.Ctx, a1, s.framework(alice, "a1")))
	s.Require().NoError(s.Store.Create(s.Ctx, a2, s.framework(alice, "a2")))
	s.Require().NoError(s.Store.Create(s.Ctx, b1, s.framework(bob, "b1")))

	asset, err := codec.EncodeAssetProfile(&models.AssetProfile{Owner: alice, Name: "asset"})
	s.Require().NoError(err)
	s.Require().NoError(s.Store.Create(s.Ctx, s.addr(), asset))

	s.Run("filters by discriminator", func() {
		all, err := s.Store.Scan(s.Ctx, codec.FrameworkDiscriminator)
		s.Require().NoError(err)
		s.GreaterOrEqual(len(all), 3)
		for _, acc := range all {
			s.True(codec.HasDiscriminator(acc.Data, codec.FrameworkDiscriminator))
		}
	})

	s.Run("filters by memcmp", func() {
		got, err := s.Store.Scan(s.Ctx, codec.FrameworkDiscriminator,
			codec.AddressFilter(codec.FrameworkAuthorityOffset, alice))
		s.Require().NoError(err)
		s.Len(got, 2)
		addrs := []address.Address{got[0].Address, got[1].Address}
		s.ElementsMatch([]address.Address{a1, a2}, addrs)
	})

	s.Run("orders by address", func() {
		all, err := s.Store.Scan(s.Ctx, codec.FrameworkDiscriminator)
		s.Require().NoError(err)
		for i := 1; i < len(all); i++ {
			s.Negative(compare(all[i-1].Address, all[i].Address))
		}
	})
}

// TestConcurrentCreate verifies exactly one of many racing creates wins.
func (s *Suite) TestConcurrentCreate() {
	addr := s.addr()
	data := s.framework(s.addr(), "race")
	const goroutines = 20

	var wg sync.WaitGroup
	var success, conflict atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Store.Create(s.Ctx, addr, data)
			if err == nil {
				success.Add(1)
			} else if errors.Is(err, sentinel.ErrAlreadyUsed) {
				conflict.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), success.Load())
	s.Equal(int32(goroutines-1), conflict.Load())
}

func compare(a, b address.Address) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
