package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"daviz/internal/registry/codec"
	"daviz/pkg/address"
	"daviz/pkg/platform/sentinel"
)

// InMemory keeps accounts in a map for tests and local development.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[address.Address][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[address.Address][]byte)}
}

func (s *InMemory) Create(_ context.Context, addr address.Address, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[addr]; ok {
		return fmt.Errorf("account %s: %w", addr, sentinel.ErrAlreadyUsed)
	}
	s.accounts[addr] = slices.Clone(data)
	return nil
}

func (s *InMemory) Get(_ context.Context, addr address.Address) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.accounts[addr]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", addr, sentinel.ErrNotFound)
	}
	return slices.Clone(data), nil
}

// Execute holds the write lock across read, callback and write.
func (s *InMemory) Execute(_ context.Context, addr address.Address, fn MutateFunc) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.accounts[addr]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", addr, sentinel.ErrNotFound)
	}
	next, err := fn(slices.Clone(current))
	if err != nil {
		return nil, err
	}
	s.accounts[addr] = slices.Clone(next)
	return next, nil
}

func (s *InMemory) Scan(_ context.Context, disc codec.Discriminator, filters ...codec.Memcmp) ([]RawAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []RawAccount
	for addr, data := range s.accounts {
		if matches(data, disc, filters) {
			out = append(out, RawAccount{Address: addr, Data: slices.Clone(data)})
		}
	}
	sortAccounts(out)
	return out, nil
}
