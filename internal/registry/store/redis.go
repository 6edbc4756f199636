package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"daviz/internal/registry/codec"
	"daviz/pkg/address"
	"daviz/pkg/platform/sentinel"
)

const (
	accountKeyPrefix = "daviz:account:"

	// optimistic transaction retries before Execute gives up
	maxExecuteRetries = 8
	scanBatchSize     = 256
)

// ErrContention is returned when Execute keeps losing its WATCH race.
var ErrContention = errors.New("account contention")

// RedisStore keeps each account under its own key. Execute uses WATCH/MULTI
// so concurrent writers of one account serialize.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func accountKey(addr address.Address) string {
	return accountKeyPrefix + addr.String()
}

func (s *RedisStore) Create(ctx context.Context, addr address.Address, data []byte) error {
	ok, err := s.client.SetNX(ctx, accountKey(addr), data, 0).Result()
	if err != nil {
		return fmt.Errorf("setnx account %s: %w", addr, err)
	}
	if !ok {
		return fmt.Errorf("account %s: %w", addr, sentinel.ErrAlreadyUsed)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, addr address.Address) ([]byte, error) {
	data, err := s.client.Get(ctx, accountKey(addr)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("account %s: %w", addr, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", addr, err)
	}
	return data, nil
}

func (s *RedisStore) Execute(ctx context.Context, addr address.Address, fn MutateFunc) ([]byte, error) {
	key := accountKey(addr)
	var next []byte
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("account %s: %w", addr, sentinel.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get account %s: %w", addr, err)
		}
		next, err = fn(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for range maxExecuteRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return next, nil
	}
	return nil, fmt.Errorf("account %s: %w", addr, ErrContention)
}

// Scan walks the account keyspace and applies filters client side.
func (s *RedisStore) Scan(ctx context.Context, disc codec.Discriminator, filters ...codec.Memcmp) ([]RawAccount, error) {
	var out []RawAccount
	iter := s.client.Scan(ctx, 0, accountKeyPrefix+"*", scanBatchSize).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanBatchSize {
			batch, err := s.load(ctx, keys, disc, filters)
			if err != nil {
				return nil, err
			}
			out = append(out, batch...)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan accounts: %w", err)
	}
	if len(keys) > 0 {
		batch, err := s.load(ctx, keys, disc, filters)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	sortAccounts(out)
	return out, nil
}

func (s *RedisStore) load(ctx context.Context, keys []string, disc codec.Discriminator, filters []codec.Memcmp) ([]RawAccount, error) {
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget accounts: %w", err)
	}
	var out []RawAccount
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// key vanished between SCAN and MGET
			continue
		}
		data := []byte(str)
		if !matches(data, disc, filters) {
			continue
		}
		addr, err := address.Parse(strings.TrimPrefix(keys[i], accountKeyPrefix))
		if err != nil {
			return nil, fmt.Errorf("account key %q: %w", keys[i], sentinel.ErrInvalidState)
		}
		out = append(out, RawAccount{Address: addr, Data: data})
	}
	return out, nil
}
