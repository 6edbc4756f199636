package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "daviz:ratelimit:"

// RedisBuckets is a sliding-window bucket store shared by every server replica.
// Each key is a sorted set of request timestamps in nanoseconds.
type RedisBuckets struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisBuckets(client *redis.Client) *RedisBuckets {
	return &RedisBuckets{client: client, now: time.Now}
}

func (s *RedisBuckets) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	now := s.now()
	redisKey := redisKeyPrefix + key
	cutoff := now.Add(-limit.Window).UnixNano()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
	count := pipe.ZCard(ctx, redisKey)
	oldest := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit window %s: %w", key, err)
	}

	resetAt := now.Add(limit.Window)
	if first := oldest.Val(); len(first) > 0 {
		resetAt = time.Unix(0, int64(first[0].Score)).Add(limit.Window)
	}

	if int(count.Val()) >= limit.Requests {
		return &Result{
			Allowed:    false,
			Limit:      limit.Requests,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	pipe = s.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.PExpire(ctx, redisKey, limit.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("rate limit record %s: %w", key, err)
	}

	return &Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - int(count.Val()) - 1,
		ResetAt:   resetAt,
	}, nil
}
