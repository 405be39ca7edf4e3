package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the live window for each (subject, endpoint) pair in a Redis
// hash. Creating a window overwrites the lapsed one, so only the live window is
// retained; TTL handles cleanup. Suited to multi-instance deployments where the
// database round-trip per request is too expensive.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis using a redis:// URL.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisStore{client: redis.NewClient(opt), ttl: ttl}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func redisKey(subject, endpoint string) string {
	return "ratelimit:" + subject + ":" + endpoint
}

// Latest returns the live window for the pair, if it started at or after since.
func (s *RedisStore) Latest(ctx context.Context, subject, endpoint string, since time.Time) (Window, error) {
	fields, err := s.client.HGetAll(ctx, redisKey(subject, endpoint)).Result()
	if err != nil {
		return Window{}, err
	}
	if len(fields) == 0 {
		return Window{}, ErrNoWindow
	}
	start, err := time.Parse(time.RFC3339Nano, fields["start"])
	if err != nil || start.Before(since) {
		return Window{}, ErrNoWindow
	}
	count, _ := strconv.Atoi(fields["count"])
	last, _ := time.Parse(time.RFC3339Nano, fields["last"])
	return Window{
		ID:            fields["id"],
		Subject:       subject,
		Endpoint:      endpoint,
		WindowStart:   start,
		RequestCount:  count,
		LastRequestAt: last,
	}, nil
}

// Create overwrites the pair's window with a fresh one.
func (s *RedisStore) Create(ctx context.Context, w Window) error {
	key := redisKey(w.Subject, w.Endpoint)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"id", w.ID,
		"start", w.WindowStart.UTC().Format(time.RFC3339Nano),
		"count", w.RequestCount,
		"last", w.LastRequestAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Increment bumps the window's counter and returns the new count.
func (s *RedisStore) Increment(ctx context.Context, w Window, at time.Time) (int, error) {
	key := redisKey(w.Subject, w.Endpoint)
	pipe := s.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, "count", 1)
	pipe.HSet(ctx, key, "last", at.UTC().Format(time.RFC3339Nano))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}
