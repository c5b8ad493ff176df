package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	statsKey           = "stats:admin"
	statsGenerationKey = "stats:admin:gen"
)

// setIfGenerationScript stores KEYS[1] only while KEYS[2] still holds ARGV[1]
var setIfGenerationScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// visitGuardTTL outlives the day so late requests still hit the guard
const visitGuardTTL = 48 * time.Hour

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// MarkVisit sets the guard key for an address on a day.
// Returns true when the key was newly set, false when it already existed.
func (c *Client) MarkVisit(ctx context.Context, ipAddress, visitDate string) (bool, error) {
	key := fmt.Sprintf("visit:%s:%s", visitDate, ipAddress)
	return c.rdb.SetNX(ctx, key, "1", visitGuardTTL).Result()
}

// UnmarkVisit drops the guard key so a failed insert can be retried
func (c *Client) UnmarkVisit(ctx context.Context, ipAddress, visitDate string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("visit:%s:%s", visitDate, ipAddress)).Err()
}

// GetJSON decodes the cached value at key into dst.
// Returns false without error on a cache miss.
func (c *Client) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	return true, nil
}

// StatsCache caches the admin stats snapshot under a fixed key
type StatsCache struct {
	client *Client
	ttl    time.Duration
}

// NewStatsCache creates a stats cache with the given TTL
func NewStatsCache(client *Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

// Get loads the cached snapshot into dst
func (sc *StatsCache) Get(ctx context.Context, dst interface{}) (bool, error) {
	return sc.client.GetJSON(ctx, statsKey, dst)
}

// Generation returns the invalidation counter, 0 before the first write
func (sc *StatsCache) Generation(ctx context.Context) (int64, error) {
	gen, err := sc.client.rdb.Get(ctx, statsGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetIfGeneration stores a snapshot unless an invalidation happened after
// generation was read. Returns false when the snapshot was discarded.
func (sc *StatsCache) SetIfGeneration(ctx context.Context, generation int64, value interface{}) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s: %w", statsKey, err)
	}

	stored, err := setIfGenerationScript.Run(ctx, sc.client.rdb,
		[]string{statsKey, statsGenerationKey},
		strconv.FormatInt(generation, 10), raw, sc.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Invalidate drops the snapshot and bumps the generation
func (sc *StatsCache) Invalidate(ctx context.Context) error {
	_, err := sc.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, statsGenerationKey)
		pipe.Del(ctx, statsKey)
		return nil
	})
	return err
}
