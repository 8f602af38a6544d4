// Package cache keeps the last published market snapshot in Redis so a
// restarting process can serve prices before its first refresh completes.
// The cache is optional; a nil *Client is a no-op everywhere.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/market"
)

const snapshotKey = "yn:snapshot"

// Snapshot is the cached form of one published refresh.
type Snapshot struct {
	Matches []market.Match            `json:"matches"`
	Markets map[int64][]market.Market `json:"markets"`
	TakenAt time.Time                 `json:"takenAt"`
}

type Client struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to Redis using a redis:// URL. Callers pass an empty URL to
// run without a cache, in which case they hold a nil *Client.
func New(url string, ttl time.Duration, logger *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{rdb: redis.NewClient(opts), ttl: ttl, logger: logger}, nil
}

// StoreSnapshot writes the latest snapshot. Failures are logged and dropped;
// the cache never gates a refresh.
func (c *Client) StoreSnapshot(ctx context.Context, snap Snapshot) {
	if c == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("snapshot marshal failed", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, snapshotKey, data, c.ttl).Err(); err != nil {
		c.logger.Warn("snapshot cache write failed", zap.Error(err))
	}
}

// LoadSnapshot returns the cached snapshot, if one exists and decodes.
func (c *Client) LoadSnapshot(ctx context.Context) (Snapshot, bool) {
	if c == nil {
		return Snapshot{}, false
	}
	data, err := c.rdb.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("snapshot cache read failed", zap.Error(err))
		}
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.logger.Warn("snapshot cache decode failed", zap.Error(err))
		return Snapshot{}, false
	}
	return snap, len(snap.Matches) > 0
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
