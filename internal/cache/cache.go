// Package cache keeps board aggregates in Redis so repeated board views skip
// the nested column/task queries.
package cache

import (
	"context"
	"errors"
	"kanban/internal/database/models"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// versionTTL bounds how long a board's version counter outlives its last write.
const versionTTL = 24 * time.Hour

// storeIfCurrent writes ARGV[2] to KEYS[2] only while the version counter in
// KEYS[1] still equals ARGV[1]; a missing counter reads as 0.
var storeIfCurrent = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if (v or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Stamp is the board version observed before a database read. A store made
// with a stamp that an Evict has since overtaken is dropped, so a slow
// reader cannot put back a snapshot older than a committed write.
type Stamp struct {
	version int64
	valid   bool
}

// BoardCache is a read-through cache for board aggregates and summaries.
// A nil client or zero TTL turns every call into a miss or a no-op.
type BoardCache struct {
	redis *redis.Client
	ttl   time.Duration
	log   *log.Logger
}

func New(client *redis.Client, ttl time.Duration, logger *log.Logger) *BoardCache {
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &BoardCache{redis: client, ttl: ttl, log: logger}
}

func (c *BoardCache) enabled() bool {
	return c != nil && c.redis != nil && c.ttl > 0
}

// Aggregate returns the cached aggregate for boardID, if any.
func (c *BoardCache) Aggregate(ctx context.Context, boardID uuid.UUID) (*models.BoardAggregate, bool) {
	var agg models.BoardAggregate
	if !c.load(ctx, aggregateKey(boardID), &agg) {
		return nil, false
	}
	return &agg, true
}

// Stamp reads the current version of boardID. Take it before opening the
// read transaction whose result will be stored.
func (c *BoardCache) Stamp(ctx context.Context, boardID uuid.UUID) Stamp {
	if !c.enabled() {
		return Stamp{}
	}
	v, err := c.redis.Get(ctx, versionKey(boardID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.WithError(err).WithField("board", boardID).Debug("board cache version read failed")
		return Stamp{}
	}
	return Stamp{version: v, valid: true}
}

func (c *BoardCache) StoreAggregate(ctx context.Context, agg *models.BoardAggregate, stamp Stamp) {
	c.store(ctx, agg.ID, aggregateKey(agg.ID), agg, stamp)
}

// Summary returns the cached counts-only view for boardID, if any.
func (c *BoardCache) Summary(ctx context.Context, boardID uuid.UUID) (*models.BoardSummary, bool) {
	var sum models.BoardSummary
	if !c.load(ctx, summaryKey(boardID), &sum) {
		return nil, false
	}
	return &sum, true
}

func (c *BoardCache) StoreSummary(ctx context.Context, sum *models.BoardSummary, stamp Stamp) {
	c.store(ctx, sum.ID, summaryKey(sum.ID), sum, stamp)
}

// Evict bumps the version of boardID and drops every cached view of it.
// Called after each committed write.
func (c *BoardCache) Evict(ctx context.Context, boardID uuid.UUID) {
	if c == nil || c.redis == nil {
		return
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(boardID))
		pipe.Expire(ctx, versionKey(boardID), versionTTL)
		pipe.Del(ctx, aggregateKey(boardID), summaryKey(boardID))
		return nil
	})
	if err != nil {
		c.log.WithError(err).WithField("board", boardID).Warn("board cache eviction failed")
	}
}

func (c *BoardCache) load(ctx context.Context, key string, v any) bool {
	if !c.enabled() {
		return false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// On redis errors fall back to the database without failing.
			c.log.WithError(err).WithField("key", key).Debug("board cache read failed")
			_ = c.redis.Del(ctx, key).Err()
		}
		return false
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return false
	}
	return true
}

func (c *BoardCache) store(ctx context.Context, boardID uuid.UUID, key string, v any, stamp Stamp) {
	if !c.enabled() || !stamp.valid {
		return
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return
	}
	keys := []string{versionKey(boardID), key}
	stored, err := storeIfCurrent.Run(ctx, c.redis, keys,
		strconv.FormatInt(stamp.version, 10), data, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.log.WithError(err).WithField("key", key).Debug("board cache write failed")
		return
	}
	if stored == 0 {
		c.log.WithField("key", key).Debug("board cache write skipped, board changed during read")
	}
}

func aggregateKey(boardID uuid.UUID) string {
	return "board:" + boardID.String()
}

func summaryKey(boardID uuid.UUID) string {
	return "board:" + boardID.String() + ":summary"
}

func versionKey(boardID uuid.UUID) string {
	return "board:" + boardID.String() + ":v"
}
