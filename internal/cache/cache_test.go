package cache

import (
	"context"
	"kanban/internal/database/models"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*BoardCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, ttl, nil), mr
}

func sampleAggregate() *models.BoardAggregate {
	desc := "details"
	boardID := uuid.New()
	colID := uuid.New()
	return &models.BoardAggregate{
		Board: models.Board{ID: boardID, Name: "Roadmap", OwnerID: uuid.New(), CreatedAt: time.Now().UTC().Truncate(time.Second)},
		Columns: []models.ColumnWithTasks{{
			Column: models.Column{ID: colID, BoardID: boardID, Title: "Todo", Order: 0},
			Tasks: []models.Task{{
				ID: uuid.New(), ColumnID: colID, BoardID: boardID, Title: "Write code",
				Description: &desc, Priority: models.PriorityHigh, Order: 0,
			}},
		}},
	}
}

func TestAggregateMissThenHit(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	agg := sampleAggregate()

	_, ok := c.Aggregate(ctx, agg.ID)
	assert.False(t, ok)

	c.StoreAggregate(ctx, agg, c.Stamp(ctx, agg.ID))
	ttl := mr.TTL(aggregateKey(agg.ID))
	assert.True(t, ttl > 0 && ttl <= time.Minute, "unexpected TTL %v", ttl)

	got, ok := c.Aggregate(ctx, agg.ID)
	require.True(t, ok)
	assert.Equal(t, agg.Name, got.Name)
	require.Len(t, got.Columns, 1)
	require.Len(t, got.Columns[0].Tasks, 1)
	assert.Equal(t, "details", *got.Columns[0].Tasks[0].Description)
	assert.Equal(t, models.PriorityHigh, got.Columns[0].Tasks[0].Priority)
}

func TestSummaryAndEvict(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	agg := sampleAggregate()
	sum := &models.BoardSummary{
		Board:   agg.Board,
		Columns: []models.ColumnCount{{Column: agg.Columns[0].Column, TaskCount: 1}},
	}

	stamp := c.Stamp(ctx, agg.ID)
	c.StoreAggregate(ctx, agg, stamp)
	c.StoreSummary(ctx, sum, stamp)

	got, ok := c.Summary(ctx, agg.ID)
	require.True(t, ok)
	assert.Equal(t, 1, got.Columns[0].TaskCount)

	c.Evict(ctx, agg.ID)
	assert.False(t, mr.Exists(aggregateKey(agg.ID)))
	assert.False(t, mr.Exists(summaryKey(agg.ID)))
	v, err := mr.Get(versionKey(agg.ID))
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	assert.True(t, mr.TTL(versionKey(agg.ID)) > 0)
}

func TestStoreAfterEvictIsDropped(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	agg := sampleAggregate()
	sum := &models.BoardSummary{Board: agg.Board}

	// a reader stamps, a write commits and evicts, then the reader stores
	stale := c.Stamp(ctx, agg.ID)
	c.Evict(ctx, agg.ID)
	c.StoreAggregate(ctx, agg, stale)
	c.StoreSummary(ctx, sum, stale)
	assert.False(t, mr.Exists(aggregateKey(agg.ID)))
	assert.False(t, mr.Exists(summaryKey(agg.ID)))
	_, ok := c.Aggregate(ctx, agg.ID)
	assert.False(t, ok)

	// a reader that stamps after the eviction fills the cache again
	c.StoreAggregate(ctx, agg, c.Stamp(ctx, agg.ID))
	got, ok := c.Aggregate(ctx, agg.ID)
	require.True(t, ok)
	assert.Equal(t, agg.ID, got.ID)
}

func TestStoreWithoutStampIsDropped(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	agg := sampleAggregate()

	c.StoreAggregate(context.Background(), agg, Stamp{})
	assert.False(t, mr.Exists(aggregateKey(agg.ID)))
}

func TestCorruptEntryIsDropped(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	id := uuid.New()
	require.NoError(t, mr.Set(aggregateKey(id), "{not json"))

	_, ok := c.Aggregate(context.Background(), id)
	assert.False(t, ok)
	assert.False(t, mr.Exists(aggregateKey(id)))
}

func TestZeroTTLDisablesStore(t *testing.T) {
	c, mr := newTestCache(t, 0)
	agg := sampleAggregate()

	c.StoreAggregate(context.Background(), agg, c.Stamp(context.Background(), agg.ID))
	assert.False(t, mr.Exists(aggregateKey(agg.ID)))
}

func TestNilClientIsPassThrough(t *testing.T) {
	c := New(nil, time.Minute, nil)
	agg := sampleAggregate()

	c.StoreAggregate(context.Background(), agg, c.Stamp(context.Background(), agg.ID))
	_, ok := c.Aggregate(context.Background(), agg.ID)
	assert.False(t, ok)
	c.Evict(context.Background(), agg.ID)

	var nilCache *BoardCache
	_, ok = nilCache.Aggregate(context.Background(), agg.ID)
	assert.False(t, ok)
}

func TestRedisDownFallsBack(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	agg := sampleAggregate()
	mr.Close()

	stamp := c.Stamp(context.Background(), agg.ID)
	assert.False(t, stamp.valid)
	c.StoreAggregate(context.Background(), agg, stamp)
	_, ok := c.Aggregate(context.Background(), agg.ID)
	assert.False(t, ok)
}
