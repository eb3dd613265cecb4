// Package cache memoises per-user unread notification counts.
package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// UnreadCounts memoises per-user counts. Every user has a version that
// Invalidate bumps; Get hands out the version on a miss and Set only stores
// a count computed under that same version, so a count read before a
// concurrent write can never be cached after that write's invalidation.
type UnreadCounts interface {
	Get(ctx context.Context, userID uuid.UUID) (n int64, hit bool, version int64, err error)
	Set(ctx context.Context, userID uuid.UUID, version, n int64) error
	Invalidate(ctx context.Context, userIDs ...uuid.UUID) error
}

type Noop struct{}

func (Noop) Get(context.Context, uuid.UUID) (int64, bool, int64, error) { return 0, false, 0, nil }
func (Noop) Set(context.Context, uuid.UUID, int64, int64) error         { return nil }
func (Noop) Invalidate(context.Context, ...uuid.UUID) error             { return nil }

const (
	defaultTTL = 30 * time.Second
	// versions outlive counts by far; an expired version only turns the
	// next Set into a no-op
	versionTTL = 24 * time.Hour
)

// setIfVersion stores the count only while the version key still holds
// the version the caller read. A missing version key counts as 0.
var setIfVersion = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then v = '0' end
if v ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, ttl: ttl, prefix: "byod:unread:"}
}

func (r *Redis) countKey(id uuid.UUID) string   { return r.prefix + id.String() }
func (r *Redis) versionKey(id uuid.UUID) string { return r.prefix + "ver:" + id.String() }

func (r *Redis) Get(ctx context.Context, userID uuid.UUID) (int64, bool, int64, error) {
	var count, version *redis.StringCmd
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		count = p.Get(ctx, r.countKey(userID))
		version = p.Get(ctx, r.versionKey(userID))
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, false, 0, err
	}
	ver, err := parseInt(version)
	if err != nil {
		return 0, false, 0, err
	}
	n, err := parseInt(count)
	if err != nil || count.Err() != nil {
		// missing or garbage counts are both misses
		return 0, false, ver, nil
	}
	return n, true, ver, nil
}

func parseInt(cmd *redis.StringCmd) (int64, error) {
	v, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func (r *Redis) Set(ctx context.Context, userID uuid.UUID, version, n int64) error {
	keys := []string{r.versionKey(userID), r.countKey(userID)}
	return setIfVersion.Run(ctx, r.client, keys, version, n, r.ttl.Milliseconds()).Err()
}

func (r *Redis) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, id := range userIDs {
			p.Del(ctx, r.countKey(id))
			p.Incr(ctx, r.versionKey(id))
			p.Expire(ctx, r.versionKey(id), versionTTL)
		}
		return nil
	})
	return err
}

// Memory is a process-local cache without expiry. It is selected with
// REDIS_URL=memory for single-instance deployments.
type Memory struct {
	mu       sync.Mutex
	counts   map[uuid.UUID]int64
	versions map[uuid.UUID]int64
}

func NewMemory() *Memory {
	return &Memory{counts: map[uuid.UUID]int64{}, versions: map[uuid.UUID]int64{}}
}

func (m *Memory) Get(_ context.Context, userID uuid.UUID) (int64, bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.counts[userID]
	return n, ok, m.versions[userID], nil
}

func (m *Memory) Set(_ context.Context, userID uuid.UUID, version, n int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[userID] == version {
		m.counts[userID] = n
	}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, userIDs ...uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range userIDs {
		delete(m.counts, id)
		m.versions[id]++
	}
	return nil
}
