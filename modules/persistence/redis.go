package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	domain "github.com/example/quicktasks/domain/task"
	"github.com/redis/go-redis/v9"
)

// saveTask writes the task JSON (ARGV[1]) under KEYS[1], adds its id
// (ARGV[2]) to the id set KEYS[2] and raises the counter KEYS[3] when the id
// moves it forward. Every check runs before the first write, so a failed call
// leaves nothing behind.
var saveTask = redis.NewScript(`
local last = 0
local current = redis.call('GET', KEYS[3])
if current then
	last = tonumber(current)
	if not last then
		return redis.error_reply('id counter is not a number')
	end
end
local idsType = redis.call('TYPE', KEYS[2])['ok']
if idsType ~= 'none' and idsType ~= 'set' then
	return redis.error_reply('id index is not a set')
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SADD', KEYS[2], ARGV[2])
if tonumber(ARGV[2]) > last then
	redis.call('SET', KEYS[3], ARGV[2])
end
return redis.status_reply('OK')
`)

// RedisBackend stores each task as a JSON value with a set of live ids.
type RedisBackend struct {
	client *redis.Client
	addr   string
	prefix string
}

// NewRedisBackend creates a backend for the Redis server at addr. All keys
// are namespaced with prefix.
func NewRedisBackend(addr, prefix string) *RedisBackend {
	return &RedisBackend{
		addr:   addr,
		prefix: prefix,
	}
}

// newRedisBackendWithClient wraps an existing client.
func newRedisBackendWithClient(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{
		client: client,
		addr:   client.Options().Addr,
		prefix: prefix,
	}
}

func (b *RedisBackend) Name() string { return "redis" }

// Open creates the client and checks the connection.
func (b *RedisBackend) Open(ctx context.Context) error {
	if b.client == nil {
		b.client = redis.NewClient(&redis.Options{
			Addr:         b.addr,
			PoolSize:     10,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
	}

	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[persistence] Connected to Redis at %s (prefix: %s)", b.addr, b.prefix)
	return nil
}

func (b *RedisBackend) taskKey(id int) string {
	return b.prefix + "task:" + strconv.Itoa(id)
}

func (b *RedisBackend) idsKey() string {
	return b.prefix + "ids"
}

func (b *RedisBackend) lastIDKey() string {
	return b.prefix + "last_id"
}

func (b *RedisBackend) LoadAll(ctx context.Context) (domain.Snapshot, error) {
	members, err := b.client.SMembers(ctx, b.idsKey()).Result()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to list task ids: %w", err)
	}

	snap := domain.Snapshot{Tasks: make([]domain.Task, 0, len(members))}

	if len(members) > 0 {
		keys := make([]string, 0, len(members))
		for _, m := range members {
			id, err := strconv.Atoi(m)
			if err != nil {
				log.Printf("[persistence] Warning: skipping malformed task id %q", m)
				continue
			}
			keys = append(keys, b.taskKey(id))
		}

		values, err := b.client.MGet(ctx, keys...).Result()
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("failed to load tasks: %w", err)
		}

		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				// Listed in the id set but the value is gone.
				continue
			}
			var t domain.Task
			if err := json.Unmarshal([]byte(raw), &t); err != nil {
				return domain.Snapshot{}, fmt.Errorf("failed to decode %s: %w", keys[i], err)
			}
			snap.Tasks = append(snap.Tasks, t)
		}
	}

	lastID, err := b.client.Get(ctx, b.lastIDKey()).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, fmt.Errorf("failed to load id counter: %w", err)
	}
	snap.LastID = lastID

	return snap, nil
}

func (b *RedisBackend) Save(ctx context.Context, t domain.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode task %d: %w", t.ID, err)
	}

	keys := []string{b.taskKey(t.ID), b.idsKey(), b.lastIDKey()}
	if err := saveTask.Run(ctx, b.client, keys, data, t.ID).Err(); err != nil {
		return fmt.Errorf("failed to save task %d: %w", t.ID, err)
	}
	return nil
}

func (b *RedisBackend) Remove(ctx context.Context, id int) error {
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, b.taskKey(id))
		pipe.SRem(ctx, b.idsKey(), strconv.Itoa(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove task %d: %w", id, err)
	}
	return nil
}

func (b *RedisBackend) Ping(ctx context.Context) error {
	if b.client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (b *RedisBackend) Close() error {
	if b.client == nil {
		return nil
	}
	if err := b.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	return nil
}
