package locks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a per-route lock shared by every service instance using the
// same Redis. Locks expire after TTL so a crashed holder cannot wedge a route.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	poll   time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client: client,
		prefix: "trashperson:route-lock:",
		ttl:    ttl,
		poll:   25 * time.Millisecond,
	}
}

func (l *RedisLocker) key(routeID int64) string {
	return fmt.Sprintf("%s%d", l.prefix, routeID)
}

// Lock polls SET NX until it wins or ctx is done. Without a ctx deadline the
// wait is bounded by the lock TTL.
func (l *RedisLocker) Lock(ctx context.Context, routeID int64) (func(), error) {
	if l.client == nil {
		return nil, errors.New("redis locker: client is nil")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.ttl)
		defer cancel()
	}

	key := l.key(routeID)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis locker: acquire %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("redis locker: acquire %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}

	return func() {
		// Release with a fresh context: the caller's may already be cancelled.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
			log.Printf("redis locker: release %s failed: %v", key, err)
		}
	}, nil
}
