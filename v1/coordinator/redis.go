package coordinator

import (
	"context"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
else
    return 0
end
`)

// Redis implements Backend using a Redis server. Locks are SET NX keys
// holding a random fencing token; release runs a compare-and-delete script
// so only the current holder can remove the lock.
type Redis struct {
	client *redis.Client
}

// NewRedis returns a new Redis backend using the provided client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get implements Backend.Get.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Put implements Backend.Put.
func (r *Redis) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Delete implements Backend.Delete.
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// AcquireLock implements Backend.AcquireLock.
func (r *Redis) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrContention
	}
	return token, nil
}

// ReleaseLock implements Backend.ReleaseLock.
func (r *Redis) ReleaseLock(ctx context.Context, key, token string) error {
	err := releaseScript.Run(ctx, r.client, []string{key}, token).Err()
	if err == redis.Nil {
		return nil
	}
	return err
}
