package lock

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

func newLocker(client *redis.Client) *Redis {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewRedis(client, 5*time.Second, log)
}

func TestLockExclusive(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	key := "test:order:confirm:exclusive"
	client.Del(ctx, key)

	lk := newLocker(client)

	unlock, ok, err := lk.Lock(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected to acquire the lock, got ok=%t err=%v", ok, err)
	}

	if _, ok, err := lk.Lock(ctx, key); err != nil || ok {
		t.Fatalf("expected the lock to be held, got ok=%t err=%v", ok, err)
	}

	unlock()

	unlock, ok, err = lk.Lock(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected to reacquire the lock, got ok=%t err=%v", ok, err)
	}
	unlock()
}

func TestUnlockKeepsForeignLock(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	key := "test:order:confirm:foreign"
	client.Del(ctx, key)

	lk := newLocker(client)

	unlock, ok, err := lk.Lock(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected to acquire the lock, got ok=%t err=%v", ok, err)
	}

	// Simulate expiry followed by another holder.
	client.Set(ctx, key, "someone-else", time.Minute)
	unlock()

	if v, _ := client.Get(ctx, key).Result(); v != "someone-else" {
		t.Fatalf("foreign lock released, value %q", v)
	}
	client.Del(ctx, key)
}

func TestLockExpires(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	key := "test:order:confirm:ttl"
	client.Del(ctx, key)

	lk := newLocker(client)

	if _, ok, err := lk.Lock(ctx, key); err != nil || !ok {
		t.Fatalf("expected to acquire the lock, got ok=%t err=%v", ok, err)
	}

	ttl, err := client.TTL(ctx, key).Result()
	if err != nil {
		t.Fatal(err)
	}
	if ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("unexpected ttl %s", ttl)
	}
	client.Del(ctx, key)
}
