//go:build integration

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

// Run with: HAPLONET_REDIS_URL=redis://localhost:6379/15 go test -tags integration ./pkg/cache
func redisCache(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("HAPLONET_REDIS_URL")
	if url == "" {
		t.Skip("HAPLONET_REDIS_URL not set")
	}
	c, err := NewRedisCache(context.Background(), url, "haplonet-test:"+t.Name()+":")
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Clear(context.Background())
		c.Close()
	})
	return c
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c := redisCache(t)

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("empty Get = %v, %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("hit after Delete")
	}
}

func TestRedisCacheClear(t *testing.T) {
	ctx := context.Background()
	c := redisCache(t)
	for _, k := range []string{"a", "b"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("hit after Clear")
	}
}

func TestRedisCacheUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisCache(ctx, "redis://127.0.0.1:1/0", "x:"); err == nil {
		t.Error("expected connection error")
	}
}
