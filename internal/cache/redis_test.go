package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/config"
)

func TestNewRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewRedis(ctx, config.RedisConfig{Addr: "127.0.0.1:1"}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected connection error for unreachable redis")
	}
}

func TestRedis_ErrorsSurface(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	r := NewRedisWithClient(client, "test:", zerolog.Nop())
	defer r.Close()

	ctx := context.Background()
	if _, found, err := r.Get(ctx, "k"); err == nil || found {
		t.Errorf("Get on a dead server: found=%v err=%v, want error", found, err)
	}
	if err := r.Set(ctx, "k", "v", time.Minute); err == nil {
		t.Error("Set on a dead server should fail")
	}
}
