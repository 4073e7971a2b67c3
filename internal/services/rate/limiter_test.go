package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/elkast/blog/internal/repo/redis"
)

func TestLimiterBlocksPerIP(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := redrepo.NewRateRepo(client)
	limiter := NewLimiter(repo, 3)

	ctx := context.Background()
	ip := "203.0.113.9"

	for i := 0; i < 3; i++ {
		retryAfter, allowed, err := limiter.AllowDownload(ctx, ip)
		if err != nil {
			t.Fatalf("allow download #%d: %v", i+1, err)
		}
		if !allowed || retryAfter != 0 {
			t.Fatalf("unexpected result on allow #%d: allowed=%v retry_after=%d", i+1, allowed, retryAfter)
		}
	}

	retryAfter, allowed, err := limiter.AllowDownload(ctx, ip)
	if err != nil {
		t.Fatalf("allow download #4: %v", err)
	}
	if allowed {
		t.Fatalf("expected limiter block on fourth attempt in minute window")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry_after, got %d", retryAfter)
	}

	// A different IP keeps its own window.
	_, allowed, err = limiter.AllowDownload(ctx, "198.51.100.7")
	if err != nil {
		t.Fatalf("allow download other ip: %v", err)
	}
	if !allowed {
		t.Fatalf("second ip must not share the window")
	}

	mr.FastForward(61 * time.Second)

	retryAfter, allowed, err = limiter.AllowDownload(ctx, ip)
	if err != nil {
		t.Fatalf("allow download after window: %v", err)
	}
	if !allowed || retryAfter != 0 {
		t.Fatalf("unexpected result after fast forward: allowed=%v retry_after=%d", allowed, retryAfter)
	}
}

func TestLimiterDisabledWithZeroLimit(t *testing.T) {
	limiter := NewLimiter(nil, 0)

	_, allowed, err := limiter.AllowDownload(context.Background(), "203.0.113.9")
	if err != nil {
		t.Fatalf("allow download: %v", err)
	}
	if !allowed {
		t.Fatalf("zero limit must disable the limiter")
	}
}

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})

	return mr, client
}
