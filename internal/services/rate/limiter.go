package rate

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const downloadWindow = time.Minute

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limiter throttles download attempts per client IP with a fixed
// redis window. A zero limit disables it.
type Limiter struct {
	store     WindowStore
	perMinute int
}

func NewLimiter(store WindowStore, perMinute int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
	}
}

func (l *Limiter) AllowDownload(ctx context.Context, ip string) (int64, bool, error) {
	if l.perMinute == 0 || l.store == nil {
		return 0, true, nil
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return 0, false, fmt.Errorf("client ip is required")
	}

	count, ttl, err := l.store.IncrementWindow(ctx, downloadKey(ip), downloadWindow)
	if err != nil {
		return 0, false, err
	}
	if count > int64(l.perMinute) {
		return ceilSeconds(ttl), false, nil
	}

	return 0, true, nil
}

func downloadKey(ip string) string {
	return "rate:download:min:" + ip
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		sec = 1
	}
	return sec
}
