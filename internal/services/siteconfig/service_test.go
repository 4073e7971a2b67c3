package siteconfig

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	redrepo "github.com/elkast/blog/internal/repo/redis"
)

type configStoreStub struct {
	values map[string]string
	reads  int
}

func (s *configStoreStub) All(_ context.Context) (map[string]string, error) {
	s.reads++
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *configStoreStub) Set(_ context.Context, key, value string) error {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	return nil
}

func TestGetServesFromCache(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	store := &configStoreStub{values: map[string]string{"site_title": "Carnet de recherche"}}
	cache := redrepo.NewConfigCacheRepo(client)
	svc := NewService(store, cache, time.Minute)

	ctx := context.Background()

	first, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if first["site_title"] != "Carnet de recherche" {
		t.Fatalf("unexpected config: %+v", first)
	}

	second, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if second["site_title"] != first["site_title"] {
		t.Fatalf("cached read disagrees with store")
	}
	if store.reads != 1 {
		t.Fatalf("expected one store read, got %d", store.reads)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := svc.Get(ctx); err != nil {
		t.Fatalf("get after ttl: %v", err)
	}
	if store.reads != 2 {
		t.Fatalf("expected refill after ttl, got %d store reads", store.reads)
	}
}

func TestUpdateInvalidatesCache(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	store := &configStoreStub{values: map[string]string{"contact_email": "old@example.com"}}
	cache := redrepo.NewConfigCacheRepo(client)
	svc := NewService(store, cache, time.Minute)

	ctx := context.Background()

	if _, err := svc.Get(ctx); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if err := svc.Update(ctx, map[string]string{"contact_email": "new@example.com"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	values, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if values["contact_email"] != "new@example.com" {
		t.Fatalf("stale value after update: %q", values["contact_email"])
	}
}

func TestUpdateRejectsEmptyPayload(t *testing.T) {
	svc := NewService(&configStoreStub{}, nil, time.Minute)

	if err := svc.Update(context.Background(), nil); err != ErrValidation {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := svc.Update(context.Background(), map[string]string{"  ": "x"}); err != ErrValidation {
		t.Fatalf("expected ErrValidation for blank key, got %v", err)
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
