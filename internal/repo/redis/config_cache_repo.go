package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const siteConfigKey = "site_config:v1"

// ConfigCacheRepo keeps the site configuration map in redis so catalog
// pages do not hit postgres on every request. A miss returns ok=false,
// never an error.
type ConfigCacheRepo struct {
	client *goredis.Client
}

func NewConfigCacheRepo(client *goredis.Client) *ConfigCacheRepo {
	return &ConfigCacheRepo{client: client}
}

func (r *ConfigCacheRepo) Get(ctx context.Context) (map[string]string, bool, error) {
	if r.client == nil {
		return nil, false, nil
	}

	raw, err := r.client.Get(ctx, siteConfigKey).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached site config: %w", err)
	}

	var values map[string]string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false, nil
	}

	return values, true, nil
}

func (r *ConfigCacheRepo) Set(ctx context.Context, values map[string]string, ttl time.Duration) error {
	if r.client == nil || ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal site config: %w", err)
	}
	if err := r.client.Set(ctx, siteConfigKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache site config: %w", err)
	}

	return nil
}

func (r *ConfigCacheRepo) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, siteConfigKey).Err(); err != nil {
		return fmt.Errorf("invalidate cached site config: %w", err)
	}
	return nil
}
