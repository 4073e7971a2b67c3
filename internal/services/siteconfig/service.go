package siteconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation error")

type Store interface {
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

type Cache interface {
	Get(ctx context.Context) (map[string]string, bool, error)
	Set(ctx context.Context, values map[string]string, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Service reads the site configuration through a short-lived redis
// cache. Writes go straight to postgres and drop the cached copy.
type Service struct {
	store Store
	cache Cache
	ttl   time.Duration
}

func NewService(store Store, cache Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Service{
		store: store,
		cache: cache,
		ttl:   ttl,
	}
}

func (s *Service) Get(ctx context.Context) (map[string]string, error) {
	if s.store == nil {
		return nil, fmt.Errorf("site config store is nil")
	}

	if s.cache != nil {
		if values, ok, err := s.cache.Get(ctx); err == nil && ok {
			return values, nil
		}
	}

	values, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, values, s.ttl)
	}

	return values, nil
}

func (s *Service) Update(ctx context.Context, values map[string]string) error {
	if s.store == nil {
		return fmt.Errorf("site config store is nil")
	}
	if len(values) == 0 {
		return ErrValidation
	}
	for key := range values {
		if strings.TrimSpace(key) == "" {
			return ErrValidation
		}
	}

	for key, value := range values {
		if err := s.store.Set(ctx, key, value); err != nil {
			return err
		}
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx)
	}

	return nil
}
