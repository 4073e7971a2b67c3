package newsletter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elkast/blog/internal/domain/model"
	pgrepo "github.com/elkast/blog/internal/repo/postgres"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrAlreadySubscribed = errors.New("email already subscribed")
)

type SubscriberStore interface {
	Subscribe(ctx context.Context, email, name string) (model.Subscriber, error)
	List(ctx context.Context, limit int) ([]model.Subscriber, error)
}

type Service struct {
	subscribers SubscriberStore
}

func NewService(subscribers SubscriberStore) *Service {
	return &Service{subscribers: subscribers}
}

func (s *Service) Subscribe(ctx context.Context, email, name string) (model.Subscriber, error) {
	if s.subscribers == nil {
		return model.Subscriber{}, fmt.Errorf("subscriber store is nil")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return model.Subscriber{}, ErrValidation
	}

	subscriber, err := s.subscribers.Subscribe(ctx, email, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, pgrepo.ErrAlreadySubscribed) {
			return model.Subscriber{}, ErrAlreadySubscribed
		}
		return model.Subscriber{}, err
	}

	return subscriber, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]model.Subscriber, error) {
	if s.subscribers == nil {
		return nil, fmt.Errorf("subscriber store is nil")
	}
	return s.subscribers.List(ctx, limit)
}
