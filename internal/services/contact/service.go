package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elkast/blog/internal/domain/model"
	pgrepo "github.com/elkast/blog/internal/repo/postgres"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrMessageNotFound = errors.New("contact message not found")
)

type MessageStore interface {
	Create(ctx context.Context, name, email, subject, body string) (model.ContactMessage, error)
	List(ctx context.Context, unreadOnly bool, limit int) ([]model.ContactMessage, error)
	MarkRead(ctx context.Context, messageID int64) error
}

type Service struct {
	messages MessageStore
}

func NewService(messages MessageStore) *Service {
	return &Service{messages: messages}
}

func (s *Service) Submit(ctx context.Context, name, email, subject, body string) (model.ContactMessage, error) {
	if s.messages == nil {
		return model.ContactMessage{}, fmt.Errorf("message store is nil")
	}

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	body = strings.TrimSpace(body)
	if name == "" || body == "" || email == "" || !strings.Contains(email, "@") {
		return model.ContactMessage{}, ErrValidation
	}

	return s.messages.Create(ctx, name, email, strings.TrimSpace(subject), body)
}

func (s *Service) List(ctx context.Context, unreadOnly bool, limit int) ([]model.ContactMessage, error) {
	if s.messages == nil {
		return nil, fmt.Errorf("message store is nil")
	}
	return s.messages.List(ctx, unreadOnly, limit)
}

func (s *Service) MarkRead(ctx context.Context, messageID int64) error {
	if s.messages == nil {
		return fmt.Errorf("message store is nil")
	}
	if messageID <= 0 {
		return ErrValidation
	}

	if err := s.messages.MarkRead(ctx, messageID); err != nil {
		if errors.Is(err, pgrepo.ErrMessageNotFound) {
			return ErrMessageNotFound
		}
		return err
	}

	return nil
}
