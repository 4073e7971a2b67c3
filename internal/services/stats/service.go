package stats

import (
	"context"
	"fmt"
)

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type RevenueStore interface {
	Counter
	Revenue(ctx context.Context) (int64, error)
}

type UnreadCounter interface {
	CountUnread(ctx context.Context) (int64, error)
}

type ViewsTotaler interface {
	TotalViews(ctx context.Context) (int64, error)
}

type Service struct {
	articles    Counter
	books       Counter
	categories  Counter
	purchases   RevenueStore
	downloads   Counter
	messages    UnreadCounter
	subscribers Counter
	views       ViewsTotaler
}

type Dashboard struct {
	Articles       int64 `json:"articles"`
	Books          int64 `json:"books"`
	Categories     int64 `json:"categories"`
	Purchases      int64 `json:"purchases"`
	Downloads      int64 `json:"downloads"`
	UnreadMessages int64 `json:"unread_messages"`
	Subscribers    int64 `json:"subscribers"`
	Revenue        int64 `json:"revenue"`
	TotalViews     int64 `json:"total_views"`
}

type Dependencies struct {
	Articles    Counter
	Books       Counter
	Categories  Counter
	Purchases   RevenueStore
	Downloads   Counter
	Messages    UnreadCounter
	Subscribers Counter
	Views       ViewsTotaler
}

func NewService(deps Dependencies) *Service {
	return &Service{
		articles:    deps.Articles,
		books:       deps.Books,
		categories:  deps.Categories,
		purchases:   deps.Purchases,
		downloads:   deps.Downloads,
		messages:    deps.Messages,
		subscribers: deps.Subscribers,
		views:       deps.Views,
	}
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		out Dashboard
		err error
	)

	counts := []struct {
		counter Counter
		target  *int64
	}{
		{s.articles, &out.Articles},
		{s.books, &out.Books},
		{s.categories, &out.Categories},
		{s.purchases, &out.Purchases},
		{s.downloads, &out.Downloads},
		{s.subscribers, &out.Subscribers},
	}
	for _, c := range counts {
		if c.counter == nil {
			return Dashboard{}, fmt.Errorf("stats dependencies are not configured")
		}
		if *c.target, err = c.counter.Count(ctx); err != nil {
			return Dashboard{}, err
		}
	}

	if s.messages == nil || s.views == nil || s.purchases == nil {
		return Dashboard{}, fmt.Errorf("stats dependencies are not configured")
	}
	if out.UnreadMessages, err = s.messages.CountUnread(ctx); err != nil {
		return Dashboard{}, err
	}
	if out.Revenue, err = s.purchases.Revenue(ctx); err != nil {
		return Dashboard{}, err
	}
	if out.TotalViews, err = s.views.TotalViews(ctx); err != nil {
		return Dashboard{}, err
	}

	return out, nil
}
