package stats

import (
	"context"
	"errors"
	"testing"
)

type counterStub int64

func (c counterStub) Count(context.Context) (int64, error) { return int64(c), nil }

type revenueStub struct {
	counterStub
	revenue int64
}

func (r revenueStub) Revenue(context.Context) (int64, error) { return r.revenue, nil }

type unreadStub int64

func (u unreadStub) CountUnread(context.Context) (int64, error) { return int64(u), nil }

type viewsStub int64

func (v viewsStub) TotalViews(context.Context) (int64, error) { return int64(v), nil }

type failingCounter struct{}

func (failingCounter) Count(context.Context) (int64, error) {
	return 0, errors.New("boom")
}

func TestDashboardAggregatesCounts(t *testing.T) {
	svc := NewService(Dependencies{
		Articles:    counterStub(12),
		Books:       counterStub(4),
		Categories:  counterStub(3),
		Purchases:   revenueStub{counterStub: 9, revenue: 45000},
		Downloads:   counterStub(31),
		Messages:    unreadStub(2),
		Subscribers: counterStub(57),
		Views:       viewsStub(1900),
	})

	dashboard, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	want := Dashboard{
		Articles:       12,
		Books:          4,
		Categories:     3,
		Purchases:      9,
		Downloads:      31,
		UnreadMessages: 2,
		Subscribers:    57,
		Revenue:        45000,
		TotalViews:     1900,
	}
	if dashboard != want {
		t.Fatalf("unexpected dashboard:\n got %+v\nwant %+v", dashboard, want)
	}
}

func TestDashboardPropagatesStoreErrors(t *testing.T) {
	svc := NewService(Dependencies{
		Articles:    failingCounter{},
		Books:       counterStub(0),
		Categories:  counterStub(0),
		Purchases:   revenueStub{},
		Downloads:   counterStub(0),
		Messages:    unreadStub(0),
		Subscribers: counterStub(0),
		Views:       viewsStub(0),
	})

	if _, err := svc.Dashboard(context.Background()); err == nil {
		t.Fatalf("expected an error from the failing counter")
	}
}

func TestDashboardRequiresAllDependencies(t *testing.T) {
	svc := NewService(Dependencies{})

	if _, err := svc.Dashboard(context.Background()); err == nil {
		t.Fatalf("expected a configuration error")
	}
}
