package app

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pcreem/silver-ESG/internal/backend"
)

var ErrNoProfile = errors.New("no recipient profile selected")

// View is everything the dashboard screen renders for one care recipient.
type View struct {
	Dashboard    backend.DashboardData
	RecentOrders []backend.Order
}

type Service struct {
	api BackendReader
}

func NewService(api BackendReader) *Service {
	return &Service{api: api}
}

// Load fetches the nutrition stats and the order history in parallel; either
// failure fails the view.
func (s *Service) Load(ctx context.Context, profileID string) (View, error) {
	if strings.TrimSpace(profileID) == "" {
		return View{}, ErrNoProfile
	}

	var view View
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d, err := s.api.GetDashboard(ctx, profileID)
		if err != nil {
			return err
		}
		view.Dashboard = d
		return nil
	})

	g.Go(func() error {
		orders, err := s.api.GetOrders(ctx, profileID)
		if err != nil {
			return err
		}
		view.RecentOrders = orders
		return nil
	})

	if err := g.Wait(); err != nil {
		return View{}, err
	}

	return view, nil
}
