package app

import (
	"context"

	"github.com/pcreem/silver-ESG/internal/backend"
)

// BackendReader is the slice of the API client the dashboard needs.
type BackendReader interface {
	GetDashboard(ctx context.Context, profileID string) (backend.DashboardData, error)
	GetOrders(ctx context.Context, profileID string) ([]backend.Order, error)
}
