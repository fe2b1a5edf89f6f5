package app

import (
	"context"

	"github.com/pcreem/silver-ESG/internal/backend"
	cartdomain "github.com/pcreem/silver-ESG/internal/cart/domain"
	sessiondomain "github.com/pcreem/silver-ESG/internal/session/domain"
)

// CartReader is the slice of the cart store checkout needs.
type CartReader interface {
	Items() []cartdomain.Item
	Total() int64
	ClearCart()
}

// SessionReader answers "who is checking out" synchronously.
type SessionReader interface {
	User() (sessiondomain.User, bool)
}

// OrderCreator submits the assembled order to the backend.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req backend.OrderCreateRequest) (backend.CheckoutResult, error)
}
