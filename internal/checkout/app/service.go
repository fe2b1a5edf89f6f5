package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/pcreem/silver-ESG/internal/backend"
	"github.com/pcreem/silver-ESG/internal/checkout/domain"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNoProfile        = errors.New("no recipient profile selected")
	ErrNotAuthenticated = errors.New("sign in required")
	ErrInFlight         = errors.New("checkout already in progress")
)

type Service struct {
	cart    CartReader
	session SessionReader
	orders  OrderCreator

	inFlight atomic.Bool
}

func NewService(cart CartReader, session SessionReader, orders OrderCreator) *Service {
	return &Service{
		cart:    cart,
		session: session,
		orders:  orders,
	}
}

// Quote prices the current cart locally; no network involved.
func (s *Service) Quote() (domain.Quote, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, len(items))
	for i, it := range items {
		lines[i] = domain.QuoteLine{
			MenuItemID: it.ID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			LineTotal:  it.UnitPrice * it.Quantity,
		}
	}

	return domain.NewQuote(lines), nil
}

type Params struct {
	ProfileID string
	// Instructions is an optional delivery-wide note attached to each line.
	Instructions string
}

type Result struct {
	// CheckoutURL non-empty means the caller must redirect to payment;
	// the cart is kept until payment completes.
	CheckoutURL string
	// OrderPlaced means the order went through without a redirect and the
	// cart was cleared.
	OrderPlaced bool
}

// Checkout validates locally, then submits the order. All validation happens
// before any network call, and only one checkout may be in flight at a time.
func (s *Service) Checkout(ctx context.Context, params Params) (Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrInFlight
	}
	defer s.inFlight.Store(false)

	items := s.cart.Items()
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}
	if params.ProfileID == "" {
		return Result{}, ErrNoProfile
	}
	user, ok := s.session.User()
	if !ok {
		return Result{}, ErrNotAuthenticated
	}

	orderItems := make([]backend.OrderItem, len(items))
	for i, it := range items {
		menuItemID, err := strconv.ParseInt(it.ID, 10, 64)
		if err != nil {
			return Result{}, fmt.Errorf("cart line %q: bad menu item id: %w", it.Name, err)
		}
		orderItems[i] = backend.OrderItem{
			MenuItemID:          menuItemID,
			Quantity:            it.Quantity,
			SpecialInstructions: params.Instructions,
		}
	}

	req := backend.OrderCreateRequest{
		ProfileID:     params.ProfileID,
		Items:         orderItems,
		TotalAmount:   s.cart.Total(),
		CustomerEmail: user.Email,
	}

	res, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		return Result{}, err
	}

	if res.CheckoutURL != "" {
		return Result{CheckoutURL: res.CheckoutURL}, nil
	}

	s.cart.ClearCart()
	return Result{OrderPlaced: true}, nil
}
