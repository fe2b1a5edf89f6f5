package app

import (
	"context"
	"errors"
	"testing"

	"github.com/pcreem/silver-ESG/internal/backend"
	cartdomain "github.com/pcreem/silver-ESG/internal/cart/domain"
	sessiondomain "github.com/pcreem/silver-ESG/internal/session/domain"
)

type fakeCart struct {
	items   []cartdomain.Item
	cleared bool
}

func (f *fakeCart) Items() []cartdomain.Item { return f.items }

func (f *fakeCart) Total() int64 {
	var t int64
	for _, it := range f.items {
		t += it.UnitPrice * it.Quantity
	}
	return t
}

func (f *fakeCart) ClearCart() {
	f.cleared = true
	f.items = nil
}

type fakeSession struct {
	user *sessiondomain.User
}

func (f *fakeSession) User() (sessiondomain.User, bool) {
	if f.user == nil {
		return sessiondomain.User{}, false
	}
	return *f.user, true
}

type fakeOrders struct {
	calls   int
	gotReq  backend.OrderCreateRequest
	result  backend.CheckoutResult
	err     error
	entered chan struct{}
	blockCh chan struct{}
}

func (f *fakeOrders) CreateOrder(ctx context.Context, req backend.OrderCreateRequest) (backend.CheckoutResult, error) {
	f.calls++
	f.gotReq = req
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.blockCh != nil {
		<-f.blockCh
	}
	return f.result, f.err
}

func signedInUser() *sessiondomain.User {
	return &sessiondomain.User{ID: "user-1", Email: "mei@example.com", Name: "Mei"}
}

func twoLines() []cartdomain.Item {
	return []cartdomain.Item{
		{ID: "1", Name: "porridge", UnitPrice: 12000, Quantity: 1},
		{ID: "3", Name: "soup", UnitPrice: 8000, Quantity: 2},
	}
}

func TestCheckoutValidation(t *testing.T) {
	t.Run("empty cart -> ErrEmptyCart, no network call", func(t *testing.T) {
		orders := &fakeOrders{}
		svc := NewService(&fakeCart{}, &fakeSession{user: signedInUser()}, orders)

		_, err := svc.Checkout(context.Background(), Params{ProfileID: "p-1"})
		if err != ErrEmptyCart {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
		if orders.calls != 0 {
			t.Fatalf("expected no order call, got %d", orders.calls)
		}
	})

	t.Run("no profile -> ErrNoProfile, no network call", func(t *testing.T) {
		orders := &fakeOrders{}
		svc := NewService(&fakeCart{items: twoLines()}, &fakeSession{user: signedInUser()}, orders)

		_, err := svc.Checkout(context.Background(), Params{})
		if err != ErrNoProfile {
			t.Fatalf("expected ErrNoProfile, got %v", err)
		}
		if orders.calls != 0 {
			t.Fatalf("expected no order call, got %d", orders.calls)
		}
	})

	t.Run("no session -> ErrNotAuthenticated, no network call", func(t *testing.T) {
		orders := &fakeOrders{}
		svc := NewService(&fakeCart{items: twoLines()}, &fakeSession{}, orders)

		_, err := svc.Checkout(context.Background(), Params{ProfileID: "p-1"})
		if err != ErrNotAuthenticated {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if orders.calls != 0 {
			t.Fatalf("expected no order call, got %d", orders.calls)
		}
	})
}

func TestCheckoutOrderPlaced(t *testing.T) {
	cart := &fakeCart{items: twoLines()}
	orders := &fakeOrders{}
	svc := NewService(cart, &fakeSession{user: signedInUser()}, orders)

	res, err := svc.Checkout(context.Background(), Params{ProfileID: "p-1", Instructions: "soft food"})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if !res.OrderPlaced {
		t.Fatal("expected OrderPlaced")
	}
	if !cart.cleared {
		t.Fatal("expected cart cleared on success")
	}
	if orders.gotReq.TotalAmount != 28000 {
		t.Fatalf("expected total 28000, got %d", orders.gotReq.TotalAmount)
	}
	if orders.gotReq.CustomerEmail != "mei@example.com" {
		t.Fatalf("unexpected email %q", orders.gotReq.CustomerEmail)
	}
	if len(orders.gotReq.Items) != 2 || orders.gotReq.Items[0].MenuItemID != 1 || orders.gotReq.Items[1].Quantity != 2 {
		t.Fatalf("unexpected items %+v", orders.gotReq.Items)
	}
	if orders.gotReq.Items[0].SpecialInstructions != "soft food" {
		t.Fatalf("instructions not attached: %+v", orders.gotReq.Items[0])
	}
}

func TestCheckoutRedirectKeepsCart(t *testing.T) {
	cart := &fakeCart{items: twoLines()}
	orders := &fakeOrders{result: backend.CheckoutResult{CheckoutURL: "https://pay.example/s1"}}
	svc := NewService(cart, &fakeSession{user: signedInUser()}, orders)

	res, err := svc.Checkout(context.Background(), Params{ProfileID: "p-1"})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if res.CheckoutURL != "https://pay.example/s1" {
		t.Fatalf("unexpected url %q", res.CheckoutURL)
	}
	if cart.cleared {
		t.Fatal("cart must be kept until payment completes")
	}
}

func TestCheckoutBackendErrorKeepsCart(t *testing.T) {
	cart := &fakeCart{items: twoLines()}
	orders := &fakeOrders{err: errors.New("boom")}
	svc := NewService(cart, &fakeSession{user: signedInUser()}, orders)

	_, err := svc.Checkout(context.Background(), Params{ProfileID: "p-1"})
	if err == nil {
		t.Fatal("expected error")
	}
	if cart.cleared {
		t.Fatal("cart must survive a failed order")
	}
}

func TestCheckoutSingleFlight(t *testing.T) {
	block := make(chan struct{})
	entered := make(chan struct{})
	orders := &fakeOrders{blockCh: block, entered: entered}
	svc := NewService(&fakeCart{items: twoLines()}, &fakeSession{user: signedInUser()}, orders)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Checkout(context.Background(), Params{ProfileID: "p-1"})
		done <- err
	}()

	// Wait for the first checkout to reach the backend call.
	<-entered

	_, err := svc.Checkout(context.Background(), Params{ProfileID: "p-1"})
	if err != ErrInFlight {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first checkout: %v", err)
	}
}

func TestCheckoutBadMenuItemID(t *testing.T) {
	cart := &fakeCart{items: []cartdomain.Item{{ID: "special", Name: "x", UnitPrice: 100, Quantity: 1}}}
	orders := &fakeOrders{}
	svc := NewService(cart, &fakeSession{user: signedInUser()}, orders)

	_, err := svc.Checkout(context.Background(), Params{ProfileID: "p-1"})
	if err == nil {
		t.Fatal("expected error for non-numeric menu item id")
	}
	if orders.calls != 0 {
		t.Fatalf("expected no order call, got %d", orders.calls)
	}
}

func TestQuote(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		svc := NewService(&fakeCart{}, &fakeSession{}, &fakeOrders{})
		if _, err := svc.Quote(); err != ErrEmptyCart {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("below free-delivery threshold", func(t *testing.T) {
		svc := NewService(&fakeCart{items: twoLines()}, &fakeSession{}, &fakeOrders{})
		q, err := svc.Quote()
		if err != nil {
			t.Fatalf("Quote: %v", err)
		}
		if q.Subtotal != 28000 || q.DeliveryFee != 5000 || q.Total != 33000 {
			t.Fatalf("unexpected quote %+v", q)
		}
	})

	t.Run("free delivery at threshold", func(t *testing.T) {
		cart := &fakeCart{items: []cartdomain.Item{{ID: "1", UnitPrice: 50000, Quantity: 1}}}
		svc := NewService(cart, &fakeSession{}, &fakeOrders{})
		q, err := svc.Quote()
		if err != nil {
			t.Fatalf("Quote: %v", err)
		}
		if q.DeliveryFee != 0 || q.Total != 50000 {
			t.Fatalf("unexpected quote %+v", q)
		}
	})
}
