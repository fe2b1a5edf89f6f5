package app

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pcreem/silver-ESG/internal/cart/domain"
	"github.com/pcreem/silver-ESG/internal/storage"
)

// Store is the process-wide cart. Mutations apply to memory synchronously and
// persist the full cart to durable storage afterwards; callers never wait on
// the persistence outcome (failures are logged, not returned).
type Store struct {
	mu      sync.Mutex
	cart    domain.Cart
	storage Storage
	log     *slog.Logger

	nextSub int
	subs    map[int]func(domain.Cart)
}

// NewStore rehydrates the cart from storage. Missing or unreadable state
// falls back to an empty cart.
func NewStore(st Storage, log *slog.Logger) *Store {
	s := &Store{
		storage: st,
		log:     log,
		subs:    make(map[int]func(domain.Cart)),
	}

	b, err := st.Get(storage.KeyCart)
	if err == nil {
		var cart domain.Cart
		if jsonErr := json.Unmarshal(b, &cart); jsonErr == nil {
			s.cart = cart
		} else {
			log.Warn("cart state unreadable, starting empty", slog.Any("err", jsonErr))
		}
	}

	return s
}

func (s *Store) AddItem(it domain.Item) {
	s.mutate(func(c *domain.Cart) { c.Add(it) })
}

func (s *Store) RemoveItem(id string) {
	s.mutate(func(c *domain.Cart) { c.Remove(id) })
}

func (s *Store) UpdateQuantity(id string, quantity int64) {
	s.mutate(func(c *domain.Cart) { c.SetQuantity(id, quantity) })
}

func (s *Store) ClearCart() {
	s.mutate(func(c *domain.Cart) { c.Clear() })
}

// Items returns a copy; the store owns the only mutable cart.
func (s *Store) Items() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Item, len(s.cart.Items))
	copy(items, s.cart.Items)
	return items
}

func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// Subscribe registers a change listener and returns its unsubscribe func.
// The listener runs with a snapshot after every mutation.
func (s *Store) Subscribe(fn func(domain.Cart)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) mutate(apply func(*domain.Cart)) {
	s.mu.Lock()
	apply(&s.cart)

	snapshot := domain.Cart{Items: make([]domain.Item, len(s.cart.Items))}
	copy(snapshot.Items, s.cart.Items)

	subs := make([]func(domain.Cart), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.persist(snapshot)

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *Store) persist(c domain.Cart) {
	b, err := json.Marshal(c)
	if err != nil {
		s.log.Error("cart marshal failed", slog.Any("err", err))
		return
	}
	if err := s.storage.Set(storage.KeyCart, b); err != nil {
		s.log.Error("cart persist failed", slog.Any("err", err))
	}
}
