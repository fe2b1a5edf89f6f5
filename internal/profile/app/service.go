package app

import (
	"context"
	"sync"

	"github.com/pcreem/silver-ESG/internal/backend"
)

// Cache holds the most recent profile fetch, keyed by id, so screens can
// re-read without another round-trip. The backend stays the source of truth.
type Cache struct {
	fetcher Fetcher

	mu   sync.Mutex
	list []backend.Profile
	byID map[string]backend.Profile
}

func NewCache(fetcher Fetcher) *Cache {
	return &Cache{
		fetcher: fetcher,
		byID:    make(map[string]backend.Profile),
	}
}

// Refresh replaces the cached list with a fresh fetch.
func (c *Cache) Refresh(ctx context.Context) ([]backend.Profile, error) {
	profiles, err := c.fetcher.GetProfiles(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]backend.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID.String()] = p
	}

	c.mu.Lock()
	c.list = profiles
	c.byID = byID
	c.mu.Unlock()

	return profiles, nil
}

func (c *Cache) List() []backend.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]backend.Profile, len(c.list))
	copy(out, c.list)
	return out
}

func (c *Cache) ByID(id string) (backend.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.byID[id]
	return p, ok
}

// First returns the default recipient: checkout auto-selects the first
// profile when the customer hasn't picked one.
func (c *Cache) First() (backend.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.list) == 0 {
		return backend.Profile{}, false
	}
	return c.list[0], true
}
