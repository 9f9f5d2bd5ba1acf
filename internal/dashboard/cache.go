// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/laundry-analytics/internal/store"
	"github.com/pdiddy/laundry-analytics/pkg/types"
)

// orderCache holds every stored order and reloads them when a newer ingest
// run appears. Concurrent reloads are coalesced.
type orderCache struct {
	st    Store
	group singleflight.Group

	mu     sync.RWMutex
	runID  int64
	loaded bool
	orders []types.Order
}

func newOrderCache(st Store) *orderCache {
	return &orderCache{st: st}
}

// load returns the cached orders, refreshing them first when the latest
// ingest run differs from the cached one. The returned slice is shared and
// must not be modified.
func (c *orderCache) load(ctx context.Context) ([]types.Order, error) {
	var runID int64
	run, err := c.st.LastIngest(ctx)
	switch {
	case err == nil:
		runID = run.ID
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, err
	}

	c.mu.RLock()
	if c.loaded && c.runID == runID {
		orders := c.orders
		c.mu.RUnlock()
		return orders, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("orders", func() (any, error) {
		orders, err := c.st.Orders(ctx, store.Filter{})
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.runID, c.loaded, c.orders = runID, true, orders
		c.mu.Unlock()
		return orders, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]types.Order), nil
}
