package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	dm "github.com/Dreamtreeme/asset-guardian/data/models"
	sm "github.com/Dreamtreeme/asset-guardian/service/models"
)

// ResultCache keys computed bundles by (symbol, as-of date) and serves them
// for the TTL window. A singleflight group guarantees at most one in-flight
// computation per key: concurrent callers for an uncached key share the first
// caller's result. The durable layer is the report_cache table; a small
// in-process map sits in front of it.
type ResultCache struct {
	store BundleStore
	ttl   time.Duration
	group singleflight.Group

	mu  sync.RWMutex
	mem map[string]memEntry

	now func() time.Time
}

type memEntry struct {
	bundle   *sm.MetricsBundle
	storedAt time.Time
}

func NewResultCache(store BundleStore, ttl time.Duration) *ResultCache {
	return &ResultCache{
		store: store,
		ttl:   ttl,
		mem:   make(map[string]memEntry),
		now:   time.Now,
	}
}

// GetOrCompute returns the cached bundle for the key when one exists inside
// the TTL, otherwise runs compute exactly once, stores the result and returns
// it. Expiry is checked lazily on every lookup.
func (c *ResultCache) GetOrCompute(ctx context.Context, symbol string, asOf time.Time, compute func(context.Context) (*sm.MetricsBundle, error)) (*sm.MetricsBundle, error) {
	asOf = dateOnly(asOf)
	key := symbol + "|" + asOf.Format(time.DateOnly)

	v, err, _ := c.group.Do(key, func() (any, error) {
		if bundle := c.fromMemory(key); bundle != nil {
			return bundle, nil
		}

		notBefore := c.now().Add(-c.ttl)
		entry, err := c.store.GetCachedBundle(ctx, symbol, asOf, notBefore)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			var bundle sm.MetricsBundle
			if err := json.Unmarshal(entry.Payload, &bundle); err == nil && bundle.SchemaVersion == sm.BundleSchemaVersion {
				c.toMemory(key, &bundle, entry.CreatedAt)
				return &bundle, nil
			}
			// unreadable or older-schema payload, recompute below
		}

		bundle, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(bundle)
		if err != nil {
			return nil, fmt.Errorf("error serializing bundle for %s: %w", symbol, err)
		}

		cached := &dm.CachedBundle{
			Symbol:   symbol,
			AsOfDate: asOf,
			Payload:  payload,
		}
		if err := c.store.PutCachedBundle(ctx, cached); err != nil {
			// the bundle itself is fine, a cache write failure only costs a
			// recompute next time
			log.Printf("error caching bundle for %s: %v", symbol, err)
		}

		c.toMemory(key, bundle, c.now())
		return bundle, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*sm.MetricsBundle), nil
}

// Sweep purges expired rows from the durable layer and prunes the in-process
// map. Safe to run concurrently with lookups.
func (c *ResultCache) Sweep(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.ttl)

	c.mu.Lock()
	for key, entry := range c.mem {
		if entry.storedAt.Before(cutoff) {
			delete(c.mem, key)
		}
	}
	c.mu.Unlock()

	return c.store.PurgeExpiredBundles(ctx, cutoff)
}

// StartSweeper schedules the periodic TTL sweep and returns the running cron
// so the caller can stop it on shutdown.
func (c *ResultCache) StartSweeper(ctx context.Context, spec string) (*cron.Cron, error) {
	runner := cron.New()
	_, err := runner.AddFunc(spec, func() {
		purged, err := c.Sweep(ctx)
		if err != nil {
			log.Printf("cache sweep failed: %v", err)
			return
		}
		log.Printf("cache sweep purged %d expired entries", purged)
	})
	if err != nil {
		return nil, fmt.Errorf("error scheduling cache sweep %q: %w", spec, err)
	}

	runner.Start()
	return runner, nil
}

func (c *ResultCache) fromMemory(key string) *sm.MetricsBundle {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.mem[key]
	if !ok || c.now().Sub(entry.storedAt) > c.ttl {
		return nil
	}
	return entry.bundle
}

func (c *ResultCache) toMemory(key string, bundle *sm.MetricsBundle, storedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem[key] = memEntry{bundle: bundle, storedAt: storedAt}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
