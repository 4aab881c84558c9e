package recency

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostpin/hostpin/pkg/log"
)

// Window is how long an address stays tracked after it was last observed
const Window = 30 * time.Minute

// Source produces the current address set for a monitored variable. Both
// resolver source types satisfy it.
type Source interface {
	Addresses(ctx context.Context) ([]string, error)
}

// entry tracks one observed address
type entry struct {
	address   string
	firstSeen time.Time
	lastSeen  time.Time
}

// Cache tracks the addresses recently observed for one monitored variable.
// Addresses unseen for longer than Window are evicted; the survivors are
// returned newest-first so the gate probes the most recently introduced
// address before older ones.
type Cache struct {
	name    string
	source  Source
	entries map[string]*entry
	order   []*entry // insertion order, keeps firstSeen ties stable
	now     func() time.Time
	logger  zerolog.Logger
}

// NewCache creates a cache for one monitored variable backed by a source
func NewCache(name string, source Source) *Cache {
	return &Cache{
		name:    name,
		source:  source,
		entries: make(map[string]*entry),
		now:     time.Now,
		logger:  log.WithVariable("recency", name),
	}
}

// Resolve refreshes the cache from the source and returns every address
// still inside the recency window, ordered by first-seen time descending.
// Eviction and ordering run even when the source fails, so a transient
// resolution outage degrades to the addresses seen most recently instead of
// an empty set. The source error is returned alongside the surviving
// addresses so the caller can account for it.
func (c *Cache) Resolve(ctx context.Context) (addrs []string, err error) {
	defer func() {
		c.evict()
		addrs = c.ordered()
	}()

	observed, err := c.source.Addresses(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", c.name, err)
	}

	c.merge(observed)
	return nil, nil
}

// Len returns the number of tracked addresses
func (c *Cache) Len() int {
	return len(c.entries)
}

// merge records the observed addresses, updating lastSeen for known ones and
// inserting unknown ones with firstSeen = lastSeen = now
func (c *Cache) merge(observed []string) {
	now := c.now()
	for _, addr := range observed {
		if e, ok := c.entries[addr]; ok {
			e.lastSeen = now
			continue
		}

		e := &entry{address: addr, firstSeen: now, lastSeen: now}
		c.entries[addr] = e
		c.order = append(c.order, e)

		c.logger.Info().
			Str("address", addr).
			Msg("new candidate address")
	}
}

// evict drops every address not seen within the window
func (c *Cache) evict() {
	now := c.now()
	kept := c.order[:0]
	for _, e := range c.order {
		if now.Sub(e.lastSeen) > Window {
			delete(c.entries, e.address)
			c.logger.Info().
				Str("address", e.address).
				Time("last_seen", e.lastSeen).
				Msg("candidate address expired")
			continue
		}
		kept = append(kept, e)
	}
	c.order = kept
}

// ordered returns tracked addresses newest-first; equal first-seen times keep
// their insertion order
func (c *Cache) ordered() []string {
	sorted := make([]*entry, len(c.order))
	copy(sorted, c.order)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].firstSeen.After(sorted[j].firstSeen)
	})

	addrs := make([]string, len(sorted))
	for i, e := range sorted {
		addrs[i] = e.address
	}
	return addrs
}
