// Package refresh keeps a memoized floor snapshot warm. The derived
// indices are pure functions of (tables, bookings, now), so the loop only
// recomputes; it never mutates stored state.
package refresh

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/models"
	"github.com/example/seating-service/internal/seating"
	"github.com/example/seating-service/internal/store"
)

type Loader struct {
	Store        store.Store
	RestaurantID uuid.UUID
	Lookahead    time.Duration
	Urgency      time.Duration

	// TTL bounds snapshot age between explicit invalidations.
	TTL time.Duration

	Now func() time.Time

	mu       sync.Mutex
	snap     seating.Snapshot
	loadedAt time.Time
	valid    bool
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loader) ttl() time.Duration {
	if l.TTL > 0 {
		return l.TTL
	}
	return 15 * time.Second
}

// Snapshot returns the cached floor view, reloading when stale. The Now
// field of the returned snapshot is always the current clock value, so
// derivations stay time-accurate even on a cache hit.
func (l *Loader) Snapshot(ctx context.Context) (seating.Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.valid || now.Sub(l.loadedAt) > l.ttl() {
		if err := l.loadLocked(ctx, now); err != nil {
			return seating.Snapshot{}, err
		}
	}
	snap := l.snap
	snap.Now = now
	return snap, nil
}

// Invalidate drops the cache after a mutation.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.valid = false
	l.mu.Unlock()
}

func (l *Loader) loadLocked(ctx context.Context, now time.Time) error {
	tables, err := l.Store.ListTables(ctx, l.RestaurantID)
	if err != nil {
		return err
	}
	bookings, err := l.Store.ListBookings(ctx, l.RestaurantID, now.Add(-12*time.Hour), now.Add(12*time.Hour))
	if err != nil {
		return err
	}
	combos, err := l.Store.ListCombinations(ctx, l.RestaurantID)
	if err != nil {
		return err
	}

	seen := make(map[uuid.UUID]bool)
	cf := make(map[uuid.UUID]models.CustomerFlags)
	for _, b := range bookings {
		if b.UserID == nil || seen[*b.UserID] {
			continue
		}
		seen[*b.UserID] = true
		f, err := l.Store.LookupCustomerFlags(ctx, *b.UserID)
		if err != nil {
			log.Printf("refresh: customer flags for %s: %v", *b.UserID, err)
			continue
		}
		cf[*b.UserID] = f
	}

	l.snap = seating.Snapshot{
		Tables:       tables,
		Bookings:     bookings,
		Combinations: combos,
		Flags:        cf,
		Lookahead:    l.Lookahead,
		Urgency:      l.Urgency,
	}
	l.loadedAt = now
	l.valid = true
	return nil
}

// Run re-derives the snapshot on a ticker so reads stay warm between
// interactions.
func (l *Loader) Run(ctx context.Context) error {
	t := time.NewTicker(l.ttl())
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			l.Invalidate()
			if _, err := l.Snapshot(ctx); err != nil {
				log.Printf("refresh: reload failed: %v", err)
			}
		}
	}
}
