package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/seating-service/internal/store"
)

// Sender delivers one event. Satisfied by *Client.
type Sender interface {
	Send(ctx context.Context, ev store.OutboxEvent) error
}

// Dispatcher polls the outbox and delivers pending events.
type Dispatcher struct {
	Store        store.Store
	Sender       Sender
	RestaurantID uuid.UUID
	Interval     time.Duration
	BatchSize    int
}

func (d *Dispatcher) batch() int {
	if d.BatchSize > 0 {
		return d.BatchSize
	}
	return 50
}

func (d *Dispatcher) Run(ctx context.Context) error {
	t := time.NewTicker(d.Interval)
	defer t.Stop()

	// kick immediately
	d.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			d.tick(ctx)
		}
	}
}

func (d *Dispatcher) tick(ctx context.Context) {
	evs, err := d.Store.ListPendingOutbox(ctx, d.RestaurantID, d.batch())
	if err != nil {
		log.Printf("notify: outbox query failed: %v", err)
		return
	}
	for _, ev := range evs {
		if err := d.Sender.Send(ctx, ev); err != nil {
			log.Printf("notify: send %s failed: %v", ev.EventID, err)
			if err := d.Store.MarkOutboxFailed(ctx, ev.EventID, err.Error()); err != nil {
				log.Printf("notify: mark failed %s: %v", ev.EventID, err)
			}
			continue
		}
		if err := d.Store.MarkOutboxSent(ctx, ev.EventID); err != nil {
			log.Printf("notify: mark sent %s: %v", ev.EventID, err)
		}
	}
}
