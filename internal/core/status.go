package core

import (
	"context"
	"sync"
)

// Bus is the order-scoped refresh broadcaster. A completion in one view
// notifies every other subscriber of the same order so stale aggregations get
// re-pulled. Delivery is fire-and-forget: a subscriber that isn't draining
// its channel misses the signal and simply re-reads on its next load.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]chan struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]chan struct{})}
}

// Subscribe registers a listener for the given order. The returned cancel
// func must be called when the view closes.
func (b *Bus) Subscribe(orderID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[orderID] = append(b.subs[orderID], ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[orderID]
		for i, c := range list {
			if c == ch {
				b.subs[orderID] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(b.subs[orderID]) == 0 {
			delete(b.subs, orderID)
		}
	}
	return ch, cancel
}

// Notify signals every subscriber of orderID. The payload is only "something
// changed"; listeners re-pull state rather than consuming event data.
// No listener present is not an error.
func (b *Bus) Notify(orderID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[orderID] {
		select {
		case ch <- struct{}{}:
		default:
			// Subscriber already has a pending signal.
		}
	}
}

// StatusPropagator writes derived status labels onto order product lines when
// a stage completes, then broadcasts a refresh to other open views of the
// same order.
type StatusPropagator struct {
	orders OrderService
	bus    *Bus
}

func NewStatusPropagator(orders OrderService, bus *Bus) *StatusPropagator {
	return &StatusPropagator{orders: orders, bus: bus}
}

// OnStageComplete writes status onto the matching product line, or onto every
// line when productID is AllProducts, and notifies subscribers. The label is
// a plain token, not re-derived from ledger state.
func (p *StatusPropagator) OnStageComplete(ctx context.Context, orderID, productID, status string) error {
	if err := p.orders.UpdateLineStatus(ctx, orderID, productID, status); err != nil {
		return err
	}
	p.bus.Notify(orderID)
	return nil
}
