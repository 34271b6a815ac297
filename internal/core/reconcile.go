package core

import (
	"context"
	"fmt"
)

// Reconciler computes how much of a product line can still move forward at a
// stage: quantity received from the upstream stage minus quantity already
// consumed here, clamped at zero. Nothing is cached — every computation
// re-reads the full histories involved.
type Reconciler struct {
	ledger *StageLedger
	orders OrderService
}

func NewReconciler(ledger *StageLedger, orders OrderService) *Reconciler {
	return &Reconciler{ledger: ledger, orders: orders}
}

// UpstreamTotal returns the quantity the previous stage has forwarded for
// this product. The purchase stage's upstream is the ordered quantity itself.
func (r *Reconciler) UpstreamTotal(ctx context.Context, stage Stage, orderID, productID string) (Quantity, error) {
	switch stage {
	case StagePurchase:
		order, err := r.orders.GetOrder(ctx, orderID)
		if err != nil {
			return Quantity{}, err
		}
		line := order.Line(productID)
		if line == nil {
			return Quantity{}, fmt.Errorf("order %s product %s: %w", orderID, productID, ErrNotFound)
		}
		return line.Ordered, nil
	case StageInventory, StageStock, StageJobworkSent:
		return r.ledger.CurrentTotal(ctx, StagePurchase, orderID, productID)
	case StageJobworkReceived:
		return r.ledger.CurrentTotal(ctx, StageJobworkSent, orderID, productID)
	default:
		return Quantity{}, fmt.Errorf("unknown stage %q", stage)
	}
}

// RemainingCapacity is upstream total minus this stage's consumed total
// (main quantities plus samples), per sub-component, clamped at zero.
func (r *Reconciler) RemainingCapacity(ctx context.Context, stage Stage, orderID, productID string) (Quantity, error) {
	upstream, err := r.UpstreamTotal(ctx, stage, orderID, productID)
	if err != nil {
		return Quantity{}, err
	}
	consumed, err := r.ledger.ConsumedTotal(ctx, stage, orderID, productID)
	if err != nil {
		return Quantity{}, err
	}
	return upstream.Sub(consumed).ClampZero(), nil
}

// FullyReconciled reports whether every sub-component has zero remaining
// capacity at the stage. A LID & TUB line is fully reconciled only when both
// pairs reach zero.
func (r *Reconciler) FullyReconciled(ctx context.Context, stage Stage, orderID, productID string) (bool, error) {
	remaining, err := r.RemainingCapacity(ctx, stage, orderID, productID)
	if err != nil {
		return false, err
	}
	return remaining.IsZero(), nil
}

// ValidateAppend blocks a submission that would over-forward. The whole
// submission fails — there is no partial acceptance. A zero upstream total
// means the previous stage has forwarded nothing, so any forward action is
// refused outright.
func (r *Reconciler) ValidateAppend(ctx context.Context, stage Stage, orderID, productID string, delta, samples Quantity) error {
	upstream, err := r.UpstreamTotal(ctx, stage, orderID, productID)
	if err != nil {
		return err
	}
	if upstream.IsZero() {
		return fmt.Errorf("product %s at stage %s: %w", productID, stage, ErrNothingToForward)
	}

	remaining, err := r.RemainingCapacity(ctx, stage, orderID, productID)
	if err != nil {
		return err
	}
	requested := delta
	if !samples.IsZero() {
		requested = requested.Add(samples)
	}
	if !remaining.Covers(requested) {
		return fmt.Errorf("product %s at stage %s: requested %s, remaining %s: %w",
			productID, stage, requested, remaining, ErrExceedsCapacity)
	}
	return nil
}
