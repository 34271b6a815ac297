package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PurchaseService records label/purchase receipts — the first ledgered stage.
// Receipts arrive in partial batches; the ordered quantity is the capacity
// pool they reconcile against.
type PurchaseService interface {
	// ReceiveLabels appends one receipt batch for a product line. The delta
	// must fit the line's remaining capacity or the whole submission fails.
	ReceiveLabels(ctx context.Context, in ReceiveLabelsInput) error

	// History returns a product's receipt entries, newest first.
	History(ctx context.Context, orderID, productID string) ([]LedgerEntry, error)

	// Total is the sum of all receipt deltas for a product.
	Total(ctx context.Context, orderID, productID string) (Quantity, error)

	// Remaining is the ordered quantity minus everything received so far.
	Remaining(ctx context.Context, orderID, productID string) (Quantity, error)

	// IsComplete reports the sticky complete flag, honoring the order-level
	// override.
	IsComplete(ctx context.Context, orderID, productID string) (bool, error)

	// MarkProductComplete sets or unsets the sticky flag for one product and
	// propagates the production-pending status when setting.
	MarkProductComplete(ctx context.Context, orderID, productID string, complete bool) error

	// MarkOrderComplete sets the order-wide completion override and writes
	// the production-pending status onto every line in one pass.
	MarkOrderComplete(ctx context.Context, orderID string) error
}

// ReceiveLabelsInput is one purchase-stage submission.
type ReceiveLabelsInput struct {
	OrderID   string
	ProductID string
	Delta     Quantity
	Complete  bool
	Remarks   string
}

type purchaseService struct {
	ledger     *StageLedger
	reconciler *Reconciler
	orders     OrderService
	propagator *StatusPropagator
}

func NewPurchaseService(ledger *StageLedger, rec *Reconciler, orders OrderService, prop *StatusPropagator) PurchaseService {
	return &purchaseService{ledger: ledger, reconciler: rec, orders: orders, propagator: prop}
}

func (s *purchaseService) ReceiveLabels(ctx context.Context, in ReceiveLabelsInput) error {
	order, err := s.orders.GetOrder(ctx, in.OrderID)
	if err != nil {
		return err
	}
	line := order.Line(in.ProductID)
	if line == nil {
		return fmt.Errorf("order %s product %s: %w", in.OrderID, in.ProductID, ErrNotFound)
	}
	if !in.Delta.IsZero() && !line.Ordered.SameKind(in.Delta) {
		return fmt.Errorf("product %s expects a %s quantity: %w", in.ProductID, line.Ordered.Kind, ErrInvalidQuantity)
	}

	if !in.Delta.IsZero() {
		if err := s.reconciler.ValidateAppend(ctx, StagePurchase, order.ID, in.ProductID, in.Delta, Quantity{}); err != nil {
			return err
		}
	}

	err = s.ledger.Append(ctx, StagePurchase, order.ID, LedgerEntry{
		BatchID:   uuid.NewString(),
		ProductID: in.ProductID,
		At:        time.Now(),
		Delta:     in.Delta,
		Complete:  in.Complete,
		Remarks:   in.Remarks,
	})
	if err != nil {
		return err
	}

	if in.Complete {
		return s.propagator.OnStageComplete(ctx, order.ID, in.ProductID, StatusProductionPending)
	}
	return nil
}

func (s *purchaseService) History(ctx context.Context, orderID, productID string) ([]LedgerEntry, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, StagePurchase, order.ID, productID)
}

func (s *purchaseService) Total(ctx context.Context, orderID, productID string) (Quantity, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return Quantity{}, err
	}
	return s.ledger.CurrentTotal(ctx, StagePurchase, order.ID, productID)
}

func (s *purchaseService) Remaining(ctx context.Context, orderID, productID string) (Quantity, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return Quantity{}, err
	}
	return s.reconciler.RemainingCapacity(ctx, StagePurchase, order.ID, productID)
}

func (s *purchaseService) IsComplete(ctx context.Context, orderID, productID string) (bool, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	return s.ledger.IsComplete(ctx, StagePurchase, order.ID, productID)
}

func (s *purchaseService) MarkProductComplete(ctx context.Context, orderID, productID string, complete bool) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Line(productID) == nil {
		return fmt.Errorf("order %s product %s: %w", orderID, productID, ErrNotFound)
	}
	if err := s.ledger.SetComplete(ctx, StagePurchase, order.ID, productID, complete); err != nil {
		return err
	}
	if complete {
		return s.propagator.OnStageComplete(ctx, order.ID, productID, StatusProductionPending)
	}
	return nil
}

func (s *purchaseService) MarkOrderComplete(ctx context.Context, orderID string) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.ledger.SetComplete(ctx, StagePurchase, order.ID, AllProducts, true); err != nil {
		return err
	}
	return s.propagator.OnStageComplete(ctx, order.ID, AllProducts, StatusProductionPending)
}
