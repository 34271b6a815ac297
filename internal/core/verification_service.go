package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"packflow/internal/store"
)

// VerifyItem is one product's quantities within a verification submission.
type VerifyItem struct {
	ProductID string
	Quantity  Quantity
	Samples   Quantity
	Complete  bool
}

// VerificationService records inventory and stock verification batches. Both
// channels reconcile against the purchase-stage total; samples consume the
// same capacity pool as the main quantity.
type VerificationService interface {
	// VerifyInventory stores a multi-product inventory verification as one
	// batch. Every item is validated against remaining capacity before
	// anything is written; one failing item rejects the whole submission.
	VerifyInventory(ctx context.Context, orderID string, items []VerifyItem, remarks string) (batchID string, err error)

	// VerifyStock stores a stock verification batch. Each entry additionally
	// records the upstream total observed at verification time.
	VerifyStock(ctx context.Context, orderID string, items []VerifyItem, remarks string) (batchID string, err error)

	// InventoryBatches and StockBatches reconstruct submission sessions,
	// newest first.
	InventoryBatches(ctx context.Context, orderID string) ([]VerificationBatch, error)
	StockBatches(ctx context.Context, orderID string) ([]VerificationBatch, error)

	// Remaining is the purchase total minus what this channel has verified.
	Remaining(ctx context.Context, stage Stage, orderID, productID string) (Quantity, error)

	// VerifiedTotal is everything verified for a product across both
	// channels.
	VerifiedTotal(ctx context.Context, orderID, productID string) (Quantity, error)

	// VerifiedUnbilled is the verified total minus quantities already carried
	// into sales-payment bills — the pool CreateBill draws from.
	VerifiedUnbilled(ctx context.Context, orderID, productID string) (Quantity, error)
}

type verificationService struct {
	store      store.Store
	ledger     *StageLedger
	reconciler *Reconciler
	orders     OrderService
	propagator *StatusPropagator
}

func NewVerificationService(s store.Store, ledger *StageLedger, rec *Reconciler, orders OrderService, prop *StatusPropagator) VerificationService {
	return &verificationService{store: s, ledger: ledger, reconciler: rec, orders: orders, propagator: prop}
}

func (s *verificationService) VerifyInventory(ctx context.Context, orderID string, items []VerifyItem, remarks string) (string, error) {
	return s.verify(ctx, StageInventory, orderID, items, remarks)
}

func (s *verificationService) VerifyStock(ctx context.Context, orderID string, items []VerifyItem, remarks string) (string, error) {
	return s.verify(ctx, StageStock, orderID, items, remarks)
}

func (s *verificationService) verify(ctx context.Context, stage Stage, orderID string, items []VerifyItem, remarks string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("verification for order %s: no products selected", orderID)
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	// Validate the full selection before writing anything.
	for _, item := range items {
		line := order.Line(item.ProductID)
		if line == nil {
			return "", fmt.Errorf("order %s product %s: %w", orderID, item.ProductID, ErrNotFound)
		}
		if !item.Quantity.IsZero() && !line.Ordered.SameKind(item.Quantity) {
			return "", fmt.Errorf("product %s expects a %s quantity: %w", item.ProductID, line.Ordered.Kind, ErrInvalidQuantity)
		}
		if !item.Samples.IsZero() && !line.Ordered.SameKind(item.Samples) {
			return "", fmt.Errorf("product %s expects %s samples: %w", item.ProductID, line.Ordered.Kind, ErrInvalidQuantity)
		}
		if err := s.reconciler.ValidateAppend(ctx, stage, order.ID, item.ProductID, item.Quantity, item.Samples); err != nil {
			return "", err
		}
	}

	batchID := uuid.NewString()
	now := time.Now()
	entries := make([]LedgerEntry, 0, len(items))
	for _, item := range items {
		e := LedgerEntry{
			BatchID:   batchID,
			ProductID: item.ProductID,
			At:        now,
			Delta:     item.Quantity,
			Samples:   item.Samples,
			Complete:  item.Complete,
			Remarks:   remarks,
		}
		if stage == StageStock {
			received, err := s.ledger.CurrentTotal(ctx, StagePurchase, order.ID, item.ProductID)
			if err != nil {
				return "", err
			}
			e.TotalReceived = received
		}
		entries = append(entries, e)
	}

	if err := s.ledger.AppendBatch(ctx, stage, order.ID, entries); err != nil {
		return "", err
	}

	for _, item := range items {
		if item.Complete {
			if err := s.propagator.OnStageComplete(ctx, order.ID, item.ProductID, StatusBillingPending); err != nil {
				return "", err
			}
		}
	}
	return batchID, nil
}

func (s *verificationService) InventoryBatches(ctx context.Context, orderID string) ([]VerificationBatch, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.ledger.Batches(ctx, StageInventory, order.ID)
}

func (s *verificationService) StockBatches(ctx context.Context, orderID string) ([]VerificationBatch, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.ledger.Batches(ctx, StageStock, order.ID)
}

func (s *verificationService) Remaining(ctx context.Context, stage Stage, orderID, productID string) (Quantity, error) {
	if stage != StageInventory && stage != StageStock {
		return Quantity{}, fmt.Errorf("stage %q is not a verification stage", stage)
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return Quantity{}, err
	}
	return s.reconciler.RemainingCapacity(ctx, stage, order.ID, productID)
}

func (s *verificationService) VerifiedTotal(ctx context.Context, orderID, productID string) (Quantity, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return Quantity{}, err
	}
	inv, err := s.ledger.CurrentTotal(ctx, StageInventory, order.ID, productID)
	if err != nil {
		return Quantity{}, err
	}
	stk, err := s.ledger.CurrentTotal(ctx, StageStock, order.ID, productID)
	if err != nil {
		return Quantity{}, err
	}
	if inv.IsZero() {
		return stk, nil
	}
	if stk.IsZero() {
		return inv, nil
	}
	return inv.Add(stk), nil
}

func (s *verificationService) VerifiedUnbilled(ctx context.Context, orderID, productID string) (Quantity, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return Quantity{}, err
	}
	verified, err := s.VerifiedTotal(ctx, orderID, productID)
	if err != nil {
		return Quantity{}, err
	}

	bills, err := store.Load[[]Bill](ctx, s.store, store.SalesBillsKey(order.ID))
	if err != nil {
		return Quantity{}, err
	}
	billed := ZeroOf(verified.Kind)
	for _, b := range bills {
		for _, l := range b.Lines {
			if l.ProductID != productID {
				continue
			}
			billed = billed.Add(l.Quantity)
			if !l.Samples.IsZero() {
				billed = billed.Add(l.Samples)
			}
		}
	}
	return verified.Sub(billed).ClampZero(), nil
}
