package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"packflow/internal/store"
)

// JobworkService tracks goods sent out for job work and their return. A
// product can never have more received back than was sent out.
type JobworkService interface {
	// SendGoods records goods leaving for job work, capped at the purchase
	// total not yet sent.
	SendGoods(ctx context.Context, orderID string, items []VerifyItem, remarks string) (batchID string, err error)

	// ReceiveReturned records goods coming back, capped at the quantity sent
	// and not yet returned.
	ReceiveReturned(ctx context.Context, orderID string, items []VerifyItem, remarks string) (batchID string, err error)

	// SentBatches and ReturnedBatches reconstruct submission sessions,
	// newest first.
	SentBatches(ctx context.Context, orderID string) ([]VerificationBatch, error)
	ReturnedBatches(ctx context.Context, orderID string) ([]VerificationBatch, error)

	// Outstanding is sent minus returned for a product — goods still out.
	Outstanding(ctx context.Context, orderID, productID string) (Quantity, error)

	// RemoveReturnedBatch deletes one goods-returned session: the modeled
	// exception to entry immutability, user-initiated only.
	RemoveReturnedBatch(ctx context.Context, orderID, batchID string) error
}

type jobworkService struct {
	store      store.Store
	ledger     *StageLedger
	reconciler *Reconciler
	orders     OrderService
}

func NewJobworkService(s store.Store, ledger *StageLedger, rec *Reconciler, orders OrderService) JobworkService {
	return &jobworkService{store: s, ledger: ledger, reconciler: rec, orders: orders}
}

func (s *jobworkService) SendGoods(ctx context.Context, orderID string, items []VerifyItem, remarks string) (string, error) {
	return s.record(ctx, StageJobworkSent, orderID, items, remarks)
}

func (s *jobworkService) ReceiveReturned(ctx context.Context, orderID string, items []VerifyItem, remarks string) (string, error) {
	return s.record(ctx, StageJobworkReceived, orderID, items, remarks)
}

func (s *jobworkService) record(ctx context.Context, stage Stage, orderID string, items []VerifyItem, remarks string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("job work for order %s: no products selected", orderID)
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	for _, item := range items {
		line := order.Line(item.ProductID)
		if line == nil {
			return "", fmt.Errorf("order %s product %s: %w", orderID, item.ProductID, ErrNotFound)
		}
		if !item.Quantity.IsZero() && !line.Ordered.SameKind(item.Quantity) {
			return "", fmt.Errorf("product %s expects a %s quantity: %w", item.ProductID, line.Ordered.Kind, ErrInvalidQuantity)
		}
		if err := s.reconciler.ValidateAppend(ctx, stage, order.ID, item.ProductID, item.Quantity, Quantity{}); err != nil {
			return "", err
		}
	}

	batchID := uuid.NewString()
	now := time.Now()
	entries := make([]LedgerEntry, 0, len(items))
	for _, item := range items {
		// Job work sits off the line-status pipeline; completion flags on a
		// submission are ignored rather than stored.
		entries = append(entries, LedgerEntry{
			BatchID:   batchID,
			ProductID: item.ProductID,
			At:        now,
			Delta:     item.Quantity,
			Remarks:   remarks,
		})
	}
	if err := s.ledger.AppendBatch(ctx, stage, order.ID, entries); err != nil {
		return "", err
	}
	return batchID, nil
}

func (s *jobworkService) SentBatches(ctx context.Context, orderID string) ([]VerificationBatch, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.ledger.Batches(ctx, StageJobworkSent, order.ID)
}

func (s *jobworkService) ReturnedBatches(ctx context.Context, orderID string) ([]VerificationBatch, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.ledger.Batches(ctx, StageJobworkReceived, order.ID)
}

func (s *jobworkService) Outstanding(ctx context.Context, orderID, productID string) (Quantity, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return Quantity{}, err
	}
	sent, err := s.ledger.CurrentTotal(ctx, StageJobworkSent, order.ID, productID)
	if err != nil {
		return Quantity{}, err
	}
	returned, err := s.ledger.CurrentTotal(ctx, StageJobworkReceived, order.ID, productID)
	if err != nil {
		return Quantity{}, err
	}
	return sent.Sub(returned).ClampZero(), nil
}

func (s *jobworkService) RemoveReturnedBatch(ctx context.Context, orderID, batchID string) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	key := store.JobworkKey(order.ID)
	found := false
	err = store.Mutate(ctx, s.store, key, func(doc channelDoc) (channelDoc, error) {
		kept := doc.Entries[:0]
		for _, e := range doc.Entries {
			if e.BatchID == batchID && e.Direction == JobworkReceived {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		doc.Entries = kept
		if !found {
			return doc, fmt.Errorf("returned batch %s on order %s: %w", batchID, orderID, ErrNotFound)
		}
		return doc, nil
	})
	return err
}
