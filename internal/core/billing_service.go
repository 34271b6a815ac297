package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"packflow/internal/store"
)

// BillingService raises formal billing records from completed sales-payment
// bills and walks them through payment and dispatch states.
type BillingService interface {
	// CreateBillingRecord converts a completed bill into a billing record
	// carrying customer and credit metadata. A pending bill is refused.
	CreateBillingRecord(ctx context.Context, in CreateBillingInput) (*BillingRecord, error)

	ListByOrder(ctx context.Context, orderID string) ([]BillingRecord, error)
	Get(ctx context.Context, orderID, recordID string) (*BillingRecord, error)

	// UpdateStatus applies a lifecycle transition:
	// pending_payment → partial → paid → dispatched (partial is optional).
	UpdateStatus(ctx context.Context, orderID, recordID, status string) error

	// Manifest consolidates the record's product list.
	Manifest(ctx context.Context, orderID, recordID string) (Manifest, error)
}

// CreateBillingInput is the payload for raising a billing record.
type CreateBillingInput struct {
	OrderID       string
	BillID        string
	CustomerName  string
	DeliveryAddr  string
	CreditDays    int
	InvoiceNumber string
}

type billingService struct {
	store      store.Store
	bills      BillService
	orders     OrderService
	propagator *StatusPropagator
}

func NewBillingService(s store.Store, bills BillService, orders OrderService, prop *StatusPropagator) BillingService {
	return &billingService{store: s, bills: bills, orders: orders, propagator: prop}
}

func (s *billingService) CreateBillingRecord(ctx context.Context, in CreateBillingInput) (*BillingRecord, error) {
	order, err := s.orders.GetOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	bill, err := s.bills.GetBill(ctx, order.ID, in.BillID)
	if err != nil {
		return nil, err
	}
	if bill.Status != BillCompleted {
		return nil, fmt.Errorf("bill %s: %w", in.BillID, ErrBillNotCompleted)
	}

	customer := in.CustomerName
	if customer == "" {
		customer = order.Company.Name
	}

	record := BillingRecord{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		BillID:        bill.ID,
		CreatedAt:     time.Now(),
		CustomerName:  customer,
		DeliveryAddr:  in.DeliveryAddr,
		CreditDays:    in.CreditDays,
		InvoiceNumber: in.InvoiceNumber,
		Amount:        bill.BillAmount(),
		Lines:         append([]BillLine(nil), bill.Lines...),
		Status:        BillingPendingPayment,
	}

	err = store.Mutate(ctx, s.store, store.BillingRecordsKey(order.ID), func(records []BillingRecord) ([]BillingRecord, error) {
		for _, r := range records {
			if r.BillID == bill.ID {
				return nil, fmt.Errorf("bill %s already has billing record %s: %w", bill.ID, r.ID, ErrInvalidTransition)
			}
		}
		return append(records, record), nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.propagator.OnStageComplete(ctx, order.ID, AllProducts, StatusDispatchPending); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *billingService) ListByOrder(ctx context.Context, orderID string) ([]BillingRecord, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return store.Load[[]BillingRecord](ctx, s.store, store.BillingRecordsKey(order.ID))
}

func (s *billingService) Get(ctx context.Context, orderID, recordID string) (*BillingRecord, error) {
	records, err := s.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == recordID {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("billing record %s on order %s: %w", recordID, orderID, ErrNotFound)
}

// billingTransitions lists the legal next states for each billing status.
var billingTransitions = map[string][]string{
	BillingPendingPayment: {BillingPartial, BillingPaid},
	BillingPartial:        {BillingPaid},
	BillingPaid:           {BillingDispatched},
}

func (s *billingService) UpdateStatus(ctx context.Context, orderID, recordID, status string) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	return store.Mutate(ctx, s.store, store.BillingRecordsKey(order.ID), func(records []BillingRecord) ([]BillingRecord, error) {
		for i := range records {
			if records[i].ID != recordID {
				continue
			}
			if !transitionAllowed(billingTransitions, records[i].Status, status) {
				return nil, fmt.Errorf("billing record %s: %s → %s: %w",
					recordID, records[i].Status, status, ErrInvalidTransition)
			}
			records[i].Status = status
			return records, nil
		}
		return nil, fmt.Errorf("billing record %s on order %s: %w", recordID, orderID, ErrNotFound)
	})
}

func (s *billingService) Manifest(ctx context.Context, orderID, recordID string) (Manifest, error) {
	record, err := s.Get(ctx, orderID, recordID)
	if err != nil {
		return Manifest{}, err
	}
	return Consolidate([]ManifestSource{{
		CreatedAt: record.CreatedAt,
		Status:    record.Status,
		Lines:     record.Lines,
	}}), nil
}

func transitionAllowed(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}
