package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"packflow/internal/store"
)

// DispatchService raises dispatch records from billing records and builds
// consolidated shipment manifests. Dispatch records live in one flat array,
// not per order.
type DispatchService interface {
	// CreateDispatch raises a dispatch record from a billing record in the
	// paid state and marks the billing record dispatched.
	CreateDispatch(ctx context.Context, in CreateDispatchInput) (*DispatchRecord, error)

	ListAll(ctx context.Context) ([]DispatchRecord, error)
	ListByOrder(ctx context.Context, orderID string) ([]DispatchRecord, error)
	Get(ctx context.Context, dispatchID string) (*DispatchRecord, error)

	// UpdateStatus applies ready → dispatched → in_transit → delivered.
	UpdateStatus(ctx context.Context, dispatchID, status string) error

	// Manifest consolidates every dispatch entry referencing the same
	// billing record into one deduplicated product list.
	Manifest(ctx context.Context, billingRecordID string) (Manifest, error)

	// OrderManifest consolidates all of an order's dispatch entries.
	OrderManifest(ctx context.Context, orderID string) (Manifest, error)
}

// CreateDispatchInput is the payload for a new dispatch record.
type CreateDispatchInput struct {
	OrderID         string
	BillingRecordID string
	LRNumber        string
	Vehicle         string
	Driver          string
}

type dispatchService struct {
	store      store.Store
	billing    BillingService
	orders     OrderService
	propagator *StatusPropagator
}

func NewDispatchService(s store.Store, billing BillingService, orders OrderService, prop *StatusPropagator) DispatchService {
	return &dispatchService{store: s, billing: billing, orders: orders, propagator: prop}
}

func (s *dispatchService) CreateDispatch(ctx context.Context, in CreateDispatchInput) (*DispatchRecord, error) {
	order, err := s.orders.GetOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	record, err := s.billing.Get(ctx, order.ID, in.BillingRecordID)
	if err != nil {
		return nil, err
	}
	if record.Status != BillingPaid {
		return nil, fmt.Errorf("billing record %s is %s: %w", in.BillingRecordID, record.Status, ErrInvalidTransition)
	}

	dispatch := DispatchRecord{
		ID:              uuid.NewString(),
		OrderID:         order.ID,
		BillingRecordID: record.ID,
		CreatedAt:       time.Now(),
		LRNumber:        in.LRNumber,
		Vehicle:         in.Vehicle,
		Driver:          in.Driver,
		Lines:           append([]BillLine(nil), record.Lines...),
		Status:          DispatchReady,
	}

	err = store.Mutate(ctx, s.store, store.DispatchRecordsKey(), func(records []DispatchRecord) ([]DispatchRecord, error) {
		return append(records, dispatch), nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.billing.UpdateStatus(ctx, order.ID, record.ID, BillingDispatched); err != nil {
		return nil, err
	}
	if err := s.propagator.OnStageComplete(ctx, order.ID, AllProducts, StatusDispatched); err != nil {
		return nil, err
	}
	return &dispatch, nil
}

func (s *dispatchService) ListAll(ctx context.Context) ([]DispatchRecord, error) {
	return store.Load[[]DispatchRecord](ctx, s.store, store.DispatchRecordsKey())
}

func (s *dispatchService) ListByOrder(ctx context.Context, orderID string) ([]DispatchRecord, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []DispatchRecord
	for _, d := range all {
		if d.OrderID == order.ID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *dispatchService) Get(ctx context.Context, dispatchID string) (*DispatchRecord, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == dispatchID {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("dispatch record %s: %w", dispatchID, ErrNotFound)
}

// dispatchTransitions lists the legal next states for each dispatch status.
var dispatchTransitions = map[string][]string{
	DispatchReady:      {DispatchDispatched},
	DispatchDispatched: {DispatchInTransit, DispatchDelivered},
	DispatchInTransit:  {DispatchDelivered},
}

func (s *dispatchService) UpdateStatus(ctx context.Context, dispatchID, status string) error {
	return store.Mutate(ctx, s.store, store.DispatchRecordsKey(), func(records []DispatchRecord) ([]DispatchRecord, error) {
		for i := range records {
			if records[i].ID != dispatchID {
				continue
			}
			if !transitionAllowed(dispatchTransitions, records[i].Status, status) {
				return nil, fmt.Errorf("dispatch record %s: %s → %s: %w",
					dispatchID, records[i].Status, status, ErrInvalidTransition)
			}
			records[i].Status = status
			return records, nil
		}
		return nil, fmt.Errorf("dispatch record %s: %w", dispatchID, ErrNotFound)
	})
}

func (s *dispatchService) Manifest(ctx context.Context, billingRecordID string) (Manifest, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return Manifest{}, err
	}
	var sources []ManifestSource
	for _, d := range all {
		if d.BillingRecordID == billingRecordID {
			sources = append(sources, ManifestSource{CreatedAt: d.CreatedAt, Status: d.Status, Lines: d.Lines})
		}
	}
	return Consolidate(sources), nil
}

func (s *dispatchService) OrderManifest(ctx context.Context, orderID string) (Manifest, error) {
	records, err := s.ListByOrder(ctx, orderID)
	if err != nil {
		return Manifest{}, err
	}
	var sources []ManifestSource
	for _, d := range records {
		sources = append(sources, ManifestSource{CreatedAt: d.CreatedAt, Status: d.Status, Lines: d.Lines})
	}
	return Consolidate(sources), nil
}
