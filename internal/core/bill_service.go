package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"packflow/internal/store"
)

// BillService manages sales-payment bills: verified quantities grouped for
// payment collection before formal billing.
type BillService interface {
	// CreateBill carries verified product quantities into a new pending
	// bill. Every line is capped at the product's verified-and-unbilled
	// remainder at creation time.
	CreateBill(ctx context.Context, in CreateBillInput) (*Bill, error)

	ListBills(ctx context.Context, orderID string) ([]Bill, error)
	GetBill(ctx context.Context, orderID, billID string) (*Bill, error)

	// AddPayment records a payment against a bill. Source tags where it was
	// entered; a repeated Ref is rejected as a duplicate submission.
	AddPayment(ctx context.Context, orderID, billID string, in PaymentInput) (*PaymentRecord, error)

	// RemovePayment deletes one payment record — the modeled exception to
	// immutability. The order-level payment aggregate is derived from bill
	// payments, so the mirrored entry disappears with it.
	RemovePayment(ctx context.Context, orderID, billID, paymentID string) error

	// BalanceDue is the bill amount minus all recorded payments.
	BalanceDue(ctx context.Context, orderID, billID string) (decimal.Decimal, error)

	// CompleteBill transitions pending → completed.
	CompleteBill(ctx context.Context, orderID, billID string) error

	// OrderPayments aggregates payments across all of an order's bills,
	// counting each record exactly once regardless of which view created it.
	OrderPayments(ctx context.Context, orderID string) ([]PaymentRecord, decimal.Decimal, error)
}

// CreateBillInput is the payload for a new sales-payment bill.
type CreateBillInput struct {
	OrderID        string
	BatchID        string
	EstimatedValue decimal.Decimal
	Lines          []BillLineInput
}

// BillLineInput is one product's quantities on a new bill.
type BillLineInput struct {
	ProductID string
	Quantity  Quantity
	Samples   Quantity
	UnitPrice decimal.Decimal
}

// PaymentInput is the payload for a new payment record.
type PaymentInput struct {
	Method   string
	Amount   decimal.Decimal
	Remarks  string
	ProofRef string
	Source   PaymentSource
	Ref      string
}

type billService struct {
	store        store.Store
	verification VerificationService
	orders       OrderService
	bus          *Bus
}

func NewBillService(s store.Store, verification VerificationService, orders OrderService, bus *Bus) BillService {
	return &billService{store: s, verification: verification, orders: orders, bus: bus}
}

func (s *billService) CreateBill(ctx context.Context, in CreateBillInput) (*Bill, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("create bill for order %s: no product lines", in.OrderID)
	}
	if in.EstimatedValue.IsNegative() {
		return nil, fmt.Errorf("create bill for order %s: negative estimated value: %w", in.OrderID, ErrInvalidQuantity)
	}
	order, err := s.orders.GetOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	bill := Bill{
		ID:             uuid.NewString(),
		OrderID:        order.ID,
		BatchID:        in.BatchID,
		CreatedAt:      time.Now(),
		EstimatedValue: in.EstimatedValue,
		Status:         BillPending,
	}
	for _, lin := range in.Lines {
		line := order.Line(lin.ProductID)
		if line == nil {
			return nil, fmt.Errorf("order %s product %s: %w", in.OrderID, lin.ProductID, ErrNotFound)
		}
		if lin.Quantity.AnyNegative() || lin.Samples.AnyNegative() || lin.Quantity.IsZero() {
			return nil, fmt.Errorf("bill line for product %s: %w", lin.ProductID, ErrInvalidQuantity)
		}

		available, err := s.verification.VerifiedUnbilled(ctx, order.ID, lin.ProductID)
		if err != nil {
			return nil, err
		}
		if available.IsZero() {
			return nil, fmt.Errorf("product %s: %w", lin.ProductID, ErrNothingToForward)
		}
		requested := lin.Quantity
		if !lin.Samples.IsZero() {
			requested = requested.Add(lin.Samples)
		}
		if !available.Covers(requested) {
			return nil, fmt.Errorf("product %s: requested %s, verified and unbilled %s: %w",
				lin.ProductID, requested, available, ErrExceedsCapacity)
		}

		bill.Lines = append(bill.Lines, BillLine{
			ProductID: lin.ProductID,
			Name:      line.Name,
			Category:  line.Category,
			Size:      line.Size,
			Quantity:  lin.Quantity,
			Samples:   lin.Samples,
			UnitPrice: lin.UnitPrice,
		})
	}

	err = store.Mutate(ctx, s.store, store.SalesBillsKey(order.ID), func(bills []Bill) ([]Bill, error) {
		return append(bills, bill), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create bill for order %s: %w", in.OrderID, err)
	}
	s.bus.Notify(order.ID)
	return &bill, nil
}

func (s *billService) ListBills(ctx context.Context, orderID string) ([]Bill, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return store.Load[[]Bill](ctx, s.store, store.SalesBillsKey(order.ID))
}

func (s *billService) GetBill(ctx context.Context, orderID, billID string) (*Bill, error) {
	bills, err := s.ListBills(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for i := range bills {
		if bills[i].ID == billID {
			return &bills[i], nil
		}
	}
	return nil, fmt.Errorf("bill %s on order %s: %w", billID, orderID, ErrNotFound)
}

func (s *billService) AddPayment(ctx context.Context, orderID, billID string, in PaymentInput) (*PaymentRecord, error) {
	if in.Amount.IsNegative() || in.Amount.IsZero() {
		return nil, fmt.Errorf("payment on bill %s: %w", billID, ErrInvalidQuantity)
	}
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	record := PaymentRecord{
		ID:       uuid.NewString(),
		At:       time.Now(),
		Method:   in.Method,
		Amount:   in.Amount,
		Remarks:  in.Remarks,
		ProofRef: in.ProofRef,
		Source:   in.Source,
		Ref:      in.Ref,
	}
	if record.Source == "" {
		record.Source = PaymentFromBill
	}

	err = s.mutateBill(ctx, order.ID, billID, func(b *Bill) error {
		if in.Ref != "" {
			for _, p := range b.Payments {
				if p.Ref == in.Ref {
					return fmt.Errorf("payment ref %s on bill %s: %w", in.Ref, billID, ErrDuplicatePayment)
				}
			}
		}
		b.Payments = append(b.Payments, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bus.Notify(order.ID)
	return &record, nil
}

func (s *billService) RemovePayment(ctx context.Context, orderID, billID, paymentID string) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	err = s.mutateBill(ctx, order.ID, billID, func(b *Bill) error {
		for i, p := range b.Payments {
			if p.ID == paymentID {
				b.Payments = append(b.Payments[:i], b.Payments[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("payment %s on bill %s: %w", paymentID, billID, ErrNotFound)
	})
	if err != nil {
		return err
	}
	s.bus.Notify(order.ID)
	return nil
}

func (s *billService) BalanceDue(ctx context.Context, orderID, billID string) (decimal.Decimal, error) {
	bill, err := s.GetBill(ctx, orderID, billID)
	if err != nil {
		return decimal.Zero, err
	}
	due := bill.BillAmount()
	for _, p := range bill.Payments {
		due = due.Sub(p.Amount)
	}
	return due, nil
}

func (s *billService) CompleteBill(ctx context.Context, orderID, billID string) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	err = s.mutateBill(ctx, order.ID, billID, func(b *Bill) error {
		if b.Status != BillPending {
			return fmt.Errorf("bill %s is %s: %w", billID, b.Status, ErrInvalidTransition)
		}
		b.Status = BillCompleted
		return nil
	})
	if err != nil {
		return err
	}
	s.bus.Notify(order.ID)
	return nil
}

func (s *billService) OrderPayments(ctx context.Context, orderID string) ([]PaymentRecord, decimal.Decimal, error) {
	bills, err := s.ListBills(ctx, orderID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	seen := map[string]bool{}
	var out []PaymentRecord
	total := decimal.Zero
	for _, b := range bills {
		for _, p := range b.Payments {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, p)
			total = total.Add(p.Amount)
		}
	}
	return out, total, nil
}

func (s *billService) mutateBill(ctx context.Context, orderID, billID string, fn func(*Bill) error) error {
	return store.Mutate(ctx, s.store, store.SalesBillsKey(orderID), func(bills []Bill) ([]Bill, error) {
		for i := range bills {
			if bills[i].ID == billID {
				if err := fn(&bills[i]); err != nil {
					return nil, err
				}
				return bills, nil
			}
		}
		return nil, fmt.Errorf("bill %s on order %s: %w", billID, orderID, ErrNotFound)
	})
}
