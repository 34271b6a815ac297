package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"packflow/internal/core"
)

// verifyAll pushes a product through purchase and inventory verification so
// bill tests start with a verified pool.
func verifyAll(t *testing.T, ctx context.Context, e *env, orderID, productID string, qty core.Quantity) {
	t.Helper()
	err := e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: orderID, ProductID: productID, Delta: qty, Complete: true,
	})
	if err != nil {
		t.Fatalf("ReceiveLabels failed: %v", err)
	}
	_, err = e.verification.VerifyInventory(ctx, orderID, []core.VerifyItem{
		{ProductID: productID, Quantity: qty, Complete: true},
	}, "")
	if err != nil {
		t.Fatalf("VerifyInventory failed: %v", err)
	}
}

func TestBill_PartialVerificationCapsBillLines(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	set := order.Lines[1].ID

	err := e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: set, Delta: core.LidTubInt(10000, 10000),
	})
	if err != nil {
		t.Fatalf("ReceiveLabels failed: %v", err)
	}
	_, err = e.verification.VerifyInventory(ctx, order.ID, []core.VerifyItem{
		{ProductID: set, Quantity: core.LidTubInt(5000, 5000)},
	}, "")
	if err != nil {
		t.Fatalf("VerifyInventory failed: %v", err)
	}

	// Only the verified half can be billed.
	_, err = e.bills.CreateBill(ctx, core.CreateBillInput{
		OrderID:        order.ID,
		EstimatedValue: decimal.NewFromInt(60000),
		Lines:          []core.BillLineInput{{ProductID: set, Quantity: core.LidTubInt(6000, 6000)}},
	})
	if !errors.Is(err, core.ErrExceedsCapacity) {
		t.Fatalf("expected ErrExceedsCapacity, got %v", err)
	}

	bill, err := e.bills.CreateBill(ctx, core.CreateBillInput{
		OrderID:        order.ID,
		EstimatedValue: decimal.NewFromInt(50000),
		Lines:          []core.BillLineInput{{ProductID: set, Quantity: core.LidTubInt(5000, 5000)}},
	})
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if len(bill.Lines) != 1 {
		t.Fatalf("expected 1 bill line, got %d", len(bill.Lines))
	}

	// The billed half is gone from the verifiable-unbilled pool.
	unbilled, err := e.verification.VerifiedUnbilled(ctx, order.ID, set)
	if err != nil {
		t.Fatalf("VerifiedUnbilled failed: %v", err)
	}
	if !unbilled.IsZero() {
		t.Errorf("expected nothing left unbilled, got %s", unbilled)
	}
	remaining, err := e.verification.Remaining(ctx, core.StageInventory, order.ID, set)
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if remaining.Lid.IntPart() != 5000 || remaining.Tub.IntPart() != 5000 {
		t.Errorf("expected LID 5000 / TUB 5000 still verifiable, got %s", remaining)
	}
}

func TestBill_NothingVerifiedRefusesBill(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID

	_, err := e.bills.CreateBill(ctx, core.CreateBillInput{
		OrderID:        order.ID,
		EstimatedValue: decimal.NewFromInt(1000),
		Lines:          []core.BillLineInput{{ProductID: lid, Quantity: core.SingleInt(100)}},
	})
	if !errors.Is(err, core.ErrNothingToForward) {
		t.Errorf("expected ErrNothingToForward, got %v", err)
	}
}

func TestBill_PaymentsAndBalance(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID
	verifyAll(t, ctx, e, order.ID, lid, core.SingleInt(20000))

	bill, err := e.bills.CreateBill(ctx, core.CreateBillInput{
		OrderID:        order.ID,
		EstimatedValue: decimal.NewFromInt(20000),
		Lines:          []core.BillLineInput{{ProductID: lid, Quantity: core.SingleInt(20000), UnitPrice: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	first, err := e.bills.AddPayment(ctx, order.ID, bill.ID, core.PaymentInput{
		Method: "UPI", Amount: decimal.NewFromInt(10000), Source: core.PaymentFromOrder,
	})
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	second, err := e.bills.AddPayment(ctx, order.ID, bill.ID, core.PaymentInput{
		Method: "cheque", Amount: decimal.NewFromInt(5000), Source: core.PaymentFromBill,
	})
	if err != nil {
		t.Fatalf("second payment failed: %v", err)
	}

	due, err := e.bills.BalanceDue(ctx, order.ID, bill.ID)
	if err != nil {
		t.Fatalf("BalanceDue failed: %v", err)
	}
	if !due.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected balance 5000, got %s", due)
	}

	// Both views see the same two records — entered-once, never doubled.
	records, total, err := e.bills.OrderPayments(ctx, order.ID)
	if err != nil {
		t.Fatalf("OrderPayments failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 payment records, got %d", len(records))
	}
	if !total.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("expected order total 15000, got %s", total)
	}

	// Removing the 5000 payment restores the balance and vanishes from the
	// order aggregate in the same motion.
	if err := e.bills.RemovePayment(ctx, order.ID, bill.ID, second.ID); err != nil {
		t.Fatalf("RemovePayment failed: %v", err)
	}
	due, _ = e.bills.BalanceDue(ctx, order.ID, bill.ID)
	if !due.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected balance 10000 after removal, got %s", due)
	}
	records, total, err = e.bills.OrderPayments(ctx, order.ID)
	if err != nil {
		t.Fatalf("OrderPayments failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != first.ID {
		t.Fatalf("expected only the first payment to remain, got %d records", len(records))
	}
	if !total.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected order total 10000 after removal, got %s", total)
	}
}

func TestBill_DuplicatePaymentRefRejected(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID
	verifyAll(t, ctx, e, order.ID, lid, core.SingleInt(20000))

	bill, err := e.bills.CreateBill(ctx, core.CreateBillInput{
		OrderID:        order.ID,
		EstimatedValue: decimal.NewFromInt(20000),
		Lines:          []core.BillLineInput{{ProductID: lid, Quantity: core.SingleInt(20000)}},
	})
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	in := core.PaymentInput{Method: "NEFT", Amount: decimal.NewFromInt(8000), Ref: "txn-4471"}
	if _, err := e.bills.AddPayment(ctx, order.ID, bill.ID, in); err != nil {
		t.Fatalf("AddPayment failed: %v", err)
	}
	_, err = e.bills.AddPayment(ctx, order.ID, bill.ID, in)
	if !errors.Is(err, core.ErrDuplicatePayment) {
		t.Errorf("expected ErrDuplicatePayment, got %v", err)
	}
}

func TestBill_CompletionTransitions(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID
	verifyAll(t, ctx, e, order.ID, lid, core.SingleInt(20000))

	bill, err := e.bills.CreateBill(ctx, core.CreateBillInput{
		OrderID:        order.ID,
		EstimatedValue: decimal.NewFromInt(20000),
		Lines:          []core.BillLineInput{{ProductID: lid, Quantity: core.SingleInt(20000)}},
	})
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if bill.Status != core.BillPending {
		t.Fatalf("new bill should be pending, got %s", bill.Status)
	}

	if err := e.bills.CompleteBill(ctx, order.ID, bill.ID); err != nil {
		t.Fatalf("CompleteBill failed: %v", err)
	}
	got, err := e.bills.GetBill(ctx, order.ID, bill.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.Status != core.BillCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}

	// Completion is one-way.
	err = e.bills.CompleteBill(ctx, order.ID, bill.ID)
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}
