package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"packflow/internal/core"
)

// raisePaidBilling runs an order through bill completion and billing-record
// creation, then marks the record paid so dispatch can proceed.
func raisePaidBilling(t *testing.T, ctx context.Context, e *env, orderID, productID string, qty core.Quantity) *core.BillingRecord {
	t.Helper()
	verifyAll(t, ctx, e, orderID, productID, qty)
	bill, err := e.bills.CreateBill(ctx, core.CreateBillInput{
		OrderID:        orderID,
		EstimatedValue: decimal.NewFromInt(10000),
		Lines:          []core.BillLineInput{{ProductID: productID, Quantity: qty}},
	})
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	if err := e.bills.CompleteBill(ctx, orderID, bill.ID); err != nil {
		t.Fatalf("CompleteBill failed: %v", err)
	}
	record, err := e.billing.CreateBillingRecord(ctx, core.CreateBillingInput{
		OrderID: orderID, BillID: bill.ID, CreditDays: 30, InvoiceNumber: "INV-2207",
	})
	if err != nil {
		t.Fatalf("CreateBillingRecord failed: %v", err)
	}
	if err := e.billing.UpdateStatus(ctx, orderID, record.ID, core.BillingPaid); err != nil {
		t.Fatalf("UpdateStatus to paid failed: %v", err)
	}
	return record
}

func TestBilling_RequiresCompletedBill(t *testing.T) {
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

	_, err = e.billing.CreateBillingRecord(ctx, core.CreateBillingInput{OrderID: order.ID, BillID: bill.ID})
	if !errors.Is(err, core.ErrBillNotCompleted) {
		t.Fatalf("expected ErrBillNotCompleted, got %v", err)
	}

	if err := e.bills.CompleteBill(ctx, order.ID, bill.ID); err != nil {
		t.Fatalf("CompleteBill failed: %v", err)
	}
	record, err := e.billing.CreateBillingRecord(ctx, core.CreateBillingInput{OrderID: order.ID, BillID: bill.ID})
	if err != nil {
		t.Fatalf("CreateBillingRecord failed: %v", err)
	}
	if record.CustomerName != "Sagar Plastics" {
		t.Errorf("customer should default to the order's company, got %q", record.CustomerName)
	}

	// One billing record per bill.
	_, err = e.billing.CreateBillingRecord(ctx, core.CreateBillingInput{OrderID: order.ID, BillID: bill.ID})
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition on duplicate record, got %v", err)
	}
}

func TestBilling_StatusLifecycle(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID
	record := raisePaidBilling(t, ctx, e, order.ID, lid, core.SingleInt(20000))

	// Paid never goes back to pending.
	err := e.billing.UpdateStatus(ctx, order.ID, record.ID, core.BillingPendingPayment)
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestDispatch_RequiresPaidBilling(t *testing.T) {
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
	if err := e.bills.CompleteBill(ctx, order.ID, bill.ID); err != nil {
		t.Fatalf("CompleteBill failed: %v", err)
	}
	record, err := e.billing.CreateBillingRecord(ctx, core.CreateBillingInput{OrderID: order.ID, BillID: bill.ID})
	if err != nil {
		t.Fatalf("CreateBillingRecord failed: %v", err)
	}

	_, err = e.dispatch.CreateDispatch(ctx, core.CreateDispatchInput{
		OrderID: order.ID, BillingRecordID: record.ID,
	})
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for unpaid billing, got %v", err)
	}
}

func TestDispatch_CreateMarksBillingDispatched(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID
	record := raisePaidBilling(t, ctx, e, order.ID, lid, core.SingleInt(20000))

	dispatch, err := e.dispatch.CreateDispatch(ctx, core.CreateDispatchInput{
		OrderID: order.ID, BillingRecordID: record.ID, LRNumber: "LR-8812", Vehicle: "GJ-03-AX-4410",
	})
	if err != nil {
		t.Fatalf("CreateDispatch failed: %v", err)
	}
	if dispatch.Status != core.DispatchReady {
		t.Errorf("new dispatch should be ready, got %s", dispatch.Status)
	}

	after, err := e.billing.Get(ctx, order.ID, record.ID)
	if err != nil {
		t.Fatalf("billing Get failed: %v", err)
	}
	if after.Status != core.BillingDispatched {
		t.Errorf("billing record should read dispatched, got %s", after.Status)
	}

	byOrder, err := e.dispatch.ListByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("ListByOrder failed: %v", err)
	}
	if len(byOrder) != 1 || byOrder[0].ID != dispatch.ID {
		t.Fatalf("expected the one dispatch record, got %d", len(byOrder))
	}

	// ready → dispatched → delivered; skipping in_transit is allowed,
	// going backwards is not.
	if err := e.dispatch.UpdateStatus(ctx, dispatch.ID, core.DispatchDispatched); err != nil {
		t.Fatalf("UpdateStatus dispatched failed: %v", err)
	}
	if err := e.dispatch.UpdateStatus(ctx, dispatch.ID, core.DispatchDelivered); err != nil {
		t.Fatalf("UpdateStatus delivered failed: %v", err)
	}
	err = e.dispatch.UpdateStatus(ctx, dispatch.ID, core.DispatchReady)
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestConsolidate_MergesSameProductAcrossLots(t *testing.T) {
	line := func(qty int64) core.BillLine {
		return core.BillLine{
			ProductID: "prod-1", Name: "500ml Container Lid", Category: "Containers", Size: "500ml",
			Quantity: core.SingleInt(qty),
		}
	}
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	m := core.Consolidate([]core.ManifestSource{
		{CreatedAt: base, Status: core.DispatchDispatched, Lines: []core.BillLine{line(100)}},
		{CreatedAt: base.Add(time.Hour), Status: core.DispatchDispatched, Lines: []core.BillLine{line(150)}},
		{CreatedAt: base.Add(2 * time.Hour), Status: core.DispatchInTransit, Lines: []core.BillLine{line(50)}},
	})

	if len(m.Rows) != 1 {
		t.Fatalf("same product across lots must collapse to one row, got %d", len(m.Rows))
	}
	if m.Rows[0].Quantity.Qty.IntPart() != 300 {
		t.Errorf("expected summed quantity 300, got %s", m.Rows[0].Quantity)
	}
	if m.Status != core.DispatchInTransit {
		t.Errorf("manifest status should follow the newest source, got %s", m.Status)
	}
}

func TestConsolidate_DistinctProductsKeepRows(t *testing.T) {
	m := core.Consolidate([]core.ManifestSource{{
		Lines: []core.BillLine{
			{ProductID: "a", Name: "500ml Container Lid", Category: "Containers", Size: "500ml", Quantity: core.SingleInt(10)},
			{ProductID: "b", Name: "1L Round Set", Category: "Containers", Size: "1L", Quantity: core.LidTubInt(5, 5)},
			{ProductID: "a", Name: "500ml Container Lid", Category: "Containers", Size: "500ml", Quantity: core.SingleInt(15), Samples: core.SingleInt(2)},
		},
	}})
	if len(m.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m.Rows))
	}
	// First appearance wins on ordering.
	if m.Rows[0].ProductID != "a" || m.Rows[1].ProductID != "b" {
		t.Errorf("row order must follow first appearance")
	}
	if m.Rows[0].Quantity.Qty.IntPart() != 25 || m.Rows[0].Samples.Qty.IntPart() != 2 {
		t.Errorf("expected quantity 25 samples 2, got %s + %s", m.Rows[0].Quantity, m.Rows[0].Samples)
	}
}
