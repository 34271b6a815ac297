package core_test

import (
	"errors"
	"testing"

	"packflow/internal/core"
)

func TestReconcile_PurchaseBatchesFillOrderedCapacity(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID

	err := e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: lid, Delta: core.SingleInt(8000),
	})
	if err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	err = e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: lid, Delta: core.SingleInt(12000), Complete: true,
	})
	if err != nil {
		t.Fatalf("second batch failed: %v", err)
	}

	total, err := e.purchase.Total(ctx, order.ID, lid)
	if err != nil {
		t.Fatalf("Total failed: %v", err)
	}
	if total.Qty.IntPart() != 20000 {
		t.Errorf("expected total 20000, got %s", total)
	}
	remaining, err := e.purchase.Remaining(ctx, order.ID, lid)
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if !remaining.IsZero() {
		t.Errorf("expected zero remaining, got %s", remaining)
	}

	// The pool is exhausted; even one more unit must be refused.
	err = e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: lid, Delta: core.SingleInt(1),
	})
	if !errors.Is(err, core.ErrExceedsCapacity) {
		t.Errorf("expected ErrExceedsCapacity, got %v", err)
	}
}

func TestReconcile_RefusesForwardWithZeroUpstream(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID

	// Nothing purchased yet, so no verification can happen.
	_, err := e.verification.VerifyInventory(ctx, order.ID, []core.VerifyItem{
		{ProductID: lid, Quantity: core.SingleInt(100)},
	}, "")
	if !errors.Is(err, core.ErrNothingToForward) {
		t.Errorf("expected ErrNothingToForward, got %v", err)
	}
}

func TestReconcile_PairedComponentsTrackedIndependently(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	set := order.Lines[1].ID

	err := e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: set, Delta: core.LidTubInt(10000, 6000),
	})
	if err != nil {
		t.Fatalf("ReceiveLabels failed: %v", err)
	}

	remaining, err := e.purchase.Remaining(ctx, order.ID, set)
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if remaining.Lid.IntPart() != 0 || remaining.Tub.IntPart() != 4000 {
		t.Errorf("expected remaining LID 0 / TUB 4000, got %s", remaining)
	}

	// Lids are spent; a batch touching lids at all must be rejected even
	// though tub capacity remains.
	err = e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: set, Delta: core.LidTubInt(1, 1000),
	})
	if !errors.Is(err, core.ErrExceedsCapacity) {
		t.Errorf("expected ErrExceedsCapacity, got %v", err)
	}

	// A tub-only batch within capacity still goes through.
	err = e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: set, Delta: core.LidTubInt(0, 4000),
	})
	if err != nil {
		t.Errorf("tub-only batch should pass: %v", err)
	}
	done, err := e.reconciler.FullyReconciled(ctx, core.StagePurchase, order.ID, set)
	if err != nil {
		t.Fatalf("FullyReconciled failed: %v", err)
	}
	if !done {
		t.Error("both components at zero remaining must report fully reconciled")
	}
}

func TestReconcile_SamplesConsumeCapacity(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID

	err := e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: lid, Delta: core.SingleInt(10000),
	})
	if err != nil {
		t.Fatalf("ReceiveLabels failed: %v", err)
	}

	_, err = e.verification.VerifyInventory(ctx, order.ID, []core.VerifyItem{
		{ProductID: lid, Quantity: core.SingleInt(9900), Samples: core.SingleInt(100)},
	}, "")
	if err != nil {
		t.Fatalf("VerifyInventory failed: %v", err)
	}

	remaining, err := e.verification.Remaining(ctx, core.StageInventory, order.ID, lid)
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if !remaining.IsZero() {
		t.Errorf("samples must draw from the same pool, remaining = %s", remaining)
	}

	// 9900 + 100 samples exhausted the purchase total; one more unit fails.
	_, err = e.verification.VerifyInventory(ctx, order.ID, []core.VerifyItem{
		{ProductID: lid, Quantity: core.SingleInt(1)},
	}, "")
	if !errors.Is(err, core.ErrExceedsCapacity) {
		t.Errorf("expected ErrExceedsCapacity, got %v", err)
	}
}

func TestReconcile_WholeBatchRejectedOnOneBadItem(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid, set := order.Lines[0].ID, order.Lines[1].ID

	for _, in := range []core.ReceiveLabelsInput{
		{OrderID: order.ID, ProductID: lid, Delta: core.SingleInt(5000)},
		{OrderID: order.ID, ProductID: set, Delta: core.LidTubInt(2000, 2000)},
	} {
		if err := e.purchase.ReceiveLabels(ctx, in); err != nil {
			t.Fatalf("ReceiveLabels failed: %v", err)
		}
	}

	// The second item over-forwards; the first must not be stored either.
	_, err := e.verification.VerifyStock(ctx, order.ID, []core.VerifyItem{
		{ProductID: lid, Quantity: core.SingleInt(1000)},
		{ProductID: set, Quantity: core.LidTubInt(3000, 1000)},
	}, "")
	if !errors.Is(err, core.ErrExceedsCapacity) {
		t.Fatalf("expected ErrExceedsCapacity, got %v", err)
	}
	total, err := e.ledger.CurrentTotal(ctx, core.StageStock, order.ID, lid)
	if err != nil {
		t.Fatalf("CurrentTotal failed: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("failed batch must write nothing, stock total = %s", total)
	}
}

func TestReconcile_MismatchedKindRejected(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	set := order.Lines[1].ID

	err := e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: set, Delta: core.LidTubInt(100, 100),
	})
	if err != nil {
		t.Fatalf("ReceiveLabels failed: %v", err)
	}

	// A single-kind quantity against a LID & TUB line carries no lid/tub
	// components, so capacity math alone would wave any magnitude through.
	_, err = e.verification.VerifyInventory(ctx, order.ID, []core.VerifyItem{
		{ProductID: set, Quantity: core.SingleInt(1000000)},
	}, "")
	if !errors.Is(err, core.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
	total, err := e.ledger.CurrentTotal(ctx, core.StageInventory, order.ID, set)
	if err != nil {
		t.Fatalf("CurrentTotal failed: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("rejected submission must write nothing, inventory total = %s", total)
	}

	// Samples are checked the same way.
	_, err = e.verification.VerifyInventory(ctx, order.ID, []core.VerifyItem{
		{ProductID: set, Quantity: core.LidTubInt(10, 10), Samples: core.SingleInt(5)},
	}, "")
	if !errors.Is(err, core.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity for mismatched samples, got %v", err)
	}

	// Job work applies the same guard.
	_, err = e.jobwork.SendGoods(ctx, order.ID, []core.VerifyItem{
		{ProductID: set, Quantity: core.SingleInt(50)},
	}, "")
	if !errors.Is(err, core.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity from job work, got %v", err)
	}
}

func TestReconcile_JobworkReturnCapacity(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID

	err := e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: lid, Delta: core.SingleInt(5000),
	})
	if err != nil {
		t.Fatalf("ReceiveLabels failed: %v", err)
	}
	_, err = e.jobwork.SendGoods(ctx, order.ID, []core.VerifyItem{
		{ProductID: lid, Quantity: core.SingleInt(3000)},
	}, "sent to Shree Printers")
	if err != nil {
		t.Fatalf("SendGoods failed: %v", err)
	}

	// Cannot receive back more than was sent.
	_, err = e.jobwork.ReceiveReturned(ctx, order.ID, []core.VerifyItem{
		{ProductID: lid, Quantity: core.SingleInt(3001)},
	}, "")
	if !errors.Is(err, core.ErrExceedsCapacity) {
		t.Errorf("expected ErrExceedsCapacity, got %v", err)
	}

	_, err = e.jobwork.ReceiveReturned(ctx, order.ID, []core.VerifyItem{
		{ProductID: lid, Quantity: core.SingleInt(1000)},
	}, "")
	if err != nil {
		t.Fatalf("ReceiveReturned failed: %v", err)
	}
	out, err := e.jobwork.Outstanding(ctx, order.ID, lid)
	if err != nil {
		t.Fatalf("Outstanding failed: %v", err)
	}
	if out.Qty.IntPart() != 2000 {
		t.Errorf("expected 2000 outstanding, got %s", out)
	}
}
