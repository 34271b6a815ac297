package core_test

import (
	"errors"
	"testing"

	"packflow/internal/core"
)

func TestJobwork_SessionsAndRemoval(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID

	err := e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: lid, Delta: core.SingleInt(5000),
	})
	if err != nil {
		t.Fatalf("ReceiveLabels failed: %v", err)
	}

	sentID, err := e.jobwork.SendGoods(ctx, order.ID, []core.VerifyItem{
		{ProductID: lid, Quantity: core.SingleInt(4000)},
	}, "to printer")
	if err != nil {
		t.Fatalf("SendGoods failed: %v", err)
	}
	returnedID, err := e.jobwork.ReceiveReturned(ctx, order.ID, []core.VerifyItem{
		{ProductID: lid, Quantity: core.SingleInt(1500)},
	}, "first return")
	if err != nil {
		t.Fatalf("ReceiveReturned failed: %v", err)
	}

	sent, err := e.jobwork.SentBatches(ctx, order.ID)
	if err != nil {
		t.Fatalf("SentBatches failed: %v", err)
	}
	if len(sent) != 1 || sent[0].BatchID != sentID {
		t.Fatalf("expected the one sent session, got %d", len(sent))
	}
	returned, err := e.jobwork.ReturnedBatches(ctx, order.ID)
	if err != nil {
		t.Fatalf("ReturnedBatches failed: %v", err)
	}
	if len(returned) != 1 || returned[0].BatchID != returnedID {
		t.Fatalf("expected the one returned session, got %d", len(returned))
	}

	out, err := e.jobwork.Outstanding(ctx, order.ID, lid)
	if err != nil {
		t.Fatalf("Outstanding failed: %v", err)
	}
	if out.Qty.IntPart() != 2500 {
		t.Errorf("expected 2500 outstanding, got %s", out)
	}

	// Removing the returned session restores its capacity and leaves the
	// sent side untouched.
	if err := e.jobwork.RemoveReturnedBatch(ctx, order.ID, returnedID); err != nil {
		t.Fatalf("RemoveReturnedBatch failed: %v", err)
	}
	out, _ = e.jobwork.Outstanding(ctx, order.ID, lid)
	if out.Qty.IntPart() != 4000 {
		t.Errorf("expected 4000 outstanding after removal, got %s", out)
	}
	sent, _ = e.jobwork.SentBatches(ctx, order.ID)
	if len(sent) != 1 {
		t.Errorf("sent sessions must survive a return removal, got %d", len(sent))
	}
}

func TestJobwork_CompletionFlagNotRecorded(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID

	err := e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: lid, Delta: core.SingleInt(5000),
	})
	if err != nil {
		t.Fatalf("ReceiveLabels failed: %v", err)
	}
	before, _ := e.orders.GetOrder(ctx, order.ID)

	// Job work never drives line status, so a completion flag on a
	// submission must neither stick on the ledger nor touch the line.
	_, err = e.jobwork.SendGoods(ctx, order.ID, []core.VerifyItem{
		{ProductID: lid, Quantity: core.SingleInt(2000), Complete: true},
	}, "")
	if err != nil {
		t.Fatalf("SendGoods failed: %v", err)
	}

	done, err := e.ledger.IsComplete(ctx, core.StageJobworkSent, order.ID, lid)
	if err != nil {
		t.Fatalf("IsComplete failed: %v", err)
	}
	if done {
		t.Error("job-work ledger must not carry a sticky complete flag")
	}
	after, err := e.orders.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if after.Line(lid).Status != before.Line(lid).Status {
		t.Errorf("line status changed from %q to %q", before.Line(lid).Status, after.Line(lid).Status)
	}
}

func TestJobwork_RemoveRejectsSentBatch(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID

	err := e.purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID: order.ID, ProductID: lid, Delta: core.SingleInt(5000),
	})
	if err != nil {
		t.Fatalf("ReceiveLabels failed: %v", err)
	}
	sentID, err := e.jobwork.SendGoods(ctx, order.ID, []core.VerifyItem{
		{ProductID: lid, Quantity: core.SingleInt(1000)},
	}, "")
	if err != nil {
		t.Fatalf("SendGoods failed: %v", err)
	}

	// Only goods-returned sessions are removable.
	err = e.jobwork.RemoveReturnedBatch(ctx, order.ID, sentID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for a sent session, got %v", err)
	}
	out, _ := e.jobwork.Outstanding(ctx, order.ID, lid)
	if out.Qty.IntPart() != 1000 {
		t.Errorf("sent session must be untouched, outstanding = %s", out)
	}
}
