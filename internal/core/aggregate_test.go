package core_test

import (
	"reflect"
	"testing"

	"packflow/internal/core"
)

func sampleRows() []core.Row {
	return []core.Row{
		{CompanyName: "Sagar Plastics", OrderNumber: "ORD-1001", GroupKey: "Containers",
			ProductID: "p1", ProductName: "500ml Container Lid", Category: "Containers", Size: "500ml",
			Quantity: core.SingleInt(100), Status: core.StatusOrderPlaced},
		{CompanyName: "Sagar Plastics", OrderNumber: "ORD-1001", GroupKey: "Containers",
			ProductID: "p1", ProductName: "500ml Container Lid", Category: "Containers", Size: "500ml",
			Quantity: core.SingleInt(50), Samples: core.SingleInt(5)},
		{CompanyName: "Sagar Plastics", OrderNumber: "ORD-1002", GroupKey: "Containers",
			ProductID: "p2", ProductName: "1L Round Set", Category: "Containers", Size: "1L",
			Quantity: core.LidTubInt(40, 40)},
		{CompanyName: "Mehta Packaging", OrderNumber: "ORD-2001", GroupKey: "Jars",
			ProductID: "p3", ProductName: "2L Jar Lid", Category: "Jars", Size: "2L",
			Quantity: core.SingleInt(75)},
	}
}

func TestGroup_HierarchyAndDedup(t *testing.T) {
	groups := core.Group(sampleRows(), core.Filters{})

	if len(groups) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(groups))
	}
	// First appearance ordering.
	if groups[0].Company != "Sagar Plastics" || groups[1].Company != "Mehta Packaging" {
		t.Errorf("companies must keep input order: %s, %s", groups[0].Company, groups[1].Company)
	}
	if len(groups[0].Orders) != 2 {
		t.Fatalf("expected 2 orders under Sagar Plastics, got %d", len(groups[0].Orders))
	}

	// The two p1 occurrences merge with quantities summed.
	products := groups[0].Orders[0].Groups[0].Products
	if len(products) != 1 {
		t.Fatalf("expected 1 deduplicated product, got %d", len(products))
	}
	if products[0].Quantity.Qty.IntPart() != 150 || products[0].Samples.Qty.IntPart() != 5 {
		t.Errorf("expected quantity 150 samples 5, got %s + %s", products[0].Quantity, products[0].Samples)
	}
	if products[0].Status != core.StatusOrderPlaced {
		t.Errorf("status should survive the merge, got %q", products[0].Status)
	}
}

func TestGroup_IsStatelessAndIdempotent(t *testing.T) {
	rows := sampleRows()
	before := make([]core.Row, len(rows))
	copy(before, rows)

	first := core.Group(rows, core.Filters{Search: "sagar"})
	second := core.Group(rows, core.Filters{Search: "sagar"})

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated grouping over the same snapshot must be identical")
	}
	if !reflect.DeepEqual(rows, before) {
		t.Error("grouping must not mutate its input rows")
	}
}

func TestGroup_MissingIdentifiersLandInSentinels(t *testing.T) {
	groups := core.Group([]core.Row{
		{ProductID: "px", ProductName: "Unlabeled Lid", Quantity: core.SingleInt(9)},
	}, core.Filters{})

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.Company != core.UnknownCompany {
		t.Errorf("expected %q, got %q", core.UnknownCompany, g.Company)
	}
	if g.Orders[0].OrderNumber != core.UnknownOrder {
		t.Errorf("expected %q, got %q", core.UnknownOrder, g.Orders[0].OrderNumber)
	}
	if g.Orders[0].Groups[0].Key != core.UnknownGroup {
		t.Errorf("expected %q, got %q", core.UnknownGroup, g.Orders[0].Groups[0].Key)
	}
	if g.Orders[0].Groups[0].Products[0].Quantity.Qty.IntPart() != 9 {
		t.Error("sentinel rows must keep their quantities")
	}
}

func TestGroup_FilterPipeline(t *testing.T) {
	rows := sampleRows()

	byCategory := core.Group(rows, core.Filters{Category: "jars"})
	if len(byCategory) != 1 || byCategory[0].Company != "Mehta Packaging" {
		t.Fatalf("category filter should leave only Mehta Packaging")
	}

	bySize := core.Group(rows, core.Filters{Size: "1L"})
	if len(bySize) != 1 || len(bySize[0].Orders) != 1 || bySize[0].Orders[0].OrderNumber != "ORD-1002" {
		t.Fatalf("size filter should leave only ORD-1002")
	}

	// Search and category compose; a search that matches nothing in the
	// chosen category yields an empty result, not sentinel noise.
	none := core.Group(rows, core.Filters{Search: "mehta", Category: "containers"})
	if len(none) != 0 {
		t.Errorf("expected no groups, got %d", len(none))
	}
}

func TestRowsFromBills_KeyedByBillID(t *testing.T) {
	e, ctx := newTestEnv(t)
	order := seedOrder(t, ctx, e)
	lid := order.Lines[0].ID
	verifyAll(t, ctx, e, order.ID, lid, core.SingleInt(20000))

	bill, err := e.bills.CreateBill(ctx, core.CreateBillInput{
		OrderID: order.ID,
		Lines:   []core.BillLineInput{{ProductID: lid, Quantity: core.SingleInt(12000)}},
	})
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	bills, err := e.bills.ListBills(ctx, order.ID)
	if err != nil {
		t.Fatalf("ListBills failed: %v", err)
	}
	groups := core.Group(core.RowsFromBills(order, bills), core.Filters{})
	if len(groups) != 1 {
		t.Fatalf("expected 1 company group, got %d", len(groups))
	}
	sub := groups[0].Orders[0].Groups[0]
	if sub.Key != bill.ID {
		t.Errorf("bill view sub-groups must key on bill ID, got %q", sub.Key)
	}
	if sub.Products[0].Quantity.Qty.IntPart() != 12000 {
		t.Errorf("expected 12000, got %s", sub.Products[0].Quantity)
	}
}
