package core_test

import (
	"context"
	"testing"

	"packflow/internal/core"
	"packflow/internal/store"
)

// env wires the full service graph over a fresh in-memory store, the way
// cmd/server wires it over Postgres.
type env struct {
	store        *store.Memory
	ledger       *core.StageLedger
	bus          *core.Bus
	orders       core.OrderService
	reconciler   *core.Reconciler
	propagator   *core.StatusPropagator
	purchase     core.PurchaseService
	verification core.VerificationService
	jobwork      core.JobworkService
	bills        core.BillService
	billing      core.BillingService
	dispatch     core.DispatchService
}

func newTestEnv(t *testing.T) (*env, context.Context) {
	t.Helper()
	s := store.NewMemory()
	ledger := core.NewStageLedger(s)
	bus := core.NewBus()
	orders := core.NewOrderService(s, ledger)
	reconciler := core.NewReconciler(ledger, orders)
	propagator := core.NewStatusPropagator(orders, bus)
	verification := core.NewVerificationService(s, ledger, reconciler, orders, propagator)
	bills := core.NewBillService(s, verification, orders, bus)
	billing := core.NewBillingService(s, bills, orders, propagator)

	return &env{
		store:        s,
		ledger:       ledger,
		bus:          bus,
		orders:       orders,
		reconciler:   reconciler,
		propagator:   propagator,
		purchase:     core.NewPurchaseService(ledger, reconciler, orders, propagator),
		verification: verification,
		jobwork:      core.NewJobworkService(s, ledger, reconciler, orders),
		bills:        bills,
		billing:      billing,
		dispatch:     core.NewDispatchService(s, billing, orders, propagator),
	}, context.Background()
}

// seedOrder creates one order with a 20,000-unit LID line and a 10,000/10,000
// LID & TUB line — the shapes most scenarios need.
func seedOrder(t *testing.T, ctx context.Context, e *env) *core.Order {
	t.Helper()
	order, err := e.orders.CreateOrder(ctx, core.CreateOrderInput{
		OrderNumber: "ORD-1001",
		Company: core.CompanyInfo{
			Name:    "Sagar Plastics",
			Contact: "Ramesh",
			Phone:   "+91-9800000001",
			Address: "Rajkot",
		},
		Lines: []core.ProductLineInput{
			{Name: "500ml Container Lid", Category: "Containers", Size: "500ml", Type: core.TypeLid, Ordered: core.SingleInt(20000)},
			{Name: "1L Round Set", Category: "Containers", Size: "1L", Type: core.TypeLidTub, Ordered: core.LidTubInt(10000, 10000)},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	return order
}
