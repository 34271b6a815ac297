package app

import (
	"packflow/internal/core"
	"packflow/internal/store"
)

// NewServices constructs the full core service graph over one record store.
// Every binary wires through here so the dependency order stays in one place.
func NewServices(s store.Store) Services {
	ledger := core.NewStageLedger(s)
	bus := core.NewBus()
	orders := core.NewOrderService(s, ledger)
	reconciler := core.NewReconciler(ledger, orders)
	propagator := core.NewStatusPropagator(orders, bus)
	verification := core.NewVerificationService(s, ledger, reconciler, orders, propagator)
	bills := core.NewBillService(s, verification, orders, bus)
	billing := core.NewBillingService(s, bills, orders, propagator)

	return Services{
		Orders:       orders,
		Purchase:     core.NewPurchaseService(ledger, reconciler, orders, propagator),
		Verification: verification,
		Jobwork:      core.NewJobworkService(s, ledger, reconciler, orders),
		Bills:        bills,
		Billing:      billing,
		Dispatch:     core.NewDispatchService(s, billing, orders, propagator),
		Bus:          bus,
	}
}
