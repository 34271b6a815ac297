package app

import (
	"context"

	"github.com/shopspring/decimal"

	"packflow/internal/core"
)

// ApplicationService is the single interface all adapters (Web, CLI) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// CreateOrder records a new customer order with its product lines.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)

	// GetOrder returns a single order by internal ID or order number.
	GetOrder(ctx context.Context, ref string) (*OrderResult, error)

	// ListOrders returns all orders grouped Company → Order → Category →
	// Product, after applying the given filters.
	ListOrders(ctx context.Context, filters core.Filters) (*GroupedResult, error)

	// SetLineGate flips a per-stage boolean gate on one product line.
	SetLineGate(ctx context.Context, ref, productID, gate string, value bool) error

	// LineStatus returns the stored status label alongside the position
	// recomputed from stage histories, so drift is visible.
	LineStatus(ctx context.Context, ref, productID string) (*LineStatusResult, error)

	// ReceiveLabels records a purchase receipt batch for one product line.
	ReceiveLabels(ctx context.Context, req ReceiveLabelsRequest) (*PurchaseStateResult, error)

	// PurchaseState returns a product's receipt history, totals, and
	// remaining capacity.
	PurchaseState(ctx context.Context, ref, productID string) (*PurchaseStateResult, error)

	// MarkPurchaseComplete closes the purchase stage for one product, or for
	// the whole order when productID is core.AllProducts.
	MarkPurchaseComplete(ctx context.Context, ref, productID string) error

	// VerifyInventory and VerifyStock record verification batches. Every
	// item is validated against remaining capacity before anything is
	// stored.
	VerifyInventory(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
	VerifyStock(ctx context.Context, req VerifyRequest) (*VerifyResult, error)

	// VerificationState returns both channels' sessions and per-product
	// remaining capacity for an order.
	VerificationState(ctx context.Context, ref string) (*VerificationStateResult, error)

	// SendJobwork and ReceiveJobwork record goods moving out for job work
	// and back.
	SendJobwork(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
	ReceiveJobwork(ctx context.Context, req VerifyRequest) (*VerifyResult, error)

	// JobworkState returns both directions' sessions and per-product
	// outstanding quantities.
	JobworkState(ctx context.Context, ref string) (*JobworkStateResult, error)

	// RemoveJobworkReturn deletes one goods-returned session.
	RemoveJobworkReturn(ctx context.Context, ref, batchID string) error

	// CreateBill carries verified quantities into a new sales-payment bill.
	CreateBill(ctx context.Context, req CreateBillRequest) (*BillResult, error)

	// ListBills returns an order's bills grouped Company → Order → Bill →
	// Product.
	ListBills(ctx context.Context, ref string, filters core.Filters) (*GroupedResult, error)

	GetBill(ctx context.Context, ref, billID string) (*BillResult, error)

	// AddPayment records a payment against a bill; RemovePayment deletes one.
	AddPayment(ctx context.Context, ref, billID string, req PaymentRequest) (*BillResult, error)
	RemovePayment(ctx context.Context, ref, billID, paymentID string) error

	// CompleteBill transitions a bill from pending to completed.
	CompleteBill(ctx context.Context, ref, billID string) (*BillResult, error)

	// BalanceDue is the bill amount minus recorded payments.
	BalanceDue(ctx context.Context, ref, billID string) (decimal.Decimal, error)

	// OrderPayments aggregates payments across all of an order's bills.
	OrderPayments(ctx context.Context, ref string) (*OrderPaymentsResult, error)

	// CreateBillingRecord raises a formal billing record from a completed
	// bill.
	CreateBillingRecord(ctx context.Context, req CreateBillingRequest) (*BillingResult, error)

	ListBillingRecords(ctx context.Context, ref string) ([]core.BillingRecord, error)

	// UpdateBillingStatus applies a billing lifecycle transition.
	UpdateBillingStatus(ctx context.Context, ref, recordID, status string) (*BillingResult, error)

	// CreateDispatch raises a dispatch record from a paid billing record.
	CreateDispatch(ctx context.Context, req CreateDispatchRequest) (*DispatchResult, error)

	// ListDispatches returns dispatch rows for display. Records whose
	// billing reference no longer resolves are kept with placeholder
	// metadata rather than dropped.
	ListDispatches(ctx context.Context) ([]DispatchRow, error)

	// UpdateDispatchStatus applies a dispatch lifecycle transition.
	UpdateDispatchStatus(ctx context.Context, dispatchID, status string) (*DispatchResult, error)

	// DispatchManifest consolidates every dispatch lot for a billing record
	// into one deduplicated product list.
	DispatchManifest(ctx context.Context, billingRecordID string) (core.Manifest, error)

	// OrderManifest consolidates all of an order's dispatch lots.
	OrderManifest(ctx context.Context, ref string) (core.Manifest, error)

	// WatchOrder subscribes to refresh signals for an order. The cancel
	// func must be called when the watcher goes away.
	WatchOrder(orderID string) (<-chan struct{}, func())

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)
}
