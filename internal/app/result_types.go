package app

import (
	"time"

	"github.com/shopspring/decimal"

	"packflow/internal/core"
)

// OrderResult is returned by order operations.
type OrderResult struct {
	Order *core.Order
}

// GroupedResult is the Company → Order → Bill|Category → Product hierarchy
// returned by the listing views.
type GroupedResult struct {
	Groups []core.CompanyGroup
}

// LineStatusResult pairs a line's stored status label with the position
// recomputed from stage histories.
type LineStatusResult struct {
	Stored  string
	Derived string
	Drifted bool
}

// PurchaseStateResult is returned by purchase-channel operations.
type PurchaseStateResult struct {
	History   []core.LedgerEntry
	Total     core.Quantity
	Remaining core.Quantity
	Complete  bool
}

// VerifyResult is returned by verification and job-work submissions.
type VerifyResult struct {
	BatchID string
}

// ProductCapacity is one product's remaining headroom in a channel.
type ProductCapacity struct {
	ProductID string
	Name      string
	Remaining core.Quantity
}

// VerificationStateResult is the full verification picture for an order.
type VerificationStateResult struct {
	Inventory         []core.VerificationBatch
	Stock             []core.VerificationBatch
	InventoryCapacity []ProductCapacity
	StockCapacity     []ProductCapacity
}

// JobworkStateResult is the full job-work picture for an order.
type JobworkStateResult struct {
	Sent        []core.VerificationBatch
	Returned    []core.VerificationBatch
	Outstanding []ProductCapacity
}

// BillResult is returned by bill operations.
type BillResult struct {
	Bill       *core.Bill
	BalanceDue decimal.Decimal
}

// OrderPaymentsResult aggregates payments across an order's bills.
type OrderPaymentsResult struct {
	Payments []core.PaymentRecord
	Total    decimal.Decimal
}

// BillingResult is returned by billing-record operations.
type BillingResult struct {
	Record *core.BillingRecord
}

// DispatchResult is returned by dispatch operations.
type DispatchResult struct {
	Record *core.DispatchRecord
}

// DispatchRow is one dispatch record flattened for listing, with billing
// metadata resolved. Records whose billing reference is missing keep
// placeholder fields instead of being dropped.
type DispatchRow struct {
	ID            string
	OrderNumber   string
	CustomerName  string
	InvoiceNumber string
	LRNumber      string
	Vehicle       string
	Status        string
	CreatedAt     time.Time
	Lines         []core.BillLine
}

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}
