package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType tags what a product line physically tracks. LID & TUB lines
// carry two sub-quantities through every stage; PRINT lines describe a
// printed-container job.
type ProductType string

const (
	TypeLid    ProductType = "LID"
	TypeTub    ProductType = "TUB"
	TypeLidTub ProductType = "LID & TUB"
	TypePrint  ProductType = "PRINT"
)

// AllProducts is the productID sentinel meaning "every line on the order".
// Used for order-wide completion toggles and status propagation.
const AllProducts = "ALL"

// Derived status tokens written onto product lines by the status propagator.
// These are labels, not ledger truth; OrderService.LedgerStatus recomputes
// the real position from stage histories.
const (
	StatusOrderPlaced       = "Order Placed"
	StatusPurchasePending   = "Purchase Pending"
	StatusProductionPending = "Production Pending"
	StatusVerifyPending     = "Verification Pending"
	StatusBillingPending    = "Billing Pending"
	StatusDispatchPending   = "Dispatch Pending"
	StatusDispatched        = "Dispatched"
)

// CompanyInfo is the customer/contact block on an order.
type CompanyInfo struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin,omitempty"`
}

// Order is the aggregate created at intake. Only gate flags and derived
// statuses on its product lines are mutated by downstream stages.
type Order struct {
	ID          string        `json:"id"`
	OrderNumber string        `json:"order_number"`
	Company     CompanyInfo   `json:"company"`
	OrderedAt   time.Time     `json:"ordered_at"`
	Lines       []ProductLine `json:"lines"`
}

// ProductLine is one ordered item. The Quantity union carries either a single
// quantity or a lid/tub pair depending on Type.
type ProductLine struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	Size           string      `json:"size"`
	Type           ProductType `json:"type"`
	Ordered        Quantity    `json:"ordered"`
	SentToPurchase bool        `json:"sent_to_purchase"`
	SentToPrinting bool        `json:"sent_to_printing"`
	Status         string      `json:"status,omitempty"`
}

// Line returns the product line with the given ID, or nil.
func (o *Order) Line(productID string) *ProductLine {
	for i := range o.Lines {
		if o.Lines[i].ID == productID {
			return &o.Lines[i]
		}
	}
	return nil
}

// Jobwork entry directions.
const (
	JobworkSent     = "sent"
	JobworkReceived = "received"
)

// LedgerEntry is one immutable delta record of progress at a stage for one
// product line. A product's current stage total is the sum of Delta over all
// its entries — never a stored counter.
type LedgerEntry struct {
	BatchID   string    `json:"batch_id,omitempty"`
	ProductID string    `json:"product_id,omitempty"`
	At        time.Time `json:"at"`
	Delta     Quantity  `json:"delta"`
	Samples   Quantity  `json:"samples,omitempty"`
	Complete  bool      `json:"complete,omitempty"`
	Remarks   string    `json:"remarks,omitempty"`

	// TotalReceived is recorded on stock-verification entries only: the
	// upstream total observed at verification time, kept for auditability.
	TotalReceived Quantity `json:"total_received,omitempty"`

	// Direction is set on job-work entries only: "sent" or "received".
	Direction string `json:"direction,omitempty"`
}

// VerificationBatch groups the ledger entries created by one multi-product
// submission, reconstructed from history for display as a session.
type VerificationBatch struct {
	BatchID string        `json:"batch_id"`
	At      time.Time     `json:"at"`
	Remarks string        `json:"remarks,omitempty"`
	Entries []LedgerEntry `json:"entries"`
}

// PaymentSource distinguishes where a payment record was entered. The same
// logical payment is visible from both the order view and the bill view; the
// source tag plus ID-based dedup keeps it from counting twice.
type PaymentSource string

const (
	PaymentFromOrder PaymentSource = "order"
	PaymentFromBill  PaymentSource = "bill"
)

// PaymentRecord is one payment against a bill. Ref is a caller-supplied
// reference used to reject duplicate submissions of the same logical payment.
type PaymentRecord struct {
	ID       string          `json:"id"`
	At       time.Time       `json:"at"`
	Method   string          `json:"method"`
	Amount   decimal.Decimal `json:"amount"`
	Remarks  string          `json:"remarks,omitempty"`
	ProofRef string          `json:"proof_ref,omitempty"`
	Source   PaymentSource   `json:"source"`
	Ref      string          `json:"ref,omitempty"`
}

// Bill statuses.
const (
	BillPending   = "pending"
	BillCompleted = "completed"
)

// BillLine is one product line carried into a bill from a verification batch.
// UnitPrice is optional and defaults to zero where absent.
type BillLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Size      string          `json:"size"`
	Quantity  Quantity        `json:"quantity"`
	Samples   Quantity        `json:"samples,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price,omitempty"`
}

// Bill is a sales-payment-stage grouping of verified quantities awaiting
// conversion into a billing record.
type Bill struct {
	ID             string          `json:"id"`
	OrderID        string          `json:"order_id"`
	BatchID        string          `json:"batch_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Lines          []BillLine      `json:"lines"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	Payments       []PaymentRecord `json:"payments,omitempty"`
	Status         string          `json:"status"`
}

// BillAmount returns the amount payments reconcile against: the estimated
// value at creation time.
func (b *Bill) BillAmount() decimal.Decimal { return b.EstimatedValue }

// Billing record statuses.
const (
	BillingPendingPayment = "pending_payment"
	BillingPartial        = "partial"
	BillingPaid           = "paid"
	BillingDispatched     = "dispatched"
)

// BillingRecord is created from a completed Bill and carries the customer and
// credit metadata needed to raise the formal invoice.
type BillingRecord struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	BillID        string          `json:"bill_id"`
	CreatedAt     time.Time       `json:"created_at"`
	CustomerName  string          `json:"customer_name"`
	DeliveryAddr  string          `json:"delivery_addr,omitempty"`
	CreditDays    int             `json:"credit_days,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Lines         []BillLine      `json:"lines"`
	Status        string          `json:"status"`
}

// Dispatch statuses.
const (
	DispatchReady      = "ready"
	DispatchDispatched = "dispatched"
	DispatchInTransit  = "in_transit"
	DispatchDelivered  = "delivered"
)

// DispatchRecord carries the logistics fields for one shipment raised from a
// billing record.
type DispatchRecord struct {
	ID              string     `json:"id"`
	OrderID         string     `json:"order_id"`
	BillingRecordID string     `json:"billing_record_id"`
	CreatedAt       time.Time  `json:"created_at"`
	LRNumber        string     `json:"lr_number,omitempty"`
	Vehicle         string     `json:"vehicle,omitempty"`
	Driver          string     `json:"driver,omitempty"`
	Lines           []BillLine `json:"lines"`
	Status          string     `json:"status"`
}
