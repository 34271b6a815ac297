package app

import (
	"github.com/shopspring/decimal"

	"packflow/internal/core"
)

// CreateOrderRequest is the input for recording a new customer order.
type CreateOrderRequest struct {
	OrderNumber string
	Company     core.CompanyInfo
	Lines       []OrderLineInput
}

// OrderLineInput is a single product line within a CreateOrderRequest.
type OrderLineInput struct {
	Name     string
	Category string
	Size     string
	Type     core.ProductType
	Quantity decimal.Decimal // single-quantity lines
	Lid      decimal.Decimal // LID & TUB lines
	Tub      decimal.Decimal
}

// ReceiveLabelsRequest is the input for one purchase receipt batch.
type ReceiveLabelsRequest struct {
	OrderRef  string
	ProductID string
	Quantity  decimal.Decimal
	Lid       decimal.Decimal
	Tub       decimal.Decimal
	Complete  bool
	Remarks   string
}

// VerifyRequest is a multi-product submission for the verification and
// job-work channels.
type VerifyRequest struct {
	OrderRef string
	Remarks  string
	Items    []VerifyItemInput
}

// VerifyItemInput is one product's quantities within a VerifyRequest.
type VerifyItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
	Lid       decimal.Decimal
	Tub       decimal.Decimal
	SampleQty decimal.Decimal
	SampleLid decimal.Decimal
	SampleTub decimal.Decimal
	Complete  bool
}

// CreateBillRequest is the input for a new sales-payment bill.
type CreateBillRequest struct {
	OrderRef       string
	BatchID        string
	EstimatedValue decimal.Decimal
	Lines          []BillLineInput
}

// BillLineInput is one product's quantities on a new bill.
type BillLineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	Lid       decimal.Decimal
	Tub       decimal.Decimal
	SampleQty decimal.Decimal
	SampleLid decimal.Decimal
	SampleTub decimal.Decimal
	UnitPrice decimal.Decimal
}

// PaymentRequest is the input for recording a payment against a bill.
type PaymentRequest struct {
	Method   string
	Amount   decimal.Decimal
	Remarks  string
	ProofRef string
	Source   core.PaymentSource
	Ref      string
}

// CreateBillingRequest is the input for raising a formal billing record.
type CreateBillingRequest struct {
	OrderRef      string
	BillID        string
	CustomerName  string
	DeliveryAddr  string
	CreditDays    int
	InvoiceNumber string
}

// CreateDispatchRequest is the input for a new dispatch record.
type CreateDispatchRequest struct {
	OrderRef        string
	BillingRecordID string
	LRNumber        string
	Vehicle         string
	Driver          string
}
