package app

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/shopspring/decimal"

	"packflow/internal/core"
)

// Credentials is the single operator login checked by AuthenticateUser.
type Credentials struct {
	Username string
	Password string
}

// Services bundles the core services the facade delegates to.
type Services struct {
	Orders       core.OrderService
	Purchase     core.PurchaseService
	Verification core.VerificationService
	Jobwork      core.JobworkService
	Bills        core.BillService
	Billing      core.BillingService
	Dispatch     core.DispatchService
	Bus          *core.Bus
}

type appService struct {
	svc   Services
	creds Credentials
}

// NewApplicationService wires the core services behind the adapter-facing
// facade.
func NewApplicationService(svc Services, creds Credentials) ApplicationService {
	return &appService{svc: svc, creds: creds}
}

func (a *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	in := core.CreateOrderInput{
		OrderNumber: req.OrderNumber,
		Company:     req.Company,
	}
	for _, l := range req.Lines {
		ordered := core.Single(l.Quantity)
		if l.Type == core.TypeLidTub {
			ordered = core.LidTub(l.Lid, l.Tub)
		}
		in.Lines = append(in.Lines, core.ProductLineInput{
			Name:     l.Name,
			Category: l.Category,
			Size:     l.Size,
			Type:     l.Type,
			Ordered:  ordered,
		})
	}
	order, err := a.svc.Orders.CreateOrder(ctx, in)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (a *appService) GetOrder(ctx context.Context, ref string) (*OrderResult, error) {
	order, err := a.svc.Orders.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order}, nil
}

func (a *appService) ListOrders(ctx context.Context, filters core.Filters) (*GroupedResult, error) {
	orders, err := a.svc.Orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return &GroupedResult{Groups: core.Group(core.RowsFromOrders(orders), filters)}, nil
}

func (a *appService) SetLineGate(ctx context.Context, ref, productID, gate string, value bool) error {
	return a.svc.Orders.SetLineGate(ctx, ref, productID, gate, value)
}

func (a *appService) LineStatus(ctx context.Context, ref, productID string) (*LineStatusResult, error) {
	order, err := a.svc.Orders.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	line := order.Line(productID)
	if line == nil {
		return nil, fmt.Errorf("order %s product %s: %w", ref, productID, core.ErrNotFound)
	}
	derived, err := a.svc.Orders.LedgerStatus(ctx, order.ID, productID)
	if err != nil {
		return nil, err
	}
	return &LineStatusResult{
		Stored:  line.Status,
		Derived: derived,
		Drifted: line.Status != derived,
	}, nil
}

func (a *appService) ReceiveLabels(ctx context.Context, req ReceiveLabelsRequest) (*PurchaseStateResult, error) {
	order, line, err := a.resolveLine(ctx, req.OrderRef, req.ProductID)
	if err != nil {
		return nil, err
	}
	err = a.svc.Purchase.ReceiveLabels(ctx, core.ReceiveLabelsInput{
		OrderID:   order.ID,
		ProductID: req.ProductID,
		Delta:     quantityFor(line, req.Quantity, req.Lid, req.Tub),
		Complete:  req.Complete,
		Remarks:   req.Remarks,
	})
	if err != nil {
		return nil, err
	}
	return a.PurchaseState(ctx, order.ID, req.ProductID)
}

func (a *appService) PurchaseState(ctx context.Context, ref, productID string) (*PurchaseStateResult, error) {
	order, err := a.svc.Orders.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	history, err := a.svc.Purchase.History(ctx, order.ID, productID)
	if err != nil {
		return nil, err
	}
	total, err := a.svc.Purchase.Total(ctx, order.ID, productID)
	if err != nil {
		return nil, err
	}
	remaining, err := a.svc.Purchase.Remaining(ctx, order.ID, productID)
	if err != nil {
		return nil, err
	}
	complete, err := a.svc.Purchase.IsComplete(ctx, order.ID, productID)
	if err != nil {
		return nil, err
	}
	return &PurchaseStateResult{History: history, Total: total, Remaining: remaining, Complete: complete}, nil
}

func (a *appService) MarkPurchaseComplete(ctx context.Context, ref, productID string) error {
	if productID == core.AllProducts {
		return a.svc.Purchase.MarkOrderComplete(ctx, ref)
	}
	return a.svc.Purchase.MarkProductComplete(ctx, ref, productID, true)
}

func (a *appService) VerifyInventory(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	return a.verify(ctx, req, a.svc.Verification.VerifyInventory)
}

func (a *appService) VerifyStock(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	return a.verify(ctx, req, a.svc.Verification.VerifyStock)
}

func (a *appService) SendJobwork(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	return a.verify(ctx, req, a.svc.Jobwork.SendGoods)
}

func (a *appService) ReceiveJobwork(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	return a.verify(ctx, req, a.svc.Jobwork.ReceiveReturned)
}

type submitFunc func(ctx context.Context, orderID string, items []core.VerifyItem, remarks string) (string, error)

func (a *appService) verify(ctx context.Context, req VerifyRequest, submit submitFunc) (*VerifyResult, error) {
	order, err := a.svc.Orders.GetOrder(ctx, req.OrderRef)
	if err != nil {
		return nil, err
	}
	items := make([]core.VerifyItem, 0, len(req.Items))
	for _, it := range req.Items {
		line := order.Line(it.ProductID)
		if line == nil {
			return nil, fmt.Errorf("order %s product %s: %w", req.OrderRef, it.ProductID, core.ErrNotFound)
		}
		item := core.VerifyItem{
			ProductID: it.ProductID,
			Quantity:  quantityFor(line, it.Quantity, it.Lid, it.Tub),
			Complete:  it.Complete,
		}
		samples := quantityFor(line, it.SampleQty, it.SampleLid, it.SampleTub)
		if !samples.IsZero() {
			item.Samples = samples
		}
		items = append(items, item)
	}
	batchID, err := submit(ctx, order.ID, items, req.Remarks)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{BatchID: batchID}, nil
}

func (a *appService) VerificationState(ctx context.Context, ref string) (*VerificationStateResult, error) {
	order, err := a.svc.Orders.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	inv, err := a.svc.Verification.InventoryBatches(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	stk, err := a.svc.Verification.StockBatches(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	out := &VerificationStateResult{Inventory: inv, Stock: stk}
	for _, line := range order.Lines {
		invRem, err := a.svc.Verification.Remaining(ctx, core.StageInventory, order.ID, line.ID)
		if err != nil {
			return nil, err
		}
		stkRem, err := a.svc.Verification.Remaining(ctx, core.StageStock, order.ID, line.ID)
		if err != nil {
			return nil, err
		}
		out.InventoryCapacity = append(out.InventoryCapacity, ProductCapacity{ProductID: line.ID, Name: line.Name, Remaining: invRem})
		out.StockCapacity = append(out.StockCapacity, ProductCapacity{ProductID: line.ID, Name: line.Name, Remaining: stkRem})
	}
	return out, nil
}

func (a *appService) JobworkState(ctx context.Context, ref string) (*JobworkStateResult, error) {
	order, err := a.svc.Orders.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	sent, err := a.svc.Jobwork.SentBatches(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	returned, err := a.svc.Jobwork.ReturnedBatches(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	out := &JobworkStateResult{Sent: sent, Returned: returned}
	for _, line := range order.Lines {
		outstanding, err := a.svc.Jobwork.Outstanding(ctx, order.ID, line.ID)
		if err != nil {
			return nil, err
		}
		out.Outstanding = append(out.Outstanding, ProductCapacity{ProductID: line.ID, Name: line.Name, Remaining: outstanding})
	}
	return out, nil
}

func (a *appService) RemoveJobworkReturn(ctx context.Context, ref, batchID string) error {
	return a.svc.Jobwork.RemoveReturnedBatch(ctx, ref, batchID)
}

func (a *appService) CreateBill(ctx context.Context, req CreateBillRequest) (*BillResult, error) {
	order, err := a.svc.Orders.GetOrder(ctx, req.OrderRef)
	if err != nil {
		return nil, err
	}
	in := core.CreateBillInput{
		OrderID:        order.ID,
		BatchID:        req.BatchID,
		EstimatedValue: req.EstimatedValue,
	}
	for _, l := range req.Lines {
		line := order.Line(l.ProductID)
		if line == nil {
			return nil, fmt.Errorf("order %s product %s: %w", req.OrderRef, l.ProductID, core.ErrNotFound)
		}
		bl := core.BillLineInput{
			ProductID: l.ProductID,
			Quantity:  quantityFor(line, l.Quantity, l.Lid, l.Tub),
			UnitPrice: l.UnitPrice,
		}
		samples := quantityFor(line, l.SampleQty, l.SampleLid, l.SampleTub)
		if !samples.IsZero() {
			bl.Samples = samples
		}
		in.Lines = append(in.Lines, bl)
	}
	bill, err := a.svc.Bills.CreateBill(ctx, in)
	if err != nil {
		return nil, err
	}
	return a.billResult(ctx, order.ID, bill.ID)
}

func (a *appService) ListBills(ctx context.Context, ref string, filters core.Filters) (*GroupedResult, error) {
	order, err := a.svc.Orders.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	bills, err := a.svc.Bills.ListBills(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &GroupedResult{Groups: core.Group(core.RowsFromBills(order, bills), filters)}, nil
}

func (a *appService) GetBill(ctx context.Context, ref, billID string) (*BillResult, error) {
	return a.billResult(ctx, ref, billID)
}

func (a *appService) AddPayment(ctx context.Context, ref, billID string, req PaymentRequest) (*BillResult, error) {
	_, err := a.svc.Bills.AddPayment(ctx, ref, billID, core.PaymentInput{
		Method:   req.Method,
		Amount:   req.Amount,
		Remarks:  req.Remarks,
		ProofRef: req.ProofRef,
		Source:   req.Source,
		Ref:      req.Ref,
	})
	if err != nil {
		return nil, err
	}
	return a.billResult(ctx, ref, billID)
}

func (a *appService) RemovePayment(ctx context.Context, ref, billID, paymentID string) error {
	return a.svc.Bills.RemovePayment(ctx, ref, billID, paymentID)
}

func (a *appService) CompleteBill(ctx context.Context, ref, billID string) (*BillResult, error) {
	if err := a.svc.Bills.CompleteBill(ctx, ref, billID); err != nil {
		return nil, err
	}
	return a.billResult(ctx, ref, billID)
}

func (a *appService) BalanceDue(ctx context.Context, ref, billID string) (decimal.Decimal, error) {
	return a.svc.Bills.BalanceDue(ctx, ref, billID)
}

func (a *appService) OrderPayments(ctx context.Context, ref string) (*OrderPaymentsResult, error) {
	payments, total, err := a.svc.Bills.OrderPayments(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &OrderPaymentsResult{Payments: payments, Total: total}, nil
}

func (a *appService) CreateBillingRecord(ctx context.Context, req CreateBillingRequest) (*BillingResult, error) {
	record, err := a.svc.Billing.CreateBillingRecord(ctx, core.CreateBillingInput{
		OrderID:       req.OrderRef,
		BillID:        req.BillID,
		CustomerName:  req.CustomerName,
		DeliveryAddr:  req.DeliveryAddr,
		CreditDays:    req.CreditDays,
		InvoiceNumber: req.InvoiceNumber,
	})
	if err != nil {
		return nil, err
	}
	return &BillingResult{Record: record}, nil
}

func (a *appService) ListBillingRecords(ctx context.Context, ref string) ([]core.BillingRecord, error) {
	return a.svc.Billing.ListByOrder(ctx, ref)
}

func (a *appService) UpdateBillingStatus(ctx context.Context, ref, recordID, status string) (*BillingResult, error) {
	if err := a.svc.Billing.UpdateStatus(ctx, ref, recordID, status); err != nil {
		return nil, err
	}
	record, err := a.svc.Billing.Get(ctx, ref, recordID)
	if err != nil {
		return nil, err
	}
	return &BillingResult{Record: record}, nil
}

func (a *appService) CreateDispatch(ctx context.Context, req CreateDispatchRequest) (*DispatchResult, error) {
	record, err := a.svc.Dispatch.CreateDispatch(ctx, core.CreateDispatchInput{
		OrderID:         req.OrderRef,
		BillingRecordID: req.BillingRecordID,
		LRNumber:        req.LRNumber,
		Vehicle:         req.Vehicle,
		Driver:          req.Driver,
	})
	if err != nil {
		return nil, err
	}
	return &DispatchResult{Record: record}, nil
}

func (a *appService) ListDispatches(ctx context.Context) ([]DispatchRow, error) {
	records, err := a.svc.Dispatch.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]DispatchRow, 0, len(records))
	for _, d := range records {
		row := DispatchRow{
			ID:            d.ID,
			OrderNumber:   "N/A",
			CustomerName:  "N/A",
			InvoiceNumber: "N/A",
			LRNumber:      d.LRNumber,
			Vehicle:       d.Vehicle,
			Status:        d.Status,
			CreatedAt:     d.CreatedAt,
			Lines:         d.Lines,
		}
		// A deleted order or billing record degrades to placeholders
		// instead of hiding the dispatch.
		if order, err := a.svc.Orders.GetOrder(ctx, d.OrderID); err == nil {
			row.OrderNumber = order.OrderNumber
			row.CustomerName = order.Company.Name
			if billing, err := a.svc.Billing.Get(ctx, d.OrderID, d.BillingRecordID); err == nil {
				row.CustomerName = billing.CustomerName
				if billing.InvoiceNumber != "" {
					row.InvoiceNumber = billing.InvoiceNumber
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (a *appService) UpdateDispatchStatus(ctx context.Context, dispatchID, status string) (*DispatchResult, error) {
	if err := a.svc.Dispatch.UpdateStatus(ctx, dispatchID, status); err != nil {
		return nil, err
	}
	record, err := a.svc.Dispatch.Get(ctx, dispatchID)
	if err != nil {
		return nil, err
	}
	return &DispatchResult{Record: record}, nil
}

func (a *appService) DispatchManifest(ctx context.Context, billingRecordID string) (core.Manifest, error) {
	return a.svc.Dispatch.Manifest(ctx, billingRecordID)
}

func (a *appService) OrderManifest(ctx context.Context, ref string) (core.Manifest, error) {
	return a.svc.Dispatch.OrderManifest(ctx, ref)
}

func (a *appService) WatchOrder(orderID string) (<-chan struct{}, func()) {
	return a.svc.Bus.Subscribe(orderID)
}

func (a *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.creds.Password)) == 1
	if !userOK || !passOK {
		return nil, fmt.Errorf("invalid credentials")
	}
	return &UserSession{Username: username, Role: "admin"}, nil
}

func (a *appService) billResult(ctx context.Context, ref, billID string) (*BillResult, error) {
	bill, err := a.svc.Bills.GetBill(ctx, ref, billID)
	if err != nil {
		return nil, err
	}
	due, err := a.svc.Bills.BalanceDue(ctx, ref, billID)
	if err != nil {
		return nil, err
	}
	return &BillResult{Bill: bill, BalanceDue: due}, nil
}

func (a *appService) resolveLine(ctx context.Context, ref, productID string) (*core.Order, *core.ProductLine, error) {
	order, err := a.svc.Orders.GetOrder(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	line := order.Line(productID)
	if line == nil {
		return nil, nil, fmt.Errorf("order %s product %s: %w", ref, productID, core.ErrNotFound)
	}
	return order, line, nil
}

// quantityFor shapes flat request numbers into the line's quantity kind.
func quantityFor(line *core.ProductLine, qty, lid, tub decimal.Decimal) core.Quantity {
	if line.Ordered.Kind == core.KindLidTub {
		return core.LidTub(lid, tub)
	}
	return core.Single(qty)
}
