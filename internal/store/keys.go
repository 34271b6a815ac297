package store

// Key builders for the logical channels each stage writes. Keeping them in
// one place makes the wire format auditable: a channel name here is the
// literal key prefix in the store.

const (
	nsOrders                 = "orders"
	nsLabelReceipts          = "label_receipts"
	nsInventoryVerifications = "inventory_verifications"
	nsStockVerifications     = "stock_verifications"
	nsJobwork                = "jobwork"
	nsSalesBills             = "sales_bills"
	nsBillingRecords         = "billing_records"
	nsDispatchRecords        = "dispatch_records"
)

// OrdersKey holds the array of all Order aggregates.
func OrdersKey() string { return nsOrders }

// LabelReceiptKey holds one product line's purchase-stage receipt history.
func LabelReceiptKey(orderID, productID string) string {
	return nsLabelReceipts + "/" + orderID + "_" + productID
}

// LabelReceiptPrefix lists every purchase-stage history for an order.
func LabelReceiptPrefix(orderID string) string {
	return nsLabelReceipts + "/" + orderID + "_"
}

// InventoryVerificationKey holds an order's inventory verification batches.
func InventoryVerificationKey(orderID string) string {
	return nsInventoryVerifications + "/" + orderID
}

// StockVerificationKey holds an order's stock verification entries.
func StockVerificationKey(orderID string) string {
	return nsStockVerifications + "/" + orderID
}

// JobworkKey holds an order's job-work send/receive history.
func JobworkKey(orderID string) string {
	return nsJobwork + "/" + orderID
}

// SalesBillsKey holds an order's sales-payment bills.
func SalesBillsKey(orderID string) string {
	return nsSalesBills + "/" + orderID
}

// BillingRecordsKey holds an order's billing records.
func BillingRecordsKey(orderID string) string {
	return nsBillingRecords + "/" + orderID
}

// DispatchRecordsKey holds the flat array of all dispatch records.
func DispatchRecordsKey() string { return nsDispatchRecords }
