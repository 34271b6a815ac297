package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"packflow/internal/app"
	"packflow/internal/core"
)

// listBills handles GET /api/orders/{ref}/bills.
func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListBills(r.Context(), orderRef(r), filtersFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Groups)
}

// createBill handles POST /api/orders/{ref}/bills.
func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BatchID        string          `json:"batch_id"`
		EstimatedValue decimal.Decimal `json:"estimated_value"`
		Lines          []struct {
			ProductID string          `json:"product_id"`
			Quantity  decimal.Decimal `json:"quantity"`
			Lid       decimal.Decimal `json:"lid"`
			Tub       decimal.Decimal `json:"tub"`
			SampleQty decimal.Decimal `json:"sample_quantity"`
			SampleLid decimal.Decimal `json:"sample_lid"`
			SampleTub decimal.Decimal `json:"sample_tub"`
			UnitPrice decimal.Decimal `json:"unit_price"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	in := app.CreateBillRequest{
		OrderRef:       orderRef(r),
		BatchID:        req.BatchID,
		EstimatedValue: req.EstimatedValue,
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, app.BillLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Lid:       l.Lid,
			Tub:       l.Tub,
			SampleQty: l.SampleQty,
			SampleLid: l.SampleLid,
			SampleTub: l.SampleTub,
			UnitPrice: l.UnitPrice,
		})
	}

	result, err := h.svc.CreateBill(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// getBill handles GET /api/orders/{ref}/bills/{billID}.
func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetBill(r.Context(), orderRef(r), chi.URLParam(r, "billID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// completeBill handles POST /api/orders/{ref}/bills/{billID}/complete.
func (h *Handler) completeBill(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CompleteBill(r.Context(), orderRef(r), chi.URLParam(r, "billID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// addPayment handles POST /api/orders/{ref}/bills/{billID}/payments.
func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method   string          `json:"method"`
		Amount   decimal.Decimal `json:"amount"`
		Remarks  string          `json:"remarks"`
		ProofRef string          `json:"proof_ref"`
		Source   string          `json:"source"`
		Ref      string          `json:"ref"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.AddPayment(r.Context(), orderRef(r), chi.URLParam(r, "billID"), app.PaymentRequest{
		Method:   req.Method,
		Amount:   req.Amount,
		Remarks:  req.Remarks,
		ProofRef: req.ProofRef,
		Source:   core.PaymentSource(req.Source),
		Ref:      req.Ref,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// removePayment handles DELETE /api/orders/{ref}/bills/{billID}/payments/{paymentID}.
func (h *Handler) removePayment(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemovePayment(r.Context(), orderRef(r), chi.URLParam(r, "billID"), chi.URLParam(r, "paymentID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// orderPayments handles GET /api/orders/{ref}/payments.
func (h *Handler) orderPayments(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.OrderPayments(r.Context(), orderRef(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// listBillingRecords handles GET /api/orders/{ref}/billing.
func (h *Handler) listBillingRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListBillingRecords(r.Context(), orderRef(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, records)
}

// createBillingRecord handles POST /api/orders/{ref}/billing.
func (h *Handler) createBillingRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BillID        string `json:"bill_id"`
		CustomerName  string `json:"customer_name"`
		DeliveryAddr  string `json:"delivery_addr"`
		CreditDays    int    `json:"credit_days"`
		InvoiceNumber string `json:"invoice_number"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateBillingRecord(r.Context(), app.CreateBillingRequest{
		OrderRef:      orderRef(r),
		BillID:        req.BillID,
		CustomerName:  req.CustomerName,
		DeliveryAddr:  req.DeliveryAddr,
		CreditDays:    req.CreditDays,
		InvoiceNumber: req.InvoiceNumber,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Record)
}

// updateBillingStatus handles POST /api/orders/{ref}/billing/{recordID}/status.
func (h *Handler) updateBillingStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateBillingStatus(r.Context(), orderRef(r), chi.URLParam(r, "recordID"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Record)
}
