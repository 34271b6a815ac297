package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"packflow/internal/app"
)

// purchaseState handles GET /api/orders/{ref}/purchase/{productID}.
func (h *Handler) purchaseState(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.PurchaseState(r.Context(), orderRef(r), chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// receiveLabels handles POST /api/orders/{ref}/purchase/{productID}/receipts.
func (h *Handler) receiveLabels(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity decimal.Decimal `json:"quantity"`
		Lid      decimal.Decimal `json:"lid"`
		Tub      decimal.Decimal `json:"tub"`
		Complete bool            `json:"complete"`
		Remarks  string          `json:"remarks"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.ReceiveLabels(r.Context(), app.ReceiveLabelsRequest{
		OrderRef:  orderRef(r),
		ProductID: chi.URLParam(r, "productID"),
		Quantity:  req.Quantity,
		Lid:       req.Lid,
		Tub:       req.Tub,
		Complete:  req.Complete,
		Remarks:   req.Remarks,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// markPurchaseComplete handles POST /api/orders/{ref}/purchase/{productID}/complete.
// productID may be ALL for the order-wide override.
func (h *Handler) markPurchaseComplete(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	if err := h.svc.MarkPurchaseComplete(r.Context(), orderRef(r), productID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
