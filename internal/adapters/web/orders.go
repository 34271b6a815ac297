package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"packflow/internal/app"
	"packflow/internal/core"
)

// filtersFromQuery reads the search/category/size query parameters shared by
// the listing endpoints.
func filtersFromQuery(r *http.Request) core.Filters {
	q := r.URL.Query()
	return core.Filters{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Size:     q.Get("size"),
	}
}

// listOrders handles GET /api/orders.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListOrders(r.Context(), filtersFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Groups)
}

// createOrder handles POST /api/orders.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderNumber string `json:"order_number"`
		Company     struct {
			Name    string `json:"name"`
			Contact string `json:"contact"`
			Phone   string `json:"phone"`
			Address string `json:"address"`
		} `json:"company"`
		Lines []struct {
			Name     string          `json:"name"`
			Category string          `json:"category"`
			Size     string          `json:"size"`
			Type     string          `json:"type"`
			Quantity decimal.Decimal `json:"quantity"`
			Lid      decimal.Decimal `json:"lid"`
			Tub      decimal.Decimal `json:"tub"`
		} `json:"lines"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	in := app.CreateOrderRequest{
		OrderNumber: req.OrderNumber,
		Company: core.CompanyInfo{
			Name:    req.Company.Name,
			Contact: req.Company.Contact,
			Phone:   req.Company.Phone,
			Address: req.Company.Address,
		},
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, app.OrderLineInput{
			Name:     l.Name,
			Category: l.Category,
			Size:     l.Size,
			Type:     core.ProductType(l.Type),
			Quantity: l.Quantity,
			Lid:      l.Lid,
			Tub:      l.Tub,
		})
	}

	result, err := h.svc.CreateOrder(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Order)
}

// getOrder handles GET /api/orders/{ref}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), orderRef(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Order)
}

// setLineGate handles POST /api/orders/{ref}/products/{productID}/gate.
func (h *Handler) setLineGate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Gate  string `json:"gate"`
		Value bool   `json:"value"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	err := h.svc.SetLineGate(r.Context(), orderRef(r), chi.URLParam(r, "productID"), req.Gate, req.Value)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// lineStatus handles GET /api/orders/{ref}/products/{productID}/status.
func (h *Handler) lineStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.LineStatus(r.Context(), orderRef(r), chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	type response struct {
		Stored  string `json:"stored"`
		Derived string `json:"derived"`
		Drifted bool   `json:"drifted"`
	}
	writeJSON(w, response{Stored: result.Stored, Derived: result.Derived, Drifted: result.Drifted})
}
