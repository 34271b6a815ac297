package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"packflow/internal/app"
)

// listDispatches handles GET /api/dispatches.
func (h *Handler) listDispatches(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.ListDispatches(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rows)
}

// createDispatch handles POST /api/dispatches.
func (h *Handler) createDispatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderRef        string `json:"order_ref"`
		BillingRecordID string `json:"billing_record_id"`
		LRNumber        string `json:"lr_number"`
		Vehicle         string `json:"vehicle"`
		Driver          string `json:"driver"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.CreateDispatch(r.Context(), app.CreateDispatchRequest{
		OrderRef:        req.OrderRef,
		BillingRecordID: req.BillingRecordID,
		LRNumber:        req.LRNumber,
		Vehicle:         req.Vehicle,
		Driver:          req.Driver,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Record)
}

// updateDispatchStatus handles POST /api/dispatches/{dispatchID}/status.
func (h *Handler) updateDispatchStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateDispatchStatus(r.Context(), chi.URLParam(r, "dispatchID"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Record)
}

// dispatchManifest handles GET /api/dispatches/manifest/{billingRecordID}.
func (h *Handler) dispatchManifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.svc.DispatchManifest(r.Context(), chi.URLParam(r, "billingRecordID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, manifest)
}

// orderManifest handles GET /api/orders/{ref}/manifest.
func (h *Handler) orderManifest(w http.ResponseWriter, r *http.Request) {
	manifest, err := h.svc.OrderManifest(r.Context(), orderRef(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, manifest)
}
