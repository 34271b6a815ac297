package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"packflow/internal/app"
)

// verifyBody is the shared request shape for verification and job-work
// submissions.
type verifyBody struct {
	Remarks string `json:"remarks"`
	Items   []struct {
		ProductID string          `json:"product_id"`
		Quantity  decimal.Decimal `json:"quantity"`
		Lid       decimal.Decimal `json:"lid"`
		Tub       decimal.Decimal `json:"tub"`
		SampleQty decimal.Decimal `json:"sample_quantity"`
		SampleLid decimal.Decimal `json:"sample_lid"`
		SampleTub decimal.Decimal `json:"sample_tub"`
		Complete  bool            `json:"complete"`
	} `json:"items"`
}

func (b verifyBody) toRequest(ref string) app.VerifyRequest {
	req := app.VerifyRequest{OrderRef: ref, Remarks: b.Remarks}
	for _, it := range b.Items {
		req.Items = append(req.Items, app.VerifyItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Lid:       it.Lid,
			Tub:       it.Tub,
			SampleQty: it.SampleQty,
			SampleLid: it.SampleLid,
			SampleTub: it.SampleTub,
			Complete:  it.Complete,
		})
	}
	return req
}

type submitHandler func(r *http.Request, req app.VerifyRequest) (*app.VerifyResult, error)

func (h *Handler) submitBatch(w http.ResponseWriter, r *http.Request, submit submitHandler) {
	var body verifyBody
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := submit(r, body.toRequest(orderRef(r)))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// verificationState handles GET /api/orders/{ref}/verification.
func (h *Handler) verificationState(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.VerificationState(r.Context(), orderRef(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// verifyInventory handles POST /api/orders/{ref}/verification/inventory.
func (h *Handler) verifyInventory(w http.ResponseWriter, r *http.Request) {
	h.submitBatch(w, r, func(r *http.Request, req app.VerifyRequest) (*app.VerifyResult, error) {
		return h.svc.VerifyInventory(r.Context(), req)
	})
}

// verifyStock handles POST /api/orders/{ref}/verification/stock.
func (h *Handler) verifyStock(w http.ResponseWriter, r *http.Request) {
	h.submitBatch(w, r, func(r *http.Request, req app.VerifyRequest) (*app.VerifyResult, error) {
		return h.svc.VerifyStock(r.Context(), req)
	})
}

// jobworkState handles GET /api/orders/{ref}/jobwork.
func (h *Handler) jobworkState(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.JobworkState(r.Context(), orderRef(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// sendJobwork handles POST /api/orders/{ref}/jobwork/send.
func (h *Handler) sendJobwork(w http.ResponseWriter, r *http.Request) {
	h.submitBatch(w, r, func(r *http.Request, req app.VerifyRequest) (*app.VerifyResult, error) {
		return h.svc.SendJobwork(r.Context(), req)
	})
}

// receiveJobwork handles POST /api/orders/{ref}/jobwork/receive.
func (h *Handler) receiveJobwork(w http.ResponseWriter, r *http.Request) {
	h.submitBatch(w, r, func(r *http.Request, req app.VerifyRequest) (*app.VerifyResult, error) {
		return h.svc.ReceiveJobwork(r.Context(), req)
	})
}

// removeJobworkReturn handles DELETE /api/orders/{ref}/jobwork/returns/{batchID}.
func (h *Handler) removeJobworkReturn(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemoveJobworkReturn(r.Context(), orderRef(r), chi.URLParam(r, "batchID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
