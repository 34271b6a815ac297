package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"packflow/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health and auth (public) ─────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Protected API routes (401 JSON if unauthenticated) ──────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// Orders
		r.Get("/api/orders", h.listOrders)
		r.Post("/api/orders", h.createOrder)
		r.Get("/api/orders/{ref}", h.getOrder)
		r.Post("/api/orders/{ref}/products/{productID}/gate", h.setLineGate)
		r.Get("/api/orders/{ref}/products/{productID}/status", h.lineStatus)

		// Purchase / label receipts
		r.Get("/api/orders/{ref}/purchase/{productID}", h.purchaseState)
		r.Post("/api/orders/{ref}/purchase/{productID}/receipts", h.receiveLabels)
		r.Post("/api/orders/{ref}/purchase/{productID}/complete", h.markPurchaseComplete)

		// Inventory and stock verification
		r.Get("/api/orders/{ref}/verification", h.verificationState)
		r.Post("/api/orders/{ref}/verification/inventory", h.verifyInventory)
		r.Post("/api/orders/{ref}/verification/stock", h.verifyStock)

		// Job work
		r.Get("/api/orders/{ref}/jobwork", h.jobworkState)
		r.Post("/api/orders/{ref}/jobwork/send", h.sendJobwork)
		r.Post("/api/orders/{ref}/jobwork/receive", h.receiveJobwork)
		r.Delete("/api/orders/{ref}/jobwork/returns/{batchID}", h.removeJobworkReturn)

		// Sales-payment bills
		r.Get("/api/orders/{ref}/bills", h.listBills)
		r.Post("/api/orders/{ref}/bills", h.createBill)
		r.Get("/api/orders/{ref}/bills/{billID}", h.getBill)
		r.Post("/api/orders/{ref}/bills/{billID}/complete", h.completeBill)
		r.Post("/api/orders/{ref}/bills/{billID}/payments", h.addPayment)
		r.Delete("/api/orders/{ref}/bills/{billID}/payments/{paymentID}", h.removePayment)
		r.Get("/api/orders/{ref}/payments", h.orderPayments)

		// Billing records
		r.Get("/api/orders/{ref}/billing", h.listBillingRecords)
		r.Post("/api/orders/{ref}/billing", h.createBillingRecord)
		r.Post("/api/orders/{ref}/billing/{recordID}/status", h.updateBillingStatus)

		// Dispatch
		r.Get("/api/dispatches", h.listDispatches)
		r.Post("/api/dispatches", h.createDispatch)
		r.Post("/api/dispatches/{dispatchID}/status", h.updateDispatchStatus)
		r.Get("/api/dispatches/manifest/{billingRecordID}", h.dispatchManifest)
		r.Get("/api/orders/{ref}/manifest", h.orderManifest)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// orderRef extracts the {ref} URL parameter.
func orderRef(r *http.Request) string {
	return chi.URLParam(r, "ref")
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body
// exceeds the size limit set by RequestBodyLimit middleware; HTTP 400 for all
// other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
