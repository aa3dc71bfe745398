package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alharthy/oudshop-backend/internal/checkout"
	"github.com/alharthy/oudshop-backend/internal/orders"
	"github.com/alharthy/oudshop-backend/internal/products"
)

// CheckoutService builds gateway sessions.
type CheckoutService interface {
	CreateSession(ctx context.Context, in checkout.SessionInput) (*checkout.SessionResult, error)
}

// PaymentConfirmer reconciles paid sessions into durable orders.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, orderRef string) (*checkout.ConfirmResult, error)
}

type OrdersHandler struct {
	Repo       *orders.Store
	Products   *products.Store
	Checkout   CheckoutService
	Reconciler PaymentConfirmer
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/create-checkout-session", h.createCheckoutSession)
		r.Post("/confirm-payment", h.confirmPayment)
		r.Get("/order-with-products/{orderId}", h.orderWithProducts)
		r.Get("/order/{id}", h.getOrder)
		r.Get("/", h.listCompleted)
		r.Patch("/update-order-status/{id}", h.updateStatus)
		r.Delete("/delete-order/{id}", h.deleteOrder)
		r.Get("/{email}", h.byEmail)
	})
}

func (h *OrdersHandler) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var in checkout.SessionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	res, err := h.Checkout.CreateSession(ctx, in)
	if err != nil {
		if errors.Is(err, checkout.ErrNoProducts) {
			writeError(w, http.StatusBadRequest, "invalid or empty products array")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create checkout session")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *OrdersHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientReferenceID string `json:"client_reference_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ClientReferenceID == "" {
		writeError(w, http.StatusBadRequest, "client_reference_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 25*time.Second)
	defer cancel()

	res, err := h.Reconciler.Confirm(ctx, req.ClientReferenceID)
	switch {
	case errors.Is(err, checkout.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, checkout.ErrPaymentNotSuccessful):
		writeError(w, http.StatusBadRequest, "payment not successful or session not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to confirm payment")
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *OrdersHandler) orderWithProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Repo.FindByID(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		orderError(w, err)
		return
	}

	type lineProduct struct {
		Product       *products.Product `json:"product"`
		Quantity      int               `json:"quantity"`
		SubtotalBaisa int64             `json:"subtotal_baisa"`
	}
	out := make([]lineProduct, 0, len(order.Lines))
	for _, l := range order.Lines {
		p, err := h.Products.FindByID(ctx, l.ProductID)
		if err != nil {
			if errors.Is(err, products.ErrNotFound) {
				continue // product removed since purchase; snapshot stays in the order
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, lineProduct{
			Product:       p,
			Quantity:      l.Quantity,
			SubtotalBaisa: p.PriceBaisa * int64(l.Quantity),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order, "products": out})
}

func (h *OrdersHandler) byEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Repo.FindByEmail(ctx, chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch orders by email")
		return
	}
	if len(list) == 0 {
		writeError(w, http.StatusNotFound, "no orders found for this email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": list})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Repo.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		orderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) listCompleted(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Repo.ListCompleted(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch orders")
		return
	}
	if len(list) == 0 {
		writeError(w, http.StatusNotFound, "no orders found")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Repo.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		orderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "order status updated", "order": order})
}

func (h *OrdersHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Repo.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		orderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "order deleted", "order": order})
}

func orderError(w http.ResponseWriter, err error) {
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
