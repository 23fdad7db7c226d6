package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/auth"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/httpx"
	"github.com/jesusrosales17/ecommerce-sub001/internal/services"
)

const maxCheckoutBodySize = 8 * 1024

// CheckoutHandlers exposes endpoints that hand buyers to the hosted payment page.
type CheckoutHandlers struct {
	authn    *auth.Authenticator
	checkout services.CheckoutService
}

// NewCheckoutHandlers constructs authenticated checkout handlers.
func NewCheckoutHandlers(authn *auth.Authenticator, checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{authn: authn, checkout: checkout}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Post("/", h.createCartSession)
	r.Post("/buy-now", h.createBuyNowSession)
}

type checkoutRedirectPayload struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

func buildRedirectPayload(redirect services.CheckoutRedirect) checkoutRedirectPayload {
	return checkoutRedirectPayload{
		SessionID: redirect.SessionID,
		URL:       redirect.URL,
		ExpiresAt: formatTime(redirect.ExpiresAt),
	}
}

func (h *CheckoutHandlers) createCartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req struct {
		AddressID string `json:"addressId"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "addressId must be a uuid", http.StatusBadRequest))
		return
	}

	redirect, err := h.checkout.CreateCartSession(ctx, services.CreateCartSessionCommand{
		UserID:    identity.UserID,
		AddressID: addressID,
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildRedirectPayload(redirect))
}

func (h *CheckoutHandlers) createBuyNowSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req struct {
		AddressID string `json:"addressId"`
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}
	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "addressId must be a uuid", http.StatusBadRequest))
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "productId must be a uuid", http.StatusBadRequest))
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	redirect, err := h.checkout.CreateBuyNowSession(ctx, services.CreateBuyNowSessionCommand{
		UserID:    identity.UserID,
		AddressID: addressID,
		ProductID: productID,
		Quantity:  quantity,
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildRedirectPayload(redirect))
}

func (h *CheckoutHandlers) writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCheckoutCartEmpty):
		httpx.WriteError(ctx, w, httpx.NewError("cart_empty", "cart has no purchasable items", http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrCheckoutProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCheckoutAddressNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("address_not_found", "shipping address not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCheckoutInsufficientStock):
		httpx.WriteError(ctx, w, httpx.NewError("insufficient_stock", "not enough stock available", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutPaymentFailed):
		httpx.WriteError(ctx, w, httpx.NewError("payment_session_failed", "payment provider rejected the session", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
	}
}
