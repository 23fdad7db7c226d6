package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stripe/stripe-go/v78"

	"github.com/jesusrosales17/ecommerce-sub001/internal/payments"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/httpx"
	"github.com/jesusrosales17/ecommerce-sub001/internal/services"
)

const maxWebhookBodySize = 256 * 1024

const eventCheckoutSessionCompleted = "checkout.session.completed"

// WebhookHandlers receives payment provider callbacks.
type WebhookHandlers struct {
	verifier payments.EventVerifier
	webhooks services.WebhookService
}

// NewWebhookHandlers constructs handlers for the provider webhook endpoint.
func NewWebhookHandlers(verifier payments.EventVerifier, webhooks services.WebhookService) *WebhookHandlers {
	return &WebhookHandlers{verifier: verifier, webhooks: webhooks}
}

// Routes wires the /webhooks endpoints onto the provided router.
func (h *WebhookHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/stripe", h.handleStripeEvent)
}

func (h *WebhookHandlers) handleStripeEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.verifier == nil || h.webhooks == nil {
		httpx.WriteError(ctx, w, httpx.NewError("webhook_unavailable", "webhook processing is unavailable", http.StatusServiceUnavailable))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize+1))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "could not read request body", http.StatusBadRequest))
		return
	}
	if int64(len(payload)) > maxWebhookBodySize {
		httpx.WriteError(ctx, w, httpx.NewError("payload_too_large", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
		return
	}

	event, err := h.verifier.Verify(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_signature", "webhook signature verification failed", http.StatusBadRequest))
		return
	}

	if event.Type != eventCheckoutSessionCompleted {
		// Unhandled event types are acknowledged so the provider stops retrying.
		writeJSONResponse(w, http.StatusOK, map[string]any{"received": true, "handled": false})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_event", "event payload could not be decoded", http.StatusBadRequest))
		return
	}

	err = h.webhooks.HandleCheckoutCompleted(ctx, services.CompletedCheckout{
		EventID:       event.ID,
		SessionID:     session.ID,
		PaymentStatus: string(session.PaymentStatus),
		Metadata:      session.Metadata,
		RawPayload:    payload,
	})
	if err != nil {
		if errors.Is(err, services.ErrWebhookInvalidMetadata) {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_metadata", "session metadata failed validation", http.StatusBadRequest))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("webhook_unavailable", "event could not be processed", http.StatusServiceUnavailable))
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{"received": true, "handled": true})
}
