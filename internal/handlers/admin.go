package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/auth"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/httpx"
	"github.com/jesusrosales17/ecommerce-sub001/internal/services"
)

const maxAdminBodySize = 4 * 1024

// AdminHandlers exposes fulfilment and reconciliation endpoints for operators.
type AdminHandlers struct {
	authn    *auth.Authenticator
	orders   services.OrderService
	webhooks services.WebhookService
}

// NewAdminHandlers constructs the admin-only handlers.
func NewAdminHandlers(authn *auth.Authenticator, orders services.OrderService, webhooks services.WebhookService) *AdminHandlers {
	return &AdminHandlers{authn: authn, orders: orders, webhooks: webhooks}
}

// Routes wires the /admin endpoints onto the provided router.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth(auth.RoleAdmin))
	}
	r.Put("/orders/{orderId}/status", h.updateOrderStatus)
	r.Get("/webhook-failures", h.listWebhookFailures)
}

func (h *AdminHandlers) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "orderId must be a uuid", http.StatusBadRequest))
		return
	}

	body, err := readLimitedBody(r, maxAdminBodySize)
	if err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	next := domain.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	order, err := h.orders.UpdateStatus(ctx, orderID, next)
	if err != nil {
		h.writeAdminError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"order": buildOrderPayload(order)})
}

type webhookFailurePayload struct {
	ID        string `json:"id"`
	EventID   string `json:"eventId"`
	SessionID string `json:"sessionId"`
	EventType string `json:"eventType"`
	Reason    string `json:"reason"`
	CreatedAt string `json:"createdAt"`
}

func (h *AdminHandlers) listWebhookFailures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "limit must be a non-negative integer", http.StatusBadRequest))
			return
		}
		limit = parsed
	}

	failures, err := h.webhooks.ListFailures(ctx, limit)
	if err != nil {
		h.writeAdminError(ctx, w, err)
		return
	}

	payload := make([]webhookFailurePayload, 0, len(failures))
	for _, failure := range failures {
		payload = append(payload, webhookFailurePayload{
			ID:        failure.ID.String(),
			EventID:   failure.EventID,
			SessionID: failure.SessionID,
			EventType: failure.EventType,
			Reason:    failure.Reason,
			CreatedAt: formatTime(failure.CreatedAt),
		})
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"failures": payload})
}

func (h *AdminHandlers) writeAdminError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_status_transition", "order cannot move to the requested status", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("admin_service_unavailable", "admin service is unavailable", http.StatusServiceUnavailable))
	}
}
