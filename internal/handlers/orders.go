package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/auth"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/httpx"
	"github.com/jesusrosales17/ecommerce-sub001/internal/services"
)

// OrderHandlers exposes order history for the current user.
type OrderHandlers struct {
	authn  *auth.Authenticator
	orders services.OrderService
}

// NewOrderHandlers constructs the authenticated order history handlers.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{authn: authn, orders: orders}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Get("/", h.listOrders)
	r.Get("/{orderId}", h.getOrder)
}

type orderItemPayload struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

type orderPayload struct {
	ID            string             `json:"id"`
	Total         string             `json:"total"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"paymentStatus"`
	AddressID     string             `json:"addressId"`
	Items         []orderItemPayload `json:"items"`
	CreatedAt     string             `json:"createdAt"`
}

func buildOrderPayload(order domain.Order) orderPayload {
	payload := orderPayload{
		ID:            order.ID.String(),
		Total:         order.Total.StringFixed(2),
		Status:        string(order.Status),
		PaymentStatus: order.PaymentStatus,
		AddressID:     order.AddressID.String(),
		Items:         make([]orderItemPayload, 0, len(order.Items)),
		CreatedAt:     formatTime(order.CreatedAt),
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, orderItemPayload{
			ProductID: item.ProductID.String(),
			Name:      item.Name,
			Price:     item.Price.StringFixed(2),
			Quantity:  item.Quantity,
		})
	}
	return payload
}

type orderSummaryPayload struct {
	ID        string `json:"id"`
	Total     string `json:"total"`
	Status    string `json:"status"`
	ItemCount int    `json:"itemCount"`
	CreatedAt string `json:"createdAt"`
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	summaries, err := h.orders.ListOrders(ctx, identity.UserID)
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}
	payload := make([]orderSummaryPayload, 0, len(summaries))
	for _, summary := range summaries {
		payload = append(payload, orderSummaryPayload{
			ID:        summary.ID.String(),
			Total:     summary.Total.StringFixed(2),
			Status:    string(summary.Status),
			ItemCount: summary.ItemCount,
			CreatedAt: formatTime(summary.CreatedAt),
		})
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"orders": payload})
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "orderId must be a uuid", http.StatusBadRequest))
		return
	}

	order, err := h.orders.GetOrder(ctx, identity.UserID, orderID)
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"order": buildOrderPayload(order)})
}

func (h *OrderHandlers) writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
	}
}
