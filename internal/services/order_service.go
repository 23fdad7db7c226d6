package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

var (
	// ErrOrderInvalidInput indicates the caller supplied invalid input.
	ErrOrderInvalidInput = errors.New("order service: invalid input")
	// ErrOrderNotFound indicates the order does not exist for this caller.
	ErrOrderNotFound = errors.New("order service: not found")
	// ErrOrderInvalidTransition indicates the requested status change is not allowed.
	ErrOrderInvalidTransition = errors.New("order service: invalid status transition")
	// ErrOrderUnavailable indicates the persistence backend failed.
	ErrOrderUnavailable = errors.New("order service: unavailable")
)

// OrderServiceDeps wires persistence for order reads and fulfilment updates.
type OrderServiceDeps struct {
	Registry repositories.Registry
	Logger   Logger
}

type orderService struct {
	registry repositories.Registry
	logger   Logger
}

// NewOrderService constructs an OrderService validating required dependencies.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Registry == nil {
		return nil, errors.New("order service: registry is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &orderService{registry: deps.Registry, logger: logger}, nil
}

// ListOrders returns the user's order history, newest first.
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderSummary, error) {
	if userID == uuid.Nil {
		return nil, ErrOrderInvalidInput
	}
	orders, err := s.registry.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Join(ErrOrderUnavailable, err)
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		count := 0
		for _, item := range order.Items {
			count += item.Quantity
		}
		summaries = append(summaries, OrderSummary{
			ID:        order.ID,
			Total:     order.Total,
			Status:    order.Status,
			ItemCount: count,
			CreatedAt: order.CreatedAt,
		})
	}
	return summaries, nil
}

// GetOrder returns one of the user's orders with its items.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (domain.Order, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return domain.Order{}, ErrOrderInvalidInput
	}
	order, err := s.registry.Orders().FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, errors.Join(ErrOrderUnavailable, err)
	}
	return order, nil
}

// UpdateStatus moves an order along the fulfilment path. The read and write
// share a transaction so concurrent updates cannot skip states.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, next domain.OrderStatus) (domain.Order, error) {
	if orderID == uuid.Nil {
		return domain.Order{}, ErrOrderInvalidInput
	}
	switch next {
	case domain.OrderStatusPending, domain.OrderStatusProcessing, domain.OrderStatusShipped,
		domain.OrderStatusDelivered, domain.OrderStatusCancelled:
	default:
		return domain.Order{}, ErrOrderInvalidInput
	}

	var updated domain.Order
	txErr := s.registry.RunInTx(ctx, func(tx repositories.Registry) error {
		order, err := tx.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return ErrOrderInvalidTransition
		}
		if err := tx.Orders().UpdateStatus(ctx, orderID, next); err != nil {
			return err
		}
		order.Status = next
		updated = order
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrOrderInvalidTransition) {
			return domain.Order{}, ErrOrderInvalidTransition
		}
		if repositories.IsNotFound(txErr) {
			return domain.Order{}, ErrOrderNotFound
		}
		return domain.Order{}, errors.Join(ErrOrderUnavailable, txErr)
	}

	s.logger(ctx, "order.status.updated", map[string]any{
		"orderId": orderID.String(),
		"status":  string(next),
	})
	return updated, nil
}
