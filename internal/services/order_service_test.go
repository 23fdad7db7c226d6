package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
)

func newOrderFixture(t *testing.T) (*memRegistry, OrderService) {
	t.Helper()
	registry := newMemRegistry()
	service, err := NewOrderService(OrderServiceDeps{Registry: registry})
	if err != nil {
		t.Fatalf("NewOrderService returned error: %v", err)
	}
	return registry, service
}

func seedOrder(registry *memRegistry, userID uuid.UUID, status domain.OrderStatus) *domain.Order {
	order := &domain.Order{
		ID:            uuid.New(),
		UserID:        userID,
		AddressID:     uuid.New(),
		Total:         decimal.NewFromInt(350),
		PaymentID:     "cs_" + uuid.NewString(),
		PaymentStatus: "paid",
		Status:        status,
		Items: []domain.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Camisa", Price: decimal.NewFromInt(100), Quantity: 2},
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Gorra", Price: decimal.NewFromInt(150), Quantity: 1},
		},
		CreatedAt: registry.nextTime(),
	}
	registry.orders = append(registry.orders, order)
	return order
}

func TestListOrdersSummarisesItems(t *testing.T) {
	registry, service := newOrderFixture(t)
	userID := uuid.New()
	seedOrder(registry, userID, domain.OrderStatusPending)
	seedOrder(registry, uuid.New(), domain.OrderStatusPending)

	summaries, err := service.ListOrders(context.Background(), userID)
	if err != nil {
		t.Fatalf("ListOrders returned error: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	if summaries[0].ItemCount != 3 {
		t.Fatalf("item count = %d, want 3", summaries[0].ItemCount)
	}
	if !summaries[0].Total.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("total = %s, want 350", summaries[0].Total)
	}
}

func TestGetOrderScopedToUser(t *testing.T) {
	registry, service := newOrderFixture(t)
	owner := uuid.New()
	order := seedOrder(registry, owner, domain.OrderStatusPending)

	if _, err := service.GetOrder(context.Background(), owner, order.ID); err != nil {
		t.Fatalf("GetOrder returned error for owner: %v", err)
	}
	if _, err := service.GetOrder(context.Background(), uuid.New(), order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("error = %v, want ErrOrderNotFound for stranger", err)
	}
}

func TestUpdateStatusFollowsFulfilmentPath(t *testing.T) {
	registry, service := newOrderFixture(t)
	order := seedOrder(registry, uuid.New(), domain.OrderStatusPending)

	updated, err := service.UpdateStatus(context.Background(), order.ID, domain.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.Status != domain.OrderStatusProcessing {
		t.Fatalf("status = %s, want PROCESSING", updated.Status)
	}
	if registry.orders[0].Status != domain.OrderStatusProcessing {
		t.Fatalf("persisted status = %s, want PROCESSING", registry.orders[0].Status)
	}
}

func TestUpdateStatusRejectsSkippedStates(t *testing.T) {
	registry, service := newOrderFixture(t)
	order := seedOrder(registry, uuid.New(), domain.OrderStatusPending)

	_, err := service.UpdateStatus(context.Background(), order.ID, domain.OrderStatusShipped)
	if !errors.Is(err, ErrOrderInvalidTransition) {
		t.Fatalf("error = %v, want ErrOrderInvalidTransition", err)
	}
	if registry.orders[0].Status != domain.OrderStatusPending {
		t.Fatalf("status changed to %s on rejected transition", registry.orders[0].Status)
	}
}

func TestUpdateStatusAllowsCancellationBeforeDelivery(t *testing.T) {
	registry, service := newOrderFixture(t)
	order := seedOrder(registry, uuid.New(), domain.OrderStatusShipped)

	updated, err := service.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.Status != domain.OrderStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", updated.Status)
	}
}

func TestUpdateStatusRejectsTerminalOrders(t *testing.T) {
	registry, service := newOrderFixture(t)
	order := seedOrder(registry, uuid.New(), domain.OrderStatusDelivered)

	if _, err := service.UpdateStatus(context.Background(), order.ID, domain.OrderStatusCancelled); !errors.Is(err, ErrOrderInvalidTransition) {
		t.Fatalf("error = %v, want ErrOrderInvalidTransition", err)
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	_, service := newOrderFixture(t)
	if _, err := service.UpdateStatus(context.Background(), uuid.New(), domain.OrderStatusProcessing); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("error = %v, want ErrOrderNotFound", err)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	registry, service := newOrderFixture(t)
	order := seedOrder(registry, uuid.New(), domain.OrderStatusPending)

	if _, err := service.UpdateStatus(context.Background(), order.ID, domain.OrderStatus("ARCHIVED")); !errors.Is(err, ErrOrderInvalidInput) {
		t.Fatalf("error = %v, want ErrOrderInvalidInput", err)
	}
}
