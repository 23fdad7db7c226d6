package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

type orderRepository struct{ db *gorm.DB }

// Create inserts the order and its items in one go. The unique index on
// payment_id turns duplicate webhook deliveries into a conflict error.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	return wrapError("order.create", r.db.WithContext(ctx).Create(order).Error)
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return domain.Order{}, wrapError("order.find", err)
	}
	return order, nil
}

func (r *orderRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return domain.Order{}, wrapError("order.find_for_user", err)
	}
	return order, nil
}

func (r *orderRepository) FindByPaymentID(ctx context.Context, paymentID string) (domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "payment_id = ?", paymentID).Error
	if err != nil {
		return domain.Order{}, wrapError("order.find_by_payment", err)
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return nil, wrapError("order.list", err)
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return wrapError("order.update_status", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.NewNotFound("order.update_status", gorm.ErrRecordNotFound)
	}
	return nil
}
