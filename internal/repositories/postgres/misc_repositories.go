package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
)

const defaultFailurePageSize = 50

type userRepository struct{ db *gorm.DB }

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return domain.User{}, wrapError("user.find", err)
	}
	return user, nil
}

type favoriteRepository struct{ db *gorm.DB }

func (r *favoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error) {
	var favorites []domain.Favorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Preload("Product").
		Find(&favorites).Error
	if err != nil {
		return nil, wrapError("favorite.list", err)
	}
	return favorites, nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, wrapError("favorite.exists", err)
	}
	return count > 0, nil
}

func (r *favoriteRepository) Add(ctx context.Context, userID, productID uuid.UUID) error {
	favorite := domain.Favorite{UserID: userID, ProductID: productID}
	err := r.db.WithContext(ctx).Create(&favorite).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Already saved; toggling twice concurrently is not an error.
		return nil
	}
	return wrapError("favorite.add", err)
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.Favorite{}).Error
	return wrapError("favorite.remove", err)
}

type webhookFailureRepository struct{ db *gorm.DB }

func (r *webhookFailureRepository) Create(ctx context.Context, failure *domain.WebhookFailure) error {
	return wrapError("webhook_failure.create", r.db.WithContext(ctx).Create(failure).Error)
}

func (r *webhookFailureRepository) List(ctx context.Context, limit int) ([]domain.WebhookFailure, error) {
	if limit <= 0 {
		limit = defaultFailurePageSize
	}
	var failures []domain.WebhookFailure
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&failures).Error
	if err != nil {
		return nil, wrapError("webhook_failure.list", err)
	}
	return failures, nil
}
