package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

const defaultProductPageSize = 24

type productRepository struct{ db *gorm.DB }

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&product, "id = ?", id).Error
	if err != nil {
		return domain.Product{}, wrapError("product.find", err)
	}
	return product, nil
}

func (r *productRepository) List(ctx context.Context, filter repositories.ProductFilter) ([]domain.Product, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("status = ?", domain.ProductStatusActive)

	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.OnSale != nil {
		q = q.Where("is_on_sale = ?", *filter.OnSale)
	}
	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultProductPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var products []domain.Product
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Find(&products).Error
	if err != nil {
		return nil, wrapError("product.list", err)
	}
	return products, nil
}

// DecrementStock performs the guarded decrement in a single statement so
// concurrent materialisations cannot drive stock below zero.
func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return repositories.NewConflict("product.decrement_stock", errors.New("quantity must be positive"))
	}

	res := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return wrapError("product.decrement_stock", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the product vanished or not enough stock remains; distinguish
		// so the caller can report the right failure.
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return wrapError("product.decrement_stock", err)
		}
		if count == 0 {
			return repositories.NewNotFound("product.decrement_stock", gorm.ErrRecordNotFound)
		}
		return repositories.NewConflict("product.decrement_stock", errors.New("insufficient stock"))
	}
	return nil
}
