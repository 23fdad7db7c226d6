package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

type cartRepository struct{ db *gorm.DB }

func (r *cartRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Cart, error) {
	var cart domain.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		First(&cart, "id = ?", id).Error
	if err != nil {
		return domain.Cart{}, wrapError("cart.find", err)
	}
	return cart, nil
}

func (r *cartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	var cart domain.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		return domain.Cart{}, wrapError("cart.find_by_user", err)
	}
	return cart, nil
}

// GetOrCreate returns the user's cart, creating the header row lazily on first
// use. The unique index on user_id makes concurrent creation safe.
func (r *cartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	cart, err := r.FindByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !repositories.IsNotFound(err) {
		return domain.Cart{}, err
	}

	created := domain.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return r.FindByUser(ctx, userID)
		}
		return domain.Cart{}, wrapError("cart.create", err)
	}
	return created, nil
}

// AddItem inserts the line or bumps its quantity when the product is already
// in the cart, as one upsert.
func (r *cartRepository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	item := domain.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + ?", quantity),
				"updated_at": gorm.Expr("now()"),
			}),
		}).
		Create(&item).Error
	return wrapError("cart.add_item", err)
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&domain.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return wrapError("cart.set_quantity", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.NewNotFound("cart.set_quantity", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *cartRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return wrapError("cart.remove_item", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.NewNotFound("cart.remove_item", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&domain.CartItem{}).Error
	return wrapError("cart.clear_items", err)
}
