package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

type addressRepository struct{ db *gorm.DB }

func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Address, error) {
	var addresses []domain.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&addresses).Error
	if err != nil {
		return nil, wrapError("address.list", err)
	}
	return addresses, nil
}

func (r *addressRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (domain.Address, error) {
	var address domain.Address
	err := r.db.WithContext(ctx).
		First(&address, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return domain.Address{}, wrapError("address.find", err)
	}
	return address, nil
}

func (r *addressRepository) FirstByUser(ctx context.Context, userID, exceptID uuid.UUID) (domain.Address, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC")
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	var address domain.Address
	if err := q.First(&address).Error; err != nil {
		return domain.Address{}, wrapError("address.first", err)
	}
	return address, nil
}

func (r *addressRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Address{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, wrapError("address.count", err)
	}
	return count, nil
}

func (r *addressRepository) Create(ctx context.Context, address *domain.Address) error {
	return wrapError("address.create", r.db.WithContext(ctx).Create(address).Error)
}

func (r *addressRepository) Update(ctx context.Context, address *domain.Address) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Address{}).
		Where("id = ?", address.ID).
		Updates(map[string]any{
			"recipient":   address.Recipient,
			"line1":       address.Line1,
			"line2":       address.Line2,
			"city":        address.City,
			"state":       address.State,
			"postal_code": address.PostalCode,
			"country":     address.Country,
			"phone":       address.Phone,
			"is_default":  address.IsDefault,
		})
	if res.Error != nil {
		return wrapError("address.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.NewNotFound("address.update", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *addressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.Address{}, "id = ?", id)
	if res.Error != nil {
		return wrapError("address.delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.NewNotFound("address.delete", gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *addressRepository) ClearDefaults(ctx context.Context, userID, exceptID uuid.UUID) error {
	q := r.db.WithContext(ctx).
		Model(&domain.Address{}).
		Where("user_id = ? AND is_default", userID)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	return wrapError("address.clear_defaults", q.Update("is_default", false).Error)
}

func (r *addressRepository) SetDefault(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Address{}).
		Where("id = ?", id).
		Update("is_default", true)
	if res.Error != nil {
		return wrapError("address.set_default", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.NewNotFound("address.set_default", gorm.ErrRecordNotFound)
	}
	return nil
}
