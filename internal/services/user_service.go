package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

var (
	// ErrUserInvalidInput indicates the caller supplied invalid input.
	ErrUserInvalidInput = errors.New("user service: invalid input")
	// ErrUserAddressNotFound indicates the address does not exist for this user.
	ErrUserAddressNotFound = errors.New("user service: address not found")
	// ErrUserProductNotFound indicates the product referenced by a favorite is missing.
	ErrUserProductNotFound = errors.New("user service: product not found")
	// ErrUserUnavailable indicates the persistence backend failed.
	ErrUserUnavailable = errors.New("user service: unavailable")
)

// UserServiceDeps wires persistence for address and favorite management.
type UserServiceDeps struct {
	Registry repositories.Registry
	Logger   Logger
}

type userService struct {
	registry repositories.Registry
	logger   Logger
}

// NewUserService constructs a UserService validating required dependencies.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Registry == nil {
		return nil, errors.New("user service: registry is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &userService{registry: deps.Registry, logger: logger}, nil
}

// ListAddresses returns the user's addresses, oldest first.
func (s *userService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]domain.Address, error) {
	if userID == uuid.Nil {
		return nil, ErrUserInvalidInput
	}
	addresses, err := s.registry.Addresses().ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Join(ErrUserUnavailable, err)
	}
	return addresses, nil
}

// CreateAddress stores a new shipping address. The first address a user saves
// always becomes the default; a later address marked default demotes the
// previous one in the same transaction.
func (s *userService) CreateAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (domain.Address, error) {
	if userID == uuid.Nil {
		return domain.Address{}, ErrUserInvalidInput
	}
	address, err := addressFromInput(userID, input)
	if err != nil {
		return domain.Address{}, err
	}

	txErr := s.registry.RunInTx(ctx, func(tx repositories.Registry) error {
		count, err := tx.Addresses().CountByUser(ctx, userID)
		if err != nil {
			return err
		}
		if count == 0 {
			address.IsDefault = true
		}
		if err := tx.Addresses().Create(ctx, &address); err != nil {
			return err
		}
		if address.IsDefault {
			return tx.Addresses().ClearDefaults(ctx, userID, address.ID)
		}
		return nil
	})
	if txErr != nil {
		return domain.Address{}, errors.Join(ErrUserUnavailable, txErr)
	}
	return address, nil
}

// UpdateAddress rewrites the mutable fields of an address. Demoting the
// current default promotes the user's oldest remaining address so exactly one
// default survives.
func (s *userService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (domain.Address, error) {
	if userID == uuid.Nil || addressID == uuid.Nil {
		return domain.Address{}, ErrUserInvalidInput
	}
	updated, err := addressFromInput(userID, input)
	if err != nil {
		return domain.Address{}, err
	}
	updated.ID = addressID

	txErr := s.registry.RunInTx(ctx, func(tx repositories.Registry) error {
		current, err := tx.Addresses().FindByIDForUser(ctx, addressID, userID)
		if err != nil {
			return err
		}

		if !updated.IsDefault && current.IsDefault {
			// Try to hand the default to another address first.
			if err := tx.Addresses().ClearDefaults(ctx, userID, uuid.Nil); err != nil {
				return err
			}
			successor, err := s.oldestOther(ctx, tx, userID, addressID)
			if err != nil {
				return err
			}
			if successor == uuid.Nil {
				updated.IsDefault = true
			} else if err := tx.Addresses().SetDefault(ctx, successor); err != nil {
				return err
			}
		}

		if err := tx.Addresses().Update(ctx, &updated); err != nil {
			return err
		}
		if updated.IsDefault {
			return tx.Addresses().ClearDefaults(ctx, userID, addressID)
		}
		return nil
	})
	if txErr != nil {
		if repositories.IsNotFound(txErr) {
			return domain.Address{}, ErrUserAddressNotFound
		}
		return domain.Address{}, errors.Join(ErrUserUnavailable, txErr)
	}
	return updated, nil
}

// DeleteAddress removes an address; deleting the default promotes the oldest
// remaining address in the same transaction.
func (s *userService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if userID == uuid.Nil || addressID == uuid.Nil {
		return ErrUserInvalidInput
	}

	txErr := s.registry.RunInTx(ctx, func(tx repositories.Registry) error {
		current, err := tx.Addresses().FindByIDForUser(ctx, addressID, userID)
		if err != nil {
			return err
		}
		if err := tx.Addresses().Delete(ctx, addressID); err != nil {
			return err
		}
		if !current.IsDefault {
			return nil
		}
		successor, err := s.oldestOther(ctx, tx, userID, addressID)
		if err != nil {
			return err
		}
		if successor == uuid.Nil {
			return nil
		}
		return tx.Addresses().SetDefault(ctx, successor)
	})
	if txErr != nil {
		if repositories.IsNotFound(txErr) {
			return ErrUserAddressNotFound
		}
		return errors.Join(ErrUserUnavailable, txErr)
	}
	return nil
}

// SetDefaultAddress makes the address the user's single default.
func (s *userService) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if userID == uuid.Nil || addressID == uuid.Nil {
		return ErrUserInvalidInput
	}

	txErr := s.registry.RunInTx(ctx, func(tx repositories.Registry) error {
		if _, err := tx.Addresses().FindByIDForUser(ctx, addressID, userID); err != nil {
			return err
		}
		if err := tx.Addresses().ClearDefaults(ctx, userID, addressID); err != nil {
			return err
		}
		return tx.Addresses().SetDefault(ctx, addressID)
	})
	if txErr != nil {
		if repositories.IsNotFound(txErr) {
			return ErrUserAddressNotFound
		}
		return errors.Join(ErrUserUnavailable, txErr)
	}
	return nil
}

func (s *userService) oldestOther(ctx context.Context, tx repositories.Registry, userID, exceptID uuid.UUID) (uuid.UUID, error) {
	successor, err := tx.Addresses().FirstByUser(ctx, userID, exceptID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return successor.ID, nil
}

// ListFavorites returns the user's saved products, newest first.
func (s *userService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error) {
	if userID == uuid.Nil {
		return nil, ErrUserInvalidInput
	}
	favorites, err := s.registry.Favorites().ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Join(ErrUserUnavailable, err)
	}
	return favorites, nil
}

// AddFavorite saves a product; saving twice is a no-op.
func (s *userService) AddFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return ErrUserInvalidInput
	}
	if _, err := s.registry.Products().FindByID(ctx, productID); err != nil {
		if repositories.IsNotFound(err) {
			return ErrUserProductNotFound
		}
		return errors.Join(ErrUserUnavailable, err)
	}
	saved, err := s.registry.Favorites().Exists(ctx, userID, productID)
	if err != nil {
		return errors.Join(ErrUserUnavailable, err)
	}
	if saved {
		return nil
	}
	if err := s.registry.Favorites().Add(ctx, userID, productID); err != nil {
		return errors.Join(ErrUserUnavailable, err)
	}
	return nil
}

// RemoveFavorite unsaves a product; removing an absent favorite is a no-op.
func (s *userService) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	if userID == uuid.Nil || productID == uuid.Nil {
		return ErrUserInvalidInput
	}
	if err := s.registry.Favorites().Remove(ctx, userID, productID); err != nil {
		return errors.Join(ErrUserUnavailable, err)
	}
	return nil
}

func addressFromInput(userID uuid.UUID, input AddressInput) (domain.Address, error) {
	recipient := strings.TrimSpace(input.Recipient)
	line1 := strings.TrimSpace(input.Line1)
	city := strings.TrimSpace(input.City)
	postal := strings.TrimSpace(input.PostalCode)
	country := strings.ToUpper(strings.TrimSpace(input.Country))
	if recipient == "" || line1 == "" || city == "" || postal == "" || len(country) != 2 {
		return domain.Address{}, ErrUserInvalidInput
	}
	return domain.Address{
		UserID:     userID,
		Recipient:  recipient,
		Line1:      line1,
		Line2:      input.Line2,
		City:       city,
		State:      input.State,
		PostalCode: postal,
		Country:    country,
		Phone:      input.Phone,
		IsDefault:  input.IsDefault,
	}, nil
}
