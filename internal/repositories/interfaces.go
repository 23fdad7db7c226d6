package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	UnitOfWork
	Close(ctx context.Context) error

	Users() UserRepository
	Products() ProductRepository
	Carts() CartRepository
	Addresses() AddressRepository
	Orders() OrderRepository
	Favorites() FavoriteRepository
	WebhookFailures() WebhookFailureRepository
}

// UnitOfWork groups repository operations in a transactional boundary. The
// registry passed to fn is bound to the transaction; any error rolls back.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(tx Registry) error) error
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// IsNotFound reports whether err categorises as a missing record.
func IsNotFound(err error) bool {
	repoErr, ok := asRepositoryError(err)
	return ok && repoErr.IsNotFound()
}

// IsConflict reports whether err categorises as a uniqueness or concurrency conflict.
func IsConflict(err error) bool {
	repoErr, ok := asRepositoryError(err)
	return ok && repoErr.IsConflict()
}

// UserRepository reads account records.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	CategoryID *uuid.UUID
	OnSale     *bool
	Search     string
	Limit      int
	Offset     int
}

// ProductRepository reads catalog products and owns the guarded stock decrement.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)

	// DecrementStock subtracts quantity from the product's stock only when
	// enough stock remains; it returns a conflict error otherwise. The floor
	// check and the write are a single conditional UPDATE.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// CartRepository owns cart header and item persistence.
type CartRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Cart, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
}

// AddressRepository persists shipping addresses. The default-address invariant
// is enforced by UserService inside a unit of work using these primitives.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Address, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (domain.Address, error)

	// FirstByUser returns the user's oldest address, skipping exceptID
	// (uuid.Nil skips none). A user with no eligible address yields not-found.
	FirstByUser(ctx context.Context, userID, exceptID uuid.UUID) (domain.Address, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ClearDefaults unsets is_default on every address of the user except the
	// given id (uuid.Nil clears all).
	ClearDefaults(ctx context.Context, userID, exceptID uuid.UUID) error
	SetDefault(ctx context.Context, id uuid.UUID) error
}

// OrderRepository persists materialised orders. Orders and their items are
// created exclusively by the webhook materialiser.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Order, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (domain.Order, error)
	FindByPaymentID(ctx context.Context, paymentID string) (domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

// FavoriteRepository persists per-user saved products.
type FavoriteRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error)
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

// WebhookFailureRepository records dead-letter rows for events that verified
// but could not be materialised.
type WebhookFailureRepository interface {
	Create(ctx context.Context, failure *domain.WebhookFailure) error
	List(ctx context.Context, limit int) ([]domain.WebhookFailure, error)
}
