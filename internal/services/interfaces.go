package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

// Logger is the event logging contract shared by all services.
type Logger func(ctx context.Context, event string, fields map[string]any)

// CatalogService exposes storefront product reads.
type CatalogService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error)
	ListProducts(ctx context.Context, filter repositories.ProductFilter) ([]domain.Product, error)
}

// CartView is a cart joined with its derived totals.
type CartView struct {
	Cart   domain.Cart
	Totals domain.CartTotals
}

// CartService manages the single active cart per user.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (CartView, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartView, error)
	UpdateItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartView, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (CartView, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// CheckoutRedirect is what the storefront needs to hand the buyer to the
// hosted payment page.
type CheckoutRedirect struct {
	SessionID string
	URL       string
	ExpiresAt time.Time
}

// CreateCartSessionCommand starts checkout for the user's whole cart.
type CreateCartSessionCommand struct {
	UserID    uuid.UUID
	AddressID uuid.UUID
}

// CreateBuyNowSessionCommand starts checkout for a single product, bypassing the cart.
type CreateBuyNowSessionCommand struct {
	UserID    uuid.UUID
	AddressID uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutService creates hosted payment sessions for carts and single products.
type CheckoutService interface {
	CreateCartSession(ctx context.Context, cmd CreateCartSessionCommand) (CheckoutRedirect, error)
	CreateBuyNowSession(ctx context.Context, cmd CreateBuyNowSessionCommand) (CheckoutRedirect, error)
}

// CompletedCheckout is the verified completed-session event handed to the materialiser.
type CompletedCheckout struct {
	EventID       string
	SessionID     string
	PaymentStatus string
	Metadata      map[string]string
	RawPayload    []byte
}

// WebhookService turns completed checkout sessions into persisted orders.
type WebhookService interface {
	HandleCheckoutCompleted(ctx context.Context, event CompletedCheckout) error
	ListFailures(ctx context.Context, limit int) ([]domain.WebhookFailure, error)
}

// AddressInput carries the mutable fields of a shipping address.
type AddressInput struct {
	Recipient  string
	Line1      string
	Line2      *string
	City       string
	State      *string
	PostalCode string
	Country    string
	Phone      *string
	IsDefault  bool
}

// UserService manages addresses and favorites for an authenticated user.
type UserService interface {
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]domain.Address, error)
	CreateAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (domain.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (domain.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error

	ListFavorites(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error)
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error
}

// OrderSummary is the list row returned for order history.
type OrderSummary struct {
	ID        uuid.UUID
	Total     decimal.Decimal
	Status    domain.OrderStatus
	ItemCount int
	CreatedAt time.Time
}

// OrderService exposes order history and admin fulfilment transitions.
type OrderService interface {
	ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderSummary, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next domain.OrderStatus) (domain.Order, error)
}
