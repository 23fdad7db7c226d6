package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus enumerates the lifecycle states of a catalog product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
	ProductStatusDeleted  ProductStatus = "DELETED"
)

// OrderStatus enumerates fulfilment states. CANCELLED and DELIVERED are terminal.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// CanTransitionTo reports whether an order may move from its current status to next.
// The forward path is PENDING -> PROCESSING -> SHIPPED -> DELIVERED; cancellation
// is allowed from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return false
	}
	if next == OrderStatusCancelled {
		return s != OrderStatusDelivered && s != OrderStatusCancelled
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing
	case OrderStatusProcessing:
		return next == OrderStatusShipped
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	default:
		return false
	}
}

// User is the account record carts, addresses, and orders hang off.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string    `gorm:"type:text;not null;uniqueIndex"`
	Name      string    `gorm:"type:text;not null"`
	Role      string    `gorm:"type:text;not null;default:'user'"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (User) TableName() string { return "users" }

// Category groups products for storefront filtering.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Category) TableName() string { return "categories" }

// Product is a catalog entry. Price fields are decimals; Stock is decremented
// only by order materialisation and must never go below zero.
type Product struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string           `gorm:"type:text;not null"`
	Description string           `gorm:"type:text"`
	Price       decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	IsOnSale    bool             `gorm:"not null;default:false"`
	SalePrice   *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Stock       int              `gorm:"not null;default:0"`
	Status      ProductStatus    `gorm:"type:text;not null;default:'ACTIVE';index"`
	CategoryID  *uuid.UUID       `gorm:"type:uuid;index"`
	Images      []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"not null;default:now()"`
	UpdatedAt   time.Time        `gorm:"not null;default:now()"`
}

func (Product) TableName() string { return "products" }

// ProductImage stores ordered product imagery; exactly one per product is
// flagged principal for listing views.
type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL       string    `gorm:"type:text;not null"`
	Principal bool      `gorm:"not null;default:false"`
	Position  int       `gorm:"not null;default:0"`
}

func (ProductImage) TableName() string { return "product_images" }

// Cart is the single active cart per user, created lazily on first add.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"not null;default:now()"`
	UpdatedAt time.Time  `gorm:"not null;default:now()"`
}

func (Cart) TableName() string { return "carts" }

// CartItem is keyed by (cart, product); quantity is always >= 1.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_cart_items_cart_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_cart_items_cart_product"`
	Quantity  int       `gorm:"not null;default:1"`
	Product   Product   `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (CartItem) TableName() string { return "cart_items" }

// Address is a shipping address. At most one address per user carries
// IsDefault; the user service enforces the invariant transactionally.
type Address struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Recipient  string    `gorm:"type:text;not null"`
	Line1      string    `gorm:"type:text;not null"`
	Line2      *string   `gorm:"type:text"`
	City       string    `gorm:"type:text;not null"`
	State      *string   `gorm:"type:text"`
	PostalCode string    `gorm:"type:text;not null"`
	Country    string    `gorm:"type:char(2);not null"`
	Phone      *string   `gorm:"type:text"`
	IsDefault  bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null;default:now()"`
	UpdatedAt  time.Time `gorm:"not null;default:now()"`
}

func (Address) TableName() string { return "addresses" }

// Order is created exactly once per completed checkout session; PaymentID is
// the provider session id and doubles as the idempotency key.
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	AddressID     uuid.UUID       `gorm:"type:uuid;not null"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentID     string          `gorm:"type:text;not null;uniqueIndex"`
	PaymentStatus string          `gorm:"type:text;not null"`
	Status        OrderStatus     `gorm:"type:text;not null;default:'PENDING';index"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time       `gorm:"not null;default:now();index"`
	UpdatedAt     time.Time       `gorm:"not null;default:now()"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots product name and effective unit price at purchase time.
// Rows are immutable once written; later product edits do not touch them.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:text;not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	CreatedAt time.Time       `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }

// Favorite marks a product saved by a user.
type Favorite struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_favorites_user_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_favorites_user_product"`
	Product   Product   `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Favorite) TableName() string { return "favorites" }

// WebhookFailure is the dead-letter record written when a verified provider
// event could not be materialised, so operators can reconcile by hand.
type WebhookFailure struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	EventID   string    `gorm:"type:text;not null;index"`
	SessionID string    `gorm:"type:text;not null;index"`
	EventType string    `gorm:"type:text;not null"`
	Reason    string    `gorm:"type:text;not null"`
	Payload   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;default:now();index"`
}

func (WebhookFailure) TableName() string { return "webhook_failures" }
