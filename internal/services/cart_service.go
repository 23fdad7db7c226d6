package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

const maxCartItemQuantity = 99

var (
	// ErrCartInvalidInput indicates the caller supplied invalid input.
	ErrCartInvalidInput = errors.New("cart service: invalid input")
	// ErrCartProductNotFound indicates the referenced product cannot be purchased.
	ErrCartProductNotFound = errors.New("cart service: product not found")
	// ErrCartItemNotFound indicates the cart does not contain the referenced product.
	ErrCartItemNotFound = errors.New("cart service: item not found")
	// ErrCartInsufficientStock indicates the requested line quantity exceeds available stock.
	ErrCartInsufficientStock = errors.New("cart service: insufficient stock")
	// ErrCartUnavailable indicates the cart backend failed.
	ErrCartUnavailable = errors.New("cart service: unavailable")
)

// CartServiceDeps wires the repositories needed for cart operations.
type CartServiceDeps struct {
	Carts    repositories.CartRepository
	Products repositories.ProductRepository
	Logger   Logger
}

type cartService struct {
	carts    repositories.CartRepository
	products repositories.ProductRepository
	logger   Logger
}

// NewCartService constructs a CartService validating required dependencies.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Carts == nil {
		return nil, errors.New("cart service: cart repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("cart service: product repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &cartService{carts: deps.Carts, products: deps.Products, logger: logger}, nil
}

// GetCart loads the user's cart, creating an empty one on first access.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (CartView, error) {
	if userID == uuid.Nil {
		return CartView{}, ErrCartInvalidInput
	}
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return CartView{}, errors.Join(ErrCartUnavailable, err)
	}
	return s.view(cart), nil
}

// AddItem puts quantity units of the product into the cart, merging with any
// existing line for the same product. The merged line quantity is capped at
// available stock so a cart never promises more than checkout can fulfil.
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartView, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return CartView{}, ErrCartInvalidInput
	}
	if quantity < 1 || quantity > maxCartItemQuantity {
		return CartView{}, ErrCartInvalidInput
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return CartView{}, ErrCartProductNotFound
		}
		return CartView{}, errors.Join(ErrCartUnavailable, err)
	}
	if product.Status != domain.ProductStatusActive {
		return CartView{}, ErrCartProductNotFound
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return CartView{}, errors.Join(ErrCartUnavailable, err)
	}
	if lineQuantity(cart, productID)+quantity > product.Stock {
		return CartView{}, ErrCartInsufficientStock
	}
	if err := s.carts.AddItem(ctx, cart.ID, productID, quantity); err != nil {
		return CartView{}, errors.Join(ErrCartUnavailable, err)
	}

	s.logger(ctx, "cart.item.added", map[string]any{
		"cartId":    cart.ID.String(),
		"productId": productID.String(),
		"quantity":  quantity,
	})
	return s.reload(ctx, userID)
}

// UpdateItemQuantity sets the line quantity for the product, capped at
// available stock.
func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (CartView, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return CartView{}, ErrCartInvalidInput
	}
	if quantity < 1 || quantity > maxCartItemQuantity {
		return CartView{}, ErrCartInvalidInput
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return CartView{}, ErrCartItemNotFound
		}
		return CartView{}, errors.Join(ErrCartUnavailable, err)
	}
	if quantity > product.Stock {
		return CartView{}, ErrCartInsufficientStock
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return CartView{}, ErrCartItemNotFound
		}
		return CartView{}, errors.Join(ErrCartUnavailable, err)
	}
	if err := s.carts.SetItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		if repositories.IsNotFound(err) {
			return CartView{}, ErrCartItemNotFound
		}
		return CartView{}, errors.Join(ErrCartUnavailable, err)
	}
	return s.reload(ctx, userID)
}

// RemoveItem drops the product line from the cart.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (CartView, error) {
	if userID == uuid.Nil || productID == uuid.Nil {
		return CartView{}, ErrCartInvalidInput
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return CartView{}, ErrCartItemNotFound
		}
		return CartView{}, errors.Join(ErrCartUnavailable, err)
	}
	if err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
		if repositories.IsNotFound(err) {
			return CartView{}, ErrCartItemNotFound
		}
		return CartView{}, errors.Join(ErrCartUnavailable, err)
	}
	return s.reload(ctx, userID)
}

// ClearCart removes every item; an absent cart clears as a no-op.
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return ErrCartInvalidInput
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil
		}
		return errors.Join(ErrCartUnavailable, err)
	}
	if err := s.carts.ClearItems(ctx, cart.ID); err != nil {
		return errors.Join(ErrCartUnavailable, err)
	}
	return nil
}

func (s *cartService) reload(ctx context.Context, userID uuid.UUID) (CartView, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return CartView{}, errors.Join(ErrCartUnavailable, err)
	}
	return s.view(cart), nil
}

func (s *cartService) view(cart domain.Cart) CartView {
	return CartView{Cart: cart, Totals: domain.Totals(cart.Items)}
}

func lineQuantity(cart domain.Cart, productID uuid.UUID) int {
	for _, item := range cart.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}
