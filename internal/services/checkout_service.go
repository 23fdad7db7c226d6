package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/payments"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

var (
	// ErrCheckoutInvalidInput indicates the caller supplied invalid input.
	ErrCheckoutInvalidInput = errors.New("checkout service: invalid input")
	// ErrCheckoutCartEmpty indicates the cart has nothing purchasable.
	ErrCheckoutCartEmpty = errors.New("checkout service: cart is empty")
	// ErrCheckoutProductNotFound indicates the product cannot be purchased.
	ErrCheckoutProductNotFound = errors.New("checkout service: product not found")
	// ErrCheckoutAddressNotFound indicates the shipping address does not belong to the user.
	ErrCheckoutAddressNotFound = errors.New("checkout service: address not found")
	// ErrCheckoutInsufficientStock indicates the requested quantity exceeds available stock.
	ErrCheckoutInsufficientStock = errors.New("checkout service: insufficient stock")
	// ErrCheckoutPaymentFailed indicates the payment provider rejected the session.
	ErrCheckoutPaymentFailed = errors.New("checkout service: payment session failed")
	// ErrCheckoutUnavailable indicates checkout dependencies failed.
	ErrCheckoutUnavailable = errors.New("checkout service: unavailable")
)

// CheckoutServiceDeps wires the dependencies required by the checkout service.
type CheckoutServiceDeps struct {
	Carts     repositories.CartRepository
	Products  repositories.ProductRepository
	Addresses repositories.AddressRepository
	Users     repositories.UserRepository
	Payments  payments.Provider

	Currency   string
	SuccessURL string
	CancelURL  string
	Logger     Logger
}

type checkoutService struct {
	carts     repositories.CartRepository
	products  repositories.ProductRepository
	addresses repositories.AddressRepository
	users     repositories.UserRepository
	payments  payments.Provider

	currency   string
	successURL string
	cancelURL  string
	logger     Logger
}

// NewCheckoutService constructs a CheckoutService validating required dependencies.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Carts == nil {
		return nil, errors.New("checkout service: cart repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("checkout service: product repository is required")
	}
	if deps.Addresses == nil {
		return nil, errors.New("checkout service: address repository is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("checkout service: payment provider is required")
	}
	if strings.TrimSpace(deps.SuccessURL) == "" || strings.TrimSpace(deps.CancelURL) == "" {
		return nil, errors.New("checkout service: success and cancel urls are required")
	}

	currency := strings.ToUpper(strings.TrimSpace(deps.Currency))
	if currency == "" {
		currency = "MXN"
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		carts:      deps.Carts,
		products:   deps.Products,
		addresses:  deps.Addresses,
		users:      deps.Users,
		payments:   deps.Payments,
		currency:   currency,
		successURL: strings.TrimSpace(deps.SuccessURL),
		cancelURL:  strings.TrimSpace(deps.CancelURL),
		logger:     logger,
	}, nil
}

// CreateCartSession opens a hosted payment session for the user's whole cart.
func (s *checkoutService) CreateCartSession(ctx context.Context, cmd CreateCartSessionCommand) (CheckoutRedirect, error) {
	if cmd.UserID == uuid.Nil || cmd.AddressID == uuid.Nil {
		return CheckoutRedirect{}, ErrCheckoutInvalidInput
	}

	if err := s.verifyAddress(ctx, cmd.UserID, cmd.AddressID); err != nil {
		return CheckoutRedirect{}, err
	}

	cart, err := s.carts.FindByUser(ctx, cmd.UserID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return CheckoutRedirect{}, ErrCheckoutCartEmpty
		}
		return CheckoutRedirect{}, errors.Join(ErrCheckoutUnavailable, err)
	}

	items := make([]payments.CheckoutLineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.Quantity < 1 {
			continue
		}
		if item.Product.Status != domain.ProductStatusActive {
			return CheckoutRedirect{}, ErrCheckoutProductNotFound
		}
		if item.Product.Stock < item.Quantity {
			return CheckoutRedirect{}, ErrCheckoutInsufficientStock
		}
		items = append(items, payments.CheckoutLineItem{
			Name:       item.Product.Name,
			UnitAmount: domain.MinorUnits(item.Product.EffectivePrice()),
			Quantity:   int64(item.Quantity),
		})
	}
	if len(items) == 0 {
		return CheckoutRedirect{}, ErrCheckoutCartEmpty
	}

	meta := payments.NewCartMetadata(cmd.UserID, cmd.AddressID, cart.ID)
	return s.createSession(ctx, cmd.UserID, items, meta)
}

// CreateBuyNowSession opens a hosted payment session for a single product,
// leaving the cart untouched.
func (s *checkoutService) CreateBuyNowSession(ctx context.Context, cmd CreateBuyNowSessionCommand) (CheckoutRedirect, error) {
	if cmd.UserID == uuid.Nil || cmd.AddressID == uuid.Nil || cmd.ProductID == uuid.Nil {
		return CheckoutRedirect{}, ErrCheckoutInvalidInput
	}
	if cmd.Quantity < 1 || cmd.Quantity > maxCartItemQuantity {
		return CheckoutRedirect{}, ErrCheckoutInvalidInput
	}

	if err := s.verifyAddress(ctx, cmd.UserID, cmd.AddressID); err != nil {
		return CheckoutRedirect{}, err
	}

	product, err := s.products.FindByID(ctx, cmd.ProductID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return CheckoutRedirect{}, ErrCheckoutProductNotFound
		}
		return CheckoutRedirect{}, errors.Join(ErrCheckoutUnavailable, err)
	}
	if product.Status != domain.ProductStatusActive {
		return CheckoutRedirect{}, ErrCheckoutProductNotFound
	}
	if product.Stock < cmd.Quantity {
		return CheckoutRedirect{}, ErrCheckoutInsufficientStock
	}

	items := []payments.CheckoutLineItem{{
		Name:       product.Name,
		UnitAmount: domain.MinorUnits(product.EffectivePrice()),
		Quantity:   int64(cmd.Quantity),
	}}
	meta := payments.NewBuyNowMetadata(cmd.UserID, cmd.AddressID, cmd.ProductID, cmd.Quantity)
	return s.createSession(ctx, cmd.UserID, items, meta)
}

func (s *checkoutService) verifyAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	_, err := s.addresses.FindByIDForUser(ctx, addressID, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return ErrCheckoutAddressNotFound
		}
		return errors.Join(ErrCheckoutUnavailable, err)
	}
	return nil
}

func (s *checkoutService) createSession(ctx context.Context, userID uuid.UUID, items []payments.CheckoutLineItem, meta payments.CheckoutMetadata) (CheckoutRedirect, error) {
	var email string
	if s.users != nil {
		if user, err := s.users.FindByID(ctx, userID); err == nil {
			email = user.Email
		}
	}

	session, err := s.payments.CreateCheckoutSession(ctx, payments.CheckoutSessionRequest{
		Currency:      s.currency,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
		CustomerEmail: email,
		Items:         items,
		Metadata:      meta.Encode(),
	})
	if err != nil {
		s.logger(ctx, "checkout.session.failed", map[string]any{
			"userId": userID.String(),
			"error":  err.Error(),
		})
		return CheckoutRedirect{}, errors.Join(ErrCheckoutPaymentFailed, err)
	}

	s.logger(ctx, "checkout.session.created", map[string]any{
		"userId":    userID.String(),
		"sessionId": session.ID,
		"type":      string(meta.Kind),
	})
	return CheckoutRedirect{
		SessionID: session.ID,
		URL:       session.RedirectURL,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
