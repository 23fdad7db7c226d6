package payments

import (
	"context"
	"time"
)

// CheckoutLineItem is one purchasable line presented on the hosted payment page.
type CheckoutLineItem struct {
	Name        string
	Description string
	UnitAmount  int64 // minor units
	Quantity    int64
}

// CheckoutSessionRequest describes the hosted checkout session to create.
type CheckoutSessionRequest struct {
	Currency      string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Items         []CheckoutLineItem
	Metadata      map[string]string
}

// CheckoutSession is the provider-hosted session the buyer is redirected to.
type CheckoutSession struct {
	ID          string
	RedirectURL string
	ExpiresAt   time.Time
}

// Provider creates hosted checkout sessions with an external payment service.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error)
}
