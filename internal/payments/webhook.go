package payments

import (
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
)

// ErrSignatureInvalid reports a webhook payload whose signature did not verify.
var ErrSignatureInvalid = errors.New("payments: webhook signature invalid")

// EventVerifier authenticates raw webhook payloads and yields the decoded event.
type EventVerifier interface {
	Verify(payload []byte, signatureHeader string) (stripe.Event, error)
}

// WebhookVerifier verifies Stripe webhook signatures against an endpoint secret.
type WebhookVerifier struct {
	secret string
}

// NewWebhookVerifier returns a verifier for the given endpoint secret.
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("payments: webhook secret is required")
	}
	return &WebhookVerifier{secret: secret}, nil
}

// Verify checks the Stripe-Signature header against the payload and returns
// the decoded event. Any verification failure maps to ErrSignatureInvalid.
func (v *WebhookVerifier) Verify(payload []byte, signatureHeader string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, v.secret)
	if err != nil {
		return stripe.Event{}, errors.Join(ErrSignatureInvalid, err)
	}
	return event, nil
}
