package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/notifications"
	"github.com/jesusrosales17/ecommerce-sub001/internal/payments"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories"
)

const paymentStatusPaid = "paid"

var (
	// ErrWebhookInvalidMetadata indicates the event metadata failed validation.
	// The delivery is rejected so the misconfiguration surfaces at the provider.
	ErrWebhookInvalidMetadata = errors.New("webhook service: invalid metadata")
	// ErrWebhookUnavailable indicates the persistence backend failed before the
	// event could even be dead-lettered.
	ErrWebhookUnavailable = errors.New("webhook service: unavailable")
)

// errAlreadyMaterialised aborts the transaction when the session was already
// turned into an order by an earlier delivery.
var errAlreadyMaterialised = errors.New("webhook service: order already materialised")

// WebhookServiceDeps wires persistence and notification dependencies for the materialiser.
type WebhookServiceDeps struct {
	Registry repositories.Registry
	Mailer   notifications.OrderMailer
	Logger   Logger
}

type webhookService struct {
	registry repositories.Registry
	mailer   notifications.OrderMailer
	logger   Logger
}

// NewWebhookService constructs a WebhookService validating required dependencies.
func NewWebhookService(deps WebhookServiceDeps) (WebhookService, error) {
	if deps.Registry == nil {
		return nil, errors.New("webhook service: registry is required")
	}
	mailer := deps.Mailer
	if mailer == nil {
		mailer = notifications.NopMailer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &webhookService{registry: deps.Registry, mailer: mailer, logger: logger}, nil
}

// HandleCheckoutCompleted materialises one completed checkout session into an
// order. Order insert, stock decrements, and the cart clear happen in one
// transaction; duplicate deliveries are detected by the session id and become
// no-ops. Failures downstream of a valid event are dead-lettered rather than
// bounced back to the provider.
func (s *webhookService) HandleCheckoutCompleted(ctx context.Context, event CompletedCheckout) error {
	if event.PaymentStatus != paymentStatusPaid {
		s.logger(ctx, "webhook.session.unpaid", map[string]any{
			"sessionId":     event.SessionID,
			"paymentStatus": event.PaymentStatus,
		})
		return nil
	}

	meta, err := payments.ParseMetadata(event.Metadata)
	if err != nil {
		s.deadLetter(ctx, event, fmt.Sprintf("metadata rejected: %v", err))
		return errors.Join(ErrWebhookInvalidMetadata, err)
	}

	var order domain.Order
	txErr := s.registry.RunInTx(ctx, func(tx repositories.Registry) error {
		if _, err := tx.Orders().FindByPaymentID(ctx, event.SessionID); err == nil {
			return errAlreadyMaterialised
		} else if !repositories.IsNotFound(err) {
			return err
		}

		built, err := s.buildOrder(ctx, tx, event, meta)
		if err != nil {
			return err
		}

		if err := tx.Orders().Create(ctx, &built); err != nil {
			// A concurrent delivery won the unique payment_id race.
			if repositories.IsConflict(err) {
				return errAlreadyMaterialised
			}
			return err
		}

		for _, item := range built.Items {
			if err := tx.Products().DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
			}
		}

		if meta.Kind == payments.CheckoutKindCart {
			if err := tx.Carts().ClearItems(ctx, meta.CartID); err != nil {
				return fmt.Errorf("clear cart %s: %w", meta.CartID, err)
			}
		}

		order = built
		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, errAlreadyMaterialised) {
			s.logger(ctx, "webhook.session.duplicate", map[string]any{
				"eventId":   event.EventID,
				"sessionId": event.SessionID,
			})
			return nil
		}
		s.deadLetter(ctx, event, txErr.Error())
		return nil
	}

	s.logger(ctx, "webhook.order.materialised", map[string]any{
		"eventId":   event.EventID,
		"sessionId": event.SessionID,
		"orderId":   order.ID.String(),
		"total":     order.Total.String(),
	})

	s.notify(ctx, order)
	return nil
}

// buildOrder reconstructs the purchase from metadata using current product
// rows; unit prices are snapshotted at materialisation time.
func (s *webhookService) buildOrder(ctx context.Context, tx repositories.Registry, event CompletedCheckout, meta payments.CheckoutMetadata) (domain.Order, error) {
	order := domain.Order{
		UserID:        meta.UserID,
		AddressID:     meta.AddressID,
		PaymentID:     event.SessionID,
		PaymentStatus: event.PaymentStatus,
		Status:        domain.OrderStatusPending,
	}

	switch meta.Kind {
	case payments.CheckoutKindBuyNow:
		product, err := tx.Products().FindByID(ctx, meta.ProductID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("load product %s: %w", meta.ProductID, err)
		}
		price := product.EffectivePrice()
		order.Items = []domain.OrderItem{{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     price,
			Quantity:  meta.Quantity,
		}}
		order.Total = price.Mul(decimal.NewFromInt(int64(meta.Quantity)))

	default:
		cart, err := tx.Carts().FindByID(ctx, meta.CartID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("load cart %s: %w", meta.CartID, err)
		}
		if cart.UserID != meta.UserID {
			return domain.Order{}, fmt.Errorf("cart %s does not belong to user %s", meta.CartID, meta.UserID)
		}

		total := decimal.Zero
		for _, item := range cart.Items {
			if item.Quantity < 1 {
				continue
			}
			price := item.Product.EffectivePrice()
			order.Items = append(order.Items, domain.OrderItem{
				ProductID: item.ProductID,
				Name:      item.Product.Name,
				Price:     price,
				Quantity:  item.Quantity,
			})
			total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		if len(order.Items) == 0 {
			return domain.Order{}, fmt.Errorf("cart %s is empty", meta.CartID)
		}
		order.Total = total
	}

	return order, nil
}

// deadLetter records the failed event for manual reconciliation. A failure to
// record is logged; there is nowhere further to escalate.
func (s *webhookService) deadLetter(ctx context.Context, event CompletedCheckout, reason string) {
	failure := domain.WebhookFailure{
		EventID:   event.EventID,
		SessionID: event.SessionID,
		EventType: "checkout.session.completed",
		Reason:    reason,
		Payload:   string(event.RawPayload),
	}
	if err := s.registry.WebhookFailures().Create(ctx, &failure); err != nil {
		s.logger(ctx, "webhook.dead_letter.failed", map[string]any{
			"eventId": event.EventID,
			"error":   err.Error(),
		})
		return
	}
	s.logger(ctx, "webhook.dead_letter.recorded", map[string]any{
		"eventId":   event.EventID,
		"sessionId": event.SessionID,
		"reason":    reason,
	})
}

// notify sends the confirmation email after commit; delivery problems never
// affect the webhook response.
func (s *webhookService) notify(ctx context.Context, order domain.Order) {
	user, err := s.registry.Users().FindByID(ctx, order.UserID)
	if err != nil {
		s.logger(ctx, "webhook.notify.skipped", map[string]any{
			"orderId": order.ID.String(),
			"error":   err.Error(),
		})
		return
	}
	if err := s.mailer.SendOrderConfirmation(ctx, user.Email, order); err != nil {
		s.logger(ctx, "webhook.notify.failed", map[string]any{
			"orderId": order.ID.String(),
			"error":   err.Error(),
		})
	}
}

// ListFailures returns the most recent dead-letter records.
func (s *webhookService) ListFailures(ctx context.Context, limit int) ([]domain.WebhookFailure, error) {
	failures, err := s.registry.WebhookFailures().List(ctx, limit)
	if err != nil {
		return nil, errors.Join(ErrWebhookUnavailable, err)
	}
	return failures, nil
}
