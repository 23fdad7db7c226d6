package notifications

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
)

// OrderMailer delivers purchase notifications to buyers.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, recipient string, order domain.Order) error
}

// SMTPSettings holds the SMTP relay configuration for the mailer.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends order confirmation emails over an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPMailer builds a mailer from SMTP settings.
func NewSMTPMailer(settings SMTPSettings, logger *zap.Logger) (*SMTPMailer, error) {
	if settings.Host == "" {
		return nil, fmt.Errorf("notifications: smtp host is required")
	}
	if settings.From == "" {
		return nil, fmt.Errorf("notifications: smtp from address is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(settings.Host, settings.Port, settings.Username, settings.Password),
		from:   settings.From,
		logger: logger,
	}, nil
}

// SendOrderConfirmation emails the buyer a summary of the materialised order.
func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, recipient string, order domain.Order) error {
	if recipient == "" {
		return fmt.Errorf("notifications: recipient is required")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", fmt.Sprintf("Confirmación de compra %s", shortOrderRef(order)))
	msg.SetBody("text/plain", orderConfirmationBody(order))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("notifications: send order confirmation: %w", err)
	}

	m.logger.Info("order confirmation sent",
		zap.String("order_id", order.ID.String()),
		zap.String("recipient", recipient),
	)
	return nil
}

func shortOrderRef(order domain.Order) string {
	id := order.ID.String()
	if len(id) >= 8 {
		return "#" + id[:8]
	}
	return "#" + id
}

func orderConfirmationBody(order domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Gracias por tu compra.\n\nPedido %s\n\n", shortOrderRef(order))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x %s  $%s\n", item.Quantity, item.Name, item.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: $%s\n", order.Total.StringFixed(2))
	return b.String()
}

// NopMailer drops every notification. Used when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) SendOrderConfirmation(context.Context, string, domain.Order) error { return nil }
