package config

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "store")
	t.Setenv("DB_NAME", "storefront")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_123")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CHECKOUT_SUCCESS_URL", "https://shop.example.com/checkout/success")
	t.Setenv("CHECKOUT_CANCEL_URL", "https://shop.example.com/checkout/cancel")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("CHECKOUT_CURRENCY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != defaultPort {
		t.Fatalf("expected default port, got %s", cfg.Server.Port)
	}
	if cfg.Database.Port != defaultDBPort {
		t.Fatalf("expected default db port, got %d", cfg.Database.Port)
	}
	if cfg.Checkout.Currency != defaultCurrency {
		t.Fatalf("expected default currency, got %s", cfg.Checkout.Currency)
	}
	if cfg.SMTP.Enabled() {
		t.Fatal("expected mail to be disabled without SMTP_HOST")
	}
}

func TestLoadReportsMissingFields(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := verr.Fields()
	if !slices.Contains(fields, "DB_HOST") || !slices.Contains(fields, "STRIPE_WEBHOOK_SECRET") {
		t.Fatalf("expected missing fields listed, got %v", fields)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("CHECKOUT_CURRENCY", "usd")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("expected 5s read timeout, got %s", cfg.Server.ReadTimeout)
	}
	if cfg.Checkout.Currency != "USD" {
		t.Fatalf("expected currency upper-cased, got %s", cfg.Checkout.Currency)
	}
	want := "host=localhost port=6543 user=store password=pw dbname=storefront sslmode=disable"
	if got := cfg.Database.DSN(); got != want {
		t.Fatalf("unexpected dsn %q", got)
	}
}

func TestSMTPRequiresFromWhenEnabled(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "")

	_, err := Load()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !slices.Contains(verr.Fields(), "SMTP_FROM") {
		t.Fatalf("expected SMTP_FROM flagged, got %v", verr.Fields())
	}
}
