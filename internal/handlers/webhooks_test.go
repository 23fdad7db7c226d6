package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stripe/stripe-go/v78"

	"github.com/jesusrosales17/ecommerce-sub001/internal/domain"
	"github.com/jesusrosales17/ecommerce-sub001/internal/payments"
	"github.com/jesusrosales17/ecommerce-sub001/internal/services"
)

type stubVerifier struct {
	event stripe.Event
	err   error
}

func (v *stubVerifier) Verify(payload []byte, signatureHeader string) (stripe.Event, error) {
	if v.err != nil {
		return stripe.Event{}, v.err
	}
	return v.event, nil
}

type stubWebhookService struct {
	handled []services.CompletedCheckout
	err     error
}

func (s *stubWebhookService) HandleCheckoutCompleted(_ context.Context, event services.CompletedCheckout) error {
	s.handled = append(s.handled, event)
	return s.err
}

func (s *stubWebhookService) ListFailures(context.Context, int) ([]domain.WebhookFailure, error) {
	return nil, nil
}

func completedSessionEvent(t *testing.T) stripe.Event {
	t.Helper()
	return stripe.Event{
		ID:   "evt_1",
		Type: eventCheckoutSessionCompleted,
		Data: &stripe.EventData{
			Raw: []byte(`{"id":"cs_live_1","payment_status":"paid","metadata":{"v":"1"}}`),
		},
	}
}

func postWebhook(router chi.Router, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/stripe", bytes.NewBufferString(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestWebhookHandlersProcessesCompletedSession(t *testing.T) {
	router := chi.NewRouter()
	service := &stubWebhookService{}
	NewWebhookHandlers(&stubVerifier{event: completedSessionEvent(t)}, service).Routes(router)

	rr := postWebhook(router, `{"id":"evt_1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if len(service.handled) != 1 {
		t.Fatalf("handled = %d events, want 1", len(service.handled))
	}
	event := service.handled[0]
	if event.SessionID != "cs_live_1" || event.PaymentStatus != "paid" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Metadata["v"] != "1" {
		t.Fatalf("metadata not forwarded: %v", event.Metadata)
	}
}

func TestWebhookHandlersRejectsBadSignature(t *testing.T) {
	router := chi.NewRouter()
	service := &stubWebhookService{}
	NewWebhookHandlers(&stubVerifier{err: payments.ErrSignatureInvalid}, service).Routes(router)

	rr := postWebhook(router, `{"id":"evt_1"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if len(service.handled) != 0 {
		t.Fatalf("service must not run on bad signature")
	}
}

func TestWebhookHandlersAcknowledgesIgnoredEventTypes(t *testing.T) {
	router := chi.NewRouter()
	service := &stubWebhookService{}
	NewWebhookHandlers(&stubVerifier{event: stripe.Event{
		ID:   "evt_2",
		Type: "payment_intent.succeeded",
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}}, service).Routes(router)

	rr := postWebhook(router, `{"id":"evt_2"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if len(service.handled) != 0 {
		t.Fatalf("ignored event must not reach the service")
	}
}

func TestWebhookHandlersRejectsInvalidMetadata(t *testing.T) {
	router := chi.NewRouter()
	service := &stubWebhookService{err: services.ErrWebhookInvalidMetadata}
	NewWebhookHandlers(&stubVerifier{event: completedSessionEvent(t)}, service).Routes(router)

	rr := postWebhook(router, `{"id":"evt_1"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
