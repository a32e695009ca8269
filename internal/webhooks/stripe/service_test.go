package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/verakoster/atelier-backend/internal/reconcile"
	"github.com/verakoster/atelier-backend/pkg/enums"
	pkgerrors "github.com/verakoster/atelier-backend/pkg/errors"
)

type stubReconciler struct {
	calls      int
	lastOrder  uuid.UUID
	lastRef    string
	result     *reconcile.Result
	err        error
}

func (s *stubReconciler) Reconcile(ctx context.Context, orderID uuid.UUID, sessionRef string) (*reconcile.Result, error) {
	s.calls++
	s.lastOrder = orderID
	s.lastRef = sessionRef
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &reconcile.Result{Paid: true, Status: enums.OrderStatusPaid, Applied: true}, nil
}

func sessionEvent(t *testing.T, eventType stripe.EventType, metadata map[string]string) *stripe.Event {
	t.Helper()

	session := &stripe.CheckoutSession{
		ID:       "cs_evt",
		Metadata: metadata,
	}
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_1",
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventTriggersReconciliation(t *testing.T) {
	orderID := uuid.New()
	rec := &stubReconciler{}
	service, err := NewService(ServiceParams{Reconciler: rec})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := sessionEvent(t, stripe.EventTypeCheckoutSessionCompleted, map[string]string{
		"order_id": orderID.String(),
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if rec.calls != 1 {
		t.Fatalf("expected one reconciliation, got %d", rec.calls)
	}
	if rec.lastOrder != orderID || rec.lastRef != "cs_evt" {
		t.Fatalf("reconciler received wrong args: %s %s", rec.lastOrder, rec.lastRef)
	}
}

func TestHandleEventIgnoresUnrelatedTypes(t *testing.T) {
	rec := &stubReconciler{}
	service, _ := NewService(ServiceParams{Reconciler: rec})

	event := &stripe.Event{
		Type: stripe.EventTypeInvoicePaid,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unrelated event types must be acknowledged: %v", err)
	}
	if rec.calls != 0 {
		t.Fatalf("unrelated events must not reconcile")
	}
}

func TestHandleEventSkipsSessionsWithoutOrderMetadata(t *testing.T) {
	rec := &stubReconciler{}
	service, _ := NewService(ServiceParams{Reconciler: rec})

	event := sessionEvent(t, stripe.EventTypeCheckoutSessionCompleted, nil)
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("foreign sessions must be acknowledged: %v", err)
	}
	if rec.calls != 0 {
		t.Fatalf("session without order id must not reconcile")
	}
}

func TestHandleEventRejectsMalformedOrderID(t *testing.T) {
	rec := &stubReconciler{}
	service, _ := NewService(ServiceParams{Reconciler: rec})

	event := sessionEvent(t, stripe.EventTypeCheckoutSessionCompleted, map[string]string{
		"order_id": "not-a-uuid",
	})
	err := service.HandleEvent(context.Background(), event)
	if err == nil {
		t.Fatalf("malformed order id must error")
	}
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %s", pkgerrors.CodeOf(err))
	}
}

func TestHandleEventPropagatesReconcileErrors(t *testing.T) {
	rec := &stubReconciler{err: pkgerrors.New(pkgerrors.CodeGatewayUnavailable, "gateway down")}
	service, _ := NewService(ServiceParams{Reconciler: rec})

	event := sessionEvent(t, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded, map[string]string{
		"order_id": uuid.NewString(),
	})
	err := service.HandleEvent(context.Background(), event)
	if err == nil {
		t.Fatalf("reconcile failure must propagate so the webhook retries")
	}
	if !pkgerrors.IsRetryable(err) {
		t.Fatalf("expected retryable error, got %s", pkgerrors.CodeOf(err))
	}
}

func TestHandleEventRequiresData(t *testing.T) {
	service, _ := NewService(ServiceParams{Reconciler: &stubReconciler{}})
	if err := service.HandleEvent(context.Background(), &stripe.Event{}); err == nil {
		t.Fatalf("event without data must be rejected")
	}
}
