package stripe

import (
	"net/http"
	"testing"

	"github.com/stripe/stripe-go/v84"

	"github.com/verakoster/atelier-backend/pkg/config"
	pkgerrors "github.com/verakoster/atelier-backend/pkg/errors"
)

func TestDomainCodeForStatus(t *testing.T) {
	cases := []struct {
		status int
		want   pkgerrors.Code
	}{
		{http.StatusUnauthorized, pkgerrors.CodeGatewayUnavailable},
		{http.StatusForbidden, pkgerrors.CodeGatewayUnavailable},
		{http.StatusNotFound, pkgerrors.CodeNotFound},
		{http.StatusTooManyRequests, pkgerrors.CodeRateLimit},
		{http.StatusBadRequest, pkgerrors.CodeValidation},
		{http.StatusTeapot, pkgerrors.CodeValidation},
		{http.StatusInternalServerError, pkgerrors.CodeGatewayUnavailable},
		{http.StatusBadGateway, pkgerrors.CodeGatewayUnavailable},
		{0, pkgerrors.CodeGatewayUnavailable},
	}
	for _, tc := range cases {
		if got := domainCodeForStatus(tc.status); got != tc.want {
			t.Fatalf("status %d: expected %s, got %s", tc.status, tc.want, got)
		}
	}
}

func TestMapCheckoutSessionPaidRequiresCompleteAndPaid(t *testing.T) {
	sess := &stripe.CheckoutSession{
		ID:            "cs_123",
		Status:        stripe.CheckoutSessionStatusComplete,
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_456"},
		Metadata: map[string]string{
			MetadataOrderID:   " ord-1 ",
			MetadataListingID: "lst-2",
		},
	}

	mapped := mapCheckoutSession(sess)
	if !mapped.Paid {
		t.Fatalf("complete+paid session should map to paid")
	}
	if mapped.PaymentRef != "pi_456" {
		t.Fatalf("expected payment intent ref, got %q", mapped.PaymentRef)
	}
	if mapped.OrderID != "ord-1" || mapped.ListingID != "lst-2" {
		t.Fatalf("metadata not trimmed/extracted: %+v", mapped)
	}

	sess.PaymentStatus = stripe.CheckoutSessionPaymentStatusUnpaid
	if mapCheckoutSession(sess).Paid {
		t.Fatalf("unpaid session must not map to paid")
	}

	sess.PaymentStatus = stripe.CheckoutSessionPaymentStatusPaid
	sess.Status = stripe.CheckoutSessionStatusOpen
	if mapCheckoutSession(sess).Paid {
		t.Fatalf("open session must not map to paid")
	}
}

func TestMapCheckoutSessionNil(t *testing.T) {
	mapped := mapCheckoutSession(nil)
	if mapped == nil || mapped.Paid {
		t.Fatalf("nil session should map to zero value")
	}
}

func TestNewClientValidatesKeyAndEnv(t *testing.T) {
	if _, err := NewClient(t.Context(), testConfig("sk_live_abc", "test"), nil); err == nil {
		t.Fatalf("live key must be rejected in test env")
	}
	if _, err := NewClient(t.Context(), testConfig("", "test"), nil); err == nil {
		t.Fatalf("empty key must be rejected")
	}
	if _, err := NewClient(t.Context(), testConfig("sk_test_abc", "staging"), nil); err == nil {
		t.Fatalf("unknown env must be rejected")
	}
	client, err := NewClient(t.Context(), testConfig("sk_test_abc", "test"), nil)
	if err != nil {
		t.Fatalf("valid test config rejected: %v", err)
	}
	if client.SigningSecret() != "whsec_test" {
		t.Fatalf("signing secret not kept")
	}
}

func testConfig(key, env string) config.StripeConfig {
	return config.StripeConfig{APIKey: key, Secret: "whsec_test", Env: env}
}
