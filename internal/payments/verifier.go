package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verakoster/atelier-backend/pkg/config"
	pkgerrors "github.com/verakoster/atelier-backend/pkg/errors"
	"github.com/verakoster/atelier-backend/pkg/logger"
	"github.com/verakoster/atelier-backend/pkg/stripe"
)

// GatewayClient is the payment-gateway surface the verifier needs.
type GatewayClient interface {
	RetrieveCheckoutSession(ctx context.Context, ref string) (*stripe.CheckoutSession, error)
	ListRecentCheckoutSessions(ctx context.Context, limit int) ([]*stripe.CheckoutSession, error)
}

// Verification is the verifier's answer for a single order.
type Verification struct {
	Paid       bool
	Status     string
	SessionRef string
	PaymentRef string
}

// StatusPending is reported when no completed session exists for the order.
// Absence of payment is an answer, not an error.
const StatusPending = "pending"

// Verifier resolves whether an order has actually been paid at the gateway.
type Verifier interface {
	Verify(ctx context.Context, orderID uuid.UUID, sessionRef string) (*Verification, error)
}

type verifier struct {
	gateway     GatewayClient
	searchLimit int
	timeout     time.Duration
	logg        *logger.Logger
}

// NewVerifier builds a payment verifier over the given gateway client.
func NewVerifier(gateway GatewayClient, cfg config.ReconcileConfig, logg *logger.Logger) (Verifier, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	limit := cfg.SessionSearchLimit
	if limit <= 0 {
		limit = 50
	}
	return &verifier{
		gateway:     gateway,
		searchLimit: limit,
		timeout:     cfg.GatewayTimeout,
		logg:        logg,
	}, nil
}

// Verify resolves the payment state of an order. With a session reference it
// asks the gateway directly; without one it scans recent sessions for a
// matching order id in the metadata. Gateway failures surface as typed
// retryable errors and are never folded into "not paid".
func (v *verifier) Verify(ctx context.Context, orderID uuid.UUID, sessionRef string) (*Verification, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	if ref := strings.TrimSpace(sessionRef); ref != "" {
		return v.verifyByRef(ctx, orderID, ref)
	}
	return v.verifyBySearch(ctx, orderID)
}

func (v *verifier) verifyByRef(ctx context.Context, orderID uuid.UUID, ref string) (*Verification, error) {
	sess, err := v.gateway.RetrieveCheckoutSession(ctx, ref)
	if err != nil {
		return nil, err
	}
	if sess.OrderID != "" && sess.OrderID != orderID.String() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session does not belong to this order")
	}
	return verificationFromSession(sess), nil
}

func (v *verifier) verifyBySearch(ctx context.Context, orderID uuid.UUID) (*Verification, error) {
	sessions, err := v.gateway.ListRecentCheckoutSessions(ctx, v.searchLimit)
	if err != nil {
		return nil, err
	}

	want := orderID.String()
	for _, sess := range sessions {
		if sess.OrderID != want {
			continue
		}
		if sess.Paid {
			return verificationFromSession(sess), nil
		}
		// Keep scanning: the buyer may have abandoned one session and
		// completed a later one.
	}

	if v.logg != nil {
		logCtx := v.logg.WithOrderID(ctx, want)
		v.logg.Info(logCtx, "no completed session found for order")
	}
	return &Verification{Paid: false, Status: StatusPending}, nil
}

func verificationFromSession(sess *stripe.CheckoutSession) *Verification {
	return &Verification{
		Paid:       sess.Paid,
		Status:     sess.Status,
		SessionRef: sess.Ref,
		PaymentRef: sess.PaymentRef,
	}
}
