package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/verakoster/atelier-backend/internal/reconcile"
	pkgerrors "github.com/verakoster/atelier-backend/pkg/errors"
	"github.com/verakoster/atelier-backend/pkg/logger"
	stripeclient "github.com/verakoster/atelier-backend/pkg/stripe"
)

type reconciler interface {
	Reconcile(ctx context.Context, orderID uuid.UUID, sessionRef string) (*reconcile.Result, error)
}

type ServiceParams struct {
	Reconciler reconciler
	Logger     *logger.Logger
}

// Service translates checkout webhook events into reconciliation runs. The
// webhook is an accelerator: every path it covers is also covered by the
// verify endpoint, so losing an event is never fatal.
type Service struct {
	reconciler reconciler
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Reconciler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciler required")
	}
	return &Service{
		reconciler: params.Reconciler,
		logg:       params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		return s.reconcileSession(ctx, &session)
	default:
		// Unhandled event types are acknowledged, not errors.
		return nil
	}
}

func (s *Service) reconcileSession(ctx context.Context, session *stripe.CheckoutSession) error {
	if session == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session is required")
	}

	rawOrderID := session.Metadata[stripeclient.MetadataOrderID]
	if rawOrderID == "" {
		// Sessions created outside the marketplace flow carry no order id.
		if s.logg != nil {
			s.logg.Warn(s.logg.WithSessionRef(ctx, session.ID), "checkout session without order metadata")
		}
		return nil
	}

	orderID, err := uuid.Parse(rawOrderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id in session metadata")
	}

	result, err := s.reconciler.Reconcile(ctx, orderID, session.ID)
	if err != nil {
		return err
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, orderID.String())
		logCtx = s.logg.WithSessionRef(logCtx, session.ID)
		logCtx = s.logg.WithField(logCtx, "applied", result.Applied)
		s.logg.Info(logCtx, "webhook reconciliation finished")
	}
	return nil
}
