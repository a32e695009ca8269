package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verakoster/atelier-backend/internal/listings"
	"github.com/verakoster/atelier-backend/internal/notifications"
	"github.com/verakoster/atelier-backend/internal/orders"
	"github.com/verakoster/atelier-backend/internal/payments"
	"github.com/verakoster/atelier-backend/pkg/config"
	"github.com/verakoster/atelier-backend/pkg/db/models"
	"github.com/verakoster/atelier-backend/pkg/enums"
	pkgerrors "github.com/verakoster/atelier-backend/pkg/errors"
	"github.com/verakoster/atelier-backend/pkg/logger"
	"github.com/verakoster/atelier-backend/pkg/metrics"
	"github.com/verakoster/atelier-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Result is the caller-visible answer of a reconciliation run.
type Result struct {
	Paid    bool
	Status  enums.OrderStatus
	Applied bool
}

// Service drives one order through payment reconciliation: verify at the
// gateway, win (or lose) the paid transition, then run the side effects.
type Service interface {
	Reconcile(ctx context.Context, orderID uuid.UUID, sessionRef string) (*Result, error)
}

type service struct {
	orders     orders.Repository
	listings   listings.Repository
	verifier   payments.Verifier
	dispatcher notifications.Dispatcher
	tx         txRunner
	outbox     outboxEmitter
	cfg        config.ReconcileConfig
	metrics    *metrics.ReconcileMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// ServiceParams carries the orchestrator's dependencies.
type ServiceParams struct {
	Orders     orders.Repository
	Listings   listings.Repository
	Verifier   payments.Verifier
	Dispatcher notifications.Dispatcher
	Tx         txRunner
	Outbox     outboxEmitter
	Config     config.ReconcileConfig
	Metrics    *metrics.ReconcileMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

// NewService validates and wires the reconciliation orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listings repository required")
	}
	if params.Verifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment verifier required")
	}
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification dispatcher required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox emitter required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		orders:     params.Orders,
		listings:   params.Listings,
		verifier:   params.Verifier,
		dispatcher: params.Dispatcher,
		tx:         params.Tx,
		outbox:     params.Outbox,
		cfg:        params.Config,
		metrics:    params.Metrics,
		logg:       params.Logger,
		now:        now,
	}, nil
}

// Reconcile is safe to call any number of times for the same order. The
// ledger transition is the only decision point: side effects run exactly for
// the call that wins it, and a gateway outage aborts before any write.
func (s *service) Reconcile(ctx context.Context, orderID uuid.UUID, sessionRef string) (*Result, error) {
	started := s.now()
	result, err := s.reconcile(ctx, orderID, sessionRef)
	s.observe(started, result, err)
	return result, err
}

func (s *service) reconcile(ctx context.Context, orderID uuid.UUID, sessionRef string) (*Result, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	ctx = s.logCtx(ctx, order)

	// Fast path: the transition already happened, nothing to verify and
	// nothing to write.
	if order.Status.AtOrPastPaid() {
		return &Result{Paid: true, Status: order.Status, Applied: false}, nil
	}

	verification, err := s.verifier.Verify(ctx, orderID, sessionRef)
	if err != nil {
		return nil, err
	}
	if !verification.Paid {
		return &Result{Paid: false, Status: order.Status, Applied: false}, nil
	}

	paymentRef := verification.PaymentRef
	if paymentRef == "" {
		paymentRef = verification.SessionRef
	}
	paidAt := s.now()
	deadline := ShippingDeadline(paidAt, s.cfg.ShipBusinessDays)

	applied := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		won, err := s.orders.WithTx(tx).MarkPaid(ctx, order.ID, paymentRef, paidAt, deadline)
		if err != nil {
			return err
		}
		applied = won
		if !won {
			return nil
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			OccurredAt:    paidAt,
			Data: outbox.OrderPaidData{
				OrderID:          order.ID.String(),
				ListingID:        order.ListingID.String(),
				BuyerID:          order.BuyerID.String(),
				SellerID:         order.SellerID.String(),
				PaymentRef:       paymentRef,
				PaidAt:           paidAt,
				ShippingDeadline: deadline,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if !applied {
		// The CAS was lost: usually a concurrent caller won the transition,
		// but another subsystem may have moved the order elsewhere (e.g.
		// canceled it). Report whatever the ledger holds now.
		current, err := s.orders.FindByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		return &Result{Paid: current.Status.AtOrPastPaid(), Status: current.Status, Applied: false}, nil
	}

	s.runSideEffects(ctx, order)
	return &Result{Paid: true, Status: enums.OrderStatusPaid, Applied: true}, nil
}

// runSideEffects performs the winner-only best-effort work. Failures are
// logged and counted; the order stays paid regardless.
func (s *service) runSideEffects(ctx context.Context, order *models.Order) {
	decrement, err := s.listings.ApplyOrder(ctx, order.ListingID, order.Quantity)
	if err != nil {
		s.sideEffectFailed(ctx, "inventory", err)
	} else if !decrement.Applied {
		if s.logg != nil {
			s.logg.Warn(ctx, "listing already sold out, order stays paid")
		}
	}

	listing, err := s.listings.FindByID(ctx, order.ListingID)
	if err != nil {
		s.sideEffectFailed(ctx, "listing_lookup", err)
		listing = nil
	}

	if err := s.dispatcher.DispatchOrderPaid(ctx, order, listing); err != nil {
		s.sideEffectFailed(ctx, "notify", err)
	}
}

func (s *service) sideEffectFailed(ctx context.Context, step string, err error) {
	if s.metrics != nil {
		s.metrics.IncSideEffectFailure(step)
	}
	if s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "step", step), "reconcile side effect failed", err)
	}
}

func (s *service) logCtx(ctx context.Context, order *models.Order) context.Context {
	if s.logg == nil {
		return ctx
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	return s.logg.WithListingID(ctx, order.ListingID.String())
}

func (s *service) observe(started time.Time, result *Result, err error) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeError
	switch {
	case err != nil && pkgerrors.CodeOf(err) == pkgerrors.CodeGatewayUnavailable:
		outcome = metrics.OutcomeGatewayUnavailable
	case err != nil:
		outcome = metrics.OutcomeError
	case result.Applied:
		outcome = metrics.OutcomeApplied
	case result.Paid:
		outcome = metrics.OutcomeAlreadyApplied
	default:
		outcome = metrics.OutcomeUnpaid
	}
	s.metrics.ObserveRun(outcome, s.now().Sub(started))
}
