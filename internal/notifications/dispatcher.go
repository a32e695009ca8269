package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	dbpkg "github.com/verakoster/atelier-backend/pkg/db"
	"github.com/verakoster/atelier-backend/pkg/db/models"
	"github.com/verakoster/atelier-backend/pkg/enums"
	pkgerrors "github.com/verakoster/atelier-backend/pkg/errors"
	"github.com/verakoster/atelier-backend/pkg/logger"
)

// DedupeStore is the redis surface the dispatcher uses as its fast dedupe
// guard. The unique index on notifications is the durable one behind it.
type DedupeStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	NotificationKey(recipientID, orderID, kind string) string
}

// Dispatcher delivers in-app notifications for paid orders. Delivery is
// best-effort and at-most-once per (recipient, order, kind); a failure here
// never rolls back the payment.
type Dispatcher interface {
	DispatchOrderPaid(ctx context.Context, order *models.Order, listing *models.Listing) error
}

type dispatcher struct {
	repo      Repository
	dedupe    DedupeStore
	dedupeTTL time.Duration
	logg      *logger.Logger
}

// NewDispatcher wires the notification dispatcher.
func NewDispatcher(repo Repository, dedupe DedupeStore, dedupeTTL time.Duration, logg *logger.Logger) (Dispatcher, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &dispatcher{
		repo:      repo,
		dedupe:    dedupe,
		dedupeTTL: dedupeTTL,
		logg:      logg,
	}, nil
}

// DispatchOrderPaid notifies the buyer and the seller. Each delivery is
// attempted independently; errors are combined so one recipient's failure
// never blocks the other's notification.
func (d *dispatcher) DispatchOrderPaid(ctx context.Context, order *models.Order, listing *models.Listing) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	title := ""
	listingID := order.ListingID
	if listing != nil {
		title = listing.Title
		listingID = listing.ID
	}

	var errs error
	buyerMsg := fmt.Sprintf("Your purchase of %q is confirmed.", title)
	if err := d.deliver(ctx, order.BuyerID, enums.NotificationPurchaseSuccess, order, listingID, title, buyerMsg); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("notify buyer: %w", err))
	}

	sellerMsg := fmt.Sprintf("New order for %q. Prepare it for shipment.", title)
	if err := d.deliver(ctx, order.SellerID, enums.NotificationNewOrder, order, listingID, title, sellerMsg); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("notify seller: %w", err))
	}
	return errs
}

func (d *dispatcher) deliver(ctx context.Context, recipientID uuid.UUID, kind enums.NotificationKind, order *models.Order, listingID uuid.UUID, title, message string) error {
	dedupeKey := ""
	if d.dedupe != nil {
		dedupeKey = d.dedupe.NotificationKey(recipientID.String(), order.ID.String(), string(kind))
		won, err := d.dedupe.SetNX(ctx, dedupeKey, "1", d.dedupeTTL)
		if err != nil {
			// Redis being down must not suppress delivery; the unique
			// index still dedupes.
			if d.logg != nil {
				d.logg.Warn(logCtxForOrder(ctx, d.logg, order), "notification dedupe store unavailable")
			}
			dedupeKey = ""
		} else if !won {
			return nil
		}
	}

	notification := &models.Notification{
		RecipientID:  recipientID,
		Kind:         kind,
		OrderID:      order.ID,
		ListingID:    listingID,
		ListingTitle: title,
		Message:      message,
	}
	if err := d.repo.Create(ctx, notification); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_notifications_dedupe") {
			return nil
		}
		// Release the redis claim so a retry can deliver.
		if dedupeKey != "" && d.dedupe != nil {
			_ = d.dedupe.Del(ctx, dedupeKey)
		}
		return err
	}

	if d.logg != nil {
		logCtx := d.logg.WithFields(ctx, map[string]any{
			"recipient_id": recipientID.String(),
			"kind":         string(kind),
		})
		d.logg.Info(d.logg.WithOrderID(logCtx, order.ID.String()), "notification delivered")
	}
	return nil
}

func logCtxForOrder(ctx context.Context, logg *logger.Logger, order *models.Order) context.Context {
	if order == nil {
		return ctx
	}
	return logg.WithOrderID(ctx, order.ID.String())
}
