package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verakoster/atelier-backend/pkg/db/models"
)

// Repository defines persistence operations for the order ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// MarkPaid flips a pending order to paid, recording the payment reference,
	// paid timestamp and shipping deadline in the same statement. It reports
	// whether this call performed the transition; false means another caller
	// already did (or the order was past pending).
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentRef string, paidAt, shippingDeadline time.Time) (bool, error)
	UpdateShipment(ctx context.Context, orderID uuid.UUID, carrier, trackingCode string) (bool, error)
}
