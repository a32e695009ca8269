package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verakoster/atelier-backend/pkg/db/models"
	"github.com/verakoster/atelier-backend/pkg/enums"
	pkgerrors "github.com/verakoster/atelier-backend/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return &order, nil
}

// MarkPaid is the linearization point of payment reconciliation. The guarded
// UPDATE succeeds for exactly one caller per order; everyone else sees zero
// rows affected.
func (r *repository) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentRef string, paidAt, shippingDeadline time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, enums.OrderStatusPending).
		Updates(map[string]any{
			"status":            enums.OrderStatusPaid,
			"payment_ref":       paymentRef,
			"paid_at":           paidAt,
			"shipping_deadline": shippingDeadline,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateShipment records carrier details on a paid order, moving it to shipped.
func (r *repository) UpdateShipment(ctx context.Context, orderID uuid.UUID, carrier, trackingCode string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, enums.OrderStatusPaid).
		Updates(map[string]any{
			"status":        enums.OrderStatusShipped,
			"carrier":       carrier,
			"tracking_code": trackingCode,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
