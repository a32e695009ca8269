package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/verakoster/atelier-backend/pkg/enums"
)

// Order is the durable ledger record of a single buyer-to-seller purchase.
// PaidAt and ShippingDeadline are set together by the paid transition and
// never unset afterwards.
type Order struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID          uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null"`
	SellerID         uuid.UUID         `gorm:"column:seller_id;type:uuid;not null"`
	ListingID        uuid.UUID         `gorm:"column:listing_id;type:uuid;not null"`
	Quantity         int               `gorm:"column:quantity;not null;default:1"`
	UnitPrice        decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	SalePrice        decimal.Decimal   `gorm:"column:sale_price;type:numeric(12,2);not null"`
	Currency         enums.Currency    `gorm:"column:currency;type:text;not null;default:'EUR'"`
	Status           enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentRef       *string           `gorm:"column:payment_ref"`
	PaidAt           *time.Time        `gorm:"column:paid_at"`
	ShippingDeadline *time.Time        `gorm:"column:shipping_deadline"`
	Carrier          *string           `gorm:"column:carrier"`
	TrackingCode     *string           `gorm:"column:tracking_code"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
