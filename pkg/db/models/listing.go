package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/verakoster/atelier-backend/pkg/enums"
)

// Listing is a sellable artwork entry. Quantity is nullable; a NULL value is
// read as 1 (single-edition artwork created before quantity tracking).
type Listing struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID  uuid.UUID           `gorm:"column:seller_id;type:uuid;not null"`
	Title     string              `gorm:"column:title;type:text;not null"`
	Quantity  *int                `gorm:"column:quantity"`
	Status    enums.ListingStatus `gorm:"column:status;type:text;not null;default:'available'"`
	Price     decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectiveQuantity resolves the NULL-means-one default.
func (l Listing) EffectiveQuantity() int {
	if l.Quantity == nil {
		return 1
	}
	return *l.Quantity
}
