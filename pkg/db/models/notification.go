package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/verakoster/atelier-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to recipients.
// The unique index over (recipient_id, order_id, kind) is the durable dedupe
// guard behind the redis one.
type Notification struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID  uuid.UUID              `gorm:"column:recipient_id;type:uuid;not null;uniqueIndex:ux_notifications_dedupe"`
	Kind         enums.NotificationKind `gorm:"column:kind;type:text;not null;uniqueIndex:ux_notifications_dedupe"`
	OrderID      uuid.UUID              `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_notifications_dedupe"`
	ListingID    uuid.UUID              `gorm:"column:listing_id;type:uuid;not null"`
	ListingTitle string                 `gorm:"column:listing_title;type:text;not null"`
	Message      string                 `gorm:"column:message;type:text;not null"`
	ReadAt       *time.Time             `gorm:"column:read_at"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
}
