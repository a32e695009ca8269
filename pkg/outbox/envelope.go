package outbox

import (
	"encoding/json"
	"time"
)

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// OrderPaidData is the payload body for order.paid events.
type OrderPaidData struct {
	OrderID          string    `json:"orderId"`
	ListingID        string    `json:"listingId"`
	BuyerID          string    `json:"buyerId"`
	SellerID         string    `json:"sellerId"`
	PaymentRef       string    `json:"paymentRef"`
	PaidAt           time.Time `json:"paidAt"`
	ShippingDeadline time.Time `json:"shippingDeadline"`
}
