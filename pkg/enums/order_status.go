package enums

// OrderStatus tracks the forward-only lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusDisputed  OrderStatus = "disputed"
	OrderStatusCanceled  OrderStatus = "canceled"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusPaid:      1,
	OrderStatusShipped:   2,
	OrderStatusDelivered: 3,
	OrderStatusDisputed:  4,
}

// AtOrPastPaid reports whether the status already reached the paid
// transition. Later states are owned by the fulfillment subsystem and must
// never be reverted from here.
func (s OrderStatus) AtOrPastPaid() bool {
	rank, ok := orderStatusRank[s]
	if !ok {
		return false
	}
	return rank >= orderStatusRank[OrderStatusPaid]
}
