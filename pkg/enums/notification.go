package enums

// NotificationKind identifies the user-visible event a notification carries.
type NotificationKind string

const (
	NotificationPurchaseSuccess NotificationKind = "purchase_success"
	NotificationNewOrder        NotificationKind = "new_order"
)
