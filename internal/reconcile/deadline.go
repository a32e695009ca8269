package reconcile

import "time"

// ShippingDeadline returns the timestamp the seller must ship by: paidAt plus
// the given number of business days. Saturdays and Sundays don't count; a
// payment confirmed on a weekend starts counting from the next Monday.
func ShippingDeadline(paidAt time.Time, businessDays int) time.Time {
	if businessDays <= 0 {
		return paidAt
	}
	deadline := paidAt
	remaining := businessDays
	for remaining > 0 {
		deadline = deadline.AddDate(0, 0, 1)
		switch deadline.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			remaining--
		}
	}
	return deadline
}
