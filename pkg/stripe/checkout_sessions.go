package stripe

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v84"
)

const (
	// MetadataOrderID is the checkout-session metadata key carrying our
	// order id; set at session creation and read back during verification.
	MetadataOrderID = "order_id"
	// MetadataListingID carries the purchased listing id when known.
	MetadataListingID = "listing_id"
)

// CheckoutSession is the gateway-side view of a checkout attempt, reduced to
// the fields reconciliation cares about.
type CheckoutSession struct {
	Ref        string
	Paid       bool
	Status     string
	PaymentRef string
	OrderID    string
	ListingID  string
}

// RetrieveCheckoutSession fetches a single session by its reference.
func (c *Client) RetrieveCheckoutSession(ctx context.Context, ref string) (*CheckoutSession, error) {
	c.log(ctx, "request", "retrieve_checkout_session", map[string]any{"session_ref": ref})

	sess, err := c.api.V1CheckoutSessions.Retrieve(ctx, ref, &stripe.CheckoutSessionRetrieveParams{})
	if err != nil {
		c.log(ctx, "error", "retrieve_checkout_session", map[string]any{"error": err.Error()})
		return nil, c.mapStripeError(err, "retrieve checkout session")
	}

	mapped := mapCheckoutSession(sess)
	c.log(ctx, "response", "retrieve_checkout_session", map[string]any{
		"session_ref": mapped.Ref,
		"status":      mapped.Status,
		"paid":        mapped.Paid,
	})
	return mapped, nil
}

// ListRecentCheckoutSessions returns up to limit of the most recent sessions,
// newest first. Used as the metadata-search fallback when a verify request
// arrives without a session reference.
func (c *Client) ListRecentCheckoutSessions(ctx context.Context, limit int) ([]*CheckoutSession, error) {
	if limit <= 0 {
		limit = 10
	}
	c.log(ctx, "request", "list_checkout_sessions", map[string]any{"limit": limit})

	params := &stripe.CheckoutSessionListParams{}
	params.Limit = stripe.Int64(int64(limit))

	sessions := make([]*CheckoutSession, 0, limit)
	for sess, err := range c.api.V1CheckoutSessions.List(ctx, params) {
		if err != nil {
			c.log(ctx, "error", "list_checkout_sessions", map[string]any{"error": err.Error()})
			return nil, c.mapStripeError(err, "list checkout sessions")
		}
		sessions = append(sessions, mapCheckoutSession(sess))
		if len(sessions) >= limit {
			break
		}
	}

	c.log(ctx, "response", "list_checkout_sessions", map[string]any{"count": len(sessions)})
	return sessions, nil
}

func mapCheckoutSession(sess *stripe.CheckoutSession) *CheckoutSession {
	if sess == nil {
		return &CheckoutSession{}
	}

	mapped := &CheckoutSession{
		Ref:    sess.ID,
		Status: string(sess.Status),
		Paid: sess.Status == stripe.CheckoutSessionStatusComplete &&
			sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if sess.PaymentIntent != nil {
		mapped.PaymentRef = sess.PaymentIntent.ID
	}
	if sess.Metadata != nil {
		mapped.OrderID = strings.TrimSpace(sess.Metadata[MetadataOrderID])
		mapped.ListingID = strings.TrimSpace(sess.Metadata[MetadataListingID])
	}
	return mapped
}
