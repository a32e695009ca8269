package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verakoster/atelier-backend/pkg/redis"
)

// eventScope namespaces processed Stripe event ids in redis so they cannot
// collide with the notification dedupe keys sharing the same store.
const eventScope = "stripe-webhook"

// DefaultEventTTL bounds how long a processed event id is remembered. Stripe
// retries failed webhook deliveries for up to three days, so the guard has to
// outlive the retry window.
const DefaultEventTTL = 72 * time.Hour

// IdempotencyGuard remembers Stripe event ids that were already handed to the
// reconciler, so webhook redeliveries become cheap acknowledgements.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl <= 0 {
		ttl = DefaultEventTTL
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
	}, nil
}

// CheckAndMark claims the event id, reporting true when a previous delivery
// already claimed it.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(eventScope, eventID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete releases a claimed event id so Stripe's redelivery can retry it.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(eventScope, eventID)
	return g.store.Del(ctx, key)
}
