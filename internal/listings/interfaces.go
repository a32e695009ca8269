package listings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verakoster/atelier-backend/pkg/db/models"
)

// DecrementResult describes the outcome of applying an order to a listing.
type DecrementResult struct {
	// Applied is false when the listing was already sold out; the order
	// itself stays paid regardless.
	Applied     bool
	NewQuantity int
	BecameSold  bool
}

// Repository defines persistence operations for artwork listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	// ApplyOrder decrements the available quantity by the order's quantity,
	// marking the listing sold when it reaches zero. A NULL quantity counts
	// as one. The quantity never goes below zero: an order larger than the
	// remaining stock clamps it to zero and still flips the listing to sold.
	ApplyOrder(ctx context.Context, listingID uuid.UUID, quantity int) (*DecrementResult, error)
}
