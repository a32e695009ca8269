package listings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/verakoster/atelier-backend/pkg/db/models"
	"github.com/verakoster/atelier-backend/pkg/enums"
	pkgerrors "github.com/verakoster/atelier-backend/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a listings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, err
	}
	return &listing, nil
}

// ApplyOrder runs a single guarded UPDATE so concurrent buyers cannot drive
// the quantity negative: the WHERE clause only matches while stock remains,
// the decrement clamps at zero, and the sold flip happens in the same
// statement.
func (r *repository) ApplyOrder(ctx context.Context, listingID uuid.UUID, quantity int) (*DecrementResult, error) {
	if quantity <= 0 {
		quantity = 1
	}
	res := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND status <> ? AND COALESCE(quantity, 1) > 0", listingID, enums.ListingStatusSold).
		Updates(map[string]any{
			"quantity": gorm.Expr(
				"CASE WHEN COALESCE(quantity, 1) - ? < 0 THEN 0 ELSE COALESCE(quantity, 1) - ? END",
				quantity, quantity,
			),
			"status": gorm.Expr(
				"CASE WHEN COALESCE(quantity, 1) - ? <= 0 THEN ? ELSE status END",
				quantity, enums.ListingStatusSold,
			),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	listing, err := r.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	result := &DecrementResult{
		Applied:     res.RowsAffected > 0,
		NewQuantity: listing.EffectiveQuantity(),
	}
	if result.Applied && listing.Status == enums.ListingStatusSold {
		result.BecameSold = true
	}
	return result, nil
}
