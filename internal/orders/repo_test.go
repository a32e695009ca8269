package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/verakoster/atelier-backend/pkg/db/models"
	"github.com/verakoster/atelier-backend/pkg/enums"
	pkgerrors "github.com/verakoster/atelier-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  listing_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  unit_price NUMERIC NOT NULL,
  sale_price NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'EUR',
  status TEXT NOT NULL DEFAULT 'pending',
  payment_ref TEXT,
  paid_at DATETIME,
  shipping_deadline DATETIME,
  carrier TEXT,
  tracking_code TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)

	// In-memory sqlite gives every pooled connection its own database; one
	// connection keeps concurrent statements on the same one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func newPendingOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:        uuid.New(),
		BuyerID:   uuid.New(),
		SellerID:  uuid.New(),
		ListingID: uuid.New(),
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(120),
		SalePrice: decimal.NewFromInt(120),
		Currency:  enums.CurrencyEUR,
		Status:    enums.OrderStatusPending,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestFindByIDReturnsNotFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestMarkPaidTransitionsPendingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := newPendingOrder(t, db)

	paidAt := time.Now().UTC().Truncate(time.Second)
	deadline := paidAt.AddDate(0, 0, 3)

	applied, err := repo.MarkPaid(context.Background(), order.ID, "pi_123", paidAt, deadline)
	require.NoError(t, err)
	assert.True(t, applied)

	stored, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, stored.Status)
	require.NotNil(t, stored.PaymentRef)
	assert.Equal(t, "pi_123", *stored.PaymentRef)
	require.NotNil(t, stored.PaidAt)
	require.NotNil(t, stored.ShippingDeadline)
}

func TestMarkPaidIsExactlyOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := newPendingOrder(t, db)

	now := time.Now().UTC()
	applied, err := repo.MarkPaid(context.Background(), order.ID, "pi_first", now, now.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = repo.MarkPaid(context.Background(), order.ID, "pi_second", now, now.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.False(t, applied, "second transition must lose the CAS")

	stored, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaymentRef)
	assert.Equal(t, "pi_first", *stored.PaymentRef, "loser must not overwrite the winner's payment ref")
}

func TestMarkPaidConcurrentCallersSingleWinner(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := newPendingOrder(t, db)

	const callers = 8
	now := time.Now().UTC()
	deadline := now.AddDate(0, 0, 3)

	var wg sync.WaitGroup
	results := make(chan bool, callers)
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			applied, err := repo.MarkPaid(context.Background(), order.ID, fmt.Sprintf("pi_%d", n), now, deadline)
			if err != nil {
				errs <- err
				return
			}
			results <- applied
		}(i)
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent MarkPaid: %v", err)
	}
	wins := 0
	for applied := range results {
		if applied {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one caller may win the paid transition")

	stored, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, stored.Status)
}

func TestMarkPaidSkipsLaterStates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := newPendingOrder(t, db)

	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("status", enums.OrderStatusShipped).Error)

	now := time.Now().UTC()
	applied, err := repo.MarkPaid(context.Background(), order.ID, "pi_late", now, now.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.False(t, applied)

	stored, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, stored.Status, "shipped order must not regress")
}

func TestUpdateShipmentRequiresPaid(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := newPendingOrder(t, db)

	applied, err := repo.UpdateShipment(context.Background(), order.ID, "dhl", "JD0123")
	require.NoError(t, err)
	assert.False(t, applied, "pending order cannot ship")

	now := time.Now().UTC()
	_, err = repo.MarkPaid(context.Background(), order.ID, "pi_123", now, now.AddDate(0, 0, 3))
	require.NoError(t, err)

	applied, err = repo.UpdateShipment(context.Background(), order.ID, "dhl", "JD0123")
	require.NoError(t, err)
	assert.True(t, applied)

	stored, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, stored.Status)
}
