package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/verakoster/atelier-backend/pkg/db/models"
	"github.com/verakoster/atelier-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	table := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  recipient_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  order_id TEXT NOT NULL,
  listing_id TEXT NOT NULL,
  listing_title TEXT NOT NULL,
  message TEXT NOT NULL,
  read_at DATETIME,
  created_at DATETIME
);`
	index := `
CREATE UNIQUE INDEX IF NOT EXISTS ux_notifications_dedupe
  ON notifications (recipient_id, kind, order_id);`
	require.NoError(t, db.Exec(table).Error)
	require.NoError(t, db.Exec(index).Error)
	return db
}

func seedNotification(t *testing.T, repo Repository, recipientID uuid.UUID, createdAt time.Time) *models.Notification {
	t.Helper()

	n := &models.Notification{
		ID:           uuid.New(),
		RecipientID:  recipientID,
		Kind:         enums.NotificationPurchaseSuccess,
		OrderID:      uuid.New(),
		ListingID:    uuid.New(),
		ListingTitle: "Night Ferry",
		Message:      "Your purchase of \"Night Ferry\" is confirmed.",
		CreatedAt:    createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), n))
	return n
}

func TestCreateEnforcesDedupeIndex(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	recipient := uuid.New()
	orderID := uuid.New()
	base := models.Notification{
		ID:           uuid.New(),
		RecipientID:  recipient,
		Kind:         enums.NotificationNewOrder,
		OrderID:      orderID,
		ListingID:    uuid.New(),
		ListingTitle: "Night Ferry",
		Message:      "New order for \"Night Ferry\". Prepare it for shipment.",
	}
	require.NoError(t, repo.Create(context.Background(), &base))

	dup := base
	dup.ID = uuid.New()
	err := repo.Create(context.Background(), &dup)
	require.Error(t, err, "duplicate (recipient, kind, order) must be rejected")
}

func TestListPaginatesNewestFirst(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	recipient := uuid.New()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedNotification(t, repo, recipient, base.Add(time.Duration(i)*time.Minute))
	}
	seedNotification(t, repo, uuid.New(), base) // other recipient, must not appear

	rows, cursor, err := repo.List(context.Background(), listNotificationsParams{
		RecipientID: recipient,
		Limit:       3,
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.NotNil(t, cursor)
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))

	rest, next, err := repo.List(context.Background(), listNotificationsParams{
		RecipientID: recipient,
		Limit:       3,
		Cursor:      cursor,
	})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.Nil(t, next)
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	recipient := uuid.New()
	n := seedNotification(t, repo, recipient, time.Now().UTC())

	result, err := repo.MarkRead(context.Background(), uuid.New(), n.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, result.Found, "foreign recipient must not see the notification")

	result, err = repo.MarkRead(context.Background(), recipient, n.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.True(t, result.Updated)

	// Second read is found but not updated.
	result, err = repo.MarkRead(context.Background(), recipient, n.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.False(t, result.Updated)
}

func TestMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	recipient := uuid.New()
	seedNotification(t, repo, recipient, time.Now().UTC())
	seedNotification(t, repo, recipient, time.Now().UTC())

	count, err := repo.MarkAllRead(context.Background(), recipient, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	count, err = repo.MarkAllRead(context.Background(), recipient, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
