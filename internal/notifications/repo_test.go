package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db/models"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/pagination"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  recipient_id TEXT NOT NULL,
  type TEXT NOT NULL,
  category TEXT NOT NULL,
  priority TEXT NOT NULL DEFAULT 'medium',
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  payload TEXT,
  action_url TEXT,
  related_type TEXT,
  related_id TEXT,
  dedup_key TEXT,
  dedup_bucket DATETIME,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedNotification(t *testing.T, repo Repository, recipientID uuid.UUID, title string, createdAt time.Time, readAt *time.Time) {
	t.Helper()

	row := &models.Notification{
		ID:          uuid.New(),
		RecipientID: recipientID,
		Type:        enums.NotificationTypeSystem,
		Category:    enums.CategoryStatusChange,
		Priority:    enums.PriorityMedium,
		Title:       title,
		Body:        title,
		ReadAt:      readAt,
		CreatedAt:   createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), row))
}

func TestRepository_ListReturnsRequestedPageSize(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	recipientID := uuid.New()
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 30; i++ {
		seedNotification(t, repo, recipientID, fmt.Sprintf("update %d", i), base.Add(time.Duration(i)*time.Minute), nil)
	}

	svc, err := NewService(ServiceParams{Repo: repo})
	require.NoError(t, err)

	result, err := svc.List(context.Background(), ListParams{RecipientID: recipientID, Limit: 25})
	require.NoError(t, err)
	assert.Len(t, result.Items, 25)
	assert.NotEmpty(t, result.Cursor, "a next page exists, cursor expected")

	// Omitted limit falls back to the default page size.
	result, err = svc.List(context.Background(), ListParams{RecipientID: recipientID})
	require.NoError(t, err)
	assert.Len(t, result.Items, pagination.DefaultLimit)

	result, err = svc.List(context.Background(), ListParams{RecipientID: recipientID, Limit: 40})
	require.NoError(t, err)
	assert.Len(t, result.Items, 30)
	assert.Empty(t, result.Cursor, "no page follows the full set")
}

func TestRepository_DeleteOlderThanKeepsUnread(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	recipientID := uuid.New()
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	oldReadAt := now.AddDate(0, 0, -100)

	seedNotification(t, repo, recipientID, "stale unread", now.AddDate(0, 0, -120), nil)
	seedNotification(t, repo, recipientID, "stale read", now.AddDate(0, 0, -120), &oldReadAt)
	seedNotification(t, repo, recipientID, "fresh read", now.AddDate(0, 0, -5), &now)

	deleted, err := repo.DeleteOlderThan(context.Background(), now.AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted, "only the stale read row is pruned")

	rows, _, err := repo.List(context.Background(), listNotificationsParams{RecipientID: recipientID})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	titles := []string{rows[0].Title, rows[1].Title}
	assert.Contains(t, titles, "stale unread")
	assert.Contains(t, titles, "fresh read")
}
