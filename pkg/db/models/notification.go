package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/types"
)

// Notification stores in-app notification payloads scoped to recipients.
//
// DedupKey and DedupBucket back the suppression window: the unique index
// ux_notifications_dedup on (recipient_id, dedup_key, dedup_bucket) makes the
// losing insert of a race a no-op instead of a duplicate. Rows without a dedup
// key leave both columns empty and are never suppressed.
type Notification struct {
	ID          uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID                  `gorm:"column:recipient_id;type:uuid;not null;index"`
	Type        enums.NotificationType     `gorm:"column:type;type:notification_type;not null"`
	Category    enums.NotificationCategory `gorm:"column:category;type:notification_category;not null"`
	Priority    enums.NotificationPriority `gorm:"column:priority;type:notification_priority;not null;default:'medium'"`
	Title       string                     `gorm:"type:text;not null"`
	Body        string                     `gorm:"type:text;not null"`
	Payload     types.JSONMap              `gorm:"column:payload;type:jsonb;serializer:json"`
	ActionURL   *string                    `gorm:"column:action_url;type:text"`
	RelatedType *string                    `gorm:"column:related_type;type:text"`
	RelatedID   *uuid.UUID                 `gorm:"column:related_id;type:uuid"`
	DedupKey    *string                    `gorm:"column:dedup_key;type:text"`
	DedupBucket *time.Time                 `gorm:"column:dedup_bucket;type:timestamptz"`
	ReadAt      *time.Time                 `gorm:"column:read_at;type:timestamptz"`
	CreatedAt   time.Time                  `gorm:"column:created_at;type:timestamptz;default:now()"`
}
