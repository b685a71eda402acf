package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Betech-JSC/bed-app-annha-sub010/internal/risk"
	dbpkg "github.com/Betech-JSC/bed-app-annha-sub010/pkg/db"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db/models"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
	pkgerrors "github.com/Betech-JSC/bed-app-annha-sub010/pkg/errors"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/outbox"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/outbox/payloads"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/types"
)

const dedupLockTTL = 30 * time.Second

// Input describes one notification to be created.
type Input struct {
	Type        enums.NotificationType
	Category    enums.NotificationCategory
	Priority    enums.NotificationPriority
	Title       string
	Body        string
	Payload     map[string]any
	ActionURL   *string
	RelatedType *string
	RelatedID   *uuid.UUID

	// DedupKey and Window enable suppression. Empty DedupKey means the
	// notification is always created.
	DedupKey string
	Window   time.Duration
}

// Dispatcher persists notifications and queues their external delivery via
// the outbox, applying the suppression window when a dedup key is present.
type Dispatcher interface {
	// SendTx creates the notification inside the caller's transaction.
	// Returns false when the dedup guard suppressed it.
	SendTx(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID, input Input) (bool, error)
	// SendToUsersTx fans one input out to several recipients, skipping
	// duplicates in the recipient list. Returns how many were created.
	SendToUsersTx(ctx context.Context, tx *gorm.DB, recipientIDs []uuid.UUID, input Input) (int, error)
	// DispatchVerdict opens its own transaction and applies the full
	// check-then-insert dedup protocol for an evaluator verdict.
	DispatchVerdict(ctx context.Context, recipientID uuid.UUID, verdict risk.Verdict) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type dedupLocker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	DedupKey(recipientID, key string) string
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// DispatcherParams wires the dispatcher dependencies.
type DispatcherParams struct {
	DB     txRunner
	Repo   Repository
	Outbox outboxEmitter
	Locker dedupLocker
	Logger *logger.Logger
	Now    func() time.Time
}

type dispatcher struct {
	db     txRunner
	repo   Repository
	outbox outboxEmitter
	locker dedupLocker
	logg   *logger.Logger
	now    func() time.Time
}

// NewDispatcher validates dependencies and returns a Dispatcher. The locker
// is optional: without it the store-level uniqueness guard still closes the
// dedup race, the lock only avoids wasted inserts.
func NewDispatcher(params DispatcherParams) (Dispatcher, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &dispatcher{
		db:     params.DB,
		repo:   params.Repo,
		outbox: params.Outbox,
		locker: params.Locker,
		logg:   params.Logger,
		now:    now,
	}, nil
}

func (d *dispatcher) SendTx(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID, input Input) (bool, error) {
	if recipientID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if input.Title == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "notification title required")
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.PriorityMedium
	}

	now := d.now().UTC()
	row := models.Notification{
		RecipientID: recipientID,
		Type:        input.Type,
		Category:    input.Category,
		Priority:    priority,
		Title:       input.Title,
		Body:        input.Body,
		Payload:     types.JSONMap(input.Payload),
		ActionURL:   input.ActionURL,
		RelatedType: input.RelatedType,
		RelatedID:   input.RelatedID,
		CreatedAt:   now,
	}
	if input.DedupKey != "" && input.Window > 0 {
		key := input.DedupKey
		bucket := now.Truncate(input.Window)
		row.DedupKey = &key
		row.DedupBucket = &bucket
	}

	repo := d.repo.WithTx(tx)
	if err := repo.Create(ctx, &row); err != nil {
		// Losing the insert race means the notification already exists.
		if dbpkg.IsUniqueViolation(err, "ux_notifications_dedup") {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventNotificationCreated,
		AggregateType: enums.AggregateNotification,
		AggregateID:   row.ID,
		Data: payloads.NotificationCreatedEvent{
			NotificationID: row.ID,
			RecipientID:    row.RecipientID,
			Type:           row.Type,
			Category:       row.Category,
			Priority:       row.Priority,
			Title:          row.Title,
			CreatedAt:      row.CreatedAt,
		},
		Version: 1,
	}
	if err := d.outbox.Emit(ctx, tx, event); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue notification delivery")
	}
	return true, nil
}

func (d *dispatcher) SendToUsersTx(ctx context.Context, tx *gorm.DB, recipientIDs []uuid.UUID, input Input) (int, error) {
	seen := make(map[uuid.UUID]struct{}, len(recipientIDs))
	created := 0
	for _, recipientID := range recipientIDs {
		if recipientID == uuid.Nil {
			continue
		}
		if _, dup := seen[recipientID]; dup {
			continue
		}
		seen[recipientID] = struct{}{}

		ok, err := d.SendTx(ctx, tx, recipientID, input)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (d *dispatcher) DispatchVerdict(ctx context.Context, recipientID uuid.UUID, verdict risk.Verdict) (bool, error) {
	if recipientID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "recipient id required")
	}
	if verdict.DedupKey == "" || verdict.Window <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "verdict dedup key and window required")
	}

	// Best-effort advisory lock around check+insert. The partial unique
	// index on (recipient_id, dedup_key, dedup_bucket) is the actual
	// correctness guard.
	if d.locker != nil {
		lockKey := d.locker.DedupKey(recipientID.String(), verdict.DedupKey)
		acquired, err := d.locker.SetNX(ctx, lockKey, "1", dedupLockTTL)
		if err == nil && acquired {
			defer func() {
				_ = d.locker.Del(context.WithoutCancel(ctx), lockKey)
			}()
		}
	}

	since := d.now().UTC().Add(-verdict.Window)
	exists, err := d.repo.Exists(ctx, recipientID, verdict.DedupKey, since)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dedup lookup")
	}
	if exists {
		return false, nil
	}

	input := Input{
		Type:     enums.NotificationTypeProjectPerformance,
		Category: verdict.Category,
		Priority: verdict.Severity,
		Title:    verdict.Title,
		Body:     verdict.Body,
		Payload:  verdict.Payload,
		DedupKey: verdict.DedupKey,
		Window:   verdict.Window,
	}

	created := false
	err = d.db.WithTx(ctx, func(tx *gorm.DB) error {
		ok, sendErr := d.SendTx(ctx, tx, recipientID, input)
		created = ok
		return sendErr
	})
	if err != nil {
		return false, err
	}
	if !created {
		fields := map[string]any{
			"recipient_id": recipientID.String(),
			"dedup_key":    verdict.DedupKey,
		}
		d.logg.Info(d.logg.WithFields(ctx, fields), "notification suppressed by dedup window")
	}
	return created, nil
}
