package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db/models"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// StageRepository persists acceptance stages.
type StageRepository interface {
	Get(ctx context.Context, stageID uuid.UUID) (*models.AcceptanceStage, error)
	CreateTx(tx *gorm.DB, stage *models.AcceptanceStage) error
	// TransitionTx applies the status change only when the version still
	// matches. Returns false when a concurrent writer won.
	TransitionTx(tx *gorm.DB, stage *models.AcceptanceStage, target enums.AcceptanceStatus, actorID uuid.UUID, reason *string, now time.Time) (bool, error)
}

// CostRepository persists costs.
type CostRepository interface {
	Get(ctx context.Context, costID uuid.UUID) (*models.Cost, error)
	CreateTx(tx *gorm.DB, cost *models.Cost) error
	TransitionTx(tx *gorm.DB, cost *models.Cost, target enums.CostStatus, actorID uuid.UUID, note *string, now time.Time) (bool, error)
}

type stageRepositoryImpl struct {
	db *gorm.DB
}

// NewStageRepository returns an acceptance stage repository.
func NewStageRepository(db *gorm.DB) StageRepository {
	return &stageRepositoryImpl{db: db}
}

func (r *stageRepositoryImpl) Get(ctx context.Context, stageID uuid.UUID) (*models.AcceptanceStage, error) {
	var stage models.AcceptanceStage
	if err := r.db.WithContext(ctx).First(&stage, "id = ?", stageID).Error; err != nil {
		return nil, err
	}
	return &stage, nil
}

func (r *stageRepositoryImpl) CreateTx(tx *gorm.DB, stage *models.AcceptanceStage) error {
	return tx.Create(stage).Error
}

func (r *stageRepositoryImpl) TransitionTx(tx *gorm.DB, stage *models.AcceptanceStage, target enums.AcceptanceStatus, actorID uuid.UUID, reason *string, now time.Time) (bool, error) {
	updates := map[string]any{
		"status":        target,
		"decided_by_id": actorID,
		"decided_at":    now,
		"version":       stage.Version + 1,
		"updated_at":    now,
	}
	if reason != nil {
		updates["reject_reason"] = *reason
	}
	result := tx.Model(&models.AcceptanceStage{}).
		Where("id = ? AND version = ?", stage.ID, stage.Version).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	stage.Status = target
	stage.DecidedByID = &actorID
	stage.DecidedAt = &now
	stage.RejectReason = reason
	stage.Version++
	return true, nil
}

type costRepositoryImpl struct {
	db *gorm.DB
}

// NewCostRepository returns a cost repository.
func NewCostRepository(db *gorm.DB) CostRepository {
	return &costRepositoryImpl{db: db}
}

func (r *costRepositoryImpl) Get(ctx context.Context, costID uuid.UUID) (*models.Cost, error) {
	var cost models.Cost
	if err := r.db.WithContext(ctx).First(&cost, "id = ?", costID).Error; err != nil {
		return nil, err
	}
	return &cost, nil
}

func (r *costRepositoryImpl) CreateTx(tx *gorm.DB, cost *models.Cost) error {
	return tx.Create(cost).Error
}

func (r *costRepositoryImpl) TransitionTx(tx *gorm.DB, cost *models.Cost, target enums.CostStatus, actorID uuid.UUID, note *string, now time.Time) (bool, error) {
	updates := map[string]any{
		"status":        target,
		"decided_by_id": actorID,
		"decided_at":    now,
		"version":       cost.Version + 1,
		"updated_at":    now,
	}
	if note != nil {
		updates["reject_note"] = *note
	}
	result := tx.Model(&models.Cost{}).
		Where("id = ? AND version = ?", cost.ID, cost.Version).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	cost.Status = target
	cost.DecidedByID = &actorID
	cost.DecidedAt = &now
	cost.RejectNote = note
	cost.Version++
	return true, nil
}
