package projects

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Betech-JSC/bed-app-annha-sub010/internal/risk"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db/models"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// ReadPort is the read-only query surface the monitoring and workflow engines
// depend on. It never mutates domain records.
type ReadPort interface {
	ActiveProjects(ctx context.Context) ([]risk.ProjectSnapshot, error)
	ProjectSnapshot(ctx context.Context, projectID uuid.UUID) (risk.ProjectSnapshot, error)
	TeamMemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	RoleMemberIDs(ctx context.Context, projectID uuid.UUID, role enums.Role) ([]uuid.UUID, error)
	GlobalRoleIDs(ctx context.Context, role enums.Role) ([]uuid.UUID, error)
}

type readPortImpl struct {
	db *gorm.DB
}

// NewReadPort returns a ReadPort bound to the provided database.
func NewReadPort(db *gorm.DB) ReadPort {
	return &readPortImpl{db: db}
}

func (r *readPortImpl) ActiveProjects(ctx context.Context) ([]risk.ProjectSnapshot, error) {
	var rows []models.Project
	err := r.db.WithContext(ctx).
		Preload("Budgets").
		Preload("Costs", "status = ?", enums.CostApproved).
		Preload("Tasks").
		Preload("Defects").
		Preload("RiskItems").
		Where("status IN ?", enums.ActiveProjectStatuses()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	snapshots := make([]risk.ProjectSnapshot, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, BuildSnapshot(row))
	}
	return snapshots, nil
}

func (r *readPortImpl) ProjectSnapshot(ctx context.Context, projectID uuid.UUID) (risk.ProjectSnapshot, error) {
	var row models.Project
	err := r.db.WithContext(ctx).
		Preload("Budgets").
		Preload("Costs", "status = ?", enums.CostApproved).
		Preload("Tasks").
		Preload("Defects").
		Preload("RiskItems").
		First(&row, "id = ?", projectID).Error
	if err != nil {
		return risk.ProjectSnapshot{}, err
	}
	return BuildSnapshot(row), nil
}

func (r *readPortImpl) TeamMemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.PersonnelAssignment{}).
		Where("project_id = ? AND removed_at IS NULL", projectID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *readPortImpl) RoleMemberIDs(ctx context.Context, projectID uuid.UUID, role enums.Role) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.PersonnelAssignment{}).
		Where("project_id = ? AND role = ? AND removed_at IS NULL", projectID, role).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *readPortImpl) GlobalRoleIDs(ctx context.Context, role enums.Role) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_active", role).
		Pluck("id", &ids).Error
	return ids, err
}

// BuildSnapshot projects a loaded project row into the evaluator snapshot.
// The budget total comes from the row with the latest effective date; the
// cost total sums preloaded approved costs only.
func BuildSnapshot(project models.Project) risk.ProjectSnapshot {
	snapshot := risk.ProjectSnapshot{
		ID:              project.ID,
		Name:            project.Name,
		Status:          project.Status,
		ManagerID:       project.ManagerID,
		CustomerID:      project.CustomerID,
		StartDate:       project.StartDate,
		EndDate:         project.EndDate,
		ProgressPercent: project.ProgressPercent,
	}

	var latest time.Time
	for _, budget := range project.Budgets {
		if !snapshot.HasBudget || budget.EffectiveDate.After(latest) {
			snapshot.BudgetTotal = budget.Total
			snapshot.HasBudget = true
			latest = budget.EffectiveDate
		}
	}

	total := decimal.Zero
	for _, cost := range project.Costs {
		if cost.Status == enums.CostApproved {
			total = total.Add(cost.Amount)
		}
	}
	snapshot.ApprovedCostsTotal = total

	for _, task := range project.Tasks {
		snapshot.Tasks = append(snapshot.Tasks, risk.TaskSnapshot{
			ID:         task.ID,
			ProjectID:  task.ProjectID,
			Title:      task.Title,
			Status:     task.Status,
			AssigneeID: task.AssigneeID,
			DueDate:    task.DueDate,
		})
	}
	for _, defect := range project.Defects {
		snapshot.Defects = append(snapshot.Defects, risk.DefectSnapshot{
			ID:       defect.ID,
			Status:   defect.Status,
			Severity: defect.Severity,
		})
	}
	for _, item := range project.RiskItems {
		snapshot.Risks = append(snapshot.Risks, risk.RiskSnapshot{
			ID:          item.ID,
			Level:       item.Level,
			Probability: item.Probability,
			Impact:      item.Impact,
			Status:      item.Status,
		})
	}
	return snapshot
}
