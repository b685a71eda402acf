package risk

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// Policy thresholds. The delay gap is measured in percentage points between
// expected and actual progress.
const (
	delayGapMedium = 10.0
	delayGapHigh   = 25.0
	delayGapUrgent = 40.0

	defectCountThreshold = 10
)

// budgetOverrunRatio is the strict lower bound: an overrun of exactly 5% does
// not fire.
var budgetOverrunRatio = decimal.NewFromFloat(0.05)

var deadlineCheckpoints = []int{7, 3, 1}

// EvaluateAll runs every project-level evaluator plus the per-task overdue
// checks and returns all positive verdicts.
func EvaluateAll(p ProjectSnapshot, now time.Time) []Verdict {
	var verdicts []Verdict
	if v, ok := EvaluateDelayRisk(p, now); ok {
		verdicts = append(verdicts, v)
	}
	if v, ok := EvaluateBudgetOverrun(p); ok {
		verdicts = append(verdicts, v)
	}
	if v, ok := EvaluateDeadlineProximity(p, now); ok {
		verdicts = append(verdicts, v)
	}
	if v, ok := EvaluateHighDefects(p); ok {
		verdicts = append(verdicts, v)
	}
	if v, ok := EvaluateHighRisks(p); ok {
		verdicts = append(verdicts, v)
	}
	verdicts = append(verdicts, EvaluateOverdueTasks(p.Tasks, now)...)
	return verdicts
}

// EvaluateDelayRisk fires when the reported progress trails the elapsed
// schedule time by more than the policy gap. Severity scales with the gap.
func EvaluateDelayRisk(p ProjectSnapshot, now time.Time) (Verdict, bool) {
	if p.StartDate == nil || p.EndDate == nil {
		return Verdict{}, false
	}
	total := daysBetween(*p.StartDate, *p.EndDate)
	if total <= 0 {
		return Verdict{}, false
	}
	elapsed := daysBetween(*p.StartDate, now)
	if elapsed <= 0 {
		return Verdict{}, false
	}
	if elapsed > total {
		elapsed = total
	}

	expected := float64(elapsed) / float64(total) * 100
	gap := expected - p.ProgressPercent
	if gap <= delayGapMedium {
		return Verdict{}, false
	}

	severity := enums.PriorityMedium
	switch {
	case gap > delayGapUrgent:
		severity = enums.PriorityUrgent
	case gap > delayGapHigh:
		severity = enums.PriorityHigh
	}

	return Verdict{
		Category: enums.CategoryDelayRisk,
		Severity: severity,
		DedupKey: fmt.Sprintf("project:%s:delay_risk", p.ID),
		Window:   WindowPerformance,
		Title:    "Project behind schedule",
		Body: fmt.Sprintf("%s is %.0f%% complete but %.0f%% of the schedule has elapsed.",
			p.Name, p.ProgressPercent, expected),
		Payload: map[string]any{
			"project_id":       p.ID.String(),
			"progress_percent": p.ProgressPercent,
			"expected_percent": expected,
			"gap":              gap,
		},
	}, true
}

// EvaluateBudgetOverrun fires when approved costs exceed the budget by
// strictly more than 5%. Invoked from the sweep and eagerly from the cost
// approval workflow; both paths share the dedup key.
func EvaluateBudgetOverrun(p ProjectSnapshot) (Verdict, bool) {
	if !p.HasBudget || p.BudgetTotal.IsZero() {
		return Verdict{}, false
	}
	overrun := p.ApprovedCostsTotal.Sub(p.BudgetTotal)
	if overrun.Sign() <= 0 {
		return Verdict{}, false
	}
	ratio := overrun.Div(p.BudgetTotal)
	if ratio.Cmp(budgetOverrunRatio) <= 0 {
		return Verdict{}, false
	}

	percent, _ := ratio.Mul(decimal.NewFromInt(100)).Float64()
	return Verdict{
		Category: enums.CategoryBudgetOverrun,
		Severity: enums.PriorityHigh,
		DedupKey: fmt.Sprintf("project:%s:budget_overrun", p.ID),
		Window:   WindowPerformance,
		Title:    "Budget overrun",
		Body: fmt.Sprintf("%s has approved costs of %s against a budget of %s (%.1f%% over).",
			p.Name, p.ApprovedCostsTotal.StringFixed(2), p.BudgetTotal.StringFixed(2), percent),
		Payload: map[string]any{
			"project_id":      p.ID.String(),
			"budget_total":    p.BudgetTotal.String(),
			"approved_costs":  p.ApprovedCostsTotal.String(),
			"overrun":         overrun.String(),
			"overrun_percent": percent,
		},
	}, true
}

// EvaluateDeadlineProximity fires only when the project end date is exactly
// 7, 3, or 1 calendar days away. Each checkpoint has its own dedup key so all
// three can fire independently.
func EvaluateDeadlineProximity(p ProjectSnapshot, now time.Time) (Verdict, bool) {
	if p.EndDate == nil {
		return Verdict{}, false
	}
	remaining := daysBetween(now, *p.EndDate)
	for _, checkpoint := range deadlineCheckpoints {
		if remaining != checkpoint {
			continue
		}
		severity := enums.PriorityMedium
		if checkpoint == 1 {
			severity = enums.PriorityHigh
		}
		return Verdict{
			Category: enums.CategoryDeadline,
			Severity: severity,
			DedupKey: fmt.Sprintf("project:%s:deadline:%d", p.ID, checkpoint),
			Window:   WindowDeadline,
			Title:    "Project deadline approaching",
			Body:     fmt.Sprintf("%s is due in %d day(s).", p.Name, checkpoint),
			Payload: map[string]any{
				"project_id":     p.ID.String(),
				"days_remaining": checkpoint,
			},
		}, true
	}
	return Verdict{}, false
}

// EvaluateOverdueTasks returns one verdict per open, assigned task whose due
// date is in the past. Severity scales with days overdue. The verdict targets
// the assignee directly.
func EvaluateOverdueTasks(tasks []TaskSnapshot, now time.Time) []Verdict {
	var verdicts []Verdict
	for _, task := range tasks {
		if task.DueDate == nil || task.AssigneeID == nil {
			continue
		}
		if !task.Status.IsOpen() {
			continue
		}
		overdue := daysBetween(*task.DueDate, now)
		if overdue <= 0 {
			continue
		}

		severity := enums.PriorityMedium
		switch {
		case overdue > 7:
			severity = enums.PriorityUrgent
		case overdue > 3:
			severity = enums.PriorityHigh
		}

		assignee := *task.AssigneeID
		verdicts = append(verdicts, Verdict{
			Category: enums.CategoryOverdueTask,
			Severity: severity,
			DedupKey: fmt.Sprintf("task:%s:overdue_task", task.ID),
			Window:   WindowPerformance,
			Title:    "Task overdue",
			Body:     fmt.Sprintf("%q is %d day(s) past its due date.", task.Title, overdue),
			Payload: map[string]any{
				"project_id":   task.ProjectID.String(),
				"task_id":      task.ID.String(),
				"overdue_days": overdue,
			},
			Recipient: &assignee,
		})
	}
	return verdicts
}

// EvaluateHighDefects fires when more than 10 defects are open or in
// progress.
func EvaluateHighDefects(p ProjectSnapshot) (Verdict, bool) {
	open := 0
	for _, defect := range p.Defects {
		if defect.Status.IsOpen() {
			open++
		}
	}
	if open <= defectCountThreshold {
		return Verdict{}, false
	}
	return Verdict{
		Category: enums.CategoryHighDefects,
		Severity: enums.PriorityHigh,
		DedupKey: fmt.Sprintf("project:%s:high_defects", p.ID),
		Window:   WindowPerformance,
		Title:    "High defect count",
		Body:     fmt.Sprintf("%s has %d unresolved defects.", p.Name, open),
		Payload: map[string]any{
			"project_id":   p.ID.String(),
			"open_defects": open,
		},
	}, true
}

// EvaluateHighRisks fires when any open risk is high/critical by level, or
// has both elevated probability and elevated impact.
func EvaluateHighRisks(p ProjectSnapshot) (Verdict, bool) {
	count := 0
	for _, item := range p.Risks {
		if item.Status == enums.RiskItemStatusClosed {
			continue
		}
		if item.Level.IsElevated() || (item.Probability.IsElevated() && item.Impact.IsElevated()) {
			count++
		}
	}
	if count == 0 {
		return Verdict{}, false
	}
	return Verdict{
		Category: enums.CategoryHighRisks,
		Severity: enums.PriorityHigh,
		DedupKey: fmt.Sprintf("project:%s:high_risks", p.ID),
		Window:   WindowPerformance,
		Title:    "High project risks",
		Body:     fmt.Sprintf("%s has %d elevated risks on the register.", p.Name, count),
		Payload: map[string]any{
			"project_id": p.ID.String(),
			"high_risks": count,
		},
	}, true
}

// daysBetween is the calendar day difference from a to b, in UTC. Positive
// when b is after a.
func daysBetween(a, b time.Time) int {
	aDay := time.Date(a.UTC().Year(), a.UTC().Month(), a.UTC().Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(b.UTC().Year(), b.UTC().Month(), b.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay) / (24 * time.Hour))
}
