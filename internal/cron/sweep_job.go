package cron

import (
	"context"
	"fmt"

	"github.com/Betech-JSC/bed-app-annha-sub010/internal/monitoring"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
)

// SweepJobParams configure the project health sweep job.
type SweepJobParams struct {
	Logger  *logger.Logger
	Monitor monitoring.Service
}

// NewSweepJob wraps the monitoring sweep as a scheduled job.
func NewSweepJob(params SweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Monitor == nil {
		return nil, fmt.Errorf("monitoring service required")
	}
	return &sweepJob{logg: params.Logger, monitor: params.Monitor}, nil
}

type sweepJob struct {
	logg    *logger.Logger
	monitor monitoring.Service
}

func (j *sweepJob) Name() string { return "project-health-sweep" }

func (j *sweepJob) Run(ctx context.Context) error {
	result, err := j.monitor.RunSweep(ctx)
	if err != nil {
		return fmt.Errorf("project health sweep: %w", err)
	}
	// Isolated per-project failures fail the job for alerting, after the
	// healthy projects were already handled.
	if result.Err != nil {
		return fmt.Errorf("project health sweep finished with %d failed projects: %w", result.Failed, result.Err)
	}
	return nil
}
