package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/Betech-JSC/bed-app-annha-sub010/internal/notifications"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/projects"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/risk"
	pkgerrors "github.com/Betech-JSC/bed-app-annha-sub010/pkg/errors"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/metrics"
)

// SweepResult summarizes one full pass over all active projects.
type SweepResult struct {
	Evaluated  int
	Notified   int
	Suppressed int
	Failed     int
	// Err aggregates the isolated per-project failures. A non-nil Err does
	// not mean the sweep aborted.
	Err error
}

// Service runs the project health sweep. Safe to invoke concurrently and to
// re-run at any time: the dedup window makes repeat evaluation idempotent.
type Service interface {
	RunSweep(ctx context.Context) (SweepResult, error)
}

// ServiceParams wires the sweep dependencies.
type ServiceParams struct {
	Projects   projects.ReadPort
	Dispatcher notifications.Dispatcher
	Metrics    *metrics.SweepMetrics
	Logger     *logger.Logger
	Now        func() time.Time
	// Workers bounds how many projects are evaluated in parallel.
	Workers int
	// QueryTimeout caps each read-port and dispatch call.
	QueryTimeout time.Duration
}

type service struct {
	projects     projects.ReadPort
	dispatcher   notifications.Dispatcher
	metrics      *metrics.SweepMetrics
	logg         *logger.Logger
	now          func() time.Time
	workers      int
	queryTimeout time.Duration
}

// NewService validates dependencies and returns the sweep service.
func NewService(params ServiceParams) (Service, error) {
	if params.Projects == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects read port required")
	}
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification dispatcher required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	workers := params.Workers
	if workers <= 0 {
		workers = 4
	}
	queryTimeout := params.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = 10 * time.Second
	}
	return &service{
		projects:     params.Projects,
		dispatcher:   params.Dispatcher,
		metrics:      params.Metrics,
		logg:         params.Logger,
		now:          now,
		workers:      workers,
		queryTimeout: queryTimeout,
	}, nil
}

func (s *service) RunSweep(ctx context.Context) (SweepResult, error) {
	started := s.now()

	loadCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	snapshots, err := s.projects.ActiveProjects(loadCtx)
	cancel()
	if err != nil {
		return SweepResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load active projects")
	}

	var (
		mu     sync.Mutex
		result SweepResult
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	for _, snapshot := range snapshots {
		// Early termination between project iterations. Already-launched
		// evaluations run to completion.
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			outcome := s.evaluateProject(groupCtx, snapshot)
			mu.Lock()
			result.Evaluated++
			result.Notified += outcome.notified
			result.Suppressed += outcome.suppressed
			if outcome.err != nil {
				result.Failed++
				result.Err = multierr.Append(result.Err, outcome.err)
			}
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; failures are isolated per project.
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		result.Err = multierr.Append(result.Err, err)
	}

	s.metrics.ObserveDuration(s.now().Sub(started))
	s.metrics.AddEvaluated(result.Evaluated)

	fields := map[string]any{
		"evaluated":  result.Evaluated,
		"notified":   result.Notified,
		"suppressed": result.Suppressed,
		"failed":     result.Failed,
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "monitoring sweep finished")
	return result, nil
}

type projectOutcome struct {
	notified   int
	suppressed int
	err        error
}

func (s *service) evaluateProject(ctx context.Context, snapshot risk.ProjectSnapshot) projectOutcome {
	var outcome projectOutcome

	verdicts := risk.EvaluateAll(snapshot, s.now())
	for _, verdict := range verdicts {
		recipient, ok := s.resolveRecipient(snapshot, verdict)
		if !ok {
			continue
		}

		dispatchCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
		created, err := s.dispatcher.DispatchVerdict(dispatchCtx, recipient, verdict)
		cancel()
		if err != nil {
			s.metrics.IncFailure(string(verdict.Category))
			logCtx := s.logg.WithProjectID(ctx, snapshot.ID.String())
			s.logg.Error(logCtx, "verdict dispatch failed", err)
			outcome.err = multierr.Append(outcome.err,
				fmt.Errorf("project %s %s: %w", snapshot.ID, verdict.Category, err))
			continue
		}
		if created {
			s.metrics.IncNotified(string(verdict.Category))
			outcome.notified++
		} else {
			s.metrics.IncSuppressed(string(verdict.Category))
			outcome.suppressed++
		}
	}
	return outcome
}

// resolveRecipient picks the verdict's own recipient when set, otherwise the
// project manager with the customer as fallback. Projects with neither are
// skipped silently.
func (s *service) resolveRecipient(snapshot risk.ProjectSnapshot, verdict risk.Verdict) (uuid.UUID, bool) {
	if verdict.Recipient != nil {
		return *verdict.Recipient, true
	}
	return snapshot.Recipient()
}
