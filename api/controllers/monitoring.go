package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/Betech-JSC/bed-app-annha-sub010/api/responses"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/monitoring"
	pkgerrors "github.com/Betech-JSC/bed-app-annha-sub010/pkg/errors"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
)

const (
	sweepRateScope  = "manual-sweep"
	sweepRateLimit  = 3
	sweepRateWindow = time.Minute
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// TriggerSweep runs the project health sweep on demand. The scheduled run
// stays authoritative; this endpoint exists for operators.
func TriggerSweep(svc monitoring.Service, limiter rateLimiter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "monitoring service unavailable"))
			return
		}

		if limiter != nil {
			allowed, _, err := limiter.FixedWindowAllow(r.Context(), sweepRateScope, sweepRateLimit, sweepRateWindow)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limit check failed"))
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "sweep already requested, try again later"))
				return
			}
		}

		result, err := svc.RunSweep(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{
			"evaluated":  result.Evaluated,
			"notified":   result.Notified,
			"suppressed": result.Suppressed,
			"failed":     result.Failed,
		}
		if result.Err != nil {
			payload["failures"] = result.Err.Error()
		}
		responses.WriteSuccess(w, payload)
	}
}
