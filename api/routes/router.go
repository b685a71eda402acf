package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Betech-JSC/bed-app-annha-sub010/api/controllers"
	"github.com/Betech-JSC/bed-app-annha-sub010/api/middleware"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/events"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/monitoring"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/notifications"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/workflow"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/config"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/pubsub"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            *db.Client
	Redis         *redis.Client
	PubSub        *pubsub.Client
	Notifications notifications.Service
	Acceptance    workflow.AcceptanceService
	Costs         workflow.CostService
	Observer      events.Observer
	Monitor       monitoring.Service
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, readinessDeps(p)))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(p.Config.JWT, p.Logger))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notifications, p.Logger))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, p.Logger))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, p.Logger))
		})

		r.Route("/acceptance-stages", func(r chi.Router) {
			r.Post("/", controllers.AcceptanceCreate(p.Acceptance, p.Logger))
			r.Post("/{stageId}/transition", controllers.AcceptanceTransition(p.Acceptance, p.Logger))
		})

		r.Route("/costs", func(r chi.Router) {
			r.Post("/", controllers.CostCreate(p.Costs, p.Logger))
			r.Post("/{costId}/submit", controllers.CostSubmit(p.Costs, p.Logger))
			r.Post("/{costId}/transition", controllers.CostTransition(p.Costs, p.Logger))
		})

		r.Post("/events", controllers.EntityEvent(p.Observer, p.Logger))
		r.Post("/monitoring/sweep", controllers.TriggerSweep(p.Monitor, p.Redis, p.Logger))
	})

	return r
}

func readinessDeps(p RouterParams) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{}
	if p.DB != nil {
		deps["database"] = p.DB
	}
	if p.Redis != nil {
		deps["redis"] = p.Redis
	}
	if p.PubSub != nil {
		deps["pubsub"] = p.PubSub
	}
	return deps
}
