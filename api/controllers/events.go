package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/Betech-JSC/bed-app-annha-sub010/api/responses"
	"github.com/Betech-JSC/bed-app-annha-sub010/api/validators"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/events"
	pkgerrors "github.com/Betech-JSC/bed-app-annha-sub010/pkg/errors"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
)

type entityEventRequest struct {
	EntityKind string          `json:"entity_kind" validate:"required"`
	EventKind  string          `json:"event_kind" validate:"required"`
	Payload    json.RawMessage `json:"payload" validate:"required"`
}

// EntityEvent ingests a change event from the rest of the platform and
// routes it to the matching observer reaction.
func EntityEvent(observer events.Observer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if observer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "observer unavailable"))
			return
		}

		var req entityEventRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entity, err := events.ParseEntityKind(req.EntityKind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entity kind"))
			return
		}

		if err := events.Dispatch(r.Context(), observer, entity, events.EventKind(req.EventKind), req.Payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "processed"})
	}
}
