package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Betech-JSC/bed-app-annha-sub010/api/middleware"
	"github.com/Betech-JSC/bed-app-annha-sub010/api/responses"
	"github.com/Betech-JSC/bed-app-annha-sub010/api/validators"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/workflow"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
	pkgerrors "github.com/Betech-JSC/bed-app-annha-sub010/pkg/errors"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
)

type createStageRequest struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
	Name      string `json:"name" validate:"required,min=1,max=255"`
}

type stageTransitionRequest struct {
	Target string  `json:"target" validate:"required"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

type createCostRequest struct {
	ProjectID string `json:"project_id" validate:"required,uuid"`
	Title     string `json:"title" validate:"required,min=1,max=255"`
	Amount    string `json:"amount" validate:"required"`
}

type costTransitionRequest struct {
	Target string  `json:"target" validate:"required"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=1000"`
}

// AcceptanceCreate opens a new acceptance stage in pending state.
func AcceptanceCreate(svc workflow.AcceptanceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createStageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := uuid.Parse(req.ProjectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project id"))
			return
		}

		stage, err := svc.Create(r.Context(), workflow.CreateStageParams{
			ProjectID:   projectID,
			Name:        req.Name,
			SubmittedBy: actor.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, stage)
	}
}

// AcceptanceTransition advances or rejects an acceptance stage.
func AcceptanceTransition(svc workflow.AcceptanceService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stageID, err := uuid.Parse(chi.URLParam(r, "stageId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stage id"))
			return
		}

		var req stageTransitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseAcceptanceStatus(req.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		stage, err := svc.AttemptTransition(r.Context(), stageID, target, actor, req.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stage)
	}
}

// CostCreate records a new draft cost.
func CostCreate(svc workflow.CostService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createCostRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projectID, err := uuid.Parse(req.ProjectID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project id"))
			return
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		cost, err := svc.Create(r.Context(), workflow.CreateCostParams{
			ProjectID: projectID,
			Title:     req.Title,
			Amount:    amount,
			CreatedBy: actor.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, cost)
	}
}

// CostSubmit moves a draft cost into the approval pipeline.
func CostSubmit(svc workflow.CostService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		costID, err := uuid.Parse(chi.URLParam(r, "costId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cost id"))
			return
		}

		cost, err := svc.Submit(r.Context(), costID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cost)
	}
}

// CostTransition advances or rejects a pending cost.
func CostTransition(svc workflow.CostService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		costID, err := uuid.Parse(chi.URLParam(r, "costId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cost id"))
			return
		}

		var req costTransitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseCostStatus(req.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		cost, err := svc.AttemptTransition(r.Context(), costID, target, actor, req.Note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cost)
	}
}

func actorFromContext(r *http.Request) (workflow.Actor, error) {
	userID, err := recipientFromContext(r)
	if err != nil {
		return workflow.Actor{}, err
	}
	role, err := enums.ParseRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return workflow.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role")
	}
	return workflow.Actor{UserID: userID, Role: role}, nil
}
