package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db/models"
	pkgerrors "github.com/Betech-JSC/bed-app-annha-sub010/pkg/errors"
)

// EntityKind names the domain aggregate an event refers to.
type EntityKind string

const (
	EntityProject       EntityKind = "project"
	EntityTask          EntityKind = "task"
	EntityDefect        EntityKind = "defect"
	EntityChangeRequest EntityKind = "change_request"
	EntityPersonnel     EntityKind = "personnel_assignment"
)

var validEntityKinds = []EntityKind{
	EntityProject,
	EntityTask,
	EntityDefect,
	EntityChangeRequest,
	EntityPersonnel,
}

func (e EntityKind) IsValid() bool {
	for _, candidate := range validEntityKinds {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEntityKind converts raw strings into EntityKind.
func ParseEntityKind(value string) (EntityKind, error) {
	for _, candidate := range validEntityKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entity kind %q", value)
}

// EventKind names what happened to the entity.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
)

func (e EventKind) IsValid() bool {
	return e == EventCreated || e == EventUpdated
}

// ParseEventKind converts raw strings into EventKind.
func ParseEventKind(value string) (EventKind, error) {
	kind := EventKind(value)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid event kind %q", value)
	}
	return kind, nil
}

// changePayload is the wire shape of an entity event: the state after the
// write, plus the prior snapshot for updates.
type changePayload[T any] struct {
	Before *T `json:"before"`
	After  T  `json:"after"`
}

func decodeChange[T any](kind EventKind, raw json.RawMessage) (before *T, after T, err error) {
	var payload changePayload[T]
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, after, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event payload")
	}
	if kind == EventUpdated && payload.Before == nil {
		return nil, after, pkgerrors.New(pkgerrors.CodeValidation, "update events require a before snapshot")
	}
	return payload.Before, payload.After, nil
}

// Dispatch routes a raw entity event to the observer. Unknown combinations
// that carry no notification side effect succeed as no-ops.
func Dispatch(ctx context.Context, observer Observer, entity EntityKind, kind EventKind, raw json.RawMessage) error {
	if !entity.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid entity kind %q", entity))
	}
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid event kind %q", kind))
	}

	switch entity {
	case EntityProject:
		if kind != EventUpdated {
			return nil
		}
		before, after, err := decodeChange[models.Project](kind, raw)
		if err != nil {
			return err
		}
		return observer.ProjectUpdated(ctx, *before, after)
	case EntityTask:
		before, after, err := decodeChange[models.Task](kind, raw)
		if err != nil {
			return err
		}
		if kind == EventCreated {
			return observer.TaskCreated(ctx, after)
		}
		return observer.TaskUpdated(ctx, *before, after)
	case EntityDefect:
		before, after, err := decodeChange[models.Defect](kind, raw)
		if err != nil {
			return err
		}
		if kind == EventCreated {
			return observer.DefectCreated(ctx, after)
		}
		return observer.DefectUpdated(ctx, *before, after)
	case EntityChangeRequest:
		before, after, err := decodeChange[models.ChangeRequest](kind, raw)
		if err != nil {
			return err
		}
		if kind == EventCreated {
			return observer.ChangeRequestCreated(ctx, after)
		}
		return observer.ChangeRequestUpdated(ctx, *before, after)
	case EntityPersonnel:
		before, after, err := decodeChange[models.PersonnelAssignment](kind, raw)
		if err != nil {
			return err
		}
		if kind == EventCreated {
			return observer.PersonnelAssigned(ctx, after)
		}
		return observer.PersonnelRoleChanged(ctx, *before, after)
	}
	return nil
}
