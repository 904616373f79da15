package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Just-andreew/aquagen-farm/api/middleware"
	"github.com/Just-andreew/aquagen-farm/api/responses"
	"github.com/Just-andreew/aquagen-farm/api/validators"
	"github.com/Just-andreew/aquagen-farm/internal/tasks"
	dbtypes "github.com/Just-andreew/aquagen-farm/pkg/db/types"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
)

type createTaskRequest struct {
	Title             string                    `json:"title" validate:"required"`
	Description       string                    `json:"description"`
	AssignedTo        *uuid.UUID                `json:"assigned_to"`
	DueDate           *time.Time                `json:"due_date"`
	ConsumedInventory dbtypes.ConsumedInventory `json:"consumed_inventory"`
}

type updateTaskRequest struct {
	Title             *string                    `json:"title"`
	Description       *string                    `json:"description"`
	AssignedTo        *uuid.UUID                 `json:"assigned_to"`
	ClearAssignee     bool                       `json:"clear_assignee"`
	DueDate           *time.Time                 `json:"due_date"`
	ConsumedInventory *dbtypes.ConsumedInventory `json:"consumed_inventory"`
}

type moveTaskRequest struct {
	Direction string `json:"direction" validate:"required,oneof=forward backward"`
}

// ListTasks returns a filtered, cursor-paginated task page.
func ListTasks(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		assignedTo, err := validators.ParseQueryUUID(r, "assigned_to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := tasks.ListParams{
			Status:     r.URL.Query().Get("status"),
			AssignedTo: assignedTo,
			Limit:      limit,
			Cursor:     r.URL.Query().Get("cursor"),
		}

		result, err := svc.ListTasks(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CreateTask registers a new unit of work.
func CreateTask(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		var body createTaskRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.CreateTask(r.Context(), tasks.CreateTaskInput{
			Title:             body.Title,
			Description:       body.Description,
			AssignedTo:        body.AssignedTo,
			DueDate:           body.DueDate,
			ConsumedInventory: body.ConsumedInventory,
		}, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, task)
	}
}

// GetTask fetches one task by id.
func GetTask(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.GetTask(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, task)
	}
}

// MoveTask steps the task one position through the workflow.
func MoveTask(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body moveTaskRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.Move(r.Context(), id, tasks.Direction(body.Direction), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, task)
	}
}

// UpdateTask applies a partial patch. Status is not patchable here, the move
// endpoint owns workflow transitions.
func UpdateTask(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateTaskRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		task, err := svc.UpdateTask(r.Context(), id, tasks.UpdateTaskInput{
			Title:             body.Title,
			Description:       body.Description,
			AssignedTo:        body.AssignedTo,
			ClearAssignee:     body.ClearAssignee,
			DueDate:           body.DueDate,
			ConsumedInventory: body.ConsumedInventory,
		}, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, task)
	}
}

// DeleteTask removes a task.
func DeleteTask(svc tasks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "task service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteTask(r.Context(), id, middleware.ActorFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
