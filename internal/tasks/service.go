package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Just-andreew/aquagen-farm/internal/inventory"
	dbtypes "github.com/Just-andreew/aquagen-farm/pkg/db/types"
	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox/payloads"
	pkgpagination "github.com/Just-andreew/aquagen-farm/pkg/pagination"
	"github.com/Just-andreew/aquagen-farm/pkg/types"
)

// Direction steps a task through the linear workflow.
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// IsValid reports whether the direction is known.
func (d Direction) IsValid() bool {
	return d == DirectionForward || d == DirectionBackward
}

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type tasksRepository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Task, error)
	UpdateColumnsTx(tx *gorm.DB, id uuid.UUID, columns map[string]any) error
	UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, opts listQuery) ([]models.Task, error)
}

type usersReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type inventoryConsumer interface {
	ConsumeMany(ctx context.Context, pairs []inventory.ConsumePair, reason string, actor types.Actor) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// consumptionReason is the audit trail reason recorded for completion deductions.
const consumptionReason = "task completion"

// CreateTaskInput holds the fields accepted when creating a task.
type CreateTaskInput struct {
	Title             string
	Description       string
	AssignedTo        *uuid.UUID
	DueDate           *time.Time
	ConsumedInventory dbtypes.ConsumedInventory
}

// UpdateTaskInput is a partial patch; nil fields are left untouched. Status is
// deliberately absent, Move owns status transitions.
type UpdateTaskInput struct {
	Title             *string
	Description       *string
	AssignedTo        *uuid.UUID
	ClearAssignee     bool
	DueDate           *time.Time
	ConsumedInventory *dbtypes.ConsumedInventory
}

// ListParams are the inputs for task listings.
type ListParams struct {
	Status     string
	AssignedTo *uuid.UUID
	Limit      int
	Cursor     string
}

// ListResult carries one page of tasks plus the next cursor.
type ListResult struct {
	Tasks  []models.Task `json:"tasks"`
	Cursor string        `json:"cursor"`
}

// Service exposes the task workflow.
type Service interface {
	CreateTask(ctx context.Context, input CreateTaskInput, actor types.Actor) (*models.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, params ListParams) (*ListResult, error)
	Move(ctx context.Context, id uuid.UUID, direction Direction, actor types.Actor) (*models.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, input UpdateTaskInput, actor types.Actor) (*models.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID, actor types.Actor) error
}

type service struct {
	db        transactor
	repo      tasksRepository
	users     usersReader
	inventory inventoryConsumer
	events    outboxEmitter
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the task service.
func NewService(db transactor, repo tasksRepository, users usersReader, consumer inventoryConsumer, events outboxEmitter, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("transactor required")
	}
	if repo == nil {
		return nil, fmt.Errorf("task repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users reader required")
	}
	if consumer == nil {
		return nil, fmt.Errorf("inventory consumer required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		db:        db,
		repo:      repo,
		users:     users,
		inventory: consumer,
		events:    events,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) CreateTask(ctx context.Context, input CreateTaskInput, actor types.Actor) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity missing")
	}
	if err := validateConsumption(input.ConsumedInventory); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:             title,
		Description:       strings.TrimSpace(input.Description),
		Status:            enums.TaskStatusTodo,
		CreatedBy:         actor.UserID,
		DueDate:           input.DueDate,
		ConsumedInventory: input.ConsumedInventory,
	}
	if task.ConsumedInventory == nil {
		task.ConsumedInventory = dbtypes.ConsumedInventory{}
	}

	if input.AssignedTo != nil {
		assignee, err := s.lookupUser(ctx, *input.AssignedTo)
		if err != nil {
			return nil, err
		}
		task.AssignedTo = &assignee.ID
		task.AssignedToName = &assignee.Name
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create task")
	}
	return created, nil
}

func (s *service) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task id is required")
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup task")
	}
	return task, nil
}

func (s *service) ListTasks(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != "" {
		if _, err := enums.ParseTaskStatus(params.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		status:     params.Status,
		assignedTo: params.AssignedTo,
		limit:      pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tasks")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	return &ListResult{Tasks: rows, Cursor: nextCursor}, nil
}

// Move steps the task one position through todo → in_progress → done. A move
// past either end is a safe no-op returning the task unchanged. The first
// arrival at done sets consumed_at and applies the consumption declarations;
// re-entering done never consumes again.
func (s *service) Move(ctx context.Context, id uuid.UUID, direction Direction, actor types.Actor) (*models.Task, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task id is required")
	}
	if !direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "direction must be forward or backward")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity missing")
	}

	var moved *models.Task
	var firstCompletion bool

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		task, err := s.repo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock task")
		}

		next, ok := step(task.Status, direction)
		if !ok {
			moved = task
			return nil
		}

		now := s.now()
		columns := map[string]any{
			"status":     next,
			"updated_by": actor.UserID,
			"updated_at": now,
		}

		if next == enums.TaskStatusDone && task.ConsumedAt == nil {
			firstCompletion = true
			columns["consumed_at"] = now
			task.ConsumedAt = &now
		}

		if err := s.repo.UpdateColumnsTx(tx, task.ID, columns); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update task status")
		}

		task.Status = next
		task.UpdatedBy = &actor.UserID
		task.UpdatedAt = now

		if firstCompletion {
			if err := s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventTaskCompleted,
				AggregateType: enums.AggregateTask,
				AggregateID:   task.ID,
				Actor: &outbox.ActorRef{
					UserID: actor.UserID,
					Name:   actor.Name,
					Role:   actor.Role.String(),
				},
				Data: completedPayload(task, actor, now),
			}); err != nil {
				return err
			}
		}

		moved = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	// consumption runs after the status commit: each declaration is an
	// independent deduction and a failing item must not undo the move
	if firstCompletion && len(moved.ConsumedInventory) > 0 {
		pairs := make([]inventory.ConsumePair, len(moved.ConsumedInventory))
		for i, decl := range moved.ConsumedInventory {
			pairs[i] = inventory.ConsumePair{ItemID: decl.ItemID, Quantity: decl.Quantity}
		}
		if err := s.inventory.ConsumeMany(ctx, pairs, consumptionReason, actor); err != nil && s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{"task_id": moved.ID.String(), "error": err.Error()})
			s.logg.Warn(logCtx, "task completion consumption partially failed")
		}
	}

	return moved, nil
}

func (s *service) UpdateTask(ctx context.Context, id uuid.UUID, input UpdateTaskInput, actor types.Actor) (*models.Task, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task id is required")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity missing")
	}

	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := map[string]any{
		"updated_by": actor.UserID,
		"updated_at": s.now(),
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be blank")
		}
		columns["title"] = title
		task.Title = title
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		columns["description"] = desc
		task.Description = desc
	}
	if input.ClearAssignee {
		columns["assigned_to"] = nil
		columns["assigned_to_name"] = nil
		task.AssignedTo = nil
		task.AssignedToName = nil
	} else if input.AssignedTo != nil {
		assignee, err := s.lookupUser(ctx, *input.AssignedTo)
		if err != nil {
			return nil, err
		}
		columns["assigned_to"] = assignee.ID
		columns["assigned_to_name"] = assignee.Name
		task.AssignedTo = &assignee.ID
		task.AssignedToName = &assignee.Name
	}
	if input.DueDate != nil {
		columns["due_date"] = *input.DueDate
		task.DueDate = input.DueDate
	}
	if input.ConsumedInventory != nil {
		if err := validateConsumption(*input.ConsumedInventory); err != nil {
			return nil, err
		}
		columns["consumed_inventory"] = *input.ConsumedInventory
		task.ConsumedInventory = *input.ConsumedInventory
	}

	if err := s.repo.UpdateColumns(ctx, id, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update task")
	}
	return task, nil
}

func (s *service) DeleteTask(ctx context.Context, id uuid.UUID, actor types.Actor) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "task id is required")
	}
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor identity missing")
	}
	if _, err := s.GetTask(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete task")
	}
	return nil
}

func (s *service) lookupUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup assignee")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "assignee is deactivated")
	}
	return user, nil
}

// step computes the next status for a one-position move. ok is false when the
// move would leave the workflow (already at todo or done).
func step(current enums.TaskStatus, direction Direction) (enums.TaskStatus, bool) {
	idx := current.Index()
	if idx < 0 {
		return current, false
	}
	switch direction {
	case DirectionForward:
		idx++
	case DirectionBackward:
		idx--
	}
	if idx < 0 || idx >= len(enums.TaskStatusOrder) {
		return current, false
	}
	return enums.TaskStatusOrder[idx], true
}

func validateConsumption(declarations dbtypes.ConsumedInventory) error {
	for _, decl := range declarations {
		if decl.ItemID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "consumed_inventory item_id is required")
		}
		if decl.Quantity.Sign() <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "consumed_inventory quantity must be positive")
		}
	}
	return nil
}

func completedPayload(task *models.Task, actor types.Actor, completedAt time.Time) payloads.TaskCompletedEvent {
	items := make([]payloads.TaskConsumedItem, len(task.ConsumedInventory))
	for i, decl := range task.ConsumedInventory {
		items[i] = payloads.TaskConsumedItem{ItemID: decl.ItemID, Quantity: decl.Quantity}
	}
	return payloads.TaskCompletedEvent{
		TaskID:        task.ID,
		Title:         task.Title,
		CompletedBy:   actor.UserID,
		CompletedAt:   completedAt,
		ConsumedItems: items,
	}
}
