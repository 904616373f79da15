package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Just-andreew/aquagen-farm/api/middleware"
	"github.com/Just-andreew/aquagen-farm/internal/tasks"
	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	"github.com/Just-andreew/aquagen-farm/pkg/types"
)

type testTasksService struct {
	moveFn   func(ctx context.Context, id uuid.UUID, direction tasks.Direction, actor types.Actor) (*models.Task, error)
	createFn func(ctx context.Context, input tasks.CreateTaskInput, actor types.Actor) (*models.Task, error)
}

func (s *testTasksService) CreateTask(ctx context.Context, input tasks.CreateTaskInput, actor types.Actor) (*models.Task, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input, actor)
	}
	return nil, nil
}

func (s *testTasksService) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return nil, nil
}

func (s *testTasksService) ListTasks(ctx context.Context, params tasks.ListParams) (*tasks.ListResult, error) {
	return &tasks.ListResult{}, nil
}

func (s *testTasksService) Move(ctx context.Context, id uuid.UUID, direction tasks.Direction, actor types.Actor) (*models.Task, error) {
	if s.moveFn != nil {
		return s.moveFn(ctx, id, direction, actor)
	}
	return nil, nil
}

func (s *testTasksService) UpdateTask(ctx context.Context, id uuid.UUID, input tasks.UpdateTaskInput, actor types.Actor) (*models.Task, error) {
	return nil, nil
}

func (s *testTasksService) DeleteTask(ctx context.Context, id uuid.UUID, actor types.Actor) error {
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestMoveTaskSuccess(t *testing.T) {
	taskID := uuid.New()
	actorID := uuid.New()
	called := false
	svc := &testTasksService{
		moveFn: func(ctx context.Context, id uuid.UUID, direction tasks.Direction, actor types.Actor) (*models.Task, error) {
			called = true
			if id != taskID {
				t.Fatalf("unexpected task %s", id)
			}
			if direction != tasks.DirectionForward {
				t.Fatalf("unexpected direction %s", direction)
			}
			if actor.UserID != actorID {
				t.Fatalf("unexpected actor %s", actor.UserID)
			}
			return &models.Task{ID: taskID, Status: enums.TaskStatusInProgress}, nil
		},
	}

	body := strings.NewReader(`{"direction":"forward"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+taskID.String()+"/move", body)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithActor(req.Context(), actorID.String(), "Ana Reyes", "technician"))
	req = addRouteParam(req, "id", taskID.String())

	resp := httptest.NewRecorder()
	MoveTask(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestMoveTaskRejectsUnknownDirection(t *testing.T) {
	taskID := uuid.New()
	body := strings.NewReader(`{"direction":"sideways"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/"+taskID.String()+"/move", body)
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "id", taskID.String())

	resp := httptest.NewRecorder()
	MoveTask(&testTasksService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMoveTaskRejectsBadID(t *testing.T) {
	body := strings.NewReader(`{"direction":"forward"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/nope/move", body)
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "id", "nope")

	resp := httptest.NewRecorder()
	MoveTask(&testTasksService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateTaskPassesDeclarations(t *testing.T) {
	actorID := uuid.New()
	itemID := uuid.New()
	svc := &testTasksService{
		createFn: func(ctx context.Context, input tasks.CreateTaskInput, actor types.Actor) (*models.Task, error) {
			if input.Title != "Clean filters" {
				t.Fatalf("unexpected title %q", input.Title)
			}
			if len(input.ConsumedInventory) != 1 || input.ConsumedInventory[0].ItemID != itemID {
				t.Fatalf("unexpected declarations %+v", input.ConsumedInventory)
			}
			return &models.Task{ID: uuid.New(), Title: input.Title, Status: enums.TaskStatusTodo}, nil
		},
	}

	payload := `{"title":"Clean filters","consumed_inventory":[{"item_id":"` + itemID.String() + `","quantity":"2.5"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithActor(req.Context(), actorID.String(), "Ana Reyes", "supervisor"))

	resp := httptest.NewRecorder()
	CreateTask(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			Status string `json:"Status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Status != string(enums.TaskStatusTodo) {
		t.Fatalf("expected todo status got %q", envelope.Data.Status)
	}
}
