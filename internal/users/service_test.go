package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/types"
)

type stubRepo struct {
	users map[uuid.UUID]*models.User
}

func newStubRepo(users ...*models.User) *stubRepo {
	repo := &stubRepo{users: map[uuid.UUID]*models.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *stubRepo) UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error {
	user := r.users[id]
	if name, ok := columns["name"].(string); ok {
		user.Name = name
	}
	if email, ok := columns["email"].(string); ok {
		user.Email = email
	}
	if role, ok := columns["role"].(enums.UserRole); ok {
		user.Role = role
	}
	if active, ok := columns["is_active"].(bool); ok {
		user.IsActive = active
	}
	return nil
}

func (r *stubRepo) List(ctx context.Context, opts listQuery) ([]models.User, error) {
	var out []models.User
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func seedUser(role enums.UserRole) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Name:     "Ana Rivera",
		Email:    "ana@aquagen.farm",
		Role:     role,
		IsActive: true,
	}
}

func adminActor() types.Actor {
	return types.Actor{UserID: uuid.New(), Name: "Root Admin", Role: enums.UserRoleAdmin}
}

func newTestService(t *testing.T, repo *stubRepo) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestUpdateUserPatchesFields(t *testing.T) {
	user := seedUser(enums.UserRoleTechnician)
	repo := newStubRepo(user)
	svc := newTestService(t, repo)

	name := "  Ana R. "
	email := "Ana.Rivera@Aquagen.Farm"
	role := "supervisor"
	updated, err := svc.UpdateUser(context.Background(), user.ID, UpdateUserInput{
		Name:  &name,
		Email: &email,
		Role:  &role,
	}, adminActor())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Ana R." {
		t.Fatalf("expected trimmed name, got %q", updated.Name)
	}
	if updated.Email != "ana.rivera@aquagen.farm" {
		t.Fatalf("expected lowercased email, got %q", updated.Email)
	}
	if updated.Role != enums.UserRoleSupervisor {
		t.Fatalf("unexpected role %s", updated.Role)
	}
}

func TestUpdateUserTechnicianForbidden(t *testing.T) {
	user := seedUser(enums.UserRoleTechnician)
	svc := newTestService(t, newStubRepo(user))

	actor := types.Actor{UserID: uuid.New(), Name: "Luis Ortega", Role: enums.UserRoleTechnician}
	name := "x"
	_, err := svc.UpdateUser(context.Background(), user.ID, UpdateUserInput{Name: &name}, actor)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestUpdateUserSupervisorCannotGrantAdmin(t *testing.T) {
	user := seedUser(enums.UserRoleTechnician)
	svc := newTestService(t, newStubRepo(user))

	actor := types.Actor{UserID: uuid.New(), Name: "Maria Santos", Role: enums.UserRoleSupervisor}
	role := "admin"
	_, err := svc.UpdateUser(context.Background(), user.ID, UpdateUserInput{Role: &role}, actor)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestUpdateUserCannotDeactivateSelf(t *testing.T) {
	admin := seedUser(enums.UserRoleAdmin)
	svc := newTestService(t, newStubRepo(admin))

	actor := types.Actor{UserID: admin.ID, Name: admin.Name, Role: enums.UserRoleAdmin}
	_, err := svc.UpdateUser(context.Background(), admin.ID, UpdateUserInput{Deactivate: true}, actor)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestUpdateUserDeactivateOther(t *testing.T) {
	user := seedUser(enums.UserRoleTechnician)
	repo := newStubRepo(user)
	svc := newTestService(t, repo)

	updated, err := svc.UpdateUser(context.Background(), user.ID, UpdateUserInput{Deactivate: true}, adminActor())
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected user deactivated")
	}
	if repo.users[user.ID].IsActive {
		t.Fatal("expected deactivation persisted")
	}
}

func TestUpdateUserUnknownIsNotFound(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	name := "x"
	_, err := svc.UpdateUser(context.Background(), uuid.New(), UpdateUserInput{Name: &name}, adminActor())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestListUsersForbiddenForTechnicians(t *testing.T) {
	svc := newTestService(t, newStubRepo())

	actor := types.Actor{UserID: uuid.New(), Name: "Luis Ortega", Role: enums.UserRoleTechnician}
	_, err := svc.ListUsers(context.Background(), ListParams{}, actor)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}
