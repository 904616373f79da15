package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Just-andreew/aquagen-farm/pkg/db"
	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	pkgpagination "github.com/Just-andreew/aquagen-farm/pkg/pagination"
	"github.com/Just-andreew/aquagen-farm/pkg/types"
)

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateColumns(ctx context.Context, id uuid.UUID, columns map[string]any) error
	List(ctx context.Context, opts listQuery) ([]models.User, error)
}

// UpdateUserInput is a partial patch; nil fields are left untouched.
type UpdateUserInput struct {
	Name       *string
	Email      *string
	Role       *string
	Deactivate bool
	Reactivate bool
}

// ListParams are the inputs for user listings.
type ListParams struct {
	Role       string
	ActiveOnly bool
	Limit      int
	Cursor     string
}

// ListResult carries one page of users plus the next cursor.
type ListResult struct {
	Users  []UserDTO `json:"users"`
	Cursor string    `json:"cursor"`
}

// Service exposes staff account management.
type Service interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, params ListParams, actor types.Actor) (*ListResult, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput, actor types.Actor) (*models.User, error)
}

type service struct {
	repo usersRepository
	logg *logger.Logger
}

// NewService builds the user management service.
func NewService(repo usersRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	return user, nil
}

func (s *service) ListUsers(ctx context.Context, params ListParams, actor types.Actor) (*ListResult, error) {
	if !actor.Role.CanManageUsers() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not manage users")
	}
	if params.Role != "" {
		if _, err := enums.ParseUserRole(params.Role); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role filter")
		}
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		role:       params.Role,
		activeOnly: params.ActiveOnly,
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	return &ListResult{Users: NewUserDTOs(rows), Cursor: nextCursor}, nil
}

// UpdateUser patches name/email/role/is_active. Only admins may grant or
// revoke the admin role, and nobody may deactivate their own account.
func (s *service) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput, actor types.Actor) (*models.User, error) {
	if !actor.Role.CanManageUsers() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not manage users")
	}
	if input.Deactivate && input.Reactivate {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot both deactivate and reactivate")
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := map[string]any{}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		columns["name"] = name
		user.Name = name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
		}
		columns["email"] = email
		user.Email = email
	}
	if input.Role != nil {
		role, err := enums.ParseUserRole(*input.Role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		if (role == enums.UserRoleAdmin || user.Role == enums.UserRoleAdmin) && actor.Role != enums.UserRoleAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may change admin roles")
		}
		columns["role"] = role
		user.Role = role
	}
	if input.Deactivate {
		if id == actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot deactivate own account")
		}
		columns["is_active"] = false
		user.IsActive = false
	}
	if input.Reactivate {
		columns["is_active"] = true
		user.IsActive = true
	}

	if len(columns) == 0 {
		return user, nil
	}

	if err := s.repo.UpdateColumns(ctx, id, columns); err != nil {
		if db.IsUniqueViolation(err, "ux_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return user, nil
}
