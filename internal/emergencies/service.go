package emergencies

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Just-andreew/aquagen-farm/pkg/db/models"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox/payloads"
	pkgpagination "github.com/Just-andreew/aquagen-farm/pkg/pagination"
	"github.com/Just-andreew/aquagen-farm/pkg/types"
)

type transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type emergenciesRepository interface {
	CreateTx(tx *gorm.DB, report *models.EmergencyReport) error
	List(ctx context.Context, opts listQuery) ([]models.EmergencyReport, error)
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateReportInput holds the fields accepted when raising an incident.
type CreateReportInput struct {
	Title       string
	Description string
	Severity    string
}

// ListParams are the inputs for report listings.
type ListParams struct {
	Severity string
	Limit    int
	Cursor   string
}

// ListResult carries one page of reports plus the next cursor.
type ListResult struct {
	Reports []models.EmergencyReport `json:"reports"`
	Cursor  string                   `json:"cursor"`
}

// Service exposes the emergency report operations.
type Service interface {
	CreateReport(ctx context.Context, input CreateReportInput, actor types.Actor) (*models.EmergencyReport, error)
	ListReports(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	db     transactor
	repo   emergenciesRepository
	events outboxEmitter
	logg   *logger.Logger
}

// NewService builds the emergency report service.
func NewService(db transactor, repo emergenciesRepository, events outboxEmitter, logg *logger.Logger) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("transactor required")
	}
	if repo == nil {
		return nil, fmt.Errorf("emergencies repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{db: db, repo: repo, events: events, logg: logg}, nil
}

func (s *service) CreateReport(ctx context.Context, input CreateReportInput, actor types.Actor) (*models.EmergencyReport, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	severity, err := enums.ParseEmergencySeverity(input.Severity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid severity")
	}
	if actor.UserID == uuid.Nil || strings.TrimSpace(actor.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor identity missing")
	}

	report := &models.EmergencyReport{
		Title:          title,
		Description:    strings.TrimSpace(input.Description),
		Severity:       severity,
		ReportedBy:     actor.UserID,
		ReportedByName: actor.Name,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, report); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create emergency report")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventEmergencyReported,
			AggregateType: enums.AggregateEmergency,
			AggregateID:   report.ID,
			Actor: &outbox.ActorRef{
				UserID: actor.UserID,
				Name:   actor.Name,
				Role:   actor.Role.String(),
			},
			Data: payloads.EmergencyReportedEvent{
				ReportID:       report.ID,
				Title:          report.Title,
				Severity:       report.Severity,
				ReportedBy:     report.ReportedBy,
				ReportedByName: report.ReportedByName,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *service) ListReports(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Severity != "" {
		if _, err := enums.ParseEmergencySeverity(params.Severity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid severity filter")
		}
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		severity: params.Severity,
		limit:    pkgpagination.LimitWithBuffer(params.Limit),
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list emergency reports")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	return &ListResult{Reports: rows, Cursor: nextCursor}, nil
}
