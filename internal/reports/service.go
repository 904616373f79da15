package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
)

type completedTasksCounter interface {
	CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type activityCounter interface {
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type consumptionCounter interface {
	CountConsumedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type emergencyCounter interface {
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
}

// Metric is one named figure in a summary.
type Metric struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Summary aggregates activity over a reporting window.
type Summary struct {
	Type    enums.ReportType `json:"type"`
	From    time.Time        `json:"from"`
	To      time.Time        `json:"to"`
	Metrics []Metric         `json:"metrics"`
}

// Service exposes administrative reporting.
type Service interface {
	Summarize(ctx context.Context, reportType enums.ReportType, from, to time.Time) (*Summary, error)
	ExportCSV(ctx context.Context, reportType enums.ReportType, from, to time.Time) ([]byte, error)
}

type service struct {
	tasks       completedTasksCounter
	activity    activityCounter
	inventory   consumptionCounter
	emergencies emergencyCounter
	logg        *logger.Logger
}

// NewService builds the reporting service.
func NewService(tasks completedTasksCounter, activity activityCounter, inventory consumptionCounter, emergencies emergencyCounter, logg *logger.Logger) (Service, error) {
	if tasks == nil || activity == nil || inventory == nil || emergencies == nil {
		return nil, fmt.Errorf("all counters required")
	}
	return &service{
		tasks:       tasks,
		activity:    activity,
		inventory:   inventory,
		emergencies: emergencies,
		logg:        logg,
	}, nil
}

// Summarize computes the metrics selected by the report type over [from, to].
// The monthly report carries every metric.
func (s *service) Summarize(ctx context.Context, reportType enums.ReportType, from, to time.Time) (*Summary, error) {
	if !reportType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid report type")
	}
	if from.IsZero() || to.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from and to are required")
	}
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to must not precede from")
	}

	summary := &Summary{Type: reportType, From: from, To: to}

	wantAll := reportType == enums.ReportTypeMonthly

	if wantAll || reportType == enums.ReportTypeTasks {
		count, err := s.tasks.CountCompletedBetween(ctx, from, to)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count completed tasks")
		}
		summary.Metrics = append(summary.Metrics, Metric{Name: "tasks_completed", Value: count})
	}
	if wantAll {
		count, err := s.activity.CountBetween(ctx, from, to)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count activity logs")
		}
		summary.Metrics = append(summary.Metrics, Metric{Name: "activity_logs", Value: count})
	}
	if wantAll || reportType == enums.ReportTypeInventory {
		count, err := s.inventory.CountConsumedBetween(ctx, from, to)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count inventory consumption")
		}
		summary.Metrics = append(summary.Metrics, Metric{Name: "inventory_consumptions", Value: count})
	}
	if wantAll || reportType == enums.ReportTypeEmergency {
		count, err := s.emergencies.CountBetween(ctx, from, to)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count emergency reports")
		}
		summary.Metrics = append(summary.Metrics, Metric{Name: "emergency_reports", Value: count})
	}

	return summary, nil
}

// ExportCSV renders the same summary as a two-column CSV.
func (s *service) ExportCSV(ctx context.Context, reportType enums.ReportType, from, to time.Time) ([]byte, error) {
	summary, err := s.Summarize(ctx, reportType, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	rows := [][]string{
		{"report_type", summary.Type.String()},
		{"from", summary.From.Format(time.RFC3339)},
		{"to", summary.To.Format(time.RFC3339)},
	}
	for _, metric := range summary.Metrics {
		rows = append(rows, []string{metric.Name, strconv.FormatInt(metric.Value, 10)})
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv")
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return buf.Bytes(), nil
}
