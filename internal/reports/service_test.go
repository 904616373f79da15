package reports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
)

type fixedCounter int64

func (f fixedCounter) CountCompletedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return int64(f), nil
}

func (f fixedCounter) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return int64(f), nil
}

func (f fixedCounter) CountConsumedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return int64(f), nil
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(fixedCounter(7), fixedCounter(12), fixedCounter(3), fixedCounter(1), nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func window(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	from, err := time.Parse(time.RFC3339, "2026-08-01T00:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	return from, from.AddDate(0, 1, 0)
}

func metricNames(summary *Summary) []string {
	out := make([]string, len(summary.Metrics))
	for i, metric := range summary.Metrics {
		out[i] = metric.Name
	}
	return out
}

func TestSummarizeMonthlyIncludesAllMetrics(t *testing.T) {
	svc := newTestService(t)
	from, to := window(t)

	summary, err := svc.Summarize(context.Background(), enums.ReportTypeMonthly, from, to)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	names := metricNames(summary)
	want := []string{"tasks_completed", "activity_logs", "inventory_consumptions", "emergency_reports"}
	if len(names) != len(want) {
		t.Fatalf("expected %d metrics, got %v", len(want), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("expected %s at %d, got %v", name, i, names)
		}
	}
	if summary.Metrics[0].Value != 7 {
		t.Fatalf("unexpected tasks_completed %d", summary.Metrics[0].Value)
	}
}

func TestSummarizeScopedReports(t *testing.T) {
	svc := newTestService(t)
	from, to := window(t)

	cases := []struct {
		reportType enums.ReportType
		metric     string
		value      int64
	}{
		{enums.ReportTypeTasks, "tasks_completed", 7},
		{enums.ReportTypeInventory, "inventory_consumptions", 3},
		{enums.ReportTypeEmergency, "emergency_reports", 1},
	}
	for _, tc := range cases {
		summary, err := svc.Summarize(context.Background(), tc.reportType, from, to)
		if err != nil {
			t.Fatalf("%s: %v", tc.reportType, err)
		}
		if len(summary.Metrics) != 1 || summary.Metrics[0].Name != tc.metric || summary.Metrics[0].Value != tc.value {
			t.Fatalf("%s: unexpected metrics %+v", tc.reportType, summary.Metrics)
		}
	}
}

func TestSummarizeValidation(t *testing.T) {
	svc := newTestService(t)
	from, to := window(t)

	cases := []struct {
		name       string
		reportType enums.ReportType
		from, to   time.Time
	}{
		{"bad type", enums.ReportType("weekly"), from, to},
		{"zero from", enums.ReportTypeMonthly, time.Time{}, to},
		{"inverted window", enums.ReportTypeMonthly, to, from},
	}
	for _, tc := range cases {
		_, err := svc.Summarize(context.Background(), tc.reportType, tc.from, tc.to)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected VALIDATION_ERROR, got %v", tc.name, err)
		}
	}
}

func TestExportCSV(t *testing.T) {
	svc := newTestService(t)
	from, to := window(t)

	data, err := svc.ExportCSV(context.Background(), enums.ReportTypeTasks, from, to)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	out := string(data)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 rows, got %d: %q", len(lines), out)
	}
	if lines[0] != "report_type,tasks" {
		t.Fatalf("unexpected header row %q", lines[0])
	}
	if lines[3] != "tasks_completed,7" {
		t.Fatalf("unexpected metric row %q", lines[3])
	}
}
