package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Just-andreew/aquagen-farm/api/responses"
	"github.com/Just-andreew/aquagen-farm/api/validators"
	"github.com/Just-andreew/aquagen-farm/internal/reports"
	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
)

func reportWindow(r *http.Request) (enums.ReportType, time.Time, time.Time, error) {
	reportType, err := enums.ParseReportType(r.URL.Query().Get("type"))
	if err != nil {
		return "", time.Time{}, time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid report type")
	}
	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	if from == nil || to == nil {
		return "", time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from and to are required")
	}
	return reportType, *from, *to, nil
}

// ReportSummary computes the metrics for the requested window.
func ReportSummary(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		reportType, from, to, err := reportWindow(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summarize(r.Context(), reportType, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// ReportExport streams the summary as a CSV attachment.
func ReportExport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		reportType, from, to, err := reportWindow(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := svc.ExportCSV(r.Context(), reportType, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("%s-report-%s.csv", reportType, from.Format("2006-01-02"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
	}
}
