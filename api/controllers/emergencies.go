package controllers

import (
	"net/http"

	"github.com/Just-andreew/aquagen-farm/api/middleware"
	"github.com/Just-andreew/aquagen-farm/api/responses"
	"github.com/Just-andreew/aquagen-farm/api/validators"
	"github.com/Just-andreew/aquagen-farm/internal/emergencies"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
)

type createEmergencyRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Severity    string `json:"severity" validate:"required,oneof=low medium high critical"`
}

// ListEmergencies returns a filtered, cursor-paginated report page.
func ListEmergencies(svc emergencies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "emergency service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := emergencies.ListParams{
			Severity: r.URL.Query().Get("severity"),
			Limit:    limit,
			Cursor:   r.URL.Query().Get("cursor"),
		}

		result, err := svc.ListReports(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CreateEmergency raises an incident report.
func CreateEmergency(svc emergencies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "emergency service unavailable"))
			return
		}

		var body createEmergencyRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.CreateReport(r.Context(), emergencies.CreateReportInput{
			Title:       body.Title,
			Description: body.Description,
			Severity:    body.Severity,
		}, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, report)
	}
}
