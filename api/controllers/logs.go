package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Just-andreew/aquagen-farm/api/middleware"
	"github.com/Just-andreew/aquagen-farm/api/responses"
	"github.com/Just-andreew/aquagen-farm/api/validators"
	"github.com/Just-andreew/aquagen-farm/internal/activity"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
)

type createLogRequest struct {
	AnimalType      string           `json:"animal_type" validate:"required"`
	EventType       string           `json:"event_type" validate:"required"`
	Description     string           `json:"description"`
	FeedItemID      *uuid.UUID       `json:"feed_item_id"`
	FeedAmount      *decimal.Decimal `json:"feed_amount"`
	AttachedFileURL *string          `json:"attached_file_url"`
}

// ListActivityLogs returns a filtered, cursor-paginated log page.
func ListActivityLogs(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		technician, err := validators.ParseQueryUUID(r, "technician")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := activity.ListParams{
			AnimalType: r.URL.Query().Get("animal_type"),
			EventType:  r.URL.Query().Get("event_type"),
			Technician: technician,
			From:       from,
			To:         to,
			Limit:      limit,
			Cursor:     r.URL.Query().Get("cursor"),
		}

		result, err := svc.ListLogs(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CreateActivityLog records an activity. Feeding entries deduct the fed
// amount from inventory before the log is written.
func CreateActivityLog(svc activity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "activity service unavailable"))
			return
		}

		var body createLogRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.CreateLog(r.Context(), activity.CreateLogInput{
			AnimalType:      body.AnimalType,
			EventType:       body.EventType,
			Description:     body.Description,
			FeedItemID:      body.FeedItemID,
			FeedAmount:      body.FeedAmount,
			AttachedFileURL: body.AttachedFileURL,
		}, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}
