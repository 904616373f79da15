package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Just-andreew/aquagen-farm/api/middleware"
	"github.com/Just-andreew/aquagen-farm/api/responses"
	"github.com/Just-andreew/aquagen-farm/api/validators"
	"github.com/Just-andreew/aquagen-farm/internal/inventory"
	pkgerrors "github.com/Just-andreew/aquagen-farm/pkg/errors"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
)

type addItemRequest struct {
	Name     string          `json:"name" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit" validate:"required"`
}

type applyDeltaRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason" validate:"required"`
}

type consumePairRequest struct {
	ItemID   string          `json:"item_id" validate:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity"`
}

type consumeRequest struct {
	Items  []consumePairRequest `json:"items" validate:"required,min=1,dive"`
	Reason string               `json:"reason" validate:"required"`
}

// ListInventory returns a filtered, cursor-paginated item page.
func ListInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := inventory.ListParams{
			Status: r.URL.Query().Get("status"),
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		result, err := svc.ListItems(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseUUIDField(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "field must be a uuid").WithDetails(map[string]any{"field": field})
	}
	return id, nil
}

// AddInventoryItem registers a new stock item.
func AddInventoryItem(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var body addItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddItem(r.Context(), inventory.AddItemInput{
			Name:     body.Name,
			Quantity: body.Quantity,
			Unit:     body.Unit,
		}, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ApplyInventoryDelta adjusts one item's quantity and records the audit entry.
func ApplyInventoryDelta(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body applyDeltaRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.ApplyDelta(r.Context(), id, body.Delta, body.Reason, middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// ConsumeInventory deducts several items in one call. Partial failures are
// reported without rolling back the successful deductions.
func ConsumeInventory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var body consumeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pairs := make([]inventory.ConsumePair, 0, len(body.Items))
		for _, item := range body.Items {
			id, err := parseUUIDField(item.ItemID, "item_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			pairs = append(pairs, inventory.ConsumePair{ItemID: id, Quantity: item.Quantity})
		}

		if err := svc.ConsumeMany(r.Context(), pairs, body.Reason, middleware.ActorFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "consumed"})
	}
}

// ListInventoryHistory returns the raw-delta audit trail.
func ListInventoryHistory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParseQueryUUID(r, "item_id")
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

		params := inventory.HistoryParams{
			ItemID: itemID,
			From:   from,
			To:     to,
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		result, err := svc.ListHistory(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
